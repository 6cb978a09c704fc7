package tree

import (
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vireo/branchsearch/state"
)

// unopenedBranches returns every branch key at node that has no child yet,
// in the state's branch-key order. Shuffling is explicitly not applied.
func unopenedBranches(node *AlgorithmNode) []state.BranchKey {
	all := node.Node.State.BranchKeys().All()
	out := make([]state.BranchKey, 0, len(all))
	for _, k := range all {
		if _, opened := node.Node.BranchesChildren[k]; !opened {
			out = append(out, k)
		}
	}
	return out
}

// OpenAllBranches emits one opening instruction per unopened branch of
// node, marking it fully generated. Returns ErrEmptyExpansion (a
// recoverable condition per spec.md §7) when node has nothing left to
// open.
func OpenAllBranches(node *AlgorithmNode) ([]OpeningInstruction, error) {
	unopened := unopenedBranches(node)
	node.Node.AllBranchesGenerated = true
	if len(unopened) == 0 {
		return nil, ErrEmptyExpansion
	}
	instrs := make([]OpeningInstruction, len(unopened))
	for i, k := range unopened {
		instrs[i] = OpeningInstruction{Node: node, BranchKey: k}
	}
	return instrs, nil
}

func isFullyOpened(n *AlgorithmNode) bool {
	return n.Node.AllBranchesGenerated && len(unopenedBranches(n)) == 0
}

// Selector is a node selector (C8): it proposes the next batch of
// (node, branch_key) expansions.
type Selector interface {
	Choose(t *Tree) ([]OpeningInstruction, error)
}

// UniformSelector walks a depth cursor outward from root, opening every
// not-over node at the current depth each call.
type UniformSelector struct {
	cursor int
}

// NewUniformSelector returns a selector starting its cursor at depth 0.
func NewUniformSelector() *UniformSelector { return &UniformSelector{} }

// CurrentDepthToExpand exposes the cursor for DepthLimit's stopping
// criterion (spec.md §4.11).
func (u *UniformSelector) CurrentDepthToExpand() int { return u.cursor }

func (u *UniformSelector) Choose(t *Tree) ([]OpeningInstruction, error) {
	depth := t.Root.Node.Depth + u.cursor
	nodes := t.Descendants.IterateAt(depth)

	eligible := make([]*AlgorithmNode, 0, len(nodes))
	for _, n := range nodes {
		if !n.Evaluation.OverEvent.IsOver() {
			eligible = append(eligible, n)
		}
	}
	rootTurn := t.Root.Turn()
	sort.SliceStable(eligible, func(i, j int) bool {
		vi := SubjectiveValueOf(rootTurn, eligible[i].Evaluation.MinmaxValueWhite)
		vj := SubjectiveValueOf(rootTurn, eligible[j].Evaluation.MinmaxValueWhite)
		return vi < vj
	})

	var instrs []OpeningInstruction
	for _, n := range eligible {
		batch, err := OpenAllBranches(n)
		if err == ErrEmptyExpansion {
			continue
		}
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, batch...)
	}
	u.cursor++
	return instrs, nil
}

// RecurZipfPriority narrows the branch pool RecurZipfBaseSelector samples
// from at each step of its descent, per spec.md §9's
// `RecurZipfBase(priority ∈ {no, best, two-best})` configuration axis.
type RecurZipfPriority int

const (
	// PriorityNone samples Zipf-weighted over every not-over branch.
	PriorityNone RecurZipfPriority = iota
	// PriorityBest restricts sampling to the single best-ranked branch,
	// collapsing the descent step to a deterministic pick.
	PriorityBest
	// PriorityTwoBest restricts sampling to the two best-ranked branches.
	PriorityTwoBest
)

// RecurZipfBaseSelector performs one random Zipf-weighted descent from the
// root and opens every branch of the node it lands on.
type RecurZipfBaseSelector struct {
	rng      *rand.Rand
	Priority RecurZipfPriority
}

// NewRecurZipfBaseSelector builds a no-priority selector sampling from rng.
func NewRecurZipfBaseSelector(rng *rand.Rand) *RecurZipfBaseSelector {
	return &RecurZipfBaseSelector{rng: rng}
}

// NewRecurZipfBaseSelectorWithPriority builds a selector sampling from rng,
// restricting each descent step's candidate pool per priority.
func NewRecurZipfBaseSelectorWithPriority(rng *rand.Rand, priority RecurZipfPriority) *RecurZipfBaseSelector {
	return &RecurZipfBaseSelector{rng: rng, Priority: priority}
}

func notOverChildrenByRank(node *AlgorithmNode) []state.BranchKey {
	var keys []state.BranchKey
	for _, k := range node.Evaluation.OrderedBranchKeys() {
		child := node.Node.BranchesChildren[k]
		if child != nil && !child.Evaluation.OverEvent.IsOver() {
			keys = append(keys, k)
		}
	}
	return keys
}

// restrictByPriority narrows a rank-ordered not-over branch list to the
// leading candidates priority allows, per spec.md §9.
func restrictByPriority(keys []state.BranchKey, priority RecurZipfPriority) []state.BranchKey {
	switch priority {
	case PriorityBest:
		if len(keys) > 1 {
			return keys[:1]
		}
	case PriorityTwoBest:
		if len(keys) > 2 {
			return keys[:2]
		}
	}
	return keys
}

func (s *RecurZipfBaseSelector) Choose(t *Tree) ([]OpeningInstruction, error) {
	node := t.Root
	for {
		keys := restrictByPriority(notOverChildrenByRank(node), s.Priority)
		if len(keys) == 0 {
			break
		}
		weights := make([]float64, len(keys))
		for i := range keys {
			weights[i] = 1.0 / float64(i+1)
		}
		dist := distuv.NewCategorical(weights, s.rng)
		idx := int(dist.Rand())
		node = node.Node.BranchesChildren[keys[idx]]
	}
	return OpenAllBranches(node)
}

// CandidateMode selects which nodes Sequool's node-pick phase considers.
type CandidateMode int

const (
	CandidateLesserInDescendants CandidateMode = iota
	CandidateOnlyAtDepth
	CandidateLesserInSubtree
)

// DepthSelector is Sequool's pluggable depth-pick phase.
type DepthSelector interface {
	PickDepth(t *Tree) (int, bool)
}

// StaticNotOpenedSelector Zipf-picks the eligible depth with the fewest
// visits so far (ties broken by shallower depth), incrementing the winner's
// visit count. A depth is eligible only if it has an unfinished node.
type StaticNotOpenedSelector struct {
	visits map[int]int
}

// NewStaticNotOpenedSelector returns a fresh visit-count tracker.
func NewStaticNotOpenedSelector() *StaticNotOpenedSelector {
	return &StaticNotOpenedSelector{visits: make(map[int]int)}
}

func hasUnopenedDescendant(t *Tree, depth int) bool {
	for _, n := range t.Descendants.IterateAt(depth) {
		if !isFullyOpened(n) && !n.Evaluation.OverEvent.IsOver() {
			return true
		}
	}
	return false
}

func (s *StaticNotOpenedSelector) PickDepth(t *Tree) (int, bool) {
	var eligible []int
	for _, d := range t.Descendants.Depths() {
		if hasUnopenedDescendant(t, d) {
			eligible = append(eligible, d)
		}
	}
	if len(eligible) == 0 {
		return 0, false
	}
	for _, d := range eligible {
		if _, ok := s.visits[d]; !ok {
			s.visits[d] = 1
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		vi, vj := s.visits[eligible[i]], s.visits[eligible[j]]
		if vi != vj {
			return vi < vj
		}
		return eligible[i] < eligible[j]
	})
	chosen := eligible[0]
	s.visits[chosen]++
	return chosen, true
}

// RandomAllSelector Zipf-picks a depth offset from
// 1..max_depth_of_descendants (offset k has weight 1/k), using the root's
// depth-extended index data.
type RandomAllSelector struct {
	rng *rand.Rand
}

// NewRandomAllSelector builds a selector sampling from rng.
func NewRandomAllSelector(rng *rand.Rand) *RandomAllSelector {
	return &RandomAllSelector{rng: rng}
}

func (s *RandomAllSelector) PickDepth(t *Tree) (int, bool) {
	maxDepth := t.Root.Index.MaxDepthOfDescendants
	if maxDepth < 1 {
		return 0, false
	}
	weights := make([]float64, maxDepth)
	for i := range weights {
		weights[i] = 1.0 / float64(i+1)
	}
	dist := distuv.NewCategorical(weights, s.rng)
	offset := int(dist.Rand()) + 1
	return offset, true
}

func candidateNodes(t *Tree, depth int, mode CandidateMode, from *AlgorithmNode) []*AlgorithmNode {
	filterNotOpened := func(nodes []*AlgorithmNode) []*AlgorithmNode {
		out := make([]*AlgorithmNode, 0, len(nodes))
		for _, n := range nodes {
			if !isFullyOpened(n) && !n.Evaluation.OverEvent.IsOver() {
				out = append(out, n)
			}
		}
		return out
	}

	switch mode {
	case CandidateOnlyAtDepth:
		return filterNotOpened(t.Descendants.IterateAt(depth))
	case CandidateLesserInSubtree:
		var out []*AlgorithmNode
		seen := make(map[*AlgorithmNode]bool)
		var walk func(n *AlgorithmNode)
		walk = func(n *AlgorithmNode) {
			if seen[n] {
				return
			}
			seen[n] = true
			if n.Node.Depth <= depth {
				out = append(out, n)
			}
			for _, c := range n.Node.BranchesChildren {
				walk(c)
			}
		}
		walk(from)
		return filterNotOpened(out)
	default: // CandidateLesserInDescendants
		var out []*AlgorithmNode
		for _, d := range t.Descendants.Depths() {
			if d <= depth {
				out = append(out, filterNotOpened(t.Descendants.IterateAt(d))...)
			}
		}
		return out
	}
}

// bestCandidate picks the candidate minimizing (index, depth)
// lexicographically, preferring candidates with a known index unless
// every candidate's index is unset.
func bestCandidate(candidates []*AlgorithmNode) *AlgorithmNode {
	withIndex := make([]*AlgorithmNode, 0, len(candidates))
	for _, c := range candidates {
		if c.Index.HasIndex() {
			withIndex = append(withIndex, c)
		}
	}
	if len(withIndex) == 0 {
		if len(candidates) == 0 {
			return nil
		}
		return candidates[0]
	}
	best := withIndex[0]
	for _, c := range withIndex[1:] {
		if c.Index.Index < best.Index.Index ||
			(c.Index.Index == best.Index.Index && c.Node.Depth < best.Node.Depth) {
			best = c
		}
	}
	return best
}

// Sequool is selector C: pick a depth, pick the lowest-index node at or
// below it, and either open it or recurse further down its subtree.
type Sequool struct {
	Recursive     bool
	DepthSelector DepthSelector
	CandidateMode CandidateMode
}

func (sq *Sequool) Choose(t *Tree) ([]OpeningInstruction, error) {
	return sq.chooseFrom(t, t.Root)
}

func (sq *Sequool) chooseFrom(t *Tree, from *AlgorithmNode) ([]OpeningInstruction, error) {
	depth, ok := sq.DepthSelector.PickDepth(t)
	if !ok {
		return nil, ErrEmptyExpansion
	}
	chosen := bestCandidate(candidateNodes(t, depth, sq.CandidateMode, from))
	if chosen == nil {
		return nil, ErrEmptyExpansion
	}
	if sq.Recursive && chosen.Node.AllBranchesGenerated {
		return sq.chooseFrom(t, chosen)
	}
	return OpenAllBranches(chosen)
}
