package tree

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/vireo/branchsearch/state"
)

// TreeNode is one distinct (depth, tag) pair reached by the search. Never
// destroyed during a search -- released only with the whole tree.
type TreeNode struct {
	ID    int64
	Depth int
	State state.State

	// Parents maps each parent that reaches this node to the branch key it
	// used. A node may have several parents (transposition).
	Parents map[*AlgorithmNode]state.BranchKey

	// AllBranchesGenerated is true once BranchesChildren's key set equals
	// the full set of branches available at State.
	AllBranchesGenerated bool

	// BranchesChildren maps an opened branch key to its child. Absence of a
	// key means the branch has not been opened yet.
	BranchesChildren map[state.BranchKey]*AlgorithmNode
}

func newTreeNode(id int64, depth int, s state.State) *TreeNode {
	return &TreeNode{
		ID:               id,
		Depth:            depth,
		State:            s,
		Parents:          make(map[*AlgorithmNode]state.BranchKey),
		BranchesChildren: make(map[state.BranchKey]*AlgorithmNode),
	}
}

// BranchSortValue is the 3-tuple branches_sorted_by_value keys on: the
// negated-for-ascending-sort subjective value, the best-branch-sequence
// length tiebreak, and the child id for total order stability.
type BranchSortValue struct {
	SortField float32
	Tiebreak  int
	ChildID   int64
}

// Less implements the ascending order branches_sorted_by_value is kept
// under -- the smallest tuple sorts first, and the smallest tuple is the
// best branch (SortField stores the negated subjective value).
func (a BranchSortValue) Less(b BranchSortValue) bool {
	if a.SortField != b.SortField {
		return a.SortField < b.SortField
	}
	if a.Tiebreak != b.Tiebreak {
		return a.Tiebreak < b.Tiebreak
	}
	return a.ChildID < b.ChildID
}

// Equal is the `equal` equivalence predicate of spec.md §4.5: strict
// 3-tuple equality.
func (a BranchSortValue) Equal(b BranchSortValue) bool {
	return a.SortField == b.SortField && a.Tiebreak == b.Tiebreak && a.ChildID == b.ChildID
}

// ConsideredEqual ignores the child-id field -- two branches leading to
// distinct but equivalently-valued children are "considered equal".
func (a BranchSortValue) ConsideredEqual(b BranchSortValue) bool {
	return a.SortField == b.SortField && a.Tiebreak == b.Tiebreak
}

// AlmostEqual compares only the value field within an absolute epsilon.
func (a BranchSortValue) AlmostEqual(b BranchSortValue, epsilon float32) bool {
	return math32.Abs(a.SortField-b.SortField) < epsilon
}

// sortedBranch pairs a branch key with its current sort value, the unit
// stored in TreeEvaluation.BranchesSortedByValue's ordering slice.
type sortedBranch struct {
	Key   state.BranchKey
	Value BranchSortValue
}

// TreeEvaluation is the per-node minimax bookkeeping record.
type TreeEvaluation struct {
	hasDirectValue bool
	DirectValueWhite float32

	hasMinmaxValue bool
	MinmaxValueWhite float32

	BestBranchSequence []state.BranchKey

	// sortedByValue and order hold one entry per opened branch, order kept sorted
	// ascending by BranchSortValue -- order[0] is the current best child.
	sortedByValue map[state.BranchKey]BranchSortValue
	order         []sortedBranch

	// BranchesNotOver is an insertion-ordered set of branch keys whose
	// child is not yet resolved terminal -- order matters for determinism
	// (design note, spec.md §9).
	notOverSet   map[state.BranchKey]struct{}
	BranchesNotOverOrder []state.BranchKey

	OverEvent state.OverEvent
}

func newTreeEvaluation() *TreeEvaluation {
	return &TreeEvaluation{
		sortedByValue: make(map[state.BranchKey]BranchSortValue),
		notOverSet:    make(map[state.BranchKey]struct{}),
	}
}

// HasDirectValue reports whether the leaf evaluator has written this node's
// direct value yet.
func (t *TreeEvaluation) HasDirectValue() bool { return t.hasDirectValue }

// SetDirectValue writes direct_value_white exactly once; callers guard
// against a second write (C4's enqueue idempotence contract).
func (t *TreeEvaluation) SetDirectValue(v float32) {
	t.DirectValueWhite = v
	t.hasDirectValue = true
	if !t.hasMinmaxValue {
		t.MinmaxValueWhite = v
		t.hasMinmaxValue = true
	}
}

// HasMinmaxValue reports whether minmax_value_white has been set.
func (t *TreeEvaluation) HasMinmaxValue() bool { return t.hasMinmaxValue }

// SetMinmaxValue overwrites the backed-up value; may be called many times.
func (t *TreeEvaluation) SetMinmaxValue(v float32) {
	t.MinmaxValueWhite = v
	t.hasMinmaxValue = true
}

// BranchesNotOver returns the insertion-ordered set as a slice.
func (t *TreeEvaluation) BranchesNotOver() []state.BranchKey {
	out := make([]state.BranchKey, len(t.BranchesNotOverOrder))
	copy(out, t.BranchesNotOverOrder)
	return out
}

// markNotOver registers k as not-yet-resolved, appending to the end of the
// insertion order if it wasn't tracked already.
func (t *TreeEvaluation) markNotOver(k state.BranchKey) {
	if _, ok := t.notOverSet[k]; ok {
		return
	}
	t.notOverSet[k] = struct{}{}
	t.BranchesNotOverOrder = append(t.BranchesNotOverOrder, k)
}

// clearNotOver removes k from the not-over set (its child resolved).
func (t *TreeEvaluation) clearNotOver(k state.BranchKey) {
	if _, ok := t.notOverSet[k]; !ok {
		return
	}
	delete(t.notOverSet, k)
	for i, key := range t.BranchesNotOverOrder {
		if key == k {
			t.BranchesNotOverOrder = append(t.BranchesNotOverOrder[:i], t.BranchesNotOverOrder[i+1:]...)
			break
		}
	}
}

// SortValueOf returns the stored 3-tuple for branch k, if any.
func (t *TreeEvaluation) SortValueOf(k state.BranchKey) (BranchSortValue, bool) {
	v, ok := t.sortedByValue[k]
	return v, ok
}

// OrderedBranchKeys returns every opened branch key in ascending
// BranchSortValue order (index 0 is the best child).
func (t *TreeEvaluation) OrderedBranchKeys() []state.BranchKey {
	out := make([]state.BranchKey, len(t.order))
	for i, sb := range t.order {
		out[i] = sb.Key
	}
	return out
}

// HeadBranch returns the best (head-of-order) branch key, if any branch has
// been recorded yet.
func (t *TreeEvaluation) HeadBranch() (state.BranchKey, BranchSortValue, bool) {
	if len(t.order) == 0 {
		return nil, BranchSortValue{}, false
	}
	h := t.order[0]
	return h.Key, h.Value, true
}

// setSortValue writes/overwrites branch k's 3-tuple without resorting --
// callers resort once after writing a whole update batch (update_values).
func (t *TreeEvaluation) setSortValue(k state.BranchKey, v BranchSortValue) {
	if _, existed := t.sortedByValue[k]; !existed {
		t.order = append(t.order, sortedBranch{Key: k, Value: v})
	} else {
		for i := range t.order {
			if t.order[i].Key == k {
				t.order[i].Value = v
				break
			}
		}
	}
	t.sortedByValue[k] = v
}

// resort re-sorts the order slice ascending by BranchSortValue.
func (t *TreeEvaluation) resort() {
	order := t.order
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 && order[j].Value.Less(order[j-1].Value) {
			order[j], order[j-1] = order[j-1], order[j]
			j--
		}
	}
}

// IndexVariant selects which of the three exploration-index priority
// functions a search run computes. The set is closed at configuration time
// (spec.md §9 design note) -- no open hierarchy of variants.
type IndexVariant int

const (
	IndexNone IndexVariant = iota
	IndexMinGlobalChange
	IndexMinLocalChange
	IndexRecurZipf
)

// Interval is a closed-or-open-ended numeric interval used by MinLocalChange.
// Open ends are represented with ±Inf (math32.Inf).
type Interval struct {
	Min, Max float32
}

// FullInterval returns (−∞, +∞).
func FullInterval() Interval {
	return Interval{Min: math32.Inf(-1), Max: math32.Inf(1)}
}

// Empty reports whether the interval has no points (Min > Max).
func (iv Interval) Empty() bool { return iv.Min > iv.Max }

// Distance returns 0 when v is inside iv, else the signed excess beyond
// the nearer bound.
func (iv Interval) Distance(v float32) float32 {
	switch {
	case v < iv.Min:
		return iv.Min - v
	case v > iv.Max:
		return v - iv.Max
	default:
		return 0
	}
}

// Intersect returns the intersection of iv and other.
func (iv Interval) Intersect(other Interval) Interval {
	min := iv.Min
	if other.Min > min {
		min = other.Min
	}
	max := iv.Max
	if other.Max < max {
		max = other.Max
	}
	return Interval{Min: min, Max: max}
}

// ExplorationIndexData is the tagged-union record described in spec.md
// §3/§9: one Variant is configured per search, and only that variant's
// fields are meaningful. The "depth-extended" flavour layers
// MaxDepthOfDescendants onto any variant rather than via inheritance.
type ExplorationIndexData struct {
	Variant  IndexVariant
	indexSet bool
	Index    float32

	// MinGlobalChange fields.
	MinPathValue float32
	MaxPathValue float32

	// MinLocalChange fields.
	LocalInterval Interval

	// RecurZipf fields.
	ZipfFactoredProbability float32

	// Depth-extended flavour, layered on any variant.
	DepthExtended         bool
	MaxDepthOfDescendants int
}

func newExplorationIndexData(variant IndexVariant, depthExtended bool) *ExplorationIndexData {
	return &ExplorationIndexData{Variant: variant, DepthExtended: depthExtended}
}

// HasIndex reports whether Index has been computed yet.
func (e *ExplorationIndexData) HasIndex() bool { return e.indexSet }

// SetIndex writes Index and marks it as set.
func (e *ExplorationIndexData) SetIndex(v float32) {
	e.Index = v
	e.indexSet = true
}

// AlgorithmNode wraps one TreeNode plus its co-owned TreeEvaluation,
// ExplorationIndexData, and (optional) evaluator-facing Representation.
type AlgorithmNode struct {
	Node           *TreeNode
	Evaluation     *TreeEvaluation
	Index          *ExplorationIndexData
	Representation state.Representation
}

func newAlgorithmNode(id int64, depth int, s state.State, variant IndexVariant, depthExtended bool) *AlgorithmNode {
	return &AlgorithmNode{
		Node:       newTreeNode(id, depth, s),
		Evaluation: newTreeEvaluation(),
		Index:      newExplorationIndexData(variant, depthExtended),
	}
}

// Turn is a shorthand for Node.State.Turn().
func (n *AlgorithmNode) Turn() state.Color { return n.Node.State.Turn() }

// SubjectiveValueOf returns valueWhite as seen by the side to move turn:
// unchanged for WHITE, negated for BLACK (glossary: "Subjective value").
func SubjectiveValueOf(turn state.Color, valueWhite float32) float32 {
	if turn == state.White {
		return valueWhite
	}
	return -valueWhite
}

// Evaluate returns this node's current board evaluation: a forced outcome
// if over_event is set, else a floating minmax estimate.
func (n *AlgorithmNode) Evaluate() state.BoardEvaluation {
	if n.Evaluation.OverEvent.IsOver() {
		line := make([]state.BranchKey, len(n.Evaluation.BestBranchSequence))
		copy(line, n.Evaluation.BestBranchSequence)
		return state.ForcedOutcome{Outcome: n.Evaluation.OverEvent, Line: line}
	}
	return state.FloatingEvaluation{ValueWhite: n.Evaluation.MinmaxValueWhite}
}

// String renders a short human-readable dump of the node: id, depth, value,
// over status, and best line -- ported from the teacher's node Format
// helper and the Python node_minmax_evaluation print_info routine.
func (n *AlgorithmNode) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "node#%d depth=%d", n.Node.ID, n.Node.Depth)
	if n.Evaluation.hasMinmaxValue {
		fmt.Fprintf(&b, " value=%.4f", n.Evaluation.MinmaxValueWhite)
	}
	if n.Evaluation.OverEvent.IsOver() {
		fmt.Fprintf(&b, " over=%s", n.Evaluation.OverEvent)
	}
	if len(n.Evaluation.BestBranchSequence) > 0 {
		names := make([]string, len(n.Evaluation.BestBranchSequence))
		for i, k := range n.Evaluation.BestBranchSequence {
			names[i] = n.Node.State.BranchName(k)
		}
		fmt.Fprintf(&b, " line=[%s]", strings.Join(names, " "))
	}
	return b.String()
}
