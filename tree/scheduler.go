package tree

import "github.com/vireo/branchsearch/state"

// branchKeySet is an insertion-ordered set of branch keys -- the same
// determinism discipline branches_not_over uses (spec.md §9).
type branchKeySet struct {
	set   map[state.BranchKey]struct{}
	order []state.BranchKey
}

func newBranchKeySet() *branchKeySet {
	return &branchKeySet{set: make(map[state.BranchKey]struct{})}
}

func (s *branchKeySet) add(k state.BranchKey) {
	if _, ok := s.set[k]; ok {
		return
	}
	s.set[k] = struct{}{}
	s.order = append(s.order, k)
}

func (s *branchKeySet) keys() []state.BranchKey {
	out := make([]state.BranchKey, len(s.order))
	copy(out, s.order)
	return out
}

// pendingUpdate accumulates the three notification dimensions one parent
// can receive before it is next processed: branches with an updated value,
// branches newly over, and branches whose best-branch-sequence changed.
type pendingUpdate struct {
	value      *branchKeySet
	over       *branchKeySet
	bestBranch *branchKeySet
}

func newPendingUpdate() *pendingUpdate {
	return &pendingUpdate{value: newBranchKeySet(), over: newBranchKeySet(), bestBranch: newBranchKeySet()}
}

// depthQueue holds the parents pending at one depth, FIFO by first
// notification (an arbitrary but deterministic order, per spec.md §5).
type depthQueue struct {
	order []*AlgorithmNode
	items map[*AlgorithmNode]*pendingUpdate
}

func newDepthQueue() *depthQueue {
	return &depthQueue{items: make(map[*AlgorithmNode]*pendingUpdate)}
}

func (dq *depthQueue) popFront() (*AlgorithmNode, *pendingUpdate, bool) {
	if len(dq.order) == 0 {
		return nil, nil, false
	}
	node := dq.order[0]
	dq.order = dq.order[1:]
	pu := dq.items[node]
	delete(dq.items, node)
	return node, pu, true
}

// Scheduler is the update scheduler (C6): a depth-indexed multimap from
// parent to pending updates, with an efficient pop-deepest-depth
// primitive. Grandparents only ever receive notifications at a shallower
// depth than the node currently being processed, so popping strictly
// bottom-up guarantees children finish before parents.
type Scheduler struct {
	byDepth  map[int]*depthQueue
	maxDepth *int
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{byDepth: make(map[int]*depthQueue)}
}

func (s *Scheduler) enqueue(parent *AlgorithmNode, k state.BranchKey, value, over, bestBranch bool) {
	depth := parent.Node.Depth
	dq, ok := s.byDepth[depth]
	if !ok {
		dq = newDepthQueue()
		s.byDepth[depth] = dq
	}
	pu, ok := dq.items[parent]
	if !ok {
		pu = newPendingUpdate()
		dq.items[parent] = pu
		dq.order = append(dq.order, parent)
	}
	if value {
		pu.value.add(k)
	}
	if over {
		pu.over.add(k)
	}
	if bestBranch {
		pu.bestBranch.add(k)
	}
	if s.maxDepth == nil || depth > *s.maxDepth {
		s.maxDepth = intPtr(depth)
	}
}

// Seed enqueues one new-child notification per expansion, into that
// expansion's specific parent under its specific branch key -- not every
// historical parent of the child, since a child gaining one new parent
// does not change what its other existing parents already know.
func (s *Scheduler) Seed(expansions []TreeExpansion) {
	for _, exp := range expansions {
		s.enqueue(exp.Parent, exp.BranchKey, true, true, true)
	}
}

func (s *Scheduler) popDeepest() (*AlgorithmNode, *pendingUpdate, bool) {
	if s.maxDepth == nil {
		return nil, nil, false
	}
	depth := *s.maxDepth
	dq := s.byDepth[depth]
	node, pu, ok := dq.popFront()
	if len(dq.order) == 0 {
		delete(s.byDepth, depth)
		newMax := -1
		for d := range s.byDepth {
			if d > newMax {
				newMax = d
			}
		}
		if newMax == -1 {
			s.maxDepth = nil
		} else {
			s.maxDepth = intPtr(newMax)
		}
	}
	return node, pu, ok
}

// Propagate drains the scheduler: for each popped parent it applies
// update_over then minmax_update, and on any of (newly_over, value_changed,
// best_line_changed) merges a fresh notification into every grandparent,
// per spec.md §4.6.
func Propagate(expansions []TreeExpansion) {
	s := NewScheduler()
	s.Seed(expansions)

	for {
		parent, pu, ok := s.popDeepest()
		if !ok {
			break
		}

		newlyOver := UpdateOver(parent, pu.over.keys())
		valueChanged, bestLineChanged := MinmaxUpdate(parent, pu.value.keys())
		// Index-update mode (spec.md §4.6): a depth-extended node's
		// max_depth_of_descendants is recomputed bottom-up alongside value
		// propagation, and a change here also forces grandparent
		// recomputation even if value/over/best-line didn't move.
		indexChanged := updateMaxDepthOfDescendants(parent)

		if !(newlyOver || valueChanged || bestLineChanged || indexChanged) {
			continue
		}
		for grandparent, branchKey := range parent.Node.Parents {
			s.enqueue(grandparent, branchKey, valueChanged || indexChanged, newlyOver, bestLineChanged)
		}
	}
}
