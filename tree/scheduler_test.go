package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vireo/branchsearch/games/tictactoe"
	"github.com/vireo/branchsearch/state"
)

func TestBranchKeySetDedupsAndPreservesOrder(t *testing.T) {
	s := newBranchKeySet()
	s.add(2)
	s.add(1)
	s.add(2)
	require.Equal(t, []state.BranchKey{2, 1}, s.keys())
}

func TestSchedulerPopsDeepestDepthFirst(t *testing.T) {
	s := NewScheduler()
	shallow := newAlgorithmNode(1, 0, tictactoe.New(), IndexNone, false)
	deep := newAlgorithmNode(2, 3, tictactoe.New(), IndexNone, false)
	mid := newAlgorithmNode(3, 1, tictactoe.New(), IndexNone, false)

	s.enqueue(shallow, 0, true, false, false)
	s.enqueue(deep, 0, true, false, false)
	s.enqueue(mid, 0, true, false, false)

	n1, _, ok := s.popDeepest()
	require.True(t, ok)
	require.Equal(t, deep, n1)

	n2, _, ok := s.popDeepest()
	require.True(t, ok)
	require.Equal(t, mid, n2)

	n3, _, ok := s.popDeepest()
	require.True(t, ok)
	require.Equal(t, shallow, n3)

	_, _, ok = s.popDeepest()
	require.False(t, ok)
}

func TestSchedulerEnqueueMergesPendingDimensions(t *testing.T) {
	s := NewScheduler()
	node := newAlgorithmNode(1, 0, tictactoe.New(), IndexNone, false)
	s.enqueue(node, 0, true, false, false)
	s.enqueue(node, 1, false, true, false)

	_, pu, ok := s.popDeepest()
	require.True(t, ok)
	require.Equal(t, []state.BranchKey{0}, pu.value.keys())
	require.Equal(t, []state.BranchKey{1}, pu.over.keys())
}

// TestPropagateAdoptsTheBestFullyOpenedChild opens every one of root's
// branches (all_branches_generated = true, the unambiguous case), gives one
// child a strictly better white-value than the rest, and checks Propagate
// both updates root's minmax value to that child's and commits its branch
// as best_branch_sequence.
func TestPropagateAdoptsTheBestFullyOpenedChild(t *testing.T) {
	tr := NewTree(tictactoe.New(), IndexNone, false, nil)

	instrs, err := OpenAllBranches(tr.Root)
	require.NoError(t, err)
	withCreation, _, err := tr.OpenBatch(instrs)
	require.NoError(t, err)
	require.Len(t, withCreation, 9)

	for _, exp := range withCreation {
		if exp.BranchKey == 4 {
			exp.Child.Evaluation.SetDirectValue(0.9)
			exp.Child.Evaluation.BestBranchSequence = []state.BranchKey{8}
		} else {
			exp.Child.Evaluation.SetDirectValue(0)
		}
	}

	Propagate(withCreation)

	require.True(t, tr.Root.Evaluation.HasMinmaxValue())
	require.Equal(t, float32(0.9), tr.Root.Evaluation.MinmaxValueWhite)
	require.Equal(t, []state.BranchKey{4, 8}, tr.Root.Evaluation.BestBranchSequence)
}

// TestPropagatePropagatesThroughGrandparent builds root -> mid -> leaf with
// mid fully opened (all 8 of its replies), and
// checks the leaf's value reaches root two generations up.
func TestPropagatePropagatesThroughGrandparent(t *testing.T) {
	tr := NewTree(tictactoe.New(), IndexNone, false, nil)

	rootInstrs, err := OpenAllBranches(tr.Root)
	require.NoError(t, err)
	rootExpansions, _, err := tr.OpenBatch(rootInstrs)
	require.NoError(t, err)

	var mid *AlgorithmNode
	for _, exp := range rootExpansions {
		if exp.BranchKey == 4 {
			mid = exp.Child
		} else {
			exp.Child.Evaluation.SetDirectValue(0)
		}
	}
	require.NotNil(t, mid)

	midInstrs, err := OpenAllBranches(mid)
	require.NoError(t, err)
	midExpansions, _, err := tr.OpenBatch(midInstrs)
	require.NoError(t, err)

	var leafBranch state.BranchKey
	for _, exp := range midExpansions {
		if exp.BranchKey == 0 {
			exp.Child.Evaluation.SetDirectValue(0.9)
			leafBranch = exp.BranchKey
		} else {
			exp.Child.Evaluation.SetDirectValue(1)
		}
	}

	Propagate(rootExpansions)
	Propagate(midExpansions)

	require.Equal(t, float32(0.9), mid.Evaluation.MinmaxValueWhite, "mid is BLACK to move and all its replies were opened: min wins, 0.9 beats 1")
	require.Equal(t, float32(0.9), tr.Root.Evaluation.MinmaxValueWhite)
	require.Equal(t, []state.BranchKey{4, leafBranch}, tr.Root.Evaluation.BestBranchSequence)
}

// TestPropagateMaintainsMaxDepthOfDescendantsForDepthExtendedNodes builds
// root -> mid -> leaf with depth-extended indices enabled and checks that
// Propagate alone -- with no RefreshIndices call -- bubbles
// max_depth_of_descendants up from each newly opened generation, per
// spec.md §4.6's index-update mode. This is the production path
// RandomAllSelector.PickDepth depends on; it must not require a test to
// hand-set the field for the counter to be non-zero.
func TestPropagateMaintainsMaxDepthOfDescendantsForDepthExtendedNodes(t *testing.T) {
	tr := NewTree(tictactoe.New(), IndexNone, true, nil)
	require.Equal(t, 0, tr.Root.Index.MaxDepthOfDescendants)

	rootInstrs, err := OpenAllBranches(tr.Root)
	require.NoError(t, err)
	rootExpansions, _, err := tr.OpenBatch(rootInstrs)
	require.NoError(t, err)

	var mid *AlgorithmNode
	for _, exp := range rootExpansions {
		exp.Child.Evaluation.SetDirectValue(0)
		if exp.BranchKey == 4 {
			mid = exp.Child
		}
	}
	require.NotNil(t, mid)

	Propagate(rootExpansions)
	require.Equal(t, 1, tr.Root.Index.MaxDepthOfDescendants, "one generation of opened children below root")

	midInstrs, err := OpenAllBranches(mid)
	require.NoError(t, err)
	midExpansions, _, err := tr.OpenBatch(midInstrs)
	require.NoError(t, err)
	for _, exp := range midExpansions {
		exp.Child.Evaluation.SetDirectValue(0)
	}

	Propagate(midExpansions)
	require.Equal(t, 1, mid.Index.MaxDepthOfDescendants)
	require.Equal(t, 2, tr.Root.Index.MaxDepthOfDescendants, "the second generation bubbles two levels up to root")
}
