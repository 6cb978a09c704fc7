package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vireo/branchsearch/games/tictactoe"
	"github.com/vireo/branchsearch/state"
)

// buildIndexTestTree opens every one of root's branches and assigns each
// child the value given for its branch key in values (0 if absent), then records
// their sort order so RefreshIndices has ranks to work with.
func buildIndexTestTree(t *testing.T, variant IndexVariant, values map[int]float32) *Tree {
	t.Helper()
	tr := NewTree(tictactoe.New(), variant, false, nil)
	instrs, err := OpenAllBranches(tr.Root)
	require.NoError(t, err)
	expansions, _, err := tr.OpenBatch(instrs)
	require.NoError(t, err)

	var keys []state.BranchKey
	for _, exp := range expansions {
		k := exp.BranchKey.(int)
		if v, ok := values[k]; ok {
			exp.Child.Evaluation.SetDirectValue(v)
		} else {
			exp.Child.Evaluation.SetDirectValue(0)
		}
		keys = append(keys, exp.BranchKey)
	}
	UpdateValues(tr.Root, keys)
	UpdateValueMinmax(tr.Root)
	return tr
}

func TestMinGlobalChangeRootSeedsFromMinmaxValue(t *testing.T) {
	tr := buildIndexTestTree(t, IndexMinGlobalChange, map[int]float32{4: 0.9, 0: 0.1, 1: 0.2})
	tr.Root.Evaluation.SetMinmaxValue(0.9)

	require.NoError(t, RefreshIndices(tr, MinGlobalChangeManager{}))

	require.True(t, tr.Root.Index.HasIndex())
	require.Equal(t, float32(0), tr.Root.Index.Index)
	require.Equal(t, float32(0.9), tr.Root.Index.MinPathValue)
	require.Equal(t, float32(0.9), tr.Root.Index.MaxPathValue)

	child4 := tr.Root.Node.BranchesChildren[4]
	require.True(t, child4.Index.HasIndex())
}

func TestMinGlobalChangeMergeNarrowsOnRevisit(t *testing.T) {
	tr := buildIndexTestTree(t, IndexMinGlobalChange, map[int]float32{4: 0.9})
	// Root's own path value diverges from the child's (0.5 vs 0.9) so the
	// first pass produces a genuinely non-degenerate interval.
	tr.Root.Evaluation.SetMinmaxValue(0.5)
	mgr := MinGlobalChangeManager{}
	require.NoError(t, RefreshIndices(tr, mgr))

	child := tr.Root.Node.BranchesChildren[4]
	firstMax := child.Index.MaxPathValue
	firstMin := child.Index.MinPathValue
	require.Equal(t, float32(0.9), firstMax)
	require.Equal(t, float32(0.5), firstMin)

	// A second merge, simulating a revisit via another parent with a
	// tighter path range, must narrow rather than widen (spec.md §9).
	tr.Root.Index.MinPathValue = 0.6
	tr.Root.Index.MaxPathValue = 0.95
	mgr.UpdateNodeIndex(nodeIndexContext{Parent: tr.Root, Child: child, ChildRank: 0})

	require.LessOrEqual(t, child.Index.MaxPathValue, firstMax)
	require.Greater(t, child.Index.MinPathValue, firstMin, "the lower bound must tighten upward on merge")
}

func TestRecurZipfRootAndRankWeighting(t *testing.T) {
	tr := buildIndexTestTree(t, IndexRecurZipf, map[int]float32{4: 0.9, 0: 0.1})
	require.NoError(t, RefreshIndices(tr, RecurZipfManager{}))

	require.Equal(t, float32(1), tr.Root.Index.ZipfFactoredProbability)

	head, _, ok := tr.Root.Evaluation.HeadBranch()
	require.True(t, ok)
	headChild := tr.Root.Node.BranchesChildren[head]
	require.True(t, headChild.Index.HasIndex())
	// Rank 0 (the head) gets zipf weight 1, the largest of any sibling, so
	// its (negated) index is the smallest -- smaller is better.
	for k, child := range tr.Root.Node.BranchesChildren {
		if k == head {
			continue
		}
		require.LessOrEqual(t, headChild.Index.Index, child.Index.Index+1e-6)
	}
}

func TestMinLocalChangeSingleChildInherits(t *testing.T) {
	tr := NewTree(tictactoe.New(), IndexMinLocalChange, false, nil)
	exp, err := tr.Open(tr.Root, 4)
	require.NoError(t, err)
	UpdateValues(tr.Root, []state.BranchKey{4})
	tr.Root.Index.LocalInterval = FullInterval()
	tr.Root.Index.SetIndex(0)

	require.NoError(t, RefreshIndices(tr, MinLocalChangeManager{}))

	require.Equal(t, tr.Root.Index.Index, exp.Child.Index.Index)
	require.Equal(t, tr.Root.Index.LocalInterval, exp.Child.Index.LocalInterval)
}

func TestMinLocalChangeBestVsSecondBestIntervals(t *testing.T) {
	tr := buildIndexTestTree(t, IndexMinLocalChange, map[int]float32{4: 0.9, 0: 0.5})
	require.NoError(t, RefreshIndices(tr, MinLocalChangeManager{}))

	head, _, ok := tr.Root.Evaluation.HeadBranch()
	require.True(t, ok)
	best := tr.Root.Node.BranchesChildren[head]
	require.True(t, best.Index.HasIndex())
	// The best child's local interval floor is the second-best's value
	// (WHITE to move): it must stay the head only while its value exceeds
	// that bound.
	require.Equal(t, float32(0.5), best.Index.LocalInterval.Min)
}

func TestNewIndexManagerReturnsNilForIndexNone(t *testing.T) {
	require.Nil(t, NewIndexManager(IndexNone))
	require.NotNil(t, NewIndexManager(IndexMinGlobalChange))
	require.NotNil(t, NewIndexManager(IndexMinLocalChange))
	require.NotNil(t, NewIndexManager(IndexRecurZipf))
}

// TestRefreshIndicesRejectsAMismatchedManager builds a tree configured for
// one variant and refreshes it with another manager's implementation --
// a configuration bug RefreshIndices must catch rather than silently
// computing nonsense indices against the wrong record fields.
func TestRefreshIndicesRejectsAMismatchedManager(t *testing.T) {
	tr := buildIndexTestTree(t, IndexMinGlobalChange, map[int]float32{4: 0.9})
	err := RefreshIndices(tr, RecurZipfManager{})
	require.ErrorIs(t, err, ErrInconsistentIndex)
}
