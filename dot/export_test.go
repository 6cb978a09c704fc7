package dot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vireo/branchsearch/games/tictactoe"
	"github.com/vireo/branchsearch/state"
	"github.com/vireo/branchsearch/tree"
)

func TestBestLineRendersDashWhenNoBestLineIsEstablished(t *testing.T) {
	tr := tree.NewTree(tictactoe.New(), tree.IndexNone, false, nil)
	require.Equal(t, "-", bestLine(tr.Root))
}

func TestBestLineJoinsBranchNamesInOrder(t *testing.T) {
	tr := tree.NewTree(tictactoe.New(), tree.IndexNone, false, nil)

	instrs, err := tree.OpenAllBranches(tr.Root)
	require.NoError(t, err)
	expansions, _, err := tr.OpenBatch(instrs)
	require.NoError(t, err)

	var mid *tree.AlgorithmNode
	for _, exp := range expansions {
		if exp.BranchKey == 4 {
			exp.Child.Evaluation.SetDirectValue(0.9)
			exp.Child.Evaluation.BestBranchSequence = []state.BranchKey{8}
			mid = exp.Child
		} else {
			exp.Child.Evaluation.SetDirectValue(0)
		}
	}
	require.NotNil(t, mid)

	tree.Propagate(expansions)

	want := tr.Root.Node.State.BranchName(4) + ">" + mid.Node.State.BranchName(8)
	require.Equal(t, want, bestLine(tr.Root))
}

func TestNodeLabelIncludesTheBestLineSegment(t *testing.T) {
	tr := tree.NewTree(tictactoe.New(), tree.IndexNone, false, nil)
	label := nodeLabel(tr.Root)
	require.True(t, strings.Contains(label, "best=-"), label)
}

func TestRenderEmitsOneNodePerReachableState(t *testing.T) {
	tr := tree.NewTree(tictactoe.New(), tree.IndexNone, false, nil)

	instrs, err := tree.OpenAllBranches(tr.Root)
	require.NoError(t, err)
	expansions, _, err := tr.OpenBatch(instrs)
	require.NoError(t, err)
	for _, exp := range expansions {
		exp.Child.Evaluation.SetDirectValue(0)
	}
	tree.Propagate(expansions)

	out, err := Render(tr)
	require.NoError(t, err)
	require.Contains(t, out, "digraph")
	for _, exp := range expansions {
		require.Contains(t, out, exp.Child.Node.State.BranchName(exp.BranchKey))
	}
}

func TestRenderBranchAnnotatesEdgesWithPolicyProbabilities(t *testing.T) {
	tr := tree.NewTree(tictactoe.New(), tree.IndexNone, false, nil)

	instrs, err := tree.OpenAllBranches(tr.Root)
	require.NoError(t, err)
	expansions, _, err := tr.OpenBatch(instrs)
	require.NoError(t, err)
	for _, exp := range expansions {
		exp.Child.Evaluation.SetDirectValue(0)
	}

	policy := map[state.BranchKey]float64{4: 1}
	out, err := RenderBranch(tr.Root, policy)
	require.NoError(t, err)
	require.Contains(t, out, "p=1.000")
}
