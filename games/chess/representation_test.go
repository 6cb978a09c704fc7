package chess

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/vireo/branchsearch/nneval"
	"github.com/vireo/branchsearch/state"
)

func TestRepresentationFactoryProducesAFixedSizeVector(t *testing.T) {
	s := New()
	rep := RepresentationFactory{}.CreateFromTransition(s, nil, nil)

	features, ok := rep.([]float32)
	require.True(t, ok)
	require.Len(t, features, RepresentationSize)
	require.Equal(t, float32(1), features[boardSquares], "white to move at the starting position")
}

func TestRepresentationFactoryFlipsTurnIndicatorAfterAMove(t *testing.T) {
	s := New()
	_, err := s.Step("e2e4")
	require.NoError(t, err)

	rep := RepresentationFactory{}.CreateFromTransition(s, nil, nil)
	features := rep.([]float32)
	require.Equal(t, float32(-1), features[boardSquares], "black to move after white's first move")
}

func TestRepresentationFactoryMarksEmptySquaresWithTheSentinelValue(t *testing.T) {
	s := New()
	rep := RepresentationFactory{}.CreateFromTransition(s, nil, nil)
	features := rep.([]float32)

	var empty, occupied int
	for _, v := range features[:boardSquares] {
		switch v {
		case 0.001:
			empty++
		default:
			occupied++
		}
	}
	require.Equal(t, 32, empty, "the starting position has 32 empty squares")
	require.Equal(t, 32, occupied, "and 32 occupied ones")
}

// TestRepresentationFactoryFeedsNnevalEndToEnd proves the chess
// representation and the reference evaluator are actually wired together,
// not two unreachable pieces that merely typecheck against each other.
func TestRepresentationFactoryFeedsNnevalEndToEnd(t *testing.T) {
	s := New()
	rep := RepresentationFactory{}.CreateFromTransition(s, nil, nil)

	ev, err := nneval.NewFromSeed(nneval.DefaultConfig(RepresentationSize), 1)
	require.NoError(t, err)

	out, err := ev.EvaluateBatch([]state.EvalItem{{State: s, Representation: rep}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.GreaterOrEqual(t, out[0], float32(-1))
	require.LessOrEqual(t, out[0], float32(1))
}
