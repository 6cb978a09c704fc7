package branchsearch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vireo/branchsearch/games/tictactoe"
	"github.com/vireo/branchsearch/state"
	"github.com/vireo/branchsearch/tree"
)

func TestRecommendEndToEndAgainstTicTacToe(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BranchCountLimit = 60

	rec, err := Recommend(tictactoe.New(), 1, cfg, tictactoe.TerminalDetector{}, tictactoe.HeuristicEvaluator{}, nil)
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.NotNil(t, rec.ChosenBranch)
	require.NotEmpty(t, rec.ChosenBranchName)
	require.NotEmpty(t, rec.Policy)
	require.NotEmpty(t, rec.BranchEvals)

	var sum float64
	for _, p := range rec.Policy {
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-6)
}

func TestRecommendIsDeterministicForAFixedSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BranchCountLimit = 40

	rec1, err := Recommend(tictactoe.New(), 42, cfg, tictactoe.TerminalDetector{}, tictactoe.HeuristicEvaluator{}, nil)
	require.NoError(t, err)
	rec2, err := Recommend(tictactoe.New(), 42, cfg, tictactoe.TerminalDetector{}, tictactoe.HeuristicEvaluator{}, nil)
	require.NoError(t, err)

	require.Equal(t, rec1.ChosenBranch, rec2.ChosenBranch)
}

func TestRecommendRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BranchCountLimit = 0

	_, err := Recommend(tictactoe.New(), 1, cfg, tictactoe.TerminalDetector{}, tictactoe.HeuristicEvaluator{}, nil)
	require.Error(t, err)
}

func TestRecommendStopsImmediatelyOnAnAlreadyTerminalRoot(t *testing.T) {
	s := tictactoe.New()
	for _, mv := range []int{0, 3, 1, 4, 2} {
		_, err := s.Step(mv)
		require.NoError(t, err)
	}
	require.True(t, s.IsTerminal())

	cfg := DefaultConfig()
	rec, err := Recommend(s, 1, cfg, tictactoe.TerminalDetector{}, tictactoe.HeuristicEvaluator{}, nil)
	require.NoError(t, err)

	outcome, ok := rec.Evaluation.(state.ForcedOutcome)
	require.True(t, ok)
	require.True(t, outcome.Outcome.IsWinner(state.White))
}

func TestRecommendWithSequoolSelectorAndSoftmaxRecommender(t *testing.T) {
	cfg := Config{
		Selector:         SelectorSequool,
		SequoolCandidateMode: tree.CandidateOnlyAtDepth,
		Stopping:         StoppingBranchCount,
		BranchCountLimit: 40,
		IndexVariant:     tree.IndexMinLocalChange,
		Recommender:      RecommenderSoftmax,
		Temperature:      2,
	}
	require.True(t, cfg.IsValid())

	rec, err := Recommend(tictactoe.New(), 5, cfg, tictactoe.TerminalDetector{}, tictactoe.HeuristicEvaluator{}, nil)
	require.NoError(t, err)
	require.NotNil(t, rec.ChosenBranch)
}

func TestRecommendWithRecurZipfBaseSelectorAndBestPriority(t *testing.T) {
	cfg := Config{
		Selector:          SelectorRecurZipfBase,
		RecurZipfPriority: tree.PriorityBest,
		Stopping:          StoppingBranchCount,
		BranchCountLimit:  30,
		Recommender:       RecommenderAlmostEqualLogistic,
		Epsilon:           0.01,
	}
	require.True(t, cfg.IsValid())

	rec, err := Recommend(tictactoe.New(), 9, cfg, tictactoe.TerminalDetector{}, tictactoe.HeuristicEvaluator{}, nil)
	require.NoError(t, err)
	require.NotNil(t, rec.ChosenBranch)
}

func TestRecommendWithDepthLimitStopping(t *testing.T) {
	cfg := Config{
		Selector:    SelectorUniform,
		Stopping:    StoppingDepthLimit,
		DepthLimitK: 2,
		Recommender: RecommenderAlmostEqualLogistic,
		Epsilon:     0.01,
	}
	require.True(t, cfg.IsValid())

	rec, err := Recommend(tictactoe.New(), 3, cfg, tictactoe.TerminalDetector{}, tictactoe.HeuristicEvaluator{}, nil)
	require.NoError(t, err)
	require.NotNil(t, rec.ChosenBranch)
}
