package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vireo/branchsearch/state"
)

func TestNewStateIsOpenAndWhiteToMove(t *testing.T) {
	s := New()
	require.Equal(t, state.White, s.Turn())
	require.False(t, s.IsTerminal())
	require.Len(t, s.BranchKeys().All(), 9)
}

func TestStepOccupiesCellAndFlipsTurn(t *testing.T) {
	s := New()
	_, err := s.Step(4)
	require.NoError(t, err)
	require.Equal(t, state.Black, s.Turn())
	require.Len(t, s.BranchKeys().All(), 8)

	_, err = s.Step(4)
	require.Error(t, err)
}

func TestCopyIsIndependent(t *testing.T) {
	s := New()
	clone := s.Copy(true).(*State)
	_, err := clone.Step(0)
	require.NoError(t, err)
	require.False(t, s.IsTerminal())
	require.NotEqual(t, s.Tag(), clone.Tag())
}

func TestTerminalDetectorDetectsWin(t *testing.T) {
	s := New()
	for _, mv := range []int{0, 3, 1, 4, 2} {
		_, err := s.Step(mv)
		require.NoError(t, err)
	}
	require.True(t, s.IsTerminal())

	var td TerminalDetector
	over, value := td.CheckTerminal(s)
	require.NotNil(t, over)
	require.NotNil(t, value)
	require.True(t, over.IsWin())
	require.True(t, over.IsWinner(state.White))
	require.Equal(t, float32(1), *value)
}

func TestTerminalDetectorDetectsDraw(t *testing.T) {
	s := New()
	moves := []int{0, 1, 2, 4, 3, 5, 7, 6, 8}
	for _, mv := range moves {
		_, err := s.Step(mv)
		require.NoError(t, err)
	}
	require.True(t, s.IsTerminal())

	var td TerminalDetector
	over, value := td.CheckTerminal(s)
	require.NotNil(t, over)
	require.True(t, over.IsDraw())
	require.Equal(t, float32(0), *value)
}

func TestTerminalDetectorReturnsNilForOngoing(t *testing.T) {
	s := New()
	var td TerminalDetector
	over, value := td.CheckTerminal(s)
	require.Nil(t, over)
	require.Nil(t, value)
}
