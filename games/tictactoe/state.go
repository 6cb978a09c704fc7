// Package tictactoe is a complete, minimal state.State implementation
// used to exercise the search engine end-to-end: fanout is small enough
// that every scenario is hand-checkable, unlike a full chess position.
package tictactoe

import (
	"fmt"
	"strings"

	"github.com/vireo/branchsearch/state"
)

const boardSize = 9

// cellMark is the occupant of one cell.
type cellMark byte

const (
	empty cellMark = 0
	xMark cellMark = 'X'
	oMark cellMark = 'O'
)

// State is a 3x3 tic-tac-toe position. WHITE always plays X, BLACK always
// plays O; X moves first.
type State struct {
	board [boardSize]cellMark
	turn  state.Color
}

// New returns the empty starting position with WHITE (X) to move.
func New() *State {
	return &State{turn: state.White}
}

func markFor(c state.Color) cellMark {
	if c == state.White {
		return xMark
	}
	return oMark
}

// Tag is the board contents plus whose turn it is -- sufficient for
// transposition detection since tic-tac-toe has no move history effects.
func (s *State) Tag() state.Tag {
	var b strings.Builder
	for _, m := range s.board {
		if m == empty {
			b.WriteByte('.')
		} else {
			b.WriteByte(byte(m))
		}
	}
	b.WriteByte(byte(s.turn))
	return b.String()
}

func (s *State) Turn() state.Color { return s.turn }

// BranchKeys enumerates every empty cell index (0-8) as a branch key.
func (s *State) BranchKeys() state.BranchKeys {
	var keys []state.BranchKey
	for i, m := range s.board {
		if m == empty {
			keys = append(keys, i)
		}
	}
	return state.NewBranchKeys(keys)
}

var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func (s *State) winner() (state.Color, bool) {
	for _, line := range winLines {
		a, b, c := s.board[line[0]], s.board[line[1]], s.board[line[2]]
		if a != empty && a == b && b == c {
			if a == xMark {
				return state.White, true
			}
			return state.Black, true
		}
	}
	return state.NoColor, false
}

func (s *State) full() bool {
	for _, m := range s.board {
		if m == empty {
			return false
		}
	}
	return true
}

func (s *State) IsTerminal() bool {
	if _, won := s.winner(); won {
		return true
	}
	return s.full()
}

// BranchName renders a cell index as a human-readable coordinate.
func (s *State) BranchName(key state.BranchKey) string {
	i := key.(int)
	return fmt.Sprintf("r%dc%d", i/3, i%3)
}

// Copy returns an independent clone. includeHistory is accepted for
// contract conformance but tic-tac-toe has no history-sensitive state.
func (s *State) Copy(includeHistory bool) state.State {
	clone := *s
	return &clone
}

// Step places the current player's mark at the cell index and hands the
// turn to the opponent. Returns an error if the cell is occupied.
func (s *State) Step(key state.BranchKey) (state.StateModifications, error) {
	i := key.(int)
	if i < 0 || i >= boardSize {
		return nil, fmt.Errorf("tictactoe: cell %d out of range", i)
	}
	if s.board[i] != empty {
		return nil, fmt.Errorf("tictactoe: cell %d already occupied", i)
	}
	s.board[i] = markFor(s.turn)
	s.turn = s.turn.Opponent()
	return nil, nil
}

// String renders the board for debugging.
func (s *State) String() string {
	var b strings.Builder
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m := s.board[r*3+c]
			if m == empty {
				b.WriteByte('.')
			} else {
				b.WriteByte(byte(m))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// TerminalDetector implements state.TerminalDetector for tic-tac-toe: a
// win is worth +1/-1 white-perspective, a draw 0.
type TerminalDetector struct{}

func (TerminalDetector) CheckTerminal(s state.State) (*state.OverEvent, *float32) {
	ts := s.(*State)
	if winner, won := ts.winner(); won {
		over := state.NewWin(winner, "three-in-a-row")
		var v float32
		if winner == state.White {
			v = 1
		} else {
			v = -1
		}
		return &over, &v
	}
	if ts.full() {
		over := state.NewDraw("board-full")
		v := float32(0)
		return &over, &v
	}
	return nil, nil
}

// HeuristicEvaluator is a reference state.BatchEvaluator for non-terminal
// tic-tac-toe positions: on every line holding only one side's marks it
// adds 0.1 per mark, signed from X's perspective. Deterministic, no learned weights --
// sufficient to drive the engine's tests without nneval.
type HeuristicEvaluator struct{}

func (HeuristicEvaluator) EvaluateBatch(items []state.EvalItem) ([]float32, error) {
	out := make([]float32, len(items))
	for i, item := range items {
		ts := item.State.(*State)
		out[i] = heuristicScore(ts)
	}
	return out, nil
}

func heuristicScore(s *State) float32 {
	var score float32
	for _, line := range winLines {
		a, b, c := s.board[line[0]], s.board[line[1]], s.board[line[2]]
		xCount, oCount := 0, 0
		for _, m := range [3]cellMark{a, b, c} {
			switch m {
			case xMark:
				xCount++
			case oMark:
				oCount++
			}
		}
		if xCount > 0 && oCount == 0 {
			score += float32(xCount) * 0.1
		} else if oCount > 0 && xCount == 0 {
			score -= float32(oCount) * 0.1
		}
	}
	return score
}
