// Package chess adapts github.com/notnil/chess into a state.State,
// directly descended from the teacher's game/chess.go.
package chess

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/vireo/branchsearch/state"
)

// State wraps one notnil/chess.Game position.
type State struct {
	game *chess.Game
}

// New returns the standard starting position, UCI notation (matching the
// teacher's move encoding convention).
func New() *State {
	g := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	return &State{game: g}
}

func colorFrom(c chess.Color) state.Color {
	switch c {
	case chess.White:
		return state.White
	case chess.Black:
		return state.Black
	default:
		return state.NoColor
	}
}

// Tag is the position's FEN string -- transpositions (same position,
// different move order) share a tag.
func (s *State) Tag() state.Tag {
	return s.game.Position().String()
}

func (s *State) Turn() state.Color { return colorFrom(s.game.Position().Turn()) }

func (s *State) BranchKeys() state.BranchKeys {
	moves := s.game.ValidMoves()
	keys := make([]state.BranchKey, len(moves))
	for i, m := range moves {
		keys[i] = m.String()
	}
	return state.NewBranchKeys(keys)
}

func (s *State) IsTerminal() bool {
	return s.game.Outcome() != chess.NoOutcome
}

func (s *State) BranchName(key state.BranchKey) string {
	return key.(string)
}

// Copy clones the game. includeHistory controls whether the move history
// is carried along (needed for threefold-repetition detection near the
// root) or dropped in favor of a fresh game seeded from the current FEN
// (cheaper to clone, matching the teacher's Clone-from-position pattern).
func (s *State) Copy(includeHistory bool) state.State {
	if includeHistory {
		return &State{game: s.game.Clone()}
	}
	fenFn, err := chess.FEN(s.game.Position().String())
	if err != nil {
		return &State{game: s.game.Clone()}
	}
	fresh := chess.NewGame(fenFn, chess.UseNotation(chess.UCINotation{}))
	return &State{game: fresh}
}

// Step applies the move named by key (its UCI string).
func (s *State) Step(key state.BranchKey) (state.StateModifications, error) {
	moveStr, ok := key.(string)
	if !ok {
		return nil, fmt.Errorf("chess: branch key %v is not a move string", key)
	}
	if err := s.game.MoveStr(moveStr); err != nil {
		return nil, err
	}
	return nil, nil
}

// TerminalDetector implements state.TerminalDetector via chess.Game's
// outcome resolution.
type TerminalDetector struct{}

func (TerminalDetector) CheckTerminal(s state.State) (*state.OverEvent, *float32) {
	cs := s.(*State)
	outcome := cs.game.Outcome()
	if outcome == chess.NoOutcome {
		return nil, nil
	}

	reason := state.TerminationReason(cs.game.Method().String())
	switch outcome {
	case chess.Draw:
		over := state.NewDraw(reason)
		v := float32(0)
		return &over, &v
	case chess.WhiteWon:
		over := state.NewWin(state.White, reason)
		v := float32(1)
		return &over, &v
	default: // chess.BlackWon
		over := state.NewWin(state.Black, reason)
		v := float32(-1)
		return &over, &v
	}
}
