package chess

import (
	"github.com/notnil/chess"

	"github.com/vireo/branchsearch/state"
)

// boardSquares is the flat square count of an 8x8 board.
const boardSquares = 64

// RepresentationSize is the length of every []float32 this package's
// RepresentationFactory produces -- one entry per square plus a trailing
// turn indicator, wiring straight into nneval.DefaultConfig's input size.
const RepresentationSize = boardSquares + 1

// RepresentationFactory encodes a chess position as a flat []float32
// feature vector for nneval's forward pass: one entry per square (an
// empty square gets the teacher's InputEncoder sentinel of 0.001 rather
// than a bare zero, so "empty" stays distinguishable from "clipped
// activation"; an occupied one gets its notnil/chess.Piece ordinal) plus
// a trailing +1/-1 turn indicator. Adapted from the teacher's
// game/encoding.go InputEncoder, dropping its duplicated full-board
// player-color layer in favor of a single trailing scalar -- the
// network only ever needs to know whose turn it is once, not per square.
type RepresentationFactory struct{}

// CreateFromTransition implements state.RepresentationFactory. It derives
// the representation from scratch from s, ignoring previous/modifications
// -- re-encoding a 65-entry vector is cheap enough that no incremental
// update is worth the bookkeeping.
func (RepresentationFactory) CreateFromTransition(s state.State, _ state.Representation, _ state.StateModifications) state.Representation {
	cs := s.(*State)
	features := make([]float32, RepresentationSize)
	board := cs.game.Position().Board()
	for sq := 0; sq < boardSquares; sq++ {
		piece := board.Piece(chess.Square(sq))
		if piece == chess.NoPiece {
			features[sq] = 0.001
		} else {
			features[sq] = float32(piece)
		}
	}
	if cs.Turn() == state.White {
		features[boardSquares] = 1
	} else {
		features[boardSquares] = -1
	}
	return features
}
