// Package state defines the external collaborator contracts the search
// engine builds on: the state machine, the terminal detector, and the
// evaluator. None of these are implemented here -- they are supplied by the
// host (see games/chess and games/tictactoe for two concrete adapters).
package state

import "fmt"

// Color is the side to move or the winner of a terminal position.
type Color int8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// Tag is a hashable equality token used for transposition detection. It must
// be usable as a map key (comparable) -- strings, integers, fixed-size
// arrays and structs of comparable fields all qualify.
type Tag any

// BranchKey identifies one edge out of a state. Opaque to the core, must be
// comparable.
type BranchKey any

// StateModifications is an opaque delta produced by Step, forwarded to the
// RepresentationFactory. The core never inspects it.
type StateModifications any

// Representation is an opaque, evaluator-facing encoding of a state,
// produced incrementally by a RepresentationFactory. The core only ever
// threads it through; it never inspects it.
type Representation any

// BranchKeys enumerates the branches available from a state.
type BranchKeys interface {
	All() []BranchKey
	MoreThanOne() bool
}

// branchKeySlice is the common eager implementation of BranchKeys: branches
// are few and finite per spec.md's design notes, so laziness buys nothing.
type branchKeySlice []BranchKey

func (b branchKeySlice) All() []BranchKey   { return []BranchKey(b) }
func (b branchKeySlice) MoreThanOne() bool  { return len(b) > 1 }

// NewBranchKeys wraps a concrete slice of branch keys as BranchKeys.
func NewBranchKeys(keys []BranchKey) BranchKeys { return branchKeySlice(keys) }

// State is the opaque game/decision state the engine explores. The core
// never inspects state internals beyond this contract.
type State interface {
	// Tag is the transposition-detection equality token.
	Tag() Tag
	// Turn is the side to move next.
	Turn() Color
	// BranchKeys enumerates the branches available from this state.
	BranchKeys() BranchKeys
	// IsTerminal reports whether no further branches can be taken.
	IsTerminal() bool
	// BranchName renders a branch key for humans.
	BranchName(key BranchKey) string
	// Copy returns a deep-enough clone to be stepped independently.
	// includeHistory controls whether move/position history (used for
	// repetition detection) is duplicated too.
	Copy(includeHistory bool) State
	// Step advances this state in place along key, returning an opaque
	// delta record (or nil if the state machine has none to offer).
	Step(key BranchKey) (StateModifications, error)
}

// TerminalDetector reports whether a state is terminal and, if so, the
// authoritative evaluation for it. A non-terminal state returns (nil, nil).
// A terminal one must return both together -- an implementation returning
// only one of the two violates the contract (see ErrUnresolvableTerminal in
// package tree).
type TerminalDetector interface {
	CheckTerminal(s State) (over *OverEvent, value *float32)
}

// EvalItem is one unit of work submitted to a BatchEvaluator.
type EvalItem struct {
	State          State
	Representation Representation
}

// BatchEvaluator is the external leaf evaluator. It may internally batch
// and run on accelerated hardware, but the contract is synchronous: one
// scalar per input, same order, same length.
type BatchEvaluator interface {
	EvaluateBatch(items []EvalItem) ([]float32, error)
}

// RepresentationFactory incrementally builds an evaluator-facing
// representation from a parent's representation and a transition's
// modifications. Optional: nil means "derive the representation from
// scratch from state" is the evaluator's job instead.
type RepresentationFactory interface {
	CreateFromTransition(s State, previous Representation, modifications StateModifications) Representation
}

// TerminationReason is a free-form tag describing why a game ended
// (checkmate, stalemate, threefold repetition, resignation, ...).
type TerminationReason string

// OverEvent is the terminal resolution record of a node: unset, a win for a
// color, or a draw. Once set it never unsets and never changes (spec.md
// invariant 5).
type OverEvent struct {
	isOver  bool
	isDraw  bool
	winner  Color
	howOver TerminationReason
}

// NewWin builds a win OverEvent for winner, with the given reason.
func NewWin(winner Color, reason TerminationReason) OverEvent {
	return OverEvent{isOver: true, winner: winner, howOver: reason}
}

// NewDraw builds a draw OverEvent with the given reason.
func NewDraw(reason TerminationReason) OverEvent {
	return OverEvent{isOver: true, isDraw: true, howOver: reason}
}

func (e OverEvent) IsOver() bool { return e.isOver }
func (e OverEvent) IsDraw() bool { return e.isOver && e.isDraw }
func (e OverEvent) IsWin() bool  { return e.isOver && !e.isDraw }

// IsWinner reports whether player is the winner recorded by this event.
func (e OverEvent) IsWinner(player Color) bool {
	return e.IsWin() && e.winner == player
}

func (e OverEvent) Winner() Color                   { return e.winner }
func (e OverEvent) Reason() TerminationReason        { return e.howOver }

func (e OverEvent) String() string {
	switch {
	case !e.isOver:
		return "ongoing"
	case e.isDraw:
		return fmt.Sprintf("draw(%s)", e.howOver)
	default:
		return fmt.Sprintf("win(%s,%s)", e.winner, e.howOver)
	}
}

// BoardEvaluation is the result of evaluating a node: either a forced
// outcome (the node is over) or a floating minmax estimate.
type BoardEvaluation interface {
	isBoardEvaluation()
}

// ForcedOutcome is returned by AlgorithmNode.Evaluate when the node's
// over-event is set.
type ForcedOutcome struct {
	Outcome OverEvent
	Line    []BranchKey
}

func (ForcedOutcome) isBoardEvaluation() {}

// FloatingEvaluation is returned by AlgorithmNode.Evaluate when the node's
// outcome is not yet settled.
type FloatingEvaluation struct {
	ValueWhite float32
}

func (FloatingEvaluation) isBoardEvaluation() {}
