package tree

import "github.com/pkg/errors"

// Sentinel error kinds, per spec.md §7. BudgetExhausted is informational
// and never returned as an error -- callers observe it by the stopping
// criterion declining to continue, not by an error value.
var (
	// ErrOutOfRange is returned by Descendants.Add when asked to insert at
	// a depth that would leave a gap in the contiguous depth range.
	ErrOutOfRange = errors.New("descendant index: depth out of range")

	// ErrInvalidTransition means State.Step or State.Copy violated its
	// contract. Fatal to the search.
	ErrInvalidTransition = errors.New("state machine: invalid transition")

	// ErrEvaluatorFailure means the batch evaluator returned a different
	// number of scalars than items submitted. Fatal.
	ErrEvaluatorFailure = errors.New("evaluator: scalar count mismatch")

	// ErrInconsistentIndex means an exploration-index variant was queried
	// at a node carrying a different variant's record. Indicates a
	// configuration bug. Fatal.
	ErrInconsistentIndex = errors.New("exploration index: variant mismatch")

	// ErrEmptyExpansion means a selector proposed opening a node with no
	// remaining unopened branches. Logged and skipped, not fatal.
	ErrEmptyExpansion = errors.New("node selector: no unopened branches left")

	// ErrUnresolvableTerminal means the terminal detector reported
	// terminal without an accompanying evaluation. Fatal.
	ErrUnresolvableTerminal = errors.New("terminal detector: missing evaluation for terminal state")

	// ErrAlreadyEvaluated is returned by Enqueue for a node that already
	// has a direct value or is already queued in the current batch; the
	// node is not queued a second time.
	ErrAlreadyEvaluated = errors.New("evaluator bridge: node already evaluated")
)
