package tree

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/vireo/branchsearch/state"
)

// discountD is the near-1 depth discount applied to raw evaluator scalars,
// per spec.md §4.4: processed = (1/D)^depth * raw. The factor grows
// slightly with depth, so equal raw values at different depths differ.
const discountD = 0.99999999

// EvaluatorBridge is the direct evaluator bridge (C4): it queues leaves,
// resolves terminal states via the external TerminalDetector, and invokes
// the external BatchEvaluator on whatever remains.
type EvaluatorBridge struct {
	terminalDetector state.TerminalDetector
	evaluator        state.BatchEvaluator

	terminalNodes    []*AlgorithmNode
	nonterminalNodes []*AlgorithmNode
	enqueued         map[*AlgorithmNode]bool
}

// NewEvaluatorBridge wires the external collaborators.
func NewEvaluatorBridge(td state.TerminalDetector, ev state.BatchEvaluator) *EvaluatorBridge {
	return &EvaluatorBridge{
		terminalDetector: td,
		evaluator:        ev,
		enqueued:         make(map[*AlgorithmNode]bool),
	}
}

// TerminalNodes returns the nodes resolved terminal since the last Reset.
func (b *EvaluatorBridge) TerminalNodes() []*AlgorithmNode { return b.terminalNodes }

// NonterminalNodes returns the nodes queued for batch evaluation since the
// last Reset.
func (b *EvaluatorBridge) NonterminalNodes() []*AlgorithmNode { return b.nonterminalNodes }

// Enqueue checks node for termination and routes it to the terminal or
// nonterminal list. Enqueuing an already-evaluated node is a no-op error
// (ErrAlreadyEvaluated), matching the idempotence precondition of §4.4.
func (b *EvaluatorBridge) Enqueue(node *AlgorithmNode) error {
	if node.Evaluation.HasDirectValue() || b.enqueued[node] {
		return ErrAlreadyEvaluated
	}
	b.enqueued[node] = true

	over, value := b.terminalDetector.CheckTerminal(node.Node.State)
	switch {
	case over == nil && value == nil:
		b.nonterminalNodes = append(b.nonterminalNodes, node)
	case over != nil && value != nil:
		node.Evaluation.OverEvent = *over
		node.Evaluation.SetDirectValue(*value)
		b.terminalNodes = append(b.terminalNodes, node)
	default:
		return errors.WithStack(ErrUnresolvableTerminal)
	}
	return nil
}

// Drain invokes the external batch evaluator over every queued nonterminal
// node, depth-discounts each returned scalar, and writes it as both the
// direct value and the initial minmax value.
func (b *EvaluatorBridge) Drain() error {
	if len(b.nonterminalNodes) == 0 {
		return nil
	}
	items := make([]state.EvalItem, len(b.nonterminalNodes))
	for i, n := range b.nonterminalNodes {
		items[i] = state.EvalItem{State: n.Node.State, Representation: n.Representation}
	}

	scalars, err := b.evaluator.EvaluateBatch(items)
	if err != nil {
		return errors.WithStack(err)
	}
	if len(scalars) != len(items) {
		return errors.WithStack(ErrEvaluatorFailure)
	}

	for i, n := range b.nonterminalNodes {
		discount := math32.Pow(1/float32(discountD), float32(n.Node.Depth))
		n.Evaluation.SetDirectValue(discount * scalars[i])
	}
	return nil
}

// Reset clears the queues, ready for the next batch. Enqueued-node tracking
// is reset too: a node evaluated in a prior batch is still guarded by its
// own HasDirectValue check in Enqueue.
func (b *EvaluatorBridge) Reset() {
	b.terminalNodes = nil
	b.nonterminalNodes = nil
	b.enqueued = make(map[*AlgorithmNode]bool)
}
