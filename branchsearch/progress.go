package branchsearch

import (
	"fmt"

	"github.com/vireo/branchsearch/tree"
)

// ProgressMonitor is C10: it gates the search loop, trims an opening
// batch to the remaining budget, and reports progress.
type ProgressMonitor interface {
	ShouldContinue(t *tree.Tree) bool
	Trim(instructions []tree.OpeningInstruction, t *tree.Tree) []tree.OpeningInstruction
	ProgressPercent(t *tree.Tree) int
	Summary(t *tree.Tree) string
}

// BranchCountLimit continues while tree.branch_count < N and the root is
// not over, trimming batches to the remaining budget.
type BranchCountLimit struct {
	N int
}

func (b BranchCountLimit) ShouldContinue(t *tree.Tree) bool {
	return t.BranchCount < b.N && !t.Root.Evaluation.OverEvent.IsOver()
}

// Trim keeps the highest-priority (tail) entries up to the remaining
// budget, dropping lower-priority entries from the front -- opening
// instructions are ordered least-priority-first (spec.md §4.8).
func (b BranchCountLimit) Trim(instructions []tree.OpeningInstruction, t *tree.Tree) []tree.OpeningInstruction {
	remaining := b.N - t.BranchCount
	if remaining < 0 {
		remaining = 0
	}
	if len(instructions) <= remaining {
		return instructions
	}
	return instructions[len(instructions)-remaining:]
}

func (b BranchCountLimit) ProgressPercent(t *tree.Tree) int {
	if b.N <= 0 {
		return 100
	}
	pct := t.BranchCount * 100 / b.N
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (b BranchCountLimit) Summary(t *tree.Tree) string {
	return fmt.Sprintf("branch_count=%d/%d nodes_count=%d", t.BranchCount, b.N, t.NodesCount)
}

// depthCursor is the interface a selector must expose for DepthLimit to
// wrap it -- only UniformSelector maintains such a cursor.
type depthCursor interface {
	CurrentDepthToExpand() int
}

// DepthLimit continues while the wrapped selector's depth cursor is below
// K and the root is not over. It never trims -- depth gates the loop, not
// the batch size.
type DepthLimit struct {
	K        int
	Selector depthCursor
}

func (d DepthLimit) ShouldContinue(t *tree.Tree) bool {
	return d.Selector.CurrentDepthToExpand() < d.K && !t.Root.Evaluation.OverEvent.IsOver()
}

func (d DepthLimit) Trim(instructions []tree.OpeningInstruction, t *tree.Tree) []tree.OpeningInstruction {
	return instructions
}

func (d DepthLimit) ProgressPercent(t *tree.Tree) int {
	if d.K <= 0 {
		return 100
	}
	pct := d.Selector.CurrentDepthToExpand() * 100 / d.K
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (d DepthLimit) Summary(t *tree.Tree) string {
	return fmt.Sprintf("depth_cursor=%d/%d nodes_count=%d", d.Selector.CurrentDepthToExpand(), d.K, t.NodesCount)
}
