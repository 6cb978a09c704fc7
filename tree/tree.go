// Package tree implements the core search DAG: the descendant index (C1),
// the tree manager (C2), node records (C3), the direct evaluator bridge
// (C4), minimax propagation (C5), the update scheduler (C6), the
// exploration index managers (C7), and the node selectors (C8).
package tree

import "github.com/vireo/branchsearch/state"

// Tree holds the root node, the descendant index, and the two monotone
// counters spec.md §3 describes: branch_count (every edge insertion) and
// nodes_count (only novel nodes).
type Tree struct {
	Root        *AlgorithmNode
	Descendants *Descendants

	BranchCount int
	NodesCount  int

	nextID int64

	IndexVariant  IndexVariant
	DepthExtended bool
	RepFactory    state.RepresentationFactory
}

// NewTree builds a tree around root, registering it as node #1 at depth 0.
func NewTree(root state.State, variant IndexVariant, depthExtended bool, repFactory state.RepresentationFactory) *Tree {
	t := &Tree{
		Descendants:   NewDescendants(),
		IndexVariant:  variant,
		DepthExtended: depthExtended,
		RepFactory:    repFactory,
	}
	rootNode := t.newNode(0, root)
	rootNode.Index.SetIndex(0)
	if repFactory != nil {
		rootNode.Representation = repFactory.CreateFromTransition(root, nil, nil)
	}
	t.Root = rootNode
	_ = t.Descendants.Add(rootNode)
	t.NodesCount = 1
	return t
}

// newNode allocates a fresh AlgorithmNode with the next id.
func (t *Tree) newNode(depth int, s state.State) *AlgorithmNode {
	t.nextID++
	return newAlgorithmNode(t.nextID, depth, s, t.IndexVariant, t.DepthExtended)
}

// SeedRootIndex initializes the root's index bookkeeping once its direct
// value is known, matching the per-variant root rules of §4.7.
func (t *Tree) SeedRootIndex() {
	root := t.Root
	root.Index.SetIndex(0)
	switch t.IndexVariant {
	case IndexMinGlobalChange:
		v := root.Evaluation.MinmaxValueWhite
		root.Index.MinPathValue = v
		root.Index.MaxPathValue = v
	case IndexMinLocalChange:
		root.Index.LocalInterval = FullInterval()
	case IndexRecurZipf:
		root.Index.ZipfFactoredProbability = 1
	}
}
