package tree

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/vireo/branchsearch/state"
)

// nodeIndexContext is the data a variant needs to recompute one child's
// index: the parent, the child, the child's rank in the parent's
// descending-by-value order, and (for MinLocalChange) the parent's best
// and second-best children.
type nodeIndexContext struct {
	Parent     *AlgorithmNode
	Child      *AlgorithmNode
	ChildRank  int
	Best       *AlgorithmNode
	SecondBest *AlgorithmNode
}

// IndexManager is one of the three interchangeable exploration-index
// priority functions (C7, spec.md §4.7). The set is closed at
// configuration time.
type IndexManager interface {
	UpdateRootIndex(root *AlgorithmNode)
	UpdateNodeIndex(ctx nodeIndexContext)
	Variant() IndexVariant
}

// RefreshIndices performs the bulk refresh described in spec.md §4.7: the
// root index is (re)seeded, then depths are walked ascending and each
// parent's children are updated in descending-by-value order. Returns
// ErrInconsistentIndex if the tree's nodes carry a different variant's
// index record than manager computes -- a configuration bug, since every
// node in one tree is built with a single IndexVariant (tree.go's
// newNode), so a mismatch here can only mean the wrong manager was passed.
func RefreshIndices(t *Tree, manager IndexManager) error {
	if t.Root.Index.Variant != manager.Variant() {
		return errors.WithStack(ErrInconsistentIndex)
	}
	manager.UpdateRootIndex(t.Root)
	for _, depth := range t.Descendants.Depths() {
		for _, parent := range t.Descendants.IterateAt(depth) {
			keys := parent.Evaluation.OrderedBranchKeys()
			if len(keys) == 0 {
				continue
			}
			best := parent.Node.BranchesChildren[keys[0]]
			var secondBest *AlgorithmNode
			if len(keys) > 1 {
				secondBest = parent.Node.BranchesChildren[keys[1]]
			}
			for rank, k := range keys {
				child := parent.Node.BranchesChildren[k]
				manager.UpdateNodeIndex(nodeIndexContext{
					Parent: parent, Child: child, ChildRank: rank,
					Best: best, SecondBest: secondBest,
				})
			}
		}
	}
	return nil
}

// MinGlobalChangeManager is variant A: the index estimates how much
// uniform perturbation of values along a root-to-node path would make the
// node best.
type MinGlobalChangeManager struct{}

func (MinGlobalChangeManager) Variant() IndexVariant { return IndexMinGlobalChange }

func (MinGlobalChangeManager) UpdateRootIndex(root *AlgorithmNode) {
	root.Index.SetIndex(0)
	v := root.Evaluation.MinmaxValueWhite
	root.Index.MinPathValue = v
	root.Index.MaxPathValue = v
}

func (MinGlobalChangeManager) UpdateNodeIndex(ctx nodeIndexContext) {
	child := ctx.Child
	childValue := child.Evaluation.MinmaxValueWhite
	minPath := minf32(childValue, ctx.Parent.Index.MinPathValue)
	maxPath := maxf32(childValue, ctx.Parent.Index.MaxPathValue)
	localIndex := math32.Abs(maxPath-minPath) / 2

	if !child.Index.HasIndex() {
		child.Index.SetIndex(localIndex)
		child.Index.MinPathValue = minPath
		child.Index.MaxPathValue = maxPath
		return
	}
	child.Index.SetIndex(minf32(child.Index.Index, localIndex))
	// Merge narrows the path-value interval -- spec.md §9 preserves this
	// counterintuitive direction rather than widening it.
	child.Index.MaxPathValue = minf32(maxPath, child.Index.MaxPathValue)
	child.Index.MinPathValue = maxf32(minPath, child.Index.MinPathValue)
}

// RecurZipfManager is variant B: the index folds a Zipf-weighted rank
// probability with an inverse-depth factor, negated so smaller is better.
type RecurZipfManager struct{}

func (RecurZipfManager) Variant() IndexVariant { return IndexRecurZipf }

func (RecurZipfManager) UpdateRootIndex(root *AlgorithmNode) {
	root.Index.SetIndex(0)
	root.Index.ZipfFactoredProbability = 1
}

func (RecurZipfManager) UpdateNodeIndex(ctx nodeIndexContext) {
	child := ctx.Child
	childZipf := 1 / float32(ctx.ChildRank+1)
	childZFactored := childZipf * ctx.Parent.Index.ZipfFactoredProbability
	inverseDepth := 1 / float32(child.Node.Depth+1)
	localIndex := -childZFactored * inverseDepth

	if !child.Index.HasIndex() {
		child.Index.SetIndex(localIndex)
		child.Index.ZipfFactoredProbability = childZFactored
		return
	}
	child.Index.SetIndex(minf32(child.Index.Index, localIndex))
	child.Index.ZipfFactoredProbability = minf32(child.Index.ZipfFactoredProbability, childZFactored)
}

// MinLocalChangeManager is variant C: the index is the distance from the
// child's value to the interval of values that would keep the current
// best-branch ranking intact, intersected down the root-to-node path.
type MinLocalChangeManager struct{}

func (MinLocalChangeManager) Variant() IndexVariant { return IndexMinLocalChange }

func (MinLocalChangeManager) UpdateRootIndex(root *AlgorithmNode) {
	root.Index.SetIndex(0)
	root.Index.LocalInterval = FullInterval()
}

func (MinLocalChangeManager) UpdateNodeIndex(ctx nodeIndexContext) {
	parent, child := ctx.Parent, ctx.Child

	if ctx.SecondBest == nil {
		// Parent has a single child branch: inherit directly.
		child.Index.SetIndex(parent.Index.Index)
		child.Index.LocalInterval = parent.Index.LocalInterval
		return
	}

	t := parent.Turn()
	v1 := ctx.Best.Evaluation.MinmaxValueWhite
	v2 := ctx.SecondBest.Evaluation.MinmaxValueWhite
	isBest := child == ctx.Best

	var local Interval
	switch {
	case t == state.White && isBest:
		local = Interval{Min: v2, Max: math32.Inf(1)}
	case t == state.White && !isBest:
		local = Interval{Min: v1, Max: math32.Inf(1)}
	case t != state.White && isBest:
		local = Interval{Min: math32.Inf(-1), Max: v2}
	default:
		local = Interval{Min: math32.Inf(-1), Max: v1}
	}

	inter := local.Intersect(parent.Index.LocalInterval)
	if inter.Empty() {
		return
	}
	localIndex := inter.Distance(child.Evaluation.MinmaxValueWhite)

	if !child.Index.HasIndex() {
		child.Index.SetIndex(localIndex)
		child.Index.LocalInterval = inter
		return
	}
	if localIndex < child.Index.Index {
		child.Index.SetIndex(localIndex)
		child.Index.LocalInterval = inter
		return
	}
	child.Index.SetIndex(minf32(child.Index.Index, localIndex))
}

// updateMaxDepthOfDescendants recomputes node's depth-extended
// max_depth_of_descendants counter from its currently-opened children and
// reports whether it changed, per spec.md §4.6's depth-extended
// index-update mode and §9's "second field layered on the base variant"
// design. A no-op for nodes not running the depth-extended flavour.
func updateMaxDepthOfDescendants(node *AlgorithmNode) bool {
	if !node.Index.DepthExtended {
		return false
	}
	max := 0
	for _, child := range node.Node.BranchesChildren {
		d := child.Index.MaxDepthOfDescendants + 1
		if d > max {
			max = d
		}
	}
	if max == node.Index.MaxDepthOfDescendants {
		return false
	}
	node.Index.MaxDepthOfDescendants = max
	return true
}

// NewIndexManager returns the manager for variant, or nil for IndexNone.
func NewIndexManager(variant IndexVariant) IndexManager {
	switch variant {
	case IndexMinGlobalChange:
		return MinGlobalChangeManager{}
	case IndexRecurZipf:
		return RecurZipfManager{}
	case IndexMinLocalChange:
		return MinLocalChangeManager{}
	default:
		return nil
	}
}
