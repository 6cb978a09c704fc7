package tree

import (
	"github.com/pkg/errors"
	"github.com/vireo/branchsearch/state"
)

// copyHistoryDepthThreshold is the depth below which a state copy carries
// its move/position history along (repetition detection stays accurate
// near the root); deeper copies are shallow for speed. Preserve as a
// tunable, not a hardcoded behavior -- see spec.md §9 open question.
const copyHistoryDepthThreshold = 2

// TreeExpansion is the record C2's Open returns: the child materialized
// (new or reused via transposition), the parent that requested it, the
// branch key used, any opaque modifications from state.Step, and whether
// this expansion created a brand new node.
type TreeExpansion struct {
	Child         *AlgorithmNode
	Parent        *AlgorithmNode
	BranchKey     state.BranchKey
	Modifications state.StateModifications
	IsNew         bool
}

// Open materializes the child reached from parent via branchKey, reusing
// an existing node at (childDepth, childTag) when one already exists
// (transposition dedup), per spec.md §4.2.
func (t *Tree) Open(parent *AlgorithmNode, branchKey state.BranchKey) (TreeExpansion, error) {
	includeHistory := parent.Node.Depth < copyHistoryDepthThreshold
	childState := parent.Node.State.Copy(includeHistory)

	modifications, err := childState.Step(branchKey)
	if err != nil {
		return TreeExpansion{}, errors.Wrap(ErrInvalidTransition, err.Error())
	}

	childDepth := parent.Node.Depth + 1
	childTag := childState.Tag()

	child, existed := t.Descendants.Get(childDepth, childTag)
	isNew := !existed
	if existed {
		child.Node.Parents[parent] = branchKey
	} else {
		child = t.newNode(childDepth, childState)
		if t.RepFactory != nil {
			child.Representation = t.RepFactory.CreateFromTransition(childState, parent.Representation, modifications)
		}
		child.Node.Parents[parent] = branchKey
		if err := t.Descendants.Add(child); err != nil {
			return TreeExpansion{}, err
		}
		t.NodesCount++
	}

	parent.Node.BranchesChildren[branchKey] = child
	parent.Evaluation.markNotOver(branchKey)
	t.BranchCount++

	return TreeExpansion{
		Child:         child,
		Parent:        parent,
		BranchKey:     branchKey,
		Modifications: modifications,
		IsNew:         isNew,
	}, nil
}

// OpeningInstruction is one (node_to_open, branch_key) pair, per spec.md
// §4.8.
type OpeningInstruction struct {
	Node      *AlgorithmNode
	BranchKey state.BranchKey
}

// OpenBatch applies Open for every instruction in order, splitting results
// into those that created a new node and those that reused one via
// transposition (spec.md §4.2's two output lists).
func (t *Tree) OpenBatch(instructions []OpeningInstruction) (withCreation, withoutCreation []TreeExpansion, err error) {
	for _, instr := range instructions {
		exp, openErr := t.Open(instr.Node, instr.BranchKey)
		if openErr != nil {
			return withCreation, withoutCreation, openErr
		}
		if exp.IsNew {
			withCreation = append(withCreation, exp)
		} else {
			withoutCreation = append(withoutCreation, exp)
		}
	}
	return withCreation, withoutCreation, nil
}
