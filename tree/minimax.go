package tree

import (
	"github.com/chewxy/math32"
	"github.com/vireo/branchsearch/state"
)

// MyLogit is the epsilon-clamped logit transform anemone's almost-equal
// comparisons use to prioritise endgame-like extremes: logit((x+1)/2)
// scaled by max(1,|x|).
func MyLogit(x float32) float32 {
	const epsilon = 1e-6
	p := (x + 1) / 2
	if p < epsilon {
		p = epsilon
	}
	if p > 1-epsilon {
		p = 1 - epsilon
	}
	l := math32.Log(p / (1 - p))
	scale := math32.Abs(x)
	if scale < 1 {
		scale = 1
	}
	return l * scale
}

// AlmostEqualValues is the `almost_equal` predicate: |v1-v2| < epsilon.
func AlmostEqualValues(v1, v2, epsilon float32) bool {
	return math32.Abs(v1-v2) < epsilon
}

// AlmostEqualLogistic is the `almost_equal_logistic` predicate: compares
// MyLogit-transformed values with the same epsilon.
func AlmostEqualLogistic(v1, v2, epsilon float32) bool {
	return math32.Abs(MyLogit(v1)-MyLogit(v2)) < epsilon
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// recordSortValue computes the 3-tuple for the branch leading to child,
// using overConvention to pick the tiebreak sign: -len when the parent is
// (or is becoming) over, +len otherwise (spec.md §4.5).
func recordSortValue(parent *AlgorithmNode, k state.BranchKey, overConvention bool) BranchSortValue {
	child := parent.Node.BranchesChildren[k]
	sortField := -SubjectiveValueOf(parent.Turn(), child.Evaluation.MinmaxValueWhite)
	length := len(child.Evaluation.BestBranchSequence)
	tiebreak := length
	if overConvention {
		tiebreak = -length
	}
	return BranchSortValue{SortField: sortField, Tiebreak: tiebreak, ChildID: child.Node.ID}
}

// RecordSortValue recomputes and stores the 3-tuple for branch k of parent,
// using parent's own over status for the tiebreak convention.
func RecordSortValue(parent *AlgorithmNode, k state.BranchKey) {
	v := recordSortValue(parent, k, parent.Evaluation.OverEvent.IsOver())
	parent.Evaluation.setSortValue(k, v)
}

// UpdateValues applies RecordSortValue to every branch in u, then resorts
// branches_sorted_by_value ascending.
func UpdateValues(parent *AlgorithmNode, u []state.BranchKey) {
	for _, k := range u {
		RecordSortValue(parent, k)
	}
	parent.Evaluation.resort()
}

// UpdateValueMinmax recomputes minmax_value_white from the current head
// child, per spec.md §4.5.
func UpdateValueMinmax(parent *AlgorithmNode) {
	k0, _, ok := parent.Evaluation.HeadBranch()
	if !ok {
		return
	}
	head := parent.Node.BranchesChildren[k0]
	if parent.Node.AllBranchesGenerated {
		parent.Evaluation.SetMinmaxValue(head.Evaluation.MinmaxValueWhite)
		return
	}
	if parent.Turn() == state.White {
		parent.Evaluation.SetMinmaxValue(maxf32(head.Evaluation.MinmaxValueWhite, parent.Evaluation.DirectValueWhite))
	} else {
		parent.Evaluation.SetMinmaxValue(minf32(head.Evaluation.MinmaxValueWhite, parent.Evaluation.DirectValueWhite))
	}
}

func equalSequences(a, b []state.BranchKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// UpdateBestBranchSequence extends best_branch_sequence from the current
// head child when the head is among the notified branches u. Returns
// whether the sequence changed.
func UpdateBestBranchSequence(parent *AlgorithmNode, u []state.BranchKey) bool {
	k0, _, ok := parent.Evaluation.HeadBranch()
	if !ok {
		return false
	}
	inU := false
	for _, k := range u {
		if k == k0 {
			inU = true
			break
		}
	}
	if !inU {
		return false
	}
	c0, exists := parent.Node.BranchesChildren[k0]
	if !exists {
		return false
	}
	newSeq := make([]state.BranchKey, 0, 1+len(c0.Evaluation.BestBranchSequence))
	newSeq = append(newSeq, k0)
	newSeq = append(newSeq, c0.Evaluation.BestBranchSequence...)
	changed := !equalSequences(parent.Evaluation.BestBranchSequence, newSeq)
	parent.Evaluation.BestBranchSequence = newSeq
	return changed
}

// ChooseNewBestLine recomputes best_branch_sequence from scratch when the
// head branch has changed, per spec.md §4.5.
func ChooseNewBestLine(parent *AlgorithmNode) {
	k0, _, ok := parent.Evaluation.HeadBranch()
	if !ok {
		parent.Evaluation.BestBranchSequence = nil
		return
	}
	head := parent.Node.BranchesChildren[k0]

	if !parent.Node.AllBranchesGenerated {
		headSubjective := SubjectiveValueOf(parent.Turn(), head.Evaluation.MinmaxValueWhite)
		directSubjective := SubjectiveValueOf(parent.Turn(), parent.Evaluation.DirectValueWhite)
		if headSubjective <= directSubjective {
			parent.Evaluation.BestBranchSequence = nil
			return
		}
	}

	newSeq := make([]state.BranchKey, 0, 1+len(head.Evaluation.BestBranchSequence))
	newSeq = append(newSeq, k0)
	newSeq = append(newSeq, head.Evaluation.BestBranchSequence...)
	parent.Evaluation.BestBranchSequence = newSeq
}

// BecomingOverFromChildren re-sorts every child under the "is over"
// tiebreak convention (shorter best lines rank first), then copies the
// head child's over event onto parent.
func BecomingOverFromChildren(parent *AlgorithmNode) {
	for k := range parent.Node.BranchesChildren {
		v := recordSortValue(parent, k, true)
		parent.Evaluation.setSortValue(k, v)
	}
	parent.Evaluation.resort()

	k0, _, ok := parent.Evaluation.HeadBranch()
	if !ok {
		return
	}
	head := parent.Node.BranchesChildren[k0]
	parent.Evaluation.OverEvent = head.Evaluation.OverEvent
}

// UpdateOver clears u's branches from branches_not_over and resolves
// parent as over when a winning child is found, or when nothing remains
// unopened and unresolved. Returns whether parent newly became over.
func UpdateOver(parent *AlgorithmNode, u []state.BranchKey) bool {
	for _, k := range u {
		parent.Evaluation.clearNotOver(k)
	}
	if parent.Evaluation.OverEvent.IsOver() {
		return false
	}

	for _, k := range u {
		child, ok := parent.Node.BranchesChildren[k]
		if !ok {
			continue
		}
		if child.Evaluation.OverEvent.IsWinner(parent.Turn()) {
			BecomingOverFromChildren(parent)
			return true
		}
	}

	if len(parent.Evaluation.BranchesNotOverOrder) == 0 && parent.Node.AllBranchesGenerated {
		BecomingOverFromChildren(parent)
		return true
	}
	return false
}

// MinmaxUpdate applies update_values/update_value_minmax for the branches
// in u, then reconciles best_branch_sequence: when the head changed,
// choose_new_best_line recomputes it from scratch (honoring the
// not-fully-generated heuristic); otherwise update_best_branch_sequence
// just extends it when the (unchanged) head was itself notified.
func MinmaxUpdate(parent *AlgorithmNode, u []state.BranchKey) (valueChanged, bestLineChanged bool) {
	hadValue := parent.Evaluation.HasMinmaxValue()
	oldValue := parent.Evaluation.MinmaxValueWhite
	oldHead, _, oldHeadOK := parent.Evaluation.HeadBranch()

	UpdateValues(parent, u)
	UpdateValueMinmax(parent)

	newHead, _, newHeadOK := parent.Evaluation.HeadBranch()
	headChanged := oldHeadOK != newHeadOK || (oldHeadOK && newHeadOK && oldHead != newHead)

	oldSeq := append([]state.BranchKey(nil), parent.Evaluation.BestBranchSequence...)
	if headChanged {
		ChooseNewBestLine(parent)
	} else {
		UpdateBestBranchSequence(parent, u)
	}
	bestLineChanged = !equalSequences(oldSeq, parent.Evaluation.BestBranchSequence)

	valueChanged = !hadValue || oldValue != parent.Evaluation.MinmaxValueWhite
	return valueChanged, bestLineChanged
}
