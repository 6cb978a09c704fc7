package branchsearch

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vireo/branchsearch/state"
	"github.com/vireo/branchsearch/tree"
)

// PolicyEntry is one branch's probability in a recommender's output
// policy, kept as an explicit ordered pair (rather than a bare map) so
// sampling is reproducible for a given seed.
type PolicyEntry struct {
	Key         state.BranchKey
	Probability float64
}

// Recommender is the §4.10 policy rule.
type Recommender interface {
	Policy(root *tree.AlgorithmNode) []PolicyEntry
}

// AlmostEqualLogisticRecommender emits a uniform policy over every branch
// almost_equal_logistic to the head branch (or every existing child, if
// that set is empty).
type AlmostEqualLogisticRecommender struct {
	Epsilon float32
}

func (r AlmostEqualLogisticRecommender) Policy(root *tree.AlgorithmNode) []PolicyEntry {
	keys := root.Evaluation.OrderedBranchKeys()
	if len(keys) == 0 {
		return nil
	}
	headKey := keys[0]
	headValue := root.Node.BranchesChildren[headKey].Evaluation.MinmaxValueWhite

	var tied []state.BranchKey
	for _, k := range keys {
		v := root.Node.BranchesChildren[k].Evaluation.MinmaxValueWhite
		if tree.AlmostEqualLogistic(v, headValue, r.Epsilon) {
			tied = append(tied, k)
		}
	}
	if len(tied) == 0 {
		tied = keys
	}

	p := 1.0 / float64(len(tied))
	entries := make([]PolicyEntry, len(tied))
	for i, k := range tied {
		entries[i] = PolicyEntry{Key: k, Probability: p}
	}
	return entries
}

// SoftmaxRecommender scores every existing child by subjective value
// relative to root's turn, applies a numerically stabilized softmax, and
// emits that as the policy.
type SoftmaxRecommender struct {
	Temperature float32
}

func (r SoftmaxRecommender) Policy(root *tree.AlgorithmNode) []PolicyEntry {
	keys := root.Evaluation.OrderedBranchKeys()
	if len(keys) == 0 {
		return nil
	}
	turn := root.Turn()
	scores := make([]float32, len(keys))
	maxScore := float32(math.Inf(-1))
	for i, k := range keys {
		child := root.Node.BranchesChildren[k]
		scores[i] = tree.SubjectiveValueOf(turn, child.Evaluation.MinmaxValueWhite)
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}

	exps := make([]float64, len(keys))
	var sum float64
	for i, s := range scores {
		scaled := float64(s-maxScore) * float64(r.Temperature)
		exps[i] = math.Exp(scaled)
		sum += exps[i]
	}

	entries := make([]PolicyEntry, len(keys))
	for i, k := range keys {
		entries[i] = PolicyEntry{Key: k, Probability: exps[i] / sum}
	}
	return entries
}

// ApplyRootNoise mixes Dirichlet(Alpha) noise into entries with weight
// noise.Weight, the optional root-exploration supplement of SPEC_FULL.md
// §3. A nil noise or empty entries is a no-op.
func ApplyRootNoise(entries []PolicyEntry, noise *DirichletNoise, rng *rand.Rand) []PolicyEntry {
	if noise == nil || len(entries) == 0 {
		return entries
	}
	alpha := make([]float64, len(entries))
	for i := range alpha {
		alpha[i] = float64(noise.Alpha)
	}
	dirichlet, ok := distmv.NewDirichlet(alpha, rng)
	if !ok {
		return entries
	}
	sample := dirichlet.Rand(nil)

	out := make([]PolicyEntry, len(entries))
	weight := float64(noise.Weight)
	for i, e := range entries {
		out[i] = PolicyEntry{Key: e.Key, Probability: (1-weight)*e.Probability + weight*sample[i]}
	}
	return out
}

// Sample draws one branch key from entries, weighted by Probability.
// Returns nil if entries is empty.
func Sample(entries []PolicyEntry, rng *rand.Rand) state.BranchKey {
	if len(entries) == 0 {
		return nil
	}
	weights := make([]float64, len(entries))
	for i, e := range entries {
		weights[i] = e.Probability
	}
	dist := distuv.NewCategorical(weights, rng)
	idx := int(dist.Rand())
	return entries[idx].Key
}
