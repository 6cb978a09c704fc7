// Package branchsearch is the search driver (C9), the recommender rules
// and progress monitors (C10) that ride on top of package tree's DAG
// engine, and the top-level Recommend entry point.
package branchsearch

import "github.com/vireo/branchsearch/tree"

// NodeSelectorKind picks which of the three C8 node selectors a search
// uses. The set is closed at configuration time (spec.md §9).
type NodeSelectorKind int

const (
	SelectorUniform NodeSelectorKind = iota
	SelectorRecurZipfBase
	SelectorSequool
)

// StoppingKind picks which C10 progress monitor gates the search loop.
type StoppingKind int

const (
	StoppingBranchCount StoppingKind = iota
	StoppingDepthLimit
)

// RecommenderKind picks which §4.10 rule samples the final branch.
type RecommenderKind int

const (
	RecommenderAlmostEqualLogistic RecommenderKind = iota
	RecommenderSoftmax
)

// DirichletNoise is the optional root-policy exploration noise supplement
// (SPEC_FULL.md §3): off by default, mixes sampled Dirichlet noise into
// the policy with weight Weight before sampling.
type DirichletNoise struct {
	Alpha  float32
	Weight float32
}

// Config is the search configuration, accepted by Recommend's caller.
// Plain struct with IsValid/DefaultConfig, like the teacher's mcts.Config
// and dual.Config -- no CLI/config framework.
type Config struct {
	Selector               NodeSelectorKind
	RecurZipfPriority      tree.RecurZipfPriority
	SequoolRecursive       bool
	SequoolRandomDepthPick bool
	SequoolCandidateMode   tree.CandidateMode

	Stopping         StoppingKind
	BranchCountLimit int
	DepthLimitK      int

	IndexVariant  tree.IndexVariant
	DepthExtended bool

	Recommender RecommenderKind
	Epsilon     float32
	Temperature float32
	RootNoise   *DirichletNoise
}

// DefaultConfig returns a Uniform-selector, BranchCountLimit(400),
// no-index, AlmostEqualLogistic search -- a conservative default that
// exercises the engine without any tunable variant selection.
func DefaultConfig() Config {
	return Config{
		Selector:         SelectorUniform,
		Stopping:         StoppingBranchCount,
		BranchCountLimit: 400,
		IndexVariant:     tree.IndexNone,
		Recommender:      RecommenderAlmostEqualLogistic,
		Epsilon:          0.01,
		Temperature:      1,
	}
}

// IsValid reports whether c is internally consistent enough to run.
func (c Config) IsValid() bool {
	if c.Stopping == StoppingBranchCount && c.BranchCountLimit <= 0 {
		return false
	}
	if c.Stopping == StoppingDepthLimit && c.DepthLimitK <= 0 {
		return false
	}
	if c.Stopping == StoppingDepthLimit && c.Selector != SelectorUniform {
		// DepthLimit wraps a selector exposing current_depth_to_expand,
		// which only UniformSelector maintains (spec.md §4.11).
		return false
	}
	if c.Epsilon < 0 {
		return false
	}
	if c.RootNoise != nil && (c.RootNoise.Alpha <= 0 || c.RootNoise.Weight < 0 || c.RootNoise.Weight > 1) {
		return false
	}
	return true
}
