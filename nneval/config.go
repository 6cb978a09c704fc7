package nneval

import "golang.org/x/exp/rand"

// NewFromSeed is a convenience constructor mirroring the teacher's
// seed-driven reproducibility convention (agent.go's inferer pool is built
// once and reused -- this evaluator's weights are likewise fixed for the
// lifetime of one search).
func NewFromSeed(cfg Config, seed uint64) (*Evaluator, error) {
	return New(cfg, rand.New(rand.NewSource(seed)))
}
