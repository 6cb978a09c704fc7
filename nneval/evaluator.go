// Package nneval is a reference state.BatchEvaluator backed by a small
// gorgonia feed-forward net, adapted from the teacher's dualnet.Config
// shape parameters and agent.go's Infer pattern. It exists to give
// SPEC_FULL.md's "may wrap a neural network" remark (tree's C4) a
// concrete, wired example.
package nneval

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf32"

	"github.com/vireo/branchsearch/state"
)

// Config shapes the network: a single hidden layer sized relative to the
// input feature count, mirroring dual.Config's K-from-board-size rule.
type Config struct {
	InputSize int `json:"input_size"`
	Hidden    int `json:"hidden"`
}

// DefaultConfig sizes the hidden layer at twice the input feature count,
// the same multiplier dual.DefaultConf uses for its FC width.
func DefaultConfig(inputSize int) Config {
	return Config{InputSize: inputSize, Hidden: 2 * inputSize}
}

func (c Config) IsValid() bool {
	return c.InputSize >= 1 && c.Hidden >= 1
}

// Evaluator is a two-layer tanh network mapping a fixed-size feature
// vector to a white-perspective scalar in [-1, 1].
type Evaluator struct {
	cfg Config
	w1  *tensor.Dense // Hidden x InputSize
	b1  *tensor.Dense // Hidden x 1
	w2  *tensor.Dense // 1 x Hidden
	b2  *tensor.Dense // 1 x 1
}

func randomVector(n int, rng *rand.Rand, scale float32) vecf32.Vector {
	out := make(vecf32.Vector, n)
	for i := range out {
		out[i] = float32(rng.NormFloat64()) * scale
	}
	return out
}

// New builds an evaluator with randomly initialized weights -- a
// from-scratch net, since training is out of scope (no Non-goal-violating
// cmd/train analog exists in this module).
func New(cfg Config, rng *rand.Rand) (*Evaluator, error) {
	if !cfg.IsValid() {
		return nil, errors.New("nneval: invalid config")
	}
	return &Evaluator{
		cfg: cfg,
		w1:  tensor.New(tensor.WithShape(cfg.Hidden, cfg.InputSize), tensor.WithBacking(randomVector(cfg.Hidden*cfg.InputSize, rng, 0.1))),
		b1:  tensor.New(tensor.WithShape(cfg.Hidden, 1), tensor.WithBacking(randomVector(cfg.Hidden, rng, 0.01))),
		w2:  tensor.New(tensor.WithShape(1, cfg.Hidden), tensor.WithBacking(randomVector(cfg.Hidden, rng, 0.1))),
		b2:  tensor.New(tensor.WithShape(1, 1), tensor.WithBacking(randomVector(1, rng, 0.01))),
	}, nil
}

func (e *Evaluator) forward(features []float32) (float32, error) {
	if len(features) != e.cfg.InputSize {
		return 0, errors.Errorf("nneval: expected %d features, got %d", e.cfg.InputSize, len(features))
	}
	x := tensor.New(tensor.WithShape(e.cfg.InputSize, 1), tensor.WithBacking(vecf32.Vector(features)))

	hRaw, err := e.w1.MatMul(x)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	hRaw, err = hRaw.Add(e.b1)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	h, err := hRaw.Apply(math32.Tanh)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	outRaw, err := e.w2.MatMul(h.(*tensor.Dense))
	if err != nil {
		return 0, errors.WithStack(err)
	}
	outRaw, err = outRaw.Add(e.b2)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	out, err := outRaw.Apply(math32.Tanh)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	scalar, err := out.(*tensor.Dense).At(0, 0)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return scalar.(float32), nil
}

// EvaluateBatch implements state.BatchEvaluator. Each item must carry a
// []float32 Representation of length cfg.InputSize.
func (e *Evaluator) EvaluateBatch(items []state.EvalItem) ([]float32, error) {
	out := make([]float32, len(items))
	for i, item := range items {
		features, ok := item.Representation.([]float32)
		if !ok {
			return nil, errors.Errorf("nneval: item %d has no []float32 representation", i)
		}
		v, err := e.forward(features)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
