package branchsearch

import (
	"log"

	"github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/vireo/branchsearch/state"
	"github.com/vireo/branchsearch/tree"
)

// progressNoticePeriod is how often (in loop iterations) the driver emits
// a progress notification, per spec.md §4.9 step 2g.
const progressNoticePeriod = 10

// Recommendation is the search's output (§6): the sampled branch, the
// root's own evaluation, the full policy, and every existing child's
// evaluation keyed by its human-readable branch name.
type Recommendation struct {
	ChosenBranch     state.BranchKey
	ChosenBranchName string
	Evaluation       state.BoardEvaluation
	Policy           map[state.BranchKey]float64
	BranchEvals      map[string]state.BoardEvaluation
	Warnings         error
}

// Driver is the search driver (C9): given a configuration and the
// external collaborators, it runs one search to completion.
type Driver struct {
	Config           Config
	TerminalDetector state.TerminalDetector
	Evaluator        state.BatchEvaluator
	RepFactory       state.RepresentationFactory
	Logger           *log.Logger
}

// NewDriver wires the external collaborators around cfg.
func NewDriver(cfg Config, td state.TerminalDetector, ev state.BatchEvaluator, repFactory state.RepresentationFactory) *Driver {
	return &Driver{Config: cfg, TerminalDetector: td, Evaluator: ev, RepFactory: repFactory}
}

func (d *Driver) buildSelector(rng *rand.Rand) (tree.Selector, error) {
	switch d.Config.Selector {
	case SelectorUniform:
		return tree.NewUniformSelector(), nil
	case SelectorRecurZipfBase:
		return tree.NewRecurZipfBaseSelectorWithPriority(rng, d.Config.RecurZipfPriority), nil
	case SelectorSequool:
		var depthSelector tree.DepthSelector
		if d.Config.SequoolRandomDepthPick {
			depthSelector = tree.NewRandomAllSelector(rng)
		} else {
			depthSelector = tree.NewStaticNotOpenedSelector()
		}
		return &tree.Sequool{
			Recursive:     d.Config.SequoolRecursive,
			DepthSelector: depthSelector,
			CandidateMode: d.Config.SequoolCandidateMode,
		}, nil
	default:
		return nil, pkgerrors.New("branchsearch: unknown selector kind")
	}
}

func (d *Driver) buildStopping(selector tree.Selector) (ProgressMonitor, error) {
	switch d.Config.Stopping {
	case StoppingBranchCount:
		return BranchCountLimit{N: d.Config.BranchCountLimit}, nil
	case StoppingDepthLimit:
		cursor, ok := selector.(depthCursor)
		if !ok {
			return nil, pkgerrors.New("branchsearch: DepthLimit requires a selector exposing a depth cursor")
		}
		return DepthLimit{K: d.Config.DepthLimitK, Selector: cursor}, nil
	default:
		return nil, pkgerrors.New("branchsearch: unknown stopping kind")
	}
}

func (d *Driver) buildRecommender() (Recommender, error) {
	switch d.Config.Recommender {
	case RecommenderAlmostEqualLogistic:
		return AlmostEqualLogisticRecommender{Epsilon: d.Config.Epsilon}, nil
	case RecommenderSoftmax:
		return SoftmaxRecommender{Temperature: d.Config.Temperature}, nil
	default:
		return nil, pkgerrors.New("branchsearch: unknown recommender kind")
	}
}

// Recommend runs one search from root to completion and returns the
// recommended branch, per spec.md §6's `recommend(state, seed)` entry
// point. The same (state, config, seed, evaluator) reproduces the same
// result modulo evaluator determinism.
func (d *Driver) Recommend(root state.State, seed uint64) (*Recommendation, error) {
	if !d.Config.IsValid() {
		return nil, pkgerrors.New("branchsearch: invalid configuration")
	}

	rng := rand.New(rand.NewSource(seed))

	t := tree.NewTree(root, d.Config.IndexVariant, d.Config.DepthExtended, d.RepFactory)
	bridge := tree.NewEvaluatorBridge(d.TerminalDetector, d.Evaluator)

	if err := bridge.Enqueue(t.Root); err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	if err := bridge.Drain(); err != nil {
		return nil, err
	}
	bridge.Reset()
	t.SeedRootIndex()

	selector, err := d.buildSelector(rng)
	if err != nil {
		return nil, err
	}
	stopping, err := d.buildStopping(selector)
	if err != nil {
		return nil, err
	}
	indexManager := tree.NewIndexManager(d.Config.IndexVariant)

	var warnings error
	iteration := 0
	for stopping.ShouldContinue(t) {
		instructions, selErr := selector.Choose(t)
		if selErr == tree.ErrEmptyExpansion {
			warnings = multierror.Append(warnings, selErr)
			if d.Logger != nil {
				d.Logger.Println("empty expansion, skipping batch")
			}
			iteration++
			continue
		}
		if selErr != nil {
			return nil, selErr
		}

		trimmed := stopping.Trim(instructions, t)
		withCreation, withoutCreation, err := t.OpenBatch(trimmed)
		if err != nil {
			return nil, err
		}

		expansions := make([]tree.TreeExpansion, 0, len(withCreation)+len(withoutCreation))
		expansions = append(expansions, withCreation...)
		expansions = append(expansions, withoutCreation...)

		for _, exp := range withCreation {
			if err := bridge.Enqueue(exp.Child); err != nil {
				return nil, pkgerrors.WithStack(err)
			}
		}
		if err := bridge.Drain(); err != nil {
			return nil, err
		}
		bridge.Reset()

		tree.Propagate(expansions)
		if indexManager != nil {
			if err := tree.RefreshIndices(t, indexManager); err != nil {
				return nil, err
			}
		}

		iteration++
		if iteration%progressNoticePeriod == 0 && d.Logger != nil {
			d.Logger.Printf("progress %d%% - %s", stopping.ProgressPercent(t), stopping.Summary(t))
		}
	}

	rec, err := d.recommend(t, rng)
	if err != nil {
		return nil, err
	}
	rec.Warnings = warnings
	return rec, nil
}

func (d *Driver) recommend(t *tree.Tree, rng *rand.Rand) (*Recommendation, error) {
	recommender, err := d.buildRecommender()
	if err != nil {
		return nil, err
	}

	entries := recommender.Policy(t.Root)
	if d.Config.RootNoise != nil {
		entries = ApplyRootNoise(entries, d.Config.RootNoise, rng)
	}
	chosen := Sample(entries, rng)

	policy := make(map[state.BranchKey]float64, len(entries))
	for _, e := range entries {
		policy[e.Key] = e.Probability
	}

	branchEvals := make(map[string]state.BoardEvaluation, len(t.Root.Node.BranchesChildren))
	for k, child := range t.Root.Node.BranchesChildren {
		name := t.Root.Node.State.BranchName(k)
		branchEvals[name] = child.Evaluate()
	}

	var chosenName string
	if chosen != nil {
		chosenName = t.Root.Node.State.BranchName(chosen)
	}

	return &Recommendation{
		ChosenBranch:     chosen,
		ChosenBranchName: chosenName,
		Evaluation:       t.Root.Evaluate(),
		Policy:           policy,
		BranchEvals:      branchEvals,
	}, nil
}

// Recommend is the package-level convenience entry point wiring a fresh
// Driver around the given collaborators.
func Recommend(root state.State, seed uint64, cfg Config, td state.TerminalDetector, ev state.BatchEvaluator, repFactory state.RepresentationFactory) (*Recommendation, error) {
	return NewDriver(cfg, td, ev, repFactory).Recommend(root, seed)
}
