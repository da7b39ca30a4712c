// Package pangolin estimates Shapley-value feature importance for fitted
// predictive models.
//
// Given a model, a tabular dataset and a target column, it samples feature
// orderings, evaluates a coalition value function once per distinct
// coalition, and averages per-ordering marginal contributions into
// per-feature estimates with standard errors. Two value functions ship:
// GEValue rewards the performance a coalition preserves, PFIValue charges
// for the performance its removal destroys.
package pangolin

// shapley.go — the importance computation: validate, sample orderings,
// extract marginal-contribution records, evaluate the distinct coalitions
// (possibly in parallel), join and aggregate.

import (
	"context"
	"math/rand"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type options struct {
	nPerm     int
	allPerms  bool
	bound     int
	seed      int64
	hasSeed   bool
	workers   int
	features  []string
	requireSE bool
	logger    *zap.Logger
}

func defaultOptions() options {
	return options{
		workers: runtime.GOMAXPROCS(0),
		logger:  zap.NewNop(),
	}
}

// Option adjusts one knob of a computation.
type Option func(*options)

// WithPermutations sets how many feature orderings to sample. Requests above
// MaxPermutations clamp with a warning; the default is DefaultPermutations.
func WithPermutations(n int) Option {
	return func(o *options) { o.nPerm = n }
}

// WithAllPermutations enumerates every distinct ordering when the universe
// is small enough and samples MaxPermutations orderings otherwise.
func WithAllPermutations() Option {
	return func(o *options) { o.allPerms = true }
}

// WithBound caps coalition sizes at k features, including the feature under
// evaluation. Zero means unbounded.
func WithBound(k int) Option {
	return func(o *options) { o.bound = k }
}

// WithSeed fixes the sampling seed so orderings reproduce across runs.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

// WithWorkers caps concurrent coalition evaluations. The default is
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithFeatures restricts which features are explained. Orderings still span
// the full feature set, so estimates match an unrestricted run that is
// filtered afterwards.
func WithFeatures(feats ...string) Option {
	return func(o *options) { o.features = feats }
}

// WithUncertaintyRequired upgrades the single-permutation NaN standard
// error to an InsufficientSamplesError before any evaluation runs.
func WithUncertaintyRequired() Option {
	return func(o *options) { o.requireSE = true }
}

// WithLogger routes progress and warnings to logger. The default discards
// them.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Shapley estimates per-feature importance for task under the given value
// function. The task's data is snapshotted with missing-target rows dropped
// before any sampling, and task itself is never mutated.
func Shapley(ctx context.Context, task *Task, vf ValueFunction, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger

	if vf == nil {
		return nil, &ConfigurationError{Reason: "no value function"}
	}
	if err := validateTask(task, &o); err != nil {
		return nil, err
	}

	// A missing target poisons every measure; shed those rows once, up
	// front, the same hygiene the replacement engine applies to self pairs.
	kept, err := task.Data.DropMissing(task.Target)
	if err != nil {
		return nil, err
	}
	if dropped := task.Data.Rows() - kept.Rows(); dropped > 0 {
		log.Warn("dropped rows with missing target",
			zap.Int("dropped", dropped),
			zap.Int("kept", kept.Rows()))
	}
	if kept.Rows() == 0 {
		return nil, &ConfigurationError{Reason: "no rows with an observed target"}
	}
	run := &Task{Data: kept, Target: task.Target, Model: task.Model, Measures: task.Measures, Local: task.Local}

	want, clamped := resolvePermCount(&o)
	if clamped {
		log.Warn("permutation request clamped",
			zap.Int("requested", o.nPerm),
			zap.Int("cap", MaxPermutations))
	}
	seed := o.seed
	if !o.hasSeed {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	feats := run.Features()
	perms := generatePermutations(feats, want, o.allPerms, rng)
	if o.requireSE && len(perms) < 2 {
		return nil, &InsufficientSamplesError{Sampled: len(perms)}
	}
	if len(perms) < 2 {
		log.Warn("single permutation sampled, standard errors will be NaN")
	}

	explain := o.features
	if len(explain) == 0 {
		explain = feats
	}
	records := marginalRecords(perms, explain, o.bound)
	worklist := coalitionWorklist(records)
	log.Info("evaluating coalitions",
		zap.String("value_function", vf.Name()),
		zap.Int("permutations", len(perms)),
		zap.Int("coalitions", len(worklist)),
		zap.Int("workers", o.workers))

	start := time.Now()
	rows, err := evalCoalitions(ctx, run, vf, worklist, o.workers)
	if err != nil {
		return nil, err
	}
	log.Debug("coalition evaluation finished", zap.Duration("elapsed", time.Since(start)))

	table := make(map[string]ValueRow, len(worklist))
	for i, c := range worklist {
		table[c.Key()] = rows[i]
	}
	contribs := make(map[string][]ValueRow, len(explain))
	for _, rec := range records {
		contribs[rec.feature] = append(contribs[rec.feature],
			subtractRows(table[rec.after.Key()], table[rec.before.Key()]))
	}

	res := &Result{
		RunID:         uuid.NewString(),
		ValueFunction: vf.Name(),
		Target:        run.Target,
		Features:      explain,
		Measures:      measureNames(run.Measures),
		Minimize:      minimizeDirections(run.Measures),
		Permutations:  perms,
		Clamped:       clamped,
		Coalitions:    worklist,
		Table:         table,
		Contributions: contribs,
	}
	res.aggregate(run.Local)
	return res, nil
}

// resolvePermCount applies the default and the hard cap to the requested
// sample count.
func resolvePermCount(o *options) (want int, clamped bool) {
	switch {
	case o.allPerms:
		return MaxPermutations, false
	case o.nPerm == 0:
		return DefaultPermutations, false
	case o.nPerm > MaxPermutations:
		return MaxPermutations, true
	}
	return o.nPerm, false
}

// evalCoalitions maps vf over the worklist, at most workers at a time,
// preserving worklist order in the returned rows. The first failure cancels
// the remaining evaluations and aborts the run.
func evalCoalitions(ctx context.Context, t *Task, vf ValueFunction, worklist []Coalition, workers int) ([]ValueRow, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	rows := make([]ValueRow, len(worklist))
	for i, c := range worklist {
		g.Go(func() error {
			row, err := vf.Evaluate(ctx, t, c)
			if err != nil {
				return &EvaluationError{Coalition: c, Err: err}
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

// validateTask rejects bad tasks and knobs before any expensive work.
func validateTask(t *Task, o *options) error {
	if t == nil || t.Data == nil {
		return &ConfigurationError{Reason: "no task data"}
	}
	if t.Model == nil {
		return &ConfigurationError{Reason: "no model"}
	}
	if len(t.Measures) == 0 {
		return &ConfigurationError{Reason: "no measures"}
	}
	seen := make(map[string]bool, len(t.Measures))
	for _, m := range t.Measures {
		if seen[m.Name()] {
			return configErrf("duplicate measure %q", m.Name())
		}
		seen[m.Name()] = true
	}
	if !t.Data.Has(t.Target) {
		return configErrf("target %q is not a dataset column", t.Target)
	}
	if t.Data.Has(ColObsID) || t.Data.Has(ColReplaceID) {
		return configErrf("dataset already carries a %s or %s column", ColObsID, ColReplaceID)
	}
	feats := t.Features()
	if len(feats) == 0 {
		return &ConfigurationError{Reason: "dataset has no feature columns besides the target"}
	}
	for _, f := range feats {
		if strings.Contains(f, keySep) {
			return configErrf("feature %q contains a reserved separator byte", f)
		}
	}
	explained := make(map[string]bool, len(o.features))
	for _, f := range o.features {
		if f == t.Target {
			return configErrf("target %q cannot be explained as a feature", f)
		}
		if !t.Data.Has(f) {
			return configErrf("feature %q is not a dataset column", f)
		}
		if explained[f] {
			return configErrf("feature %q requested twice", f)
		}
		explained[f] = true
	}
	if o.nPerm < 0 {
		return configErrf("permutation count %d is negative", o.nPerm)
	}
	if o.bound < 0 {
		return configErrf("coalition bound %d is negative", o.bound)
	}
	if o.workers < 1 {
		return configErrf("worker count %d is below 1", o.workers)
	}
	return nil
}
