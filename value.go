package pangolin

// value.go — coalition value functions.
//
// A ValueFunction maps a coalition to one row of measure values for a task.
// Two strategies ship: GEValue compares "coalition kept, everything else
// replaced" against a fully replaced baseline, PFIValue compares "coalition
// replaced" against the untouched data. Both ride the same replacement
// engine and measure plumbing and are deterministic, so a coalition's row
// can be computed once and shared by every ordering that needs it.

import (
	"context"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// MeasureValue is one measure's result for one coalition: the aggregate
// score and, when the task asks for local estimates, one score per original
// observation.
type MeasureValue struct {
	Aggregate float64
	PerObs    []float64
}

// ValueRow maps measure name to value for one coalition.
type ValueRow map[string]MeasureValue

// Task bundles what a value function needs: the data, the target, the model
// and the measures. The baselines the strategies share are computed lazily,
// once, and are read-only afterwards, so one Task may serve concurrent
// evaluations. Tasks are passed by pointer and must not be copied.
type Task struct {
	Data     *Frame
	Target   string
	Model    Model
	Measures []Measure
	// Local adds per-observation scores alongside each aggregate.
	Local bool

	fullOnce sync.Once // everything replaced
	fullRow  ValueRow
	fullErr  error
	origOnce sync.Once // nothing replaced
	origRow  ValueRow
	origErr  error
}

// Features returns the data's columns minus the target, in column order.
func (t *Task) Features() []string {
	names := t.Data.Names()
	feats := make([]string, 0, len(names))
	for _, n := range names {
		if n != t.Target {
			feats = append(feats, n)
		}
	}
	return feats
}

// ValueFunction computes one value-table row per coalition.
type ValueFunction interface {
	// Name is the strategy's short identifier, e.g. "ge".
	Name() string
	// Evaluate computes the coalition's measure row for the task. It must
	// be deterministic and safe to call concurrently for distinct
	// coalitions.
	Evaluate(ctx context.Context, t *Task, c Coalition) (ValueRow, error)
}

// GEValue scores a coalition by how much performance survives when every
// feature outside it is replaced, relative to a fully replaced baseline.
// The empty coalition's value is zero by construction.
type GEValue struct{}

func (GEValue) Name() string { return "ge" }

func (GEValue) Evaluate(ctx context.Context, t *Task, c Coalition) (ValueRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shuffled, err := t.replacedScore(outsideCoalition(t.Features(), c))
	if err != nil {
		return nil, err
	}
	baseline, err := t.fullReplacementScore()
	if err != nil {
		return nil, err
	}
	return subtractRows(shuffled, baseline), nil
}

// PFIValue scores a coalition by how much performance degrades when its
// members are replaced, relative to the untouched data. The empty
// coalition's value is zero by construction.
type PFIValue struct{}

func (PFIValue) Name() string { return "pfi" }

func (PFIValue) Evaluate(ctx context.Context, t *Task, c Coalition) (ValueRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	perturbed, err := t.replacedScore(c.Features())
	if err != nil {
		return nil, err
	}
	baseline, err := t.originalScore()
	if err != nil {
		return nil, err
	}
	return subtractRows(perturbed, baseline), nil
}

// replacedScore expands the data with the given features replaced, drops
// the rows whose target went missing, and scores what remains.
func (t *Task) replacedScore(replace []string) (ValueRow, error) {
	expanded, err := CartesianReplace(t.Data, replace, []string{t.Target}, true)
	if err != nil {
		return nil, err
	}
	kept, err := expanded.DropMissing(t.Target)
	if err != nil {
		return nil, err
	}
	return t.score(kept)
}

// fullReplacementScore is the replace-everything baseline, computed once
// per task.
func (t *Task) fullReplacementScore() (ValueRow, error) {
	t.fullOnce.Do(func() {
		t.fullRow, t.fullErr = t.replacedScore(t.Features())
	})
	return t.fullRow, t.fullErr
}

// originalScore is the replace-nothing baseline, computed once per task.
func (t *Task) originalScore() (ValueRow, error) {
	t.origOnce.Do(func() {
		t.origRow, t.origErr = t.replacedScore(nil)
	})
	return t.origRow, t.origErr
}

// score predicts over fr and reduces each measure, grouping rows by
// observation when local scores are requested.
func (t *Task) score(fr *Frame) (ValueRow, error) {
	preds, err := t.Model.Predict(fr)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(preds) != fr.Rows() {
		return nil, fmt.Errorf("predict: got %d predictions for %d rows", len(preds), fr.Rows())
	}
	truth := fr.col(t.Target)
	row := make(ValueRow, len(t.Measures))
	for _, m := range t.Measures {
		mv := MeasureValue{Aggregate: m.Compute(preds, truth)}
		if t.Local {
			mv.PerObs = perObservation(m, preds, truth, fr, t.Data.Rows())
		}
		row[m.Name()] = mv
	}
	return row, nil
}

// perObservation computes one score per original observation. Expanded
// frames group their rows by obs.id; an un-expanded frame scores each row
// alone. The result always has nObs entries; observations with no surviving
// rows score NaN.
func perObservation(m Measure, preds, truth []float64, fr *Frame, nObs int) []float64 {
	out := make([]float64, nObs)
	obs := fr.col(ColObsID)
	if obs == nil {
		for i := range out {
			if i < len(preds) {
				out[i] = m.Compute(preds[i:i+1], truth[i:i+1])
			} else {
				out[i] = m.Compute(nil, nil)
			}
		}
		return out
	}
	groupPreds := make([][]float64, nObs)
	groupTruth := make([][]float64, nObs)
	for r, v := range obs {
		id := int(v)
		groupPreds[id] = append(groupPreds[id], preds[r])
		groupTruth[id] = append(groupTruth[id], truth[r])
	}
	for id := range out {
		out[id] = m.Compute(groupPreds[id], groupTruth[id])
	}
	return out
}

// outsideCoalition returns the members of feats not in c, preserving order.
func outsideCoalition(feats []string, c Coalition) []string {
	out := make([]string, 0, len(feats))
	for _, f := range feats {
		if !c.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}

// subtractRows returns a minus b per measure, elementwise for local vectors.
func subtractRows(a, b ValueRow) ValueRow {
	out := make(ValueRow, len(a))
	for name, av := range a {
		bv := b[name]
		mv := MeasureValue{Aggregate: av.Aggregate - bv.Aggregate}
		if av.PerObs != nil {
			mv.PerObs = make([]float64, len(av.PerObs))
			floats.SubTo(mv.PerObs, av.PerObs, bv.PerObs)
		}
		out[name] = mv
	}
	return out
}
