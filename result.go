package pangolin

// result.go — computation results and aggregation.
//
// A Result keeps every layer of the computation: the sampled orderings, the
// deduplicated value table, the per-ordering marginal contributions, and
// the per-feature aggregates. The Shapley estimate for a feature is the
// mean of its marginal contributions; uncertainty is the standard error of
// that mean.

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// FeatureImportance holds one feature's aggregates, keyed by measure name.
type FeatureImportance struct {
	Estimate    map[string]float64
	StdErr      map[string]float64
	Local       map[string][]float64
	LocalStdErr map[string][]float64
}

// Result is everything one computation produced.
type Result struct {
	RunID         string
	ValueFunction string
	Target        string
	// Features lists the explained features in task order.
	Features []string
	// Measures lists measure names in task order; Minimize maps each to
	// its direction.
	Measures []string
	Minimize map[string]bool
	// Permutations holds the sampled orderings; Clamped records that the
	// requested count exceeded the hard cap.
	Permutations []Permutation
	Clamped      bool
	// Coalitions is the evaluated worklist, key-sorted; Table maps each
	// coalition key to its value row.
	Coalitions []Coalition
	Table      map[string]ValueRow
	// Contributions maps each feature to one marginal row per ordering, in
	// sample order.
	Contributions map[string][]ValueRow
	// Importance holds the per-feature aggregates.
	Importance map[string]FeatureImportance
}

// aggregate fills Importance from Contributions.
func (r *Result) aggregate(local bool) {
	r.Importance = make(map[string]FeatureImportance, len(r.Features))
	for _, f := range r.Features {
		rows := r.Contributions[f]
		imp := FeatureImportance{
			Estimate: make(map[string]float64, len(r.Measures)),
			StdErr:   make(map[string]float64, len(r.Measures)),
		}
		if local {
			imp.Local = make(map[string][]float64, len(r.Measures))
			imp.LocalStdErr = make(map[string][]float64, len(r.Measures))
		}
		xs := make([]float64, len(rows))
		for _, m := range r.Measures {
			for k, row := range rows {
				xs[k] = row[m].Aggregate
			}
			imp.Estimate[m] = stat.Mean(xs, nil)
			imp.StdErr[m] = stderr(xs)
			if local {
				imp.Local[m], imp.LocalStdErr[m] = localAggregate(rows, m)
			}
		}
		r.Importance[f] = imp
	}
}

// stderr is the standard error of the mean, NaN below two samples.
func stderr(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil) / math.Sqrt(float64(len(xs)))
}

// localAggregate reduces per-observation vectors elementwise across the
// sampled orderings.
func localAggregate(rows []ValueRow, measure string) (mean, se []float64) {
	if len(rows) == 0 {
		return nil, nil
	}
	nObs := len(rows[0][measure].PerObs)
	mean = make([]float64, nObs)
	se = make([]float64, nObs)
	xs := make([]float64, len(rows))
	for i := 0; i < nObs; i++ {
		for k, row := range rows {
			xs[k] = row[measure].PerObs[i]
		}
		mean[i] = stat.Mean(xs, nil)
		se[i] = stderr(xs)
	}
	return mean, se
}

// Summary renders a plain-text view of the run: the sampling footprint and
// one line per feature with estimate and standard error for each measure.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shapley importance via %s for target %q\n", r.ValueFunction, r.Target)
	fmt.Fprintf(&b, "permutations: %d, unique coalitions: %d\n\n", len(r.Permutations), len(r.Coalitions))

	width := len("feature")
	for _, f := range r.Features {
		if len(f) > width {
			width = len(f)
		}
	}
	fmt.Fprintf(&b, "%-*s", width, "feature")
	for _, m := range r.Measures {
		fmt.Fprintf(&b, "  %-26s", m)
	}
	b.WriteString("\n")
	for _, f := range r.Features {
		imp := r.Importance[f]
		fmt.Fprintf(&b, "%-*s", width, f)
		for _, m := range r.Measures {
			cell := fmt.Sprintf("%.6g (se %.3g)", imp.Estimate[m], imp.StdErr[m])
			fmt.Fprintf(&b, "  %-26s", cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}
