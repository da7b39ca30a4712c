package pangolin

// measure.go — performance measures.
//
// A Measure reduces predictions and ground truth to one scalar. The minimize
// direction is carried on results for reporting; the importance math itself
// is direction-agnostic since it only differences measure values.

import (
	"fmt"
	"math"
)

// Measure scores predictions against ground truth.
type Measure interface {
	// Name is the measure's short identifier, e.g. "mse".
	Name() string
	// Minimize reports whether smaller values are better.
	Minimize() bool
	// Compute reduces predictions and truth to one score. The slices have
	// equal length; empty input yields NaN.
	Compute(preds, truth []float64) float64
}

// MSE is mean squared error.
type MSE struct{}

func (MSE) Name() string   { return "mse" }
func (MSE) Minimize() bool { return true }

func (MSE) Compute(preds, truth []float64) float64 {
	if len(preds) == 0 {
		return math.NaN()
	}
	var sum float64
	for i, p := range preds {
		d := p - truth[i]
		sum += d * d
	}
	return sum / float64(len(preds))
}

// MAE is mean absolute error.
type MAE struct{}

func (MAE) Name() string   { return "mae" }
func (MAE) Minimize() bool { return true }

func (MAE) Compute(preds, truth []float64) float64 {
	if len(preds) == 0 {
		return math.NaN()
	}
	var sum float64
	for i, p := range preds {
		sum += math.Abs(p - truth[i])
	}
	return sum / float64(len(preds))
}

// Accuracy is the share of predictions that round to the true label.
type Accuracy struct{}

func (Accuracy) Name() string   { return "accuracy" }
func (Accuracy) Minimize() bool { return false }

func (Accuracy) Compute(preds, truth []float64) float64 {
	if len(preds) == 0 {
		return math.NaN()
	}
	var hits float64
	for i, p := range preds {
		if math.Round(p) == truth[i] {
			hits++
		}
	}
	return hits / float64(len(preds))
}

// MeasureByName returns a built-in measure by identifier.
func MeasureByName(name string) (Measure, error) {
	switch name {
	case "mse":
		return MSE{}, nil
	case "mae":
		return MAE{}, nil
	case "accuracy":
		return Accuracy{}, nil
	}
	return nil, fmt.Errorf("unknown measure %q (built-ins: mse, mae, accuracy)", name)
}

// measureNames lists the names of ms in order.
func measureNames(ms []Measure) []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name()
	}
	return names
}

// minimizeDirections maps each measure to its minimize flag.
func minimizeDirections(ms []Measure) map[string]bool {
	out := make(map[string]bool, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Minimize()
	}
	return out
}
