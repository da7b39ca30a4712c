package pangolin

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// constModel predicts the same value for every row.
type constModel struct{ v float64 }

func (m constModel) Predict(f *Frame) ([]float64, error) {
	out := make([]float64, f.Rows())
	for i := range out {
		out[i] = m.v
	}
	return out, nil
}

// failModel always errors.
type failModel struct{}

func (failModel) Predict(*Frame) ([]float64, error) {
	return nil, errors.New("model exploded")
}

// twoRowTask is a hand-checkable fixture: the model reproduces x1 and
// ignores x2, and the target equals x1, so the untouched data scores a
// perfect zero MSE.
func twoRowTask(t *testing.T, local bool) *Task {
	t.Helper()
	f := testFrame(t, []string{"x1", "x2", "y"}, [][]float64{
		{1, 2},
		{10, 20},
		{1, 2},
	})
	return &Task{
		Data:     f,
		Target:   "y",
		Model:    &LinearModel{Coefficients: map[string]float64{"x1": 1}},
		Measures: []Measure{MSE{}},
		Local:    local,
	}
}

func TestEmptyCoalitionIsZero(t *testing.T) {
	for _, vf := range []ValueFunction{GEValue{}, PFIValue{}} {
		t.Run(vf.Name(), func(t *testing.T) {
			task := twoRowTask(t, false)
			row, err := vf.Evaluate(context.Background(), task, NewCoalition())
			if err != nil {
				t.Fatal(err)
			}
			if got := row["mse"].Aggregate; got != 0 {
				t.Fatalf("value of the empty coalition = %v, want 0", got)
			}
		})
	}
}

func TestPFIHandComputed(t *testing.T) {
	task := twoRowTask(t, true)

	// Replacing x1 across ordered pairs and dropping self pairs leaves
	// rows (0,1) and (1,0), each with squared error 1 against a baseline
	// of 0.
	row, err := PFIValue{}.Evaluate(context.Background(), task, NewCoalition("x1"))
	if err != nil {
		t.Fatal(err)
	}
	if got := row["mse"].Aggregate; got != 1 {
		t.Fatalf("pfi value of {x1} = %v, want 1", got)
	}
	wantPerObs := []float64{1, 1}
	if diff := cmp.Diff(wantPerObs, row["mse"].PerObs); diff != "" {
		t.Fatalf("per-observation values mismatch (-want +got):\n%s", diff)
	}

	// x2 never enters the model, so replacing it changes nothing.
	row, err = PFIValue{}.Evaluate(context.Background(), task, NewCoalition("x2"))
	if err != nil {
		t.Fatal(err)
	}
	if got := row["mse"].Aggregate; got != 0 {
		t.Fatalf("pfi value of {x2} = %v, want 0", got)
	}
}

func TestGEHandComputed(t *testing.T) {
	task := twoRowTask(t, false)

	// Keeping {x1} replaces only the ignored x2, so performance stays
	// perfect; the fully replaced baseline scores MSE 1. Value: 0 - 1.
	row, err := GEValue{}.Evaluate(context.Background(), task, NewCoalition("x1"))
	if err != nil {
		t.Fatal(err)
	}
	if got := row["mse"].Aggregate; got != -1 {
		t.Fatalf("ge value of {x1} = %v, want -1", got)
	}

	// Keeping {x2} still replaces x1, which is all the model uses.
	row, err = GEValue{}.Evaluate(context.Background(), task, NewCoalition("x2"))
	if err != nil {
		t.Fatal(err)
	}
	if got := row["mse"].Aggregate; got != 0 {
		t.Fatalf("ge value of {x2} = %v, want 0", got)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	task := twoRowTask(t, true)
	c := NewCoalition("x1", "x2")
	for _, vf := range []ValueFunction{GEValue{}, PFIValue{}} {
		first, err := vf.Evaluate(context.Background(), task, c)
		if err != nil {
			t.Fatal(err)
		}
		second, err := vf.Evaluate(context.Background(), task, c)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("%s: repeated evaluation differs (-first +second):\n%s", vf.Name(), diff)
		}
	}
}

func TestConstantModelScoresConstantValue(t *testing.T) {
	f := testFrame(t, []string{"a", "b", "y"}, [][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	})
	task := &Task{Data: f, Target: "y", Model: constModel{v: 8}, Measures: []Measure{MSE{}, MAE{}}}

	// A constant model cannot care which features are replaced.
	for _, c := range []Coalition{NewCoalition("a"), NewCoalition("b"), NewCoalition("a", "b")} {
		row, err := PFIValue{}.Evaluate(context.Background(), task, c)
		if err != nil {
			t.Fatal(err)
		}
		for name, mv := range row {
			if mv.Aggregate != 0 {
				t.Fatalf("coalition %s, measure %s: value = %v, want 0", c, name, mv.Aggregate)
			}
		}
	}
}

func TestEvaluatePropagatesModelError(t *testing.T) {
	task := twoRowTask(t, false)
	task.Model = failModel{}
	_, err := PFIValue{}.Evaluate(context.Background(), task, NewCoalition("x1"))
	if err == nil {
		t.Fatal("expected the model error to propagate")
	}
}

func TestEvaluateHonorsContext(t *testing.T) {
	task := twoRowTask(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GEValue{}.Evaluate(ctx, task, NewCoalition("x1"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestTaskFeatures(t *testing.T) {
	task := twoRowTask(t, false)
	got := task.Features()
	want := []string{"x1", "x2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Features mismatch (-want +got):\n%s", diff)
	}
}
