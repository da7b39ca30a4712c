package bundle_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pangolin"
	"pangolin/internal/bundle"
)

func sampleResult(t *testing.T) *pangolin.Result {
	t.Helper()
	f, err := pangolin.NewFrame([]string{"x1", "x2", "y"}, [][]float64{
		{1, 10, 7, 12},
		{2, 5, 7, 9},
		{4, -5, 7, 3},
	})
	if err != nil {
		t.Fatal(err)
	}
	task := &pangolin.Task{
		Data:     f,
		Target:   "y",
		Model:    &pangolin.LinearModel{Coefficients: map[string]float64{"x1": 2, "x2": 1}},
		Measures: []pangolin.Measure{pangolin.MSE{}},
		Local:    true,
	}
	res, err := pangolin.Shapley(context.Background(), task, pangolin.GEValue{},
		pangolin.WithSeed(4), pangolin.WithPermutations(2))
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestFromResult(t *testing.T) {
	res := sampleResult(t)
	b := bundle.FromResult(res, "2026-02-11T10:00:00Z")

	if b.Version != bundle.Version || b.RunID != res.RunID {
		t.Fatalf("header mismatch: %+v", b)
	}
	if len(b.Permutations) != len(res.Permutations) {
		t.Fatalf("permutations = %d, want %d", len(b.Permutations), len(res.Permutations))
	}
	if len(b.Coalitions) != len(res.Coalitions) {
		t.Fatalf("coalitions = %d, want %d", len(b.Coalitions), len(res.Coalitions))
	}
	if len(b.Importance) != len(res.Features) {
		t.Fatalf("importance rows = %d, want %d", len(b.Importance), len(res.Features))
	}
	for _, fe := range b.Importance {
		if len(fe.Contributions) != len(res.Permutations) {
			t.Fatalf("feature %s: %d contributions for %d orderings", fe.Feature, len(fe.Contributions), len(res.Permutations))
		}
		if len(fe.Local["mse"]) != 4 {
			t.Fatalf("feature %s: local vector has %d entries, want 4", fe.Feature, len(fe.Local["mse"]))
		}
	}

	// The empty coalition sits in every worklist; its feature list must be
	// an empty slice, not nil, so that a loaded bundle compares equal to
	// the one that was saved.
	foundEmpty := false
	for _, cv := range b.Coalitions {
		if len(cv.Features) == 0 {
			foundEmpty = true
			if cv.Features == nil {
				t.Fatal("empty coalition serialized with a nil feature list")
			}
		}
	}
	if !foundEmpty {
		t.Fatal("no empty coalition in the bundle")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	res := sampleResult(t)
	b := bundle.FromResult(res, "2026-02-11T10:00:00Z")
	path := filepath.Join(t.TempDir(), "out", "run.yaml")
	if err := b.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := bundle.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Fatalf("roundtrip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestLoadRejectsWrongVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.yaml")
	if err := os.WriteFile(path, []byte("version: 99\nrun_id: r-1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := bundle.Load(path)
	if err == nil || !strings.Contains(err.Error(), "schema version") {
		t.Fatalf("got %v, want a schema version error", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := bundle.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing bundle")
	}
}
