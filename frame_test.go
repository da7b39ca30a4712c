package pangolin

import (
	"math"
	"strings"
	"testing"
)

// testFrame builds a small frame or fails the test.
func testFrame(t *testing.T, names []string, cols [][]float64) *Frame {
	t.Helper()
	f, err := NewFrame(names, cols)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	return f
}

func TestNewFrameValidation(t *testing.T) {
	tests := []struct {
		name    string
		cols    []string
		data    [][]float64
		wantErr string
	}{
		{"mismatched lengths", []string{"a", "b"}, [][]float64{{1}}, "2 names for 1 columns"},
		{"empty name", []string{"a", ""}, [][]float64{{1}, {2}}, "empty column name"},
		{"duplicate name", []string{"a", "a"}, [][]float64{{1}, {2}}, "duplicate column"},
		{"ragged columns", []string{"a", "b"}, [][]float64{{1, 2}, {3}}, "has 1 rows, want 2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFrame(tc.cols, tc.data)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestFrameCopiesInput(t *testing.T) {
	raw := [][]float64{{1, 2}, {3, 4}}
	f := testFrame(t, []string{"a", "b"}, raw)
	raw[0][0] = 99
	col, err := f.Column("a")
	if err != nil {
		t.Fatal(err)
	}
	if col[0] != 1 {
		t.Fatalf("frame aliases its input: a[0] = %v", col[0])
	}
	col[1] = 99
	again, _ := f.Column("a")
	if again[1] != 2 {
		t.Fatalf("Column aliases frame storage: a[1] = %v", again[1])
	}
}

func TestSelectWithRepetition(t *testing.T) {
	f := testFrame(t, []string{"a", "b"}, [][]float64{{10, 20, 30}, {1, 2, 3}})
	got := f.Select([]int{2, 0, 2})
	want := testFrame(t, []string{"a", "b"}, [][]float64{{30, 10, 30}, {3, 1, 3}})
	if !got.Equal(want) {
		t.Fatalf("Select result wrong: rows=%d", got.Rows())
	}
	if f.Rows() != 3 {
		t.Fatal("Select mutated the source frame")
	}
}

func TestBind(t *testing.T) {
	f := testFrame(t, []string{"a", "b"}, [][]float64{{1}, {2}})
	g := testFrame(t, []string{"a", "b"}, [][]float64{{3, 5}, {4, 6}})
	got, err := f.Bind(g)
	if err != nil {
		t.Fatal(err)
	}
	want := testFrame(t, []string{"a", "b"}, [][]float64{{1, 3, 5}, {2, 4, 6}})
	if !got.Equal(want) {
		t.Fatal("Bind produced wrong rows")
	}

	h := testFrame(t, []string{"b", "a"}, [][]float64{{0}, {0}})
	if _, err := f.Bind(h); err == nil {
		t.Fatal("Bind accepted mismatched schemas")
	}
}

func TestWithColumn(t *testing.T) {
	f := testFrame(t, []string{"a"}, [][]float64{{1, 2}})

	replaced, err := f.WithColumn("a", []float64{7, 8})
	if err != nil {
		t.Fatal(err)
	}
	col, _ := replaced.Column("a")
	if col[0] != 7 || col[1] != 8 {
		t.Fatalf("replace failed: %v", col)
	}

	appended, err := f.WithColumn("b", []float64{9, 10})
	if err != nil {
		t.Fatal(err)
	}
	if !appended.Has("b") || len(appended.Names()) != 2 {
		t.Fatalf("append failed: %v", appended.Names())
	}
	if f.Has("b") {
		t.Fatal("WithColumn mutated the source frame")
	}

	if _, err := f.WithColumn("c", []float64{1}); err == nil {
		t.Fatal("accepted a column with the wrong length")
	}
}

func TestDropMissing(t *testing.T) {
	nan := math.NaN()
	f := testFrame(t, []string{"x", "y"}, [][]float64{{1, nan, 3, 4}, {nan, 5, 6, nan}})

	got, err := f.DropMissing("y")
	if err != nil {
		t.Fatal(err)
	}
	if got.Rows() != 2 {
		t.Fatalf("DropMissing(y) kept %d rows, want 2", got.Rows())
	}

	both, err := f.DropMissing("x", "y")
	if err != nil {
		t.Fatal(err)
	}
	if both.Rows() != 1 {
		t.Fatalf("DropMissing(x, y) kept %d rows, want 1", both.Rows())
	}

	if _, err := f.DropMissing("nope"); err == nil {
		t.Fatal("accepted an unknown column")
	}
}

func TestFrameEqualTreatsNaNAsEqual(t *testing.T) {
	nan := math.NaN()
	f := testFrame(t, []string{"a"}, [][]float64{{1, nan}})
	g := testFrame(t, []string{"a"}, [][]float64{{1, nan}})
	if !f.Equal(g) {
		t.Fatal("frames with matching NaN cells should be equal")
	}
	h := testFrame(t, []string{"a"}, [][]float64{{1, 2}})
	if f.Equal(h) {
		t.Fatal("NaN cell equal to a number")
	}
}
