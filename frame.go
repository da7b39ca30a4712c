package pangolin

// frame.go — the tabular dataset collaborator.
//
// A Frame is a fixed set of named float64 columns of equal length. Missing
// values are NaN. Frames are treated as immutable: every operation returns a
// new Frame and public accessors never alias column storage, so one Frame
// can be shared read-only across concurrent evaluations.

import (
	"fmt"
	"math"
)

// Frame holds named columns of equal length. The zero value is an empty
// frame with no columns and no rows.
type Frame struct {
	names []string
	index map[string]int
	cols  [][]float64
}

// NewFrame builds a frame from column names and matching column data. All
// columns must share one length; names must be unique and non-empty. The
// input slices are copied.
func NewFrame(names []string, cols [][]float64) (*Frame, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("frame: %d names for %d columns", len(names), len(cols))
	}
	f := &Frame{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
		cols:  make([][]float64, len(cols)),
	}
	rows := -1
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("frame: empty column name at position %d", i)
		}
		if _, dup := f.index[name]; dup {
			return nil, fmt.Errorf("frame: duplicate column %q", name)
		}
		if rows == -1 {
			rows = len(cols[i])
		} else if len(cols[i]) != rows {
			return nil, fmt.Errorf("frame: column %q has %d rows, want %d", name, len(cols[i]), rows)
		}
		f.names[i] = name
		f.index[name] = i
		f.cols[i] = append([]float64(nil), cols[i]...)
	}
	return f, nil
}

// Rows returns the number of rows.
func (f *Frame) Rows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return len(f.cols[0])
}

// Names returns the column names in frame order.
func (f *Frame) Names() []string {
	return append([]string(nil), f.names...)
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns a copy of the named column, or an error if it is absent.
func (f *Frame) Column(name string) ([]float64, error) {
	col := f.col(name)
	if col == nil {
		return nil, fmt.Errorf("frame: no column %q", name)
	}
	return append([]float64(nil), col...), nil
}

// col returns the named column's backing slice without copying. Callers
// inside the package must not modify it. Returns nil for unknown names.
func (f *Frame) col(name string) []float64 {
	i, ok := f.index[name]
	if !ok {
		return nil
	}
	return f.cols[i]
}

// Select returns a new frame with rows taken from f at the given indices, in
// order. An index may repeat. Panics if an index is out of range.
func (f *Frame) Select(idx []int) *Frame {
	out := &Frame{
		names: append([]string(nil), f.names...),
		index: buildIndex(f.names),
		cols:  make([][]float64, len(f.cols)),
	}
	for c, src := range f.cols {
		col := make([]float64, len(idx))
		for r, i := range idx {
			col[r] = src[i]
		}
		out.cols[c] = col
	}
	return out
}

// Bind returns f's rows followed by g's rows. The schemas must match
// exactly: same column names in the same order.
func (f *Frame) Bind(g *Frame) (*Frame, error) {
	if len(f.names) != len(g.names) {
		return nil, fmt.Errorf("frame: bind: %d columns vs %d", len(f.names), len(g.names))
	}
	for i, name := range f.names {
		if g.names[i] != name {
			return nil, fmt.Errorf("frame: bind: column %d is %q vs %q", i, name, g.names[i])
		}
	}
	out := &Frame{
		names: append([]string(nil), f.names...),
		index: buildIndex(f.names),
		cols:  make([][]float64, len(f.cols)),
	}
	for c := range f.cols {
		col := make([]float64, 0, len(f.cols[c])+len(g.cols[c]))
		col = append(col, f.cols[c]...)
		col = append(col, g.cols[c]...)
		out.cols[c] = col
	}
	return out, nil
}

// WithColumn returns a copy of f with the named column replaced, or appended
// when no column of that name exists. vals must match the row count.
func (f *Frame) WithColumn(name string, vals []float64) (*Frame, error) {
	if name == "" {
		return nil, fmt.Errorf("frame: empty column name")
	}
	if len(f.cols) > 0 && len(vals) != f.Rows() {
		return nil, fmt.Errorf("frame: column %q has %d rows, want %d", name, len(vals), f.Rows())
	}
	names := append([]string(nil), f.names...)
	cols := make([][]float64, len(f.cols))
	for c := range f.cols {
		cols[c] = append([]float64(nil), f.cols[c]...)
	}
	if i, ok := f.index[name]; ok {
		cols[i] = append([]float64(nil), vals...)
	} else {
		names = append(names, name)
		cols = append(cols, append([]float64(nil), vals...))
	}
	return &Frame{names: names, index: buildIndex(names), cols: cols}, nil
}

// DropMissing returns a copy of f without the rows that hold a missing value
// in any of the named columns.
func (f *Frame) DropMissing(colNames ...string) (*Frame, error) {
	checked := make([][]float64, len(colNames))
	for i, name := range colNames {
		col := f.col(name)
		if col == nil {
			return nil, fmt.Errorf("frame: no column %q", name)
		}
		checked[i] = col
	}
	keep := make([]int, 0, f.Rows())
	for r := 0; r < f.Rows(); r++ {
		ok := true
		for _, col := range checked {
			if math.IsNaN(col[r]) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, r)
		}
	}
	return f.Select(keep), nil
}

// Equal reports whether two frames share schema and cell values. Missing
// values compare equal to missing values.
func (f *Frame) Equal(g *Frame) bool {
	if len(f.names) != len(g.names) || f.Rows() != g.Rows() {
		return false
	}
	for i, name := range f.names {
		if g.names[i] != name {
			return false
		}
	}
	for c := range f.cols {
		for r := range f.cols[c] {
			a, b := f.cols[c][r], g.cols[c][r]
			if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
				return false
			}
		}
	}
	return true
}

func buildIndex(names []string) map[string]int {
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	return index
}
