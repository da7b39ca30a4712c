package pangolin

// replace.go — the coalition replacement engine.
//
// CartesianReplace simulates "these features take their values from other
// observations" by expanding a frame to all ordered row pairs (i, j): the
// result row keeps row i's values except for the replace set, which is
// overwritten from row j. Bookkeeping columns record the pair so measures
// can group rows by original observation. A self pair (i, i) replaces
// nothing real; masking its target as missing lets the usual NA-dropping
// discard it downstream.

import "math"

// Bookkeeping column names attached by CartesianReplace.
const (
	ColObsID     = "obs.id"
	ColReplaceID = "replace.id"
)

// CartesianReplace expands f to its n² ordered-pair rows with the named
// replace columns overwritten from the pairing row. With selfNA, the target
// columns of self-pair rows are set to missing. An empty replace set is the
// identity: f itself is returned, unexpanded and unannotated.
func CartesianReplace(f *Frame, replace []string, targets []string, selfNA bool) (*Frame, error) {
	if len(replace) == 0 {
		return f, nil
	}
	replaceSet := make(map[string]bool, len(replace))
	for _, name := range replace {
		if !f.Has(name) {
			return nil, configErrf("replace column %q is not in the frame", name)
		}
		replaceSet[name] = true
	}
	targetSet := make(map[string]bool, len(targets))
	for _, name := range targets {
		if !f.Has(name) {
			return nil, configErrf("target column %q is not in the frame", name)
		}
		targetSet[name] = true
	}
	if f.Has(ColObsID) || f.Has(ColReplaceID) {
		return nil, configErrf("frame already carries a %s or %s column", ColObsID, ColReplaceID)
	}

	n := f.Rows()
	names := make([]string, 0, len(f.names)+2)
	names = append(names, f.names...)
	names = append(names, ColObsID, ColReplaceID)
	cols := make([][]float64, len(names))

	for c, name := range f.names {
		src := f.cols[c]
		out := make([]float64, n*n)
		if replaceSet[name] {
			// Row (i, j) takes this column from observation j.
			for i := 0; i < n; i++ {
				copy(out[i*n:(i+1)*n], src)
			}
		} else {
			for i := 0; i < n; i++ {
				v := src[i]
				row := out[i*n : (i+1)*n]
				for j := range row {
					row[j] = v
				}
			}
		}
		if selfNA && targetSet[name] {
			for i := 0; i < n; i++ {
				out[i*n+i] = math.NaN()
			}
		}
		cols[c] = out
	}

	obs := make([]float64, n*n)
	rep := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			obs[i*n+j] = float64(i)
			rep[i*n+j] = float64(j)
		}
	}
	cols[len(f.names)] = obs
	cols[len(f.names)+1] = rep

	return &Frame{names: names, index: buildIndex(names), cols: cols}, nil
}
