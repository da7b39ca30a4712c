package pangolin

// model.go — the model collaborator.
//
// Models are opaque: anything that predicts over a Frame plugs in. The
// frames a model sees routinely carry the target and bookkeeping columns
// alongside the features, so implementations should read the columns they
// know and ignore the rest. The built-in LinearModel covers the CLI and the
// tests.

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Model produces one prediction per frame row. Predict must be free of side
// effects and safe for concurrent use; it is called once per coalition
// evaluation, possibly in parallel.
type Model interface {
	Predict(f *Frame) ([]float64, error)
}

// LinearModel predicts intercept + sum of coefficient times column value.
type LinearModel struct {
	Intercept    float64            `yaml:"intercept"`
	Coefficients map[string]float64 `yaml:"coefficients"`
}

func (m *LinearModel) Predict(f *Frame) ([]float64, error) {
	preds := make([]float64, f.Rows())
	for i := range preds {
		preds[i] = m.Intercept
	}
	// Apply coefficients in sorted order so float rounding cannot differ
	// between calls.
	names := make([]string, 0, len(m.Coefficients))
	for name := range m.Coefficients {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		col := f.col(name)
		if col == nil {
			return nil, fmt.Errorf("linear model: column %q not in frame", name)
		}
		w := m.Coefficients[name]
		for i, v := range col {
			preds[i] += w * v
		}
	}
	return preds, nil
}

// LoadLinearModel reads a yaml model file holding an intercept and a
// coefficient map.
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	var m LinearModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	return &m, nil
}
