// Package bundle serializes a full importance result as a versioned yaml
// artifact so downstream tooling can consume runs without re-running them.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pangolin"
)

// Version is the current bundle schema version. Load rejects anything else.
const Version = 1

// Bundle is the yaml shape of a serialized result.
type Bundle struct {
	Version       int               `yaml:"version"`
	RunID         string            `yaml:"run_id"`
	Created       string            `yaml:"created"`
	ValueFunction string            `yaml:"value_function"`
	Target        string            `yaml:"target"`
	Features      []string          `yaml:"features"`
	Measures      []string          `yaml:"measures"`
	Minimize      map[string]bool   `yaml:"minimize"`
	Permutations  [][]string        `yaml:"permutations"`
	Clamped       bool              `yaml:"clamped,omitempty"`
	Coalitions    []CoalitionValues `yaml:"coalitions"`
	Importance    []FeatureEstimate `yaml:"importance"`
}

// CoalitionValues is one deduplicated value-table row.
type CoalitionValues struct {
	Features []string             `yaml:"features"`
	Values   map[string]float64   `yaml:"values"`
	PerObs   map[string][]float64 `yaml:"per_observation,omitempty"`
}

// FeatureEstimate carries one feature's aggregates and its raw marginal
// contributions, one entry per sampled ordering.
type FeatureEstimate struct {
	Feature       string               `yaml:"feature"`
	Estimate      map[string]float64   `yaml:"estimate"`
	StdErr        map[string]float64   `yaml:"stderr"`
	Local         map[string][]float64 `yaml:"local,omitempty"`
	LocalStdErr   map[string][]float64 `yaml:"local_stderr,omitempty"`
	Contributions []map[string]float64 `yaml:"contributions"`
}

// FromResult flattens res into a Bundle stamped with created.
func FromResult(res *pangolin.Result, created string) *Bundle {
	b := &Bundle{
		Version:       Version,
		RunID:         res.RunID,
		Created:       created,
		ValueFunction: res.ValueFunction,
		Target:        res.Target,
		Features:      res.Features,
		Measures:      res.Measures,
		Minimize:      res.Minimize,
		Clamped:       res.Clamped,
	}
	for _, perm := range res.Permutations {
		b.Permutations = append(b.Permutations, perm)
	}
	for _, c := range res.Coalitions {
		row := res.Table[c.Key()]
		cv := CoalitionValues{
			Features: c.Features(),
			Values:   make(map[string]float64, len(row)),
		}
		if cv.Features == nil {
			// The empty coalition. yaml decodes an empty sequence as an
			// empty slice, never nil, so keep the saved form identical.
			cv.Features = []string{}
		}
		for name, mv := range row {
			cv.Values[name] = mv.Aggregate
			if mv.PerObs != nil {
				if cv.PerObs == nil {
					cv.PerObs = make(map[string][]float64, len(row))
				}
				cv.PerObs[name] = mv.PerObs
			}
		}
		b.Coalitions = append(b.Coalitions, cv)
	}
	for _, f := range res.Features {
		imp := res.Importance[f]
		fe := FeatureEstimate{
			Feature:     f,
			Estimate:    imp.Estimate,
			StdErr:      imp.StdErr,
			Local:       imp.Local,
			LocalStdErr: imp.LocalStdErr,
		}
		for _, row := range res.Contributions[f] {
			vals := make(map[string]float64, len(row))
			for name, mv := range row {
				vals[name] = mv.Aggregate
			}
			fe.Contributions = append(fe.Contributions, vals)
		}
		b.Importance = append(b.Importance, fe)
	}
	return b
}

// Save writes b as yaml to path, creating the directory as needed.
func (b *Bundle) Save(path string) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create bundle dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return nil
}

// Load reads a bundle back and checks its schema version.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	if b.Version != Version {
		return nil, fmt.Errorf("bundle %s has schema version %d, want %d", path, b.Version, Version)
	}
	return &b, nil
}
