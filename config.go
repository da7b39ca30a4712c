package pangolin

// config.go — run configuration.
//
// A run config is a yaml file naming the dataset, the target, the model and
// the knobs for one importance computation. Struct tags catch shape
// problems; Validate adds defaults and semantic checks and reports failures
// as ConfigurationError, so a bad config dies before any data loads.

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var runConfigValidator = validator.New()

// RunConfig describes one importance computation end to end.
type RunConfig struct {
	// Dataset is the path of the CSV dataset.
	Dataset string `yaml:"dataset" validate:"required"`
	// Target names the ground-truth column.
	Target string `yaml:"target" validate:"required"`
	// Features optionally restricts which features are explained.
	Features []string `yaml:"features,omitempty"`
	// Model is the path of a yaml linear model file.
	Model string `yaml:"model" validate:"required"`
	// Value selects the value function, "ge" or "pfi".
	Value string `yaml:"value,omitempty" validate:"omitempty,oneof=ge pfi"`
	// Measures lists the measures to compute. Defaults to mse.
	Measures []string `yaml:"measures,omitempty"`
	// Permutations is the sample count. Zero means the default.
	Permutations int `yaml:"permutations,omitempty" validate:"min=0"`
	// AllPermutations enumerates the whole ordering universe when small
	// enough.
	AllPermutations bool `yaml:"all_permutations,omitempty"`
	// Bound caps coalition sizes. Zero means unbounded.
	Bound int `yaml:"bound,omitempty" validate:"min=0"`
	// Local adds per-observation estimates.
	Local bool `yaml:"local,omitempty"`
	// Seed fixes the sampling seed. Zero means time-seeded.
	Seed int64 `yaml:"seed,omitempty"`
	// Workers caps concurrent coalition evaluations. Zero means GOMAXPROCS.
	Workers int `yaml:"workers,omitempty" validate:"min=0"`
	// Out is the directory run artifacts land in.
	Out string `yaml:"out,omitempty"`
}

// LoadRunConfig reads and parses the yaml config at path. Defaults apply at
// Validate time, not here.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate fills defaults and checks the config.
func (c *RunConfig) Validate() error {
	if c.Value == "" {
		c.Value = "ge"
	}
	if len(c.Measures) == 0 {
		c.Measures = []string{"mse"}
	}
	if c.Out == "" {
		c.Out = "pangolin-runs"
	}
	if err := runConfigValidator.Struct(c); err != nil {
		return &ConfigurationError{Reason: err.Error()}
	}
	for _, m := range c.Measures {
		if _, err := MeasureByName(m); err != nil {
			return &ConfigurationError{Reason: err.Error()}
		}
	}
	return nil
}

// Options converts the config's knobs into computation options.
func (c *RunConfig) Options() []Option {
	var opts []Option
	if c.Permutations > 0 {
		opts = append(opts, WithPermutations(c.Permutations))
	}
	if c.AllPermutations {
		opts = append(opts, WithAllPermutations())
	}
	if c.Bound > 0 {
		opts = append(opts, WithBound(c.Bound))
	}
	if c.Seed != 0 {
		opts = append(opts, WithSeed(c.Seed))
	}
	if c.Workers > 0 {
		opts = append(opts, WithWorkers(c.Workers))
	}
	if len(c.Features) > 0 {
		opts = append(opts, WithFeatures(c.Features...))
	}
	return opts
}

// BuildTask loads the dataset and model the config names and assembles the
// computation task.
func (c *RunConfig) BuildTask() (*Task, error) {
	fr, err := ReadCSV(c.Dataset)
	if err != nil {
		return nil, err
	}
	model, err := LoadLinearModel(c.Model)
	if err != nil {
		return nil, err
	}
	measures := make([]Measure, len(c.Measures))
	for i, name := range c.Measures {
		m, err := MeasureByName(name)
		if err != nil {
			return nil, &ConfigurationError{Reason: err.Error()}
		}
		measures[i] = m
	}
	return &Task{
		Data:     fr,
		Target:   c.Target,
		Model:    model,
		Measures: measures,
		Local:    c.Local,
	}, nil
}
