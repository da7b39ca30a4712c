package pangolin

// errors.go — error taxonomy for importance computations.
//
// Three failure classes: bad inputs caught before any expensive work
// (ConfigurationError), too few sampled permutations for an uncertainty
// estimate (InsufficientSamplesError), and a value-function evaluation that
// failed mid-computation (EvaluationError). Missing-value hygiene is not an
// error: rows whose target goes missing during replacement are dropped, by
// contract.

import "fmt"

// ConfigurationError reports invalid inputs detected before evaluation
// starts: unknown feature or target columns, malformed knobs.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// configErrf builds a ConfigurationError from a format string.
func configErrf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientSamplesError reports that an uncertainty estimate was required
// but fewer than two permutations were sampled, leaving the standard error
// undefined.
type InsufficientSamplesError struct {
	Sampled int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("insufficient samples: %d permutation(s) sampled, need at least 2 for an uncertainty estimate", e.Sampled)
}

// EvaluationError reports a failed value-function evaluation. It aborts the
// whole computation: partial Shapley estimates are not meaningful.
type EvaluationError struct {
	Coalition Coalition
	Err       error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate coalition %s: %v", e.Coalition, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
