package pangolin

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("configuration", func(t *testing.T) {
		err := configErrf("target %q is not a dataset column", "y")
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("configErrf did not produce a ConfigurationError: %v", err)
		}
		if !strings.Contains(err.Error(), "configuration:") {
			t.Fatalf("missing class prefix: %q", err.Error())
		}
	})

	t.Run("insufficient samples", func(t *testing.T) {
		err := error(&InsufficientSamplesError{Sampled: 1})
		if !strings.Contains(err.Error(), "1 permutation") {
			t.Fatalf("unexpected message: %q", err.Error())
		}
	})

	t.Run("evaluation unwraps", func(t *testing.T) {
		cause := errors.New("model exploded")
		err := error(&EvaluationError{Coalition: NewCoalition("x1"), Err: cause})
		if !errors.Is(err, cause) {
			t.Fatal("EvaluationError does not unwrap to its cause")
		}
		wrapped := fmt.Errorf("run failed: %w", err)
		var evalErr *EvaluationError
		if !errors.As(wrapped, &evalErr) {
			t.Fatal("EvaluationError lost through wrapping")
		}
		if !strings.Contains(evalErr.Error(), "{x1}") {
			t.Fatalf("coalition missing from message: %q", evalErr.Error())
		}
	})
}
