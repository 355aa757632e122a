package config

import (
	"fmt"
	"regexp"
	"time"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// namespacePattern restricts namespaces to characters that are safe in file
// paths and memory keys.
var namespacePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Validate checks a RunConfig for structural and semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *RunConfig) []ValidationError {
	var errs []ValidationError
	r := cfg.Run

	if r.Namespace == "" {
		errs = append(errs, ValidationError{Field: "run.namespace", Message: "is required"})
	} else if !namespacePattern.MatchString(r.Namespace) {
		errs = append(errs, ValidationError{
			Field:   "run.namespace",
			Message: fmt.Sprintf("invalid namespace %q (letters, digits, - and _ only)", r.Namespace),
		})
	}

	if r.Task == "" {
		errs = append(errs, ValidationError{Field: "run.task", Message: "is required"})
	}

	if r.HookTimeout != "" {
		if d, err := time.ParseDuration(r.HookTimeout); err != nil {
			errs = append(errs, ValidationError{
				Field:   "run.hook_timeout",
				Message: fmt.Sprintf("invalid duration %q", r.HookTimeout),
			})
		} else if d <= 0 {
			errs = append(errs, ValidationError{
				Field:   "run.hook_timeout",
				Message: "must be positive",
			})
		}
	}

	return errs
}
