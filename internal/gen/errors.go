package gen

import (
	"errors"
	"fmt"
	"strings"
)

// PolicyRejectionError marks a generation blocked by the provider's safety
// filters. The executor responds by rewriting the prompt, not by retrying it
// verbatim.
type PolicyRejectionError struct {
	Reasons []string
}

func (e *PolicyRejectionError) Error() string {
	if len(e.Reasons) == 0 {
		return "generation blocked by safety filters"
	}
	return "generation blocked by safety filters: " + strings.Join(e.Reasons, ", ")
}

// MalformedOutputError marks a response that came back but could not be
// parsed. Retrying would burn quota on the same failure, so the executor
// fails fast and keeps the raw text for diagnosis.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// ExhaustedError marks a generation unit that failed on every attempt.
type ExhaustedError struct {
	Kind     Kind
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s generation failed after %d attempts: %v", e.Kind, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// IsExhausted reports whether err is a retry exhaustion.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}
