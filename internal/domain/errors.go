package domain

import "fmt"

// ValidationError reports a collected field value that cannot be coerced
// into the interest record shape. Recovered locally: the interview stays
// on the same field and re-prompts.
type ValidationError struct {
	Field  Field
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %q for field %s: %s", e.Value, e.Field, e.Reason)
}

// GenerationError wraps a failure of the text-generation collaborator.
// Callers fall back to fixed templates; the turn is never aborted.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generation failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// LoggingError wraps a failure of the interest-logging collaborator.
// The interview stays in the confirmation state so the transition can be
// retried on the next turn.
type LoggingError struct {
	Err error
}

func (e *LoggingError) Error() string { return "interest logging failed: " + e.Err.Error() }
func (e *LoggingError) Unwrap() error { return e.Err }

// SessionStoreError wraps a session store failure. Fatal for the turn.
type SessionStoreError struct {
	Err error
}

func (e *SessionStoreError) Error() string { return "session store: " + e.Err.Error() }
func (e *SessionStoreError) Unwrap() error { return e.Err }
