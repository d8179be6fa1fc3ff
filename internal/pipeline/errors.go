package pipeline

import (
	"errors"
	"fmt"
)

// ErrContractViolated marks a model reply that does not have the expected shape.
var ErrContractViolated = errors.New("generation contract violated")

// AuthenticationError means the caller could not be identified. It is raised
// before any job exists.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	if e.Err == nil {
		return "authentication failed"
	}
	return "authentication failed: " + e.Err.Error()
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// ValidationError reports a malformed request body. It is raised before any
// job exists.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// GenerationContractError wraps a reply from the given stage that could not be
// turned into the expected structure.
type GenerationContractError struct {
	Stage string
	Err   error
}

func (e *GenerationContractError) Error() string {
	return fmt.Sprintf("%s generation failed: %v: %v", e.Stage, ErrContractViolated, e.Err)
}

func (e *GenerationContractError) Unwrap() []error { return []error{ErrContractViolated, e.Err} }

// SynthesisError wraps a failed text-to-speech call, including the provider body.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return "synthesis failed: " + e.Err.Error()
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// StorageError wraps a failed blob upload, URL signing or metadata write.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func contractError(stage string, format string, args ...interface{}) error {
	return &GenerationContractError{Stage: stage, Err: fmt.Errorf(format, args...)}
}
