package services

import (
	"errors"
	"fmt"
)

// ErrCompletionTimeout is returned when the completion provider does not
// answer within the configured budget.
var ErrCompletionTimeout = errors.New("completion request timed out")

// ErrMissingCredential matches every *MissingCredentialError.
var ErrMissingCredential = errors.New("missing credential")

type MissingCredentialError struct{ Key string }

func (e *MissingCredentialError) Error() string { return "Missing " + e.Key }

func (e *MissingCredentialError) Is(target error) bool { return target == ErrMissingCredential }

// UpstreamError carries a non-2xx reply from an external provider.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error: %d %s", e.Provider, e.Status, e.Body)
}

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }
