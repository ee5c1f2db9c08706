// Package service holds the interview lifecycle rules: scheduling,
// read-time status derivation, outcome updates, feedback and grouping.
// Handlers call into it; it talks to storage through small interfaces so
// the rules can be exercised without a transport.
package service

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/iliyamo/interview-scheduler/internal/model"
)

// ValidationError reports malformed or missing input.  Field names the
// offending input in its JSON form; Err carries the underlying
// validation.Errors when the failure came from rule validation.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// AuthorizationError reports an actor attempting an operation it is not
// permitted to perform.
type AuthorizationError struct {
	Actor  string
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %q is not allowed to %s", e.Actor, e.Action)
}

// InvalidTransitionError reports a status change the lifecycle does not
// allow.
type InvalidTransitionError struct {
	From model.Status
	To   model.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// SessionProvisioningError wraps a failure of the realtime session
// provider.  Nothing was persisted when it is returned.
type SessionProvisioningError struct {
	SessionRef string
	Err        error
}

func (e *SessionProvisioningError) Error() string {
	return fmt.Sprintf("provision session %s: %v", e.SessionRef, e.Err)
}

func (e *SessionProvisioningError) Unwrap() error { return e.Err }

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// fromValidation converts an ozzo-validation result into a
// *ValidationError.  The first failing field in name order is reported;
// the full set stays reachable through Unwrap.
func fromValidation(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &ValidationError{Reason: err.Error(), Err: err}
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	first := keys[0]
	return &ValidationError{Field: first, Reason: errs[first].Error(), Err: errs}
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
