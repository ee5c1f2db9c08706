// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// service package to distinguish between different failure scenarios
// without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrUserNotFound is returned when no user row matches the given id.
var ErrUserNotFound = errors.New("user not found")

// ErrInterviewNotFound is returned when no interview row matches the
// given id or session reference.
var ErrInterviewNotFound = errors.New("interview not found")

// ErrStatusChanged is returned by a compare-and-set status update when
// the stored status no longer matches the expected one.  Callers should
// re-read the interview and decide again.
var ErrStatusChanged = errors.New("interview status changed concurrently")

// ErrConflict is returned when an insert collides with an existing
// unique key, such as a reused session reference.
var ErrConflict = errors.New("conflict")

// isDuplicateKey recognises unique violations from both MySQL (1062) and
// SQLite ("UNIQUE constraint failed").
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint failed")
}
