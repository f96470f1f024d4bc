package listings

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRepositoryRequired = errors.New("listings: repository is required")
	ErrIDRequired         = errors.New("listings: id is required")
	ErrIDImmutable        = errors.New("listings: id cannot change after creation")
	ErrDuplicateID        = errors.New("listings: a listing with this id already exists")
	ErrInvalidDirection   = errors.New("listings: direction must be up or down")
	ErrReorderInProgress  = errors.New("listings: a reorder is already in progress")
	ErrReorderFailed      = errors.New("listings: reorder could not be persisted")
	ErrApplyFailed        = errors.New("listings: update could not be persisted")
)

// NotFoundError is returned when a listing does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// ReorderError lists the listings whose display order did not persist. Local
// state has been reloaded from the repository by the time it is returned.
type ReorderError struct {
	Failed []string
	Err    error
}

func (e *ReorderError) Error() string {
	msg := fmt.Sprintf("listings: reorder failed for %s", strings.Join(e.Failed, ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReorderError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrReorderFailed}
	}
	return []error{ErrReorderFailed, e.Err}
}

// ApplyError reports the writes of an ApplyUpdate diff that failed.
type ApplyError struct {
	Failed []string
	Err    error
}

func (e *ApplyError) Error() string {
	msg := fmt.Sprintf("listings: %d write(s) failed (%s)", len(e.Failed), strings.Join(e.Failed, ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ApplyError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrApplyFailed}
	}
	return []error{ErrApplyFailed, e.Err}
}
