package commands

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/internal/session"
	"github.com/goliatone/go-estate/internal/sitedata"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"

	TextCodeAuthFailed        = "AUTH_FAILED"
	TextCodeNotPrivileged     = "NOT_PRIVILEGED"
	TextCodePartialFailure    = "PARTIAL_FAILURE"
	TextCodeReorderInProgress = "REORDER_IN_PROGRESS"
	TextCodeDuplicate         = "DUPLICATE_ID"
	TextCodeNotFound          = "NOT_FOUND"
	TextCodeInvalidInput      = "INVALID_INPUT"
	TextCodeRemoteFailed      = "REMOTE_WRITE_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

// wrapExecuteError tags a domain error with the category a caller branches on.
func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	category, code, message := classify(err)
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

func classify(err error) (goerrors.Category, string, string) {
	var (
		authErr     *session.AuthError
		fieldErrs   validation.Errors
		uploadErr   *media.ValidationError
		listingMiss *listings.NotFoundError
		mediaMiss   *media.NotFoundError
	)
	switch {
	case errors.Is(err, sitedata.ErrNotPrivileged):
		return goerrors.CategoryAuth, TextCodeNotPrivileged, "staff session required"
	case errors.As(err, &authErr):
		return goerrors.CategoryAuth, TextCodeAuthFailed, authErr.Message
	case errors.Is(err, media.ErrPartialFailure):
		return goerrors.CategoryConflict, TextCodePartialFailure, "operation partially applied"
	case errors.Is(err, listings.ErrReorderInProgress):
		return goerrors.CategoryConflict, TextCodeReorderInProgress, "another reorder is in progress"
	case errors.Is(err, listings.ErrDuplicateID), errors.Is(err, media.ErrDuplicateID):
		return goerrors.CategoryConflict, TextCodeDuplicate, "record already exists"
	case errors.As(err, &fieldErrs), errors.As(err, &uploadErr),
		errors.Is(err, listings.ErrIDImmutable), errors.Is(err, listings.ErrInvalidDirection),
		errors.Is(err, listings.ErrIDRequired), errors.Is(err, media.ErrURLRequired):
		return goerrors.CategoryValidation, TextCodeInvalidInput, "invalid input"
	case errors.As(err, &listingMiss), errors.As(err, &mediaMiss):
		return goerrors.CategoryNotFound, TextCodeNotFound, "record not found"
	default:
		return goerrors.CategoryExternal, TextCodeRemoteFailed, "remote write failed"
	}
}
