package media

import (
	"errors"
	"fmt"
)

var (
	ErrRepositoryRequired = errors.New("media: repository is required")
	ErrStorageRequired    = errors.New("media: blob storage is required")
	ErrInvalidUpload      = errors.New("media: invalid upload")
	ErrFileTooLarge       = errors.New("media: file exceeds the size limit")
	ErrTypeNotAllowed     = errors.New("media: file type is not allowed")
	ErrURLRequired        = errors.New("media: url is required")
	ErrIDRequired         = errors.New("media: id is required")
	ErrDuplicateID        = errors.New("media: an asset with this id already exists")
	ErrUploadFailed       = errors.New("media: upload failed")
	ErrDeleteFailed       = errors.New("media: delete failed")
	ErrPartialFailure     = errors.New("media: remote state is inconsistent")
	ErrApplyFailed        = errors.New("media: update could not be persisted")
)

// Stage names the remote step an upload or delete failed at.
type Stage string

const (
	StageBlobPut        Stage = "blob_put"
	StageMetadataInsert Stage = "metadata_insert"
	StageBlobDelete     Stage = "blob_delete"
	StageMetadataDelete Stage = "metadata_delete"
)

// ValidationError is returned before any remote call when an upload is
// rejected.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("media: %s: %v", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidUpload, e.Reason}
}

// UploadError is a failed upload that left nothing behind.
type UploadError struct {
	Stage Stage
	Name  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("media: upload %q failed at %s: %v", e.Name, e.Stage, e.Err)
}

func (e *UploadError) Unwrap() []error {
	return []error{ErrUploadFailed, e.Err}
}

// PartialFailureError is an upload whose blob was written but whose metadata
// insert failed and whose compensating blob delete also failed. The blob at
// StorageKey is orphaned.
type PartialFailureError struct {
	Stage      Stage
	StorageKey string
	Err        error
	CleanupErr error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("media: %s failed for %q and cleanup failed: %v (cleanup: %v)",
		e.Stage, e.StorageKey, e.Err, e.CleanupErr)
}

func (e *PartialFailureError) Unwrap() []error {
	return []error{ErrPartialFailure, e.Err}
}

// DeleteError names the stage a delete failed at. When the blob was removed
// but the metadata delete failed, BlobDeleted is set and the error also
// matches ErrPartialFailure.
type DeleteError struct {
	Stage       Stage
	ID          string
	BlobDeleted bool
	Err         error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("media: delete %q failed at %s: %v", e.ID, e.Stage, e.Err)
}

func (e *DeleteError) Unwrap() []error {
	if e.BlobDeleted {
		return []error{ErrDeleteFailed, ErrPartialFailure, e.Err}
	}
	return []error{ErrDeleteFailed, e.Err}
}

// NotFoundError is returned when an asset does not exist.
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

// ApplyError reports the writes of an ApplyUpdate diff that failed.
type ApplyError struct {
	Failed []string
	Err    error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("media: %d write(s) failed: %v", len(e.Failed), e.Err)
}

func (e *ApplyError) Unwrap() []error {
	return []error{ErrApplyFailed, e.Err}
}
