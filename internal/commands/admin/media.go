package admincmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-estate/internal/commands"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

const (
	uploadBatchMessageType    = "estate.media.upload_batch"
	registerURLMessageType    = "estate.media.register_url"
	deleteMediaMessageType    = "estate.media.delete"
	defaultUploadBatchTimeout = 10 * time.Minute
)

// ErrBatchIncomplete reports that at least one file of a batch failed.
var ErrBatchIncomplete = errors.New("admincmd: some uploads failed")

// BatchError lists the files of a batch that failed. It counts as a partial
// failure because the other files stay uploaded.
type BatchError struct {
	Failed []media.UploadResult
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of the uploaded files failed", len(e.Failed))
}

func (e *BatchError) Unwrap() []error {
	errs := []error{ErrBatchIncomplete, media.ErrPartialFailure}
	for _, result := range e.Failed {
		errs = append(errs, result.Err)
	}
	return errs
}

// UploadBatchCommand uploads files one after another.
type UploadBatchCommand struct {
	Files    []media.UploadFile                 `json:"-"`
	Progress func(done, total int)              `json:"-"`
	Results  func(results []media.UploadResult) `json:"-"`
}

func (UploadBatchCommand) Type() string { return uploadBatchMessageType }

func (m UploadBatchCommand) Validate() error {
	errs := validation.Errors{}
	if len(m.Files) == 0 {
		errs["files"] = validation.NewError("estate.media.upload_batch.files_required", "at least one file is required")
	}
	for i, file := range m.Files {
		if file.Body == nil {
			errs[fmt.Sprintf("files.%d", i)] = validation.NewError("estate.media.upload_batch.body_required", "file body is required")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// NewUploadBatchHandler returns a handler whose error is a *BatchError when
// some files failed; the results callback still sees every outcome.
func NewUploadBatchHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[UploadBatchCommand]) *commands.Handler[UploadBatchCommand] {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg UploadBatchCommand) error {
		results, err := provider.UploadMediaBatch(ctx, msg.Files, msg.Progress)
		if err != nil {
			return err
		}
		if msg.Results != nil {
			msg.Results(results)
		}
		var failed []media.UploadResult
		for _, result := range results {
			if result.Err != nil {
				failed = append(failed, result)
			}
		}
		logging.WithFields(logger, map[string]any{
			"files":  len(results),
			"failed": len(failed),
		}).Info("media.command.upload_batch.completed")
		if len(failed) > 0 {
			return &BatchError{Failed: failed}
		}
		return nil
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[UploadBatchCommand]{
		commands.WithLogger[UploadBatchCommand](logger),
		commands.WithOperation[UploadBatchCommand]("media.upload_batch"),
		commands.WithTimeout[UploadBatchCommand](defaultUploadBatchTimeout),
	}, opts...)...)
}

// RegisterURLCommand adds an externally hosted asset to the library.
type RegisterURLCommand struct {
	URL    string             `json:"url"`
	Name   string             `json:"name,omitempty"`
	Tags   []string           `json:"tags,omitempty"`
	Result func(*media.Asset) `json:"-"`
}

func (RegisterURLCommand) Type() string { return registerURLMessageType }

func (m RegisterURLCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.URL, validation.Required, is.URL),
	)
}

func NewRegisterURLHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[RegisterURLCommand]) *commands.Handler[RegisterURLCommand] {
	exec := func(ctx context.Context, msg RegisterURLCommand) error {
		asset, err := provider.RegisterMediaURL(ctx, msg.URL, msg.Name, msg.Tags)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			msg.Result(asset)
		}
		return nil
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[RegisterURLCommand]{
		commands.WithLogger[RegisterURLCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[RegisterURLCommand]("media.register_url"),
	}, opts...)...)
}

// DeleteMediaCommand removes an asset from the bucket and the library.
type DeleteMediaCommand struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

func (DeleteMediaCommand) Type() string { return deleteMediaMessageType }

func (m DeleteMediaCommand) Validate() error {
	return validation.ValidateStruct(&m, validation.Field(&m.ID, validation.Required))
}

func NewDeleteMediaHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteMediaCommand]) *commands.Handler[DeleteMediaCommand] {
	exec := func(ctx context.Context, msg DeleteMediaCommand) error {
		return provider.DeleteMedia(ctx, msg.ID, msg.URL)
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[DeleteMediaCommand]{
		commands.WithLogger[DeleteMediaCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[DeleteMediaCommand]("media.delete"),
	}, opts...)...)
}
