package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/internal/session"
	"github.com/goliatone/go-estate/internal/sitedata"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

type testMessage struct{}

func (testMessage) Type() string { return "estate.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "estate.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external category, got %v", err)
	}
	if !errors.Is(err, execErr) {
		t.Fatalf("expected original error to unwrap, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestExecuteErrorCategories(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category goerrors.Category
		code     string
	}{
		{"not privileged", sitedata.ErrNotPrivileged, goerrors.CategoryAuth, TextCodeNotPrivileged},
		{"auth", &session.AuthError{Message: "Invalid login credentials"}, goerrors.CategoryAuth, TextCodeAuthFailed},
		{"partial", &media.PartialFailureError{Stage: media.StageMetadataInsert, StorageKey: "1_a.png", Err: errors.New("insert")}, goerrors.CategoryConflict, TextCodePartialFailure},
		{"reorder busy", listings.ErrReorderInProgress, goerrors.CategoryConflict, TextCodeReorderInProgress},
		{"validation", listings.Listing{}.Validate(), goerrors.CategoryValidation, TextCodeInvalidInput},
		{"upload", &media.ValidationError{Field: "size", Reason: media.ErrFileTooLarge}, goerrors.CategoryValidation, TextCodeInvalidInput},
		{"not found", &listings.NotFoundError{Resource: "listing", Key: "x"}, goerrors.CategoryNotFound, TextCodeNotFound},
		{"remote", errors.New("connection refused"), goerrors.CategoryExternal, TextCodeRemoteFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := wrapExecuteError(tc.err)
			if !goerrors.IsCategory(err, tc.category) {
				t.Fatalf("expected %s, got %v", tc.category, err)
			}
			var wrapped *goerrors.Error
			if !errors.As(err, &wrapped) || wrapped.TextCode != tc.code {
				t.Fatalf("expected text code %s, got %+v", tc.code, wrapped)
			}
		})
	}
}

func TestHandlerTelemetryReceivesOutcome(t *testing.T) {
	var got TelemetryInfo
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return listings.ErrReorderInProgress
	}, WithOperation[testMessage]("listings.reorder"), WithTelemetry[testMessage](func(_ context.Context, _ testMessage, info TelemetryInfo) {
		got = info
	}))

	if err := h.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected error")
	}
	if got.Status != TelemetryStatusFailed || got.Operation != "listings.reorder" || got.Command != "estate.test.message" {
		t.Fatalf("unexpected telemetry %+v", got)
	}
	if !goerrors.IsCategory(got.Error, goerrors.CategoryConflict) {
		t.Fatalf("expected categorised error in telemetry, got %v", got.Error)
	}
	if got.TextCode != TextCodeReorderInProgress {
		t.Fatalf("expected text code %s, got %q", TextCodeReorderInProgress, got.TextCode)
	}
}

type levelLogger struct {
	levels []string
}

func (l *levelLogger) record(level, msg string) { l.levels = append(l.levels, level+":"+msg) }

func (l *levelLogger) Trace(string, ...any)                          {}
func (l *levelLogger) Debug(string, ...any)                          {}
func (l *levelLogger) Info(msg string, _ ...any)                     { l.record("info", msg) }
func (l *levelLogger) Warn(msg string, _ ...any)                     { l.record("warn", msg) }
func (l *levelLogger) Error(msg string, _ ...any)                    { l.record("error", msg) }
func (l *levelLogger) Fatal(string, ...any)                          {}
func (l *levelLogger) WithFields(map[string]any) interfaces.Logger   { return l }
func (l *levelLogger) WithContext(context.Context) interfaces.Logger { return l }

func TestLogTelemetryLevels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, "info:command.execute.success"},
		{"rejected", sitedata.ErrNotPrivileged, "warn:command.execute.rejected"},
		{"failed", errors.New("connection refused"), "error:command.execute.failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger := &levelLogger{}
			h := NewHandler[testMessage](func(context.Context, testMessage) error {
				return tc.err
			}, WithLogger[testMessage](logger))
			_ = h.Execute(context.Background(), testMessage{})
			if len(logger.levels) != 1 || logger.levels[0] != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, logger.levels)
			}
		})
	}
}
