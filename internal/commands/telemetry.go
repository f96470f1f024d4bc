package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// TelemetryStatus is the outcome class of one execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one execution. Error is already categorised;
// TextCode repeats its go-errors text code so sinks need not unwrap it.
type TelemetryInfo struct {
	Command   string
	Operation string
	Duration  time.Duration
	Status    TelemetryStatus
	Error     error
	TextCode  string
	Logger    interfaces.Logger
}

// Telemetry is called once per execution after the outcome is known.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// LogTelemetry writes one entry per execution to info.Logger. Failures that
// the operator caused (validation, privileges, missing records) are warnings;
// everything else is an error.
func LogTelemetry[T command.Message]() Telemetry[T] {
	return func(_ context.Context, _ T, info TelemetryInfo) {
		logger := logging.Ensure(info.Logger)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		if info.Status == TelemetryStatusSuccess {
			logger.Info("command.execute.success", args...)
			return
		}
		args = append(args, "error", info.Error, "text_code", info.TextCode)
		switch {
		case info.Status == TelemetryStatusContextError:
			logger.Error("command.execute.context_error", args...)
		case operatorError(info.Error):
			logger.Warn("command.execute.rejected", args...)
		default:
			logger.Error("command.execute.failed", args...)
		}
	}
}

func operatorError(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryValidation) ||
		goerrors.IsCategory(err, goerrors.CategoryAuth) ||
		goerrors.IsCategory(err, goerrors.CategoryNotFound)
}

func textCode(err error) string {
	var wrapped *goerrors.Error
	if errors.As(err, &wrapped) {
		return wrapped.TextCode
	}
	return ""
}

// CommandLogger returns the logger for one command module, named
// estate.commands.<module> and tagged with the module.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "admin"
	}
	logger := logging.ModuleLogger(provider, logging.CommandsModule+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
