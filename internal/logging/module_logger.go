package logging

import (
	"context"
	"maps"
	"strings"

	"github.com/goliatone/go-estate/pkg/interfaces"
)

const (
	rootModule      = "estate"
	sessionModule   = "estate.session"
	contentModule   = "estate.content"
	listingsModule  = "estate.listings"
	mediaModule     = "estate.media"
	providerModule  = "estate.provider"
	CommandsModule  = "estate.commands"
	adaptersModule  = "estate.adapters"
	fieldModuleName = "module"
)

const (
	fieldOperation = "operation"
	fieldRecordID  = "record_id"
)

// ModuleLogger returns a module-scoped logger, falling back to a no-op logger
// when no provider is configured. The module name is attached as a field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		fieldModuleName: module,
	})
}

// SessionLogger returns the logger used by the session manager.
func SessionLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sessionModule)
}

// ContentLogger returns the logger used by the site content store.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// ListingsLogger returns the logger used by the listings store.
func ListingsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, listingsModule)
}

// MediaLogger returns the logger used by the media store.
func MediaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mediaModule)
}

// ProviderLogger returns the logger used by the data provider.
func ProviderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, providerModule)
}

// CommandsLogger returns the logger used by admin command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, CommandsModule)
}

// AdaptersLogger returns the logger used by remote backend adapters.
func AdaptersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, adaptersModule)
}

// WithOperation tags logger with an operation name and, when non-empty, the
// record it acts on.
func WithOperation(logger interfaces.Logger, operation, recordID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(operation); trimmed != "" {
		fields[fieldOperation] = trimmed
	}
	if trimmed := strings.TrimSpace(recordID); trimmed != "" {
		fields[fieldRecordID] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

// Ensure returns logger, or a no-op logger when logger is nil.
func Ensure(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

// WithFields attaches structured fields when logger implements
// interfaces.FieldsLogger. Loggers without field support are returned as is.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}
