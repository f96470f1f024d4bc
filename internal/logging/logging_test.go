package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-estate/pkg/interfaces"
)

type recordingLogger struct {
	fields []map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, fields)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "estate.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger.WithContext(context.Background()).(interfaces.FieldsLogger).WithFields(map[string]any{"k": "v"}).Info("noop")
}

func TestModuleLoggersAttachModuleField(t *testing.T) {
	cases := []struct {
		name   string
		get    func(interfaces.LoggerProvider) interfaces.Logger
		module string
	}{
		{"session", SessionLogger, "estate.session"},
		{"content", ContentLogger, "estate.content"},
		{"listings", ListingsLogger, "estate.listings"},
		{"media", MediaLogger, "estate.media"},
		{"provider", ProviderLogger, "estate.provider"},
		{"commands", CommandsLogger, "estate.commands"},
		{"adapters", AdaptersLogger, "estate.adapters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recordingLogger{}
			provider := &stubProvider{logger: rec}
			tc.get(provider)
			if len(provider.requested) != 1 || provider.requested[0] != tc.module {
				t.Fatalf("expected provider request for %q, got %v", tc.module, provider.requested)
			}
			if len(rec.fields) != 1 || rec.fields[0]["module"] != tc.module {
				t.Fatalf("expected module field %q, got %v", tc.module, rec.fields)
			}
		})
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	ModuleLogger(provider, "")
	if provider.requested[0] != "estate" {
		t.Fatalf("expected root module, got %q", provider.requested[0])
	}
}

func TestWithOperationSkipsBlankValues(t *testing.T) {
	rec := &recordingLogger{}
	WithOperation(rec, "listings.reorder", "")
	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	if rec.fields[0]["operation"] != "listings.reorder" {
		t.Fatalf("unexpected operation field: %v", rec.fields[0])
	}
	if _, ok := rec.fields[0]["record_id"]; ok {
		t.Fatalf("expected record_id to be omitted, got %v", rec.fields[0])
	}
}

func TestWithFieldsClonesInput(t *testing.T) {
	rec := &recordingLogger{}
	fields := map[string]any{"id": "a"}
	WithFields(rec, fields)
	fields["id"] = "b"
	if rec.fields[0]["id"] != "a" {
		t.Fatalf("expected cloned fields, got %v", rec.fields[0])
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"command": "listings.reorder"})
	ctx = ContextWithFields(ctx, map[string]any{"id": "ali-arcade-1"})

	fields := ContextFields(ctx)
	if fields["command"] != "listings.reorder" || fields["id"] != "ali-arcade-1" {
		t.Fatalf("unexpected merged fields: %v", fields)
	}
	fields["id"] = "mutated"
	if ContextFields(ctx)["id"] != "ali-arcade-1" {
		t.Fatalf("expected ContextFields to return a copy")
	}
	if ContextFields(context.Background()) != nil {
		t.Fatalf("expected nil fields for bare context")
	}
}

func TestEnsureReturnsNoOpForNil(t *testing.T) {
	if _, ok := Ensure(nil).(noopLogger); !ok {
		t.Fatalf("expected noop logger")
	}
	rec := &recordingLogger{}
	if Ensure(rec) != rec {
		t.Fatalf("expected logger to pass through")
	}
}
