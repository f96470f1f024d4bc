package commands

import (
	"context"
	"errors"
	"testing"

	command "github.com/goliatone/go-command"

	admincmd "github.com/goliatone/go-estate/internal/commands/admin"
	"github.com/goliatone/go-estate/internal/di"
	"github.com/goliatone/go-estate/internal/runtimeconfig"
)

const adminHandlerCount = 11

func newContainer(t *testing.T) *di.Container {
	t.Helper()
	container, err := di.NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return container
}

func TestRegisterAdminCommandsBuildsHandlers(t *testing.T) {
	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}
	cron := &recordingCron{}

	result, err := RegisterAdminCommands(newContainer(t), RegistrationOptions{
		Registry:      registry,
		Dispatcher:    dispatcher,
		CronRegistrar: cron.Registrar(),
		RefreshCron:   "@every 5m",
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}

	if len(result.Handlers) != adminHandlerCount {
		t.Fatalf("expected %d handlers, got %d", adminHandlerCount, len(result.Handlers))
	}
	if len(result.Handlers) != len(registry.handlers) {
		t.Fatalf("expected registry to record all handlers, got %d of %d", len(registry.handlers), len(result.Handlers))
	}
	if len(dispatcher.subscriptions) != len(result.Handlers) {
		t.Fatalf("expected a dispatcher subscription per handler, got %d", len(dispatcher.subscriptions))
	}
	if len(cron.registrations) != 1 {
		t.Fatalf("expected one cron registration, got %d", len(cron.registrations))
	}
	if got := cron.registrations[0].config.Expression; got != "@every 5m" {
		t.Fatalf("expected refresh cron expression, got %q", got)
	}
	if cron.registrations[0].handler == nil {
		t.Fatal("expected cron handler func")
	}
	if err := cron.registrations[0].handler(); err != nil {
		t.Fatalf("scheduled refresh returned error: %v", err)
	}
}

func TestRegisterAdminCommandsWithoutRegistrars(t *testing.T) {
	result, err := RegisterAdminCommands(newContainer(t), RegistrationOptions{RefreshCron: "@hourly"})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != adminHandlerCount {
		t.Fatalf("expected %d handlers, got %d", adminHandlerCount, len(result.Handlers))
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no dispatcher subscriptions without dispatcher, got %d", len(result.Subscriptions))
	}
	for _, handler := range result.Handlers {
		if _, ok := handler.(*admincmd.ScheduledRefreshHandler); ok {
			t.Fatal("scheduled refresh needs a cron registrar")
		}
	}
}

func TestRegisterAdminCommandsJoinsRegistrarErrors(t *testing.T) {
	boom := errors.New("dispatcher offline")
	result, err := RegisterAdminCommands(newContainer(t), RegistrationOptions{
		Dispatcher: &recordingDispatcher{err: boom},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected dispatcher error, got %v", err)
	}
	if len(result.Handlers) != adminHandlerCount {
		t.Fatalf("handlers should still be built, got %d", len(result.Handlers))
	}
}

func TestRegisterAdminCommandsRequiresContainer(t *testing.T) {
	if _, err := RegisterAdminCommands(nil, RegistrationOptions{}); !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
}

func TestRegisteredHandlersExecute(t *testing.T) {
	result, err := RegisterAdminCommands(newContainer(t), RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	for _, handler := range result.Handlers {
		signOut, ok := handler.(command.Commander[admincmd.SignOutCommand])
		if !ok {
			continue
		}
		if err := signOut.Execute(context.Background(), admincmd.SignOutCommand{}); err != nil {
			t.Fatalf("sign out returned error: %v", err)
		}
		return
	}
	t.Fatal("expected a sign out handler")
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type cronRegistration struct {
	config  command.HandlerConfig
	handler func() error
}

type recordingCron struct {
	registrations []cronRegistration
	err           error
}

func (c *recordingCron) Registrar() CronRegistrar {
	return func(cfg command.HandlerConfig, handler any) error {
		if c.err != nil {
			return c.err
		}
		var fn func() error
		if h, ok := handler.(func() error); ok {
			fn = h
		}
		c.registrations = append(c.registrations, cronRegistration{
			config:  cfg,
			handler: fn,
		})
		return nil
	}
}

type recordingDispatcher struct {
	handlers      []any
	subscriptions []*recordingSubscription
	err           error
}

func (d *recordingDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.handlers = append(d.handlers, handler)
	sub := &recordingSubscription{handler: handler}
	d.subscriptions = append(d.subscriptions, sub)
	return sub, nil
}

type recordingSubscription struct {
	handler      any
	unsubscribed bool
}

func (s *recordingSubscription) Unsubscribe() {
	s.unsubscribed = true
}
