package commands

import (
	"errors"
	"strings"

	command "github.com/goliatone/go-command"

	internalcommands "github.com/goliatone/go-estate/internal/commands"
	admincmd "github.com/goliatone/go-estate/internal/commands/admin"
	"github.com/goliatone/go-estate/internal/di"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// RefreshCron schedules the refresh handler through CronRegistrar. Leave
	// it empty when the provider runs its own refresh schedule.
	RefreshCron string
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// ErrNoProvider is returned when the container has no site data provider.
var ErrNoProvider = errors.New("commands: container has no site data provider")

// RegisterAdminCommands builds the staff command handlers over the
// container's site data provider and optionally registers them with
// registry/dispatcher/cron integrations.
func RegisterAdminCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil || container.Provider() == nil {
		return &RegistrationResult{}, ErrNoProvider
	}
	provider := container.Provider()

	loggerProvider := opts.LoggerProvider
	if loggerProvider == nil {
		loggerProvider = container.LoggerProvider()
	}

	if opts.Registry != nil && opts.CronRegistrar != nil {
		if reg, ok := opts.Registry.(interface {
			SetCronRegister(func(command.HandlerConfig, any) error) *command.Registry
		}); ok && reg != nil {
			reg.SetCronRegister(opts.CronRegistrar)
		}
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}

		if opts.CronRegistrar != nil {
			if cronCmd, ok := handler.(command.CronCommand); ok {
				if err := opts.CronRegistrar(cronCmd.CronOptions(), cronCmd.CronHandler()); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	loggerFor := func(module string) interfaces.Logger {
		return internalcommands.CommandLogger(loggerProvider, module)
	}

	// Session commands.
	sessionLogger := loggerFor("session")
	register(admincmd.NewSignInHandler(provider, sessionLogger))
	register(admincmd.NewSignOutHandler(provider, sessionLogger))
	if expr := strings.TrimSpace(opts.RefreshCron); expr != "" && opts.CronRegistrar != nil {
		register(admincmd.NewScheduledRefreshHandler(provider, sessionLogger, expr))
	} else {
		register(admincmd.NewRefreshHandler(provider, sessionLogger))
	}

	// Listing commands.
	listingsLogger := loggerFor("listings")
	register(admincmd.NewSaveListingHandler(provider, listingsLogger))
	register(admincmd.NewDeleteListingHandler(provider, listingsLogger))
	register(admincmd.NewReorderListingHandler(provider, listingsLogger))
	register(admincmd.NewNormalizeListingOrderHandler(provider, listingsLogger))

	// Media commands.
	mediaLogger := loggerFor("media")
	register(admincmd.NewUploadBatchHandler(provider, mediaLogger))
	register(admincmd.NewRegisterURLHandler(provider, mediaLogger))
	register(admincmd.NewDeleteMediaHandler(provider, mediaLogger))

	// Content commands.
	register(admincmd.NewSaveContentHandler(provider, loggerFor("content")))

	return result, errs
}
