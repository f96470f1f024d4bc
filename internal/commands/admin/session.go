package admincmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-estate/internal/commands"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

const (
	signInMessageType  = "estate.session.sign_in"
	signOutMessageType = "estate.session.sign_out"
	refreshMessageType = "estate.provider.refresh"
)

// SignInCommand exchanges staff credentials for a privileged session.
type SignInCommand struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}

func (SignInCommand) Type() string { return signInMessageType }

func (m SignInCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Email, validation.Required, is.EmailFormat),
		validation.Field(&m.Password, validation.Required),
	)
}

func NewSignInHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[SignInCommand]) *commands.Handler[SignInCommand] {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg SignInCommand) error {
		return provider.Login(ctx, strings.TrimSpace(msg.Email), msg.Password)
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[SignInCommand]{
		commands.WithLogger[SignInCommand](logger),
		commands.WithOperation[SignInCommand]("session.sign_in"),
	}, opts...)...)
}

// SignOutCommand ends the staff session. It always succeeds locally.
type SignOutCommand struct{}

func (SignOutCommand) Type() string { return signOutMessageType }

func (SignOutCommand) Validate() error { return nil }

func NewSignOutHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[SignOutCommand]) *commands.Handler[SignOutCommand] {
	exec := func(ctx context.Context, _ SignOutCommand) error {
		provider.Logout(ctx)
		return nil
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[SignOutCommand]{
		commands.WithLogger[SignOutCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[SignOutCommand]("session.sign_out"),
	}, opts...)...)
}

// RefreshCommand reloads every collection from the backend.
type RefreshCommand struct{}

func (RefreshCommand) Type() string { return refreshMessageType }

func (RefreshCommand) Validate() error { return nil }

func NewRefreshHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[RefreshCommand]) *commands.Handler[RefreshCommand] {
	exec := func(ctx context.Context, _ RefreshCommand) error {
		return provider.Refresh(ctx)
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[RefreshCommand]{
		commands.WithLogger[RefreshCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[RefreshCommand]("provider.refresh"),
	}, opts...)...)
}

// ScheduledRefreshHandler runs RefreshCommand from a host cron runner.
type ScheduledRefreshHandler struct {
	*commands.Handler[RefreshCommand]
	cronConfig command.HandlerConfig
}

// NewScheduledRefreshHandler wraps the refresh handler with cron metadata.
// An empty expression falls back to every fifteen minutes.
func NewScheduledRefreshHandler(provider Provider, logger interfaces.Logger, expression string) *ScheduledRefreshHandler {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		expression = "@every 15m"
	}
	return &ScheduledRefreshHandler{
		Handler:    NewRefreshHandler(provider, logger, commands.WithOperation[RefreshCommand]("provider.refresh.scheduled")),
		cronConfig: command.HandlerConfig{Expression: expression},
	}
}

// CronHandler satisfies command.CronCommand.
func (h *ScheduledRefreshHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), RefreshCommand{})
	}
}

// CronOptions satisfies command.CronCommand.
func (h *ScheduledRefreshHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}
