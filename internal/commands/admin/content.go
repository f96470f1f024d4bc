package admincmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-estate/internal/commands"
	"github.com/goliatone/go-estate/internal/sitecontent"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

const saveContentMessageType = "estate.content.save"

// SaveContentCommand replaces the site content document.
type SaveContentCommand struct {
	Content sitecontent.SiteContent `json:"content"`
}

func (SaveContentCommand) Type() string { return saveContentMessageType }

func (m SaveContentCommand) Validate() error {
	errs := validation.Errors{}
	if err := validation.Validate(m.Content.Global.SiteName, validation.Required); err != nil {
		errs["global.siteName"] = err
	}
	if err := validation.Validate(m.Content.Home.HeroTitle, validation.Required); err != nil {
		errs["home.heroTitle"] = err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func NewSaveContentHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[SaveContentCommand]) *commands.Handler[SaveContentCommand] {
	exec := func(ctx context.Context, msg SaveContentCommand) error {
		return provider.SetSiteContent(ctx, msg.Content)
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[SaveContentCommand]{
		commands.WithLogger[SaveContentCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[SaveContentCommand]("content.save"),
	}, opts...)...)
}
