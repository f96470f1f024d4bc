package admincmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-estate/internal/commands"
	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

const (
	saveListingMessageType      = "estate.listings.save"
	deleteListingMessageType    = "estate.listings.delete"
	reorderListingMessageType   = "estate.listings.reorder"
	normalizeListingMessageType = "estate.listings.normalize"
)

// SaveListingCommand creates a listing when ID is empty and updates it
// otherwise. Result, when set, receives the stored listing.
type SaveListingCommand struct {
	ID      string                 `json:"id,omitempty"`
	Listing listings.Listing       `json:"listing"`
	Result  func(listings.Listing) `json:"-"`
}

func (SaveListingCommand) Type() string { return saveListingMessageType }

func (m SaveListingCommand) Validate() error {
	if err := m.Listing.Validate(); err != nil {
		return err
	}
	if m.ID != "" && m.Listing.ID != "" && m.ID != m.Listing.ID {
		return validation.Errors{
			"id": validation.NewError("estate.listings.save.id_immutable", "listing id cannot be changed"),
		}
	}
	return nil
}

func NewSaveListingHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[SaveListingCommand]) *commands.Handler[SaveListingCommand] {
	logger = commands.EnsureLogger(logger)
	exec := func(ctx context.Context, msg SaveListingCommand) error {
		var (
			saved listings.Listing
			err   error
		)
		if id := strings.TrimSpace(msg.ID); id != "" {
			saved, err = provider.UpdateProject(ctx, id, msg.Listing)
		} else {
			saved, err = provider.CreateProject(ctx, msg.Listing)
		}
		if err != nil {
			return err
		}
		logging.WithOperation(logger, "listings.save", saved.ID).Info("listings.command.saved")
		if msg.Result != nil {
			msg.Result(saved)
		}
		return nil
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[SaveListingCommand]{
		commands.WithLogger[SaveListingCommand](logger),
		commands.WithOperation[SaveListingCommand]("listings.save"),
	}, opts...)...)
}

type DeleteListingCommand struct {
	ID string `json:"id"`
}

func (DeleteListingCommand) Type() string { return deleteListingMessageType }

func (m DeleteListingCommand) Validate() error {
	return validation.ValidateStruct(&m, validation.Field(&m.ID, validation.Required))
}

func NewDeleteListingHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteListingCommand]) *commands.Handler[DeleteListingCommand] {
	exec := func(ctx context.Context, msg DeleteListingCommand) error {
		return provider.DeleteProject(ctx, msg.ID)
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[DeleteListingCommand]{
		commands.WithLogger[DeleteListingCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[DeleteListingCommand]("listings.delete"),
	}, opts...)...)
}

// ReorderListingCommand moves a listing one slot up or down.
type ReorderListingCommand struct {
	ID        string             `json:"id"`
	Direction listings.Direction `json:"direction"`
}

func (ReorderListingCommand) Type() string { return reorderListingMessageType }

func (m ReorderListingCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ID, validation.Required),
		validation.Field(&m.Direction, validation.Required, validation.In(listings.DirectionUp, listings.DirectionDown)),
	)
}

func NewReorderListingHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[ReorderListingCommand]) *commands.Handler[ReorderListingCommand] {
	exec := func(ctx context.Context, msg ReorderListingCommand) error {
		_, err := provider.ReorderProject(ctx, msg.ID, msg.Direction)
		return err
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[ReorderListingCommand]{
		commands.WithLogger[ReorderListingCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[ReorderListingCommand]("listings.reorder"),
	}, opts...)...)
}

// NormalizeListingOrderCommand rewrites display orders densely. It is the
// repair for a reorder that failed half way.
type NormalizeListingOrderCommand struct{}

func (NormalizeListingOrderCommand) Type() string { return normalizeListingMessageType }

func (NormalizeListingOrderCommand) Validate() error { return nil }

func NewNormalizeListingOrderHandler(provider Provider, logger interfaces.Logger, opts ...commands.HandlerOption[NormalizeListingOrderCommand]) *commands.Handler[NormalizeListingOrderCommand] {
	exec := func(ctx context.Context, _ NormalizeListingOrderCommand) error {
		_, err := provider.NormalizeProjectOrder(ctx)
		return err
	}
	return commands.NewHandler(exec, append([]commands.HandlerOption[NormalizeListingOrderCommand]{
		commands.WithLogger[NormalizeListingOrderCommand](commands.EnsureLogger(logger)),
		commands.WithOperation[NormalizeListingOrderCommand]("listings.normalize"),
	}, opts...)...)
}
