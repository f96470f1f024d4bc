package estate

import (
	"context"

	"github.com/goliatone/go-estate/internal/di"
	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/internal/sitecontent"
	"github.com/goliatone/go-estate/internal/sitedata"
)

// Listing exports the real estate listing record.
type Listing = listings.Listing

// Category exports the listing category enum.
type Category = listings.Category

// Status exports the listing lifecycle enum.
type Status = listings.Status

// Direction exports the reorder direction.
type Direction = listings.Direction

// Asset exports the media library record.
type Asset = media.Asset

// UploadFile exports a single upload request.
type UploadFile = media.UploadFile

// UploadResult exports the per-file outcome of a batch upload.
type UploadResult = media.UploadResult

// SiteContent exports the editable site copy document.
type SiteContent = sitecontent.SiteContent

// Provider exports the site data provider.
type Provider = *sitedata.Provider

const (
	CategoryResidential = listings.CategoryResidential
	CategoryCommercial  = listings.CategoryCommercial
	CategoryMixedUse    = listings.CategoryMixedUse

	StatusRunning   = listings.StatusRunning
	StatusUpcoming  = listings.StatusUpcoming
	StatusCompleted = listings.StatusCompleted
	StatusDraft     = listings.StatusDraft

	DirectionUp   = listings.DirectionUp
	DirectionDown = listings.DirectionDown
)

var (
	ErrNotPrivileged  = sitedata.ErrNotPrivileged
	ErrAlreadyStarted = sitedata.ErrAlreadyStarted
	ErrClosed         = sitedata.ErrClosed
)

// DefaultSiteContent returns the built in site copy.
func DefaultSiteContent() SiteContent {
	return sitecontent.Defaults()
}

// Module represents the top level data layer façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Start creates missing tables, then loads every collection and restores a
// stored staff session.
func (m *Module) Start(ctx context.Context) error {
	if err := m.container.Migrate(ctx); err != nil {
		return err
	}
	return m.container.Provider().Start(ctx)
}

// Provider returns the site data provider.
func (m *Module) Provider() Provider {
	return m.container.Provider()
}

// Close stops background work and releases the database.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
