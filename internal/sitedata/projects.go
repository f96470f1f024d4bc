package sitedata

import (
	"context"

	"github.com/goliatone/go-estate/internal/listings"
)

// Projects returns every listing, drafts included, in presentation order.
func (p *Provider) Projects() []listings.Listing {
	return p.listings.Snapshot()
}

// PublishedProjects hides drafts.
func (p *Provider) PublishedProjects() []listings.Listing {
	return listings.Published(p.listings.Snapshot())
}

func (p *Provider) Project(id string) (listings.Listing, bool) {
	return p.listings.Get(id)
}

// SetProjects replaces the collection with items, persisting the difference.
func (p *Provider) SetProjects(ctx context.Context, items []listings.Listing) ([]listings.Listing, error) {
	next := listings.CloneAll(items)
	return p.UpdateProjects(ctx, func([]listings.Listing) []listings.Listing { return next })
}

// UpdateProjects applies a pure transform to a copy of the collection.
func (p *Provider) UpdateProjects(ctx context.Context, transform func([]listings.Listing) []listings.Listing) ([]listings.Listing, error) {
	if err := p.requireAdmin("projects.apply"); err != nil {
		return p.listings.Snapshot(), err
	}
	items, err := p.listings.ApplyUpdate(ctx, transform)
	p.saveListings(ctx, p.listings.Snapshot())
	return items, err
}

func (p *Provider) CreateProject(ctx context.Context, draft listings.Listing) (listings.Listing, error) {
	if err := p.requireAdmin("projects.create"); err != nil {
		return listings.Listing{}, err
	}
	created, err := p.listings.Create(ctx, draft)
	if err == nil {
		p.saveListings(ctx, p.listings.Snapshot())
	}
	return created, err
}

func (p *Provider) UpdateProject(ctx context.Context, id string, listing listings.Listing) (listings.Listing, error) {
	if err := p.requireAdmin("projects.update"); err != nil {
		return listings.Listing{}, err
	}
	updated, err := p.listings.Update(ctx, id, listing)
	if err == nil {
		p.saveListings(ctx, p.listings.Snapshot())
	}
	return updated, err
}

func (p *Provider) DeleteProject(ctx context.Context, id string) error {
	if err := p.requireAdmin("projects.delete"); err != nil {
		return err
	}
	err := p.listings.Delete(ctx, id)
	if err == nil {
		p.saveListings(ctx, p.listings.Snapshot())
	}
	return err
}

// ReorderProject moves id one slot up or down and persists the dense order.
func (p *Provider) ReorderProject(ctx context.Context, id string, direction listings.Direction) ([]listings.Listing, error) {
	if err := p.requireAdmin("projects.reorder"); err != nil {
		return p.listings.Snapshot(), err
	}
	items, err := p.listings.Reorder(ctx, id, direction)
	p.saveListings(ctx, p.listings.Snapshot())
	return items, err
}

// NormalizeProjectOrder rewrites display orders as 0..N-1.
func (p *Provider) NormalizeProjectOrder(ctx context.Context) ([]listings.Listing, error) {
	if err := p.requireAdmin("projects.normalize"); err != nil {
		return p.listings.Snapshot(), err
	}
	items, err := p.listings.NormalizeOrder(ctx)
	p.saveListings(ctx, p.listings.Snapshot())
	return items, err
}
