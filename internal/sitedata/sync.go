package sitedata

import (
	"context"

	"github.com/goliatone/go-estate/internal/listings"
)

// syncListings loads listings, seeding an empty collection when allowed. A
// failed load falls back to the offline snapshot.
func (p *Provider) syncListings(ctx context.Context, allowSeed bool) error {
	items, err := p.listings.Load(ctx)
	if err != nil {
		p.logger.Error("provider.listings.load_failed", "error", err)
		p.hydrateListings(ctx)
		return err
	}
	if len(items) == 0 && allowSeed && p.seed != nil {
		items = p.seedListings(ctx)
	}
	p.saveListings(ctx, items)
	return nil
}

func (p *Provider) seedListings(ctx context.Context) []listings.Listing {
	seeded, err := p.seed()
	if err != nil {
		p.logger.Error("provider.seed.failed", "error", err)
		return p.listings.Snapshot()
	}
	if len(seeded) == 0 {
		return p.listings.Snapshot()
	}
	items, err := p.listings.ApplyUpdate(ctx, func([]listings.Listing) []listings.Listing {
		return seeded
	})
	if err != nil {
		p.logger.Error("provider.seed.failed", "error", err)
		return items
	}
	p.logger.Info("provider.seed.completed", "count", len(items))
	return items
}

func (p *Provider) hydrateListings(ctx context.Context) {
	if p.snapshots == nil {
		return
	}
	items, ok, err := p.snapshots.Listings(ctx)
	if err != nil {
		p.logger.Warn("provider.snapshot.read_failed", "collection", "listings", "error", err)
		return
	}
	if ok {
		p.listings.Hydrate(items)
		p.logger.Info("provider.snapshot.hydrated", "collection", "listings", "count", len(items))
	}
}

func (p *Provider) saveListings(ctx context.Context, items []listings.Listing) {
	if p.snapshots == nil {
		return
	}
	if err := p.snapshots.SaveListings(ctx, items); err != nil {
		p.logger.Warn("provider.snapshot.write_failed", "collection", "listings", "error", err)
	}
}

func (p *Provider) syncMedia(ctx context.Context) error {
	if _, err := p.media.Load(ctx); err != nil {
		p.logger.Error("provider.media.load_failed", "error", err)
		if p.snapshots != nil {
			cached, ok, cacheErr := p.snapshots.Media(ctx)
			switch {
			case cacheErr != nil:
				p.logger.Warn("provider.snapshot.read_failed", "collection", "media", "error", cacheErr)
			case ok:
				p.media.Hydrate(cached)
				p.logger.Info("provider.snapshot.hydrated", "collection", "media", "count", len(cached))
			}
		}
		return err
	}
	p.saveMedia(ctx)
	return nil
}

func (p *Provider) saveMedia(ctx context.Context) {
	if p.snapshots == nil {
		return
	}
	if err := p.snapshots.SaveMedia(ctx, p.media.Snapshot()); err != nil {
		p.logger.Warn("provider.snapshot.write_failed", "collection", "media", "error", err)
	}
}

func (p *Provider) syncContent(ctx context.Context) error {
	content, err := p.content.Load(ctx)
	if err != nil {
		p.logger.Error("provider.content.load_failed", "error", err)
		if p.snapshots != nil {
			cached, ok, cacheErr := p.snapshots.Content(ctx)
			switch {
			case cacheErr != nil:
				p.logger.Warn("provider.snapshot.read_failed", "collection", "content", "error", cacheErr)
			case ok:
				p.content.Hydrate(cached)
				p.logger.Info("provider.snapshot.hydrated", "collection", "content")
			}
		}
		return err
	}
	if p.snapshots != nil {
		if err := p.snapshots.SaveContent(ctx, content); err != nil {
			p.logger.Warn("provider.snapshot.write_failed", "collection", "content", "error", err)
		}
	}
	return nil
}
