package sitedata

import (
	"context"

	"github.com/goliatone/go-estate/internal/media"
)

// Media returns the library newest first.
func (p *Provider) Media() []media.Asset {
	return p.media.Snapshot()
}

func (p *Provider) MediaLimits() media.Limits {
	return p.media.Limits()
}

// SetMedia replaces the library with items. Removed uploads lose their blobs.
func (p *Provider) SetMedia(ctx context.Context, items []media.Asset) ([]media.Asset, error) {
	if err := p.requireAdmin("media.apply"); err != nil {
		return p.media.Snapshot(), err
	}
	next := media.CloneAll(items)
	out, err := p.media.ApplyUpdate(ctx, func([]media.Asset) []media.Asset { return next })
	p.saveMedia(ctx)
	return out, err
}

func (p *Provider) UploadMedia(ctx context.Context, file media.UploadFile) (*media.Asset, error) {
	if err := p.requireAdmin("media.upload"); err != nil {
		return nil, err
	}
	asset, err := p.media.Upload(ctx, file)
	if err == nil {
		p.saveMedia(ctx)
	}
	return asset, err
}

// UploadMediaBatch uploads files one at a time and reports progress after
// each. Per-file failures are in the results.
func (p *Provider) UploadMediaBatch(ctx context.Context, files []media.UploadFile, progress func(done, total int)) ([]media.UploadResult, error) {
	if err := p.requireAdmin("media.upload_batch"); err != nil {
		return nil, err
	}
	results := p.media.UploadBatch(ctx, files, progress)
	p.saveMedia(ctx)
	return results, nil
}

func (p *Provider) RegisterMediaURL(ctx context.Context, url, name string, tags []string) (*media.Asset, error) {
	if err := p.requireAdmin("media.register_url"); err != nil {
		return nil, err
	}
	asset, err := p.media.RegisterURL(ctx, url, name, tags)
	if err == nil {
		p.saveMedia(ctx)
	}
	return asset, err
}

func (p *Provider) DeleteMedia(ctx context.Context, id, url string) error {
	if err := p.requireAdmin("media.delete"); err != nil {
		return err
	}
	err := p.media.Delete(ctx, id, url)
	if err == nil {
		p.saveMedia(ctx)
	}
	return err
}
