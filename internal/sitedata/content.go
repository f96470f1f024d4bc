package sitedata

import (
	"context"

	"github.com/goliatone/go-estate/internal/sitecontent"
)

// SiteContent returns the current document. It is never partially empty.
func (p *Provider) SiteContent() sitecontent.SiteContent {
	return p.content.Current()
}

// SetSiteContent saves the whole document.
func (p *Provider) SetSiteContent(ctx context.Context, content sitecontent.SiteContent) error {
	if err := p.requireAdmin("content.update"); err != nil {
		return err
	}
	if err := p.content.Update(ctx, content); err != nil {
		return err
	}
	if p.snapshots != nil {
		if err := p.snapshots.SaveContent(ctx, p.content.Current()); err != nil {
			p.logger.Warn("provider.snapshot.write_failed", "collection", "content", "error", err)
		}
	}
	return nil
}
