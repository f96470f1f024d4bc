package admincmd

import (
	"context"

	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/internal/sitecontent"
)

// Provider is the slice of the data provider the admin commands drive.
type Provider interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
	Refresh(ctx context.Context) error

	CreateProject(ctx context.Context, draft listings.Listing) (listings.Listing, error)
	UpdateProject(ctx context.Context, id string, listing listings.Listing) (listings.Listing, error)
	DeleteProject(ctx context.Context, id string) error
	ReorderProject(ctx context.Context, id string, direction listings.Direction) ([]listings.Listing, error)
	NormalizeProjectOrder(ctx context.Context) ([]listings.Listing, error)

	UploadMediaBatch(ctx context.Context, files []media.UploadFile, progress func(done, total int)) ([]media.UploadResult, error)
	RegisterMediaURL(ctx context.Context, url, name string, tags []string) (*media.Asset, error)
	DeleteMedia(ctx context.Context, id, url string) error

	SetSiteContent(ctx context.Context, content sitecontent.SiteContent) error
}
