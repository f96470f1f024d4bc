package media

import "context"

// Repository is the remote media metadata table.
type Repository interface {
	List(ctx context.Context) ([]*Asset, error)
	Create(ctx context.Context, asset *Asset) (*Asset, error)
	Update(ctx context.Context, asset *Asset) (*Asset, error)
	Delete(ctx context.Context, id string) error
}
