package supabase

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-estate/internal/adapters/blob"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// Storage implements interfaces.BlobStorage over a public storage bucket.
type Storage struct {
	client *Client
}

var (
	_ interfaces.BlobStorage     = (*Storage)(nil)
	_ interfaces.BlobKeyResolver = (*Storage)(nil)
)

func NewStorage(client *Client) *Storage {
	return &Storage{client: client}
}

func (s *Storage) objectPath(key string) string {
	return "/storage/v1/object/" + url.PathEscape(s.client.bucket) + "/" + url.PathEscape(key)
}

func (s *Storage) Put(ctx context.Context, key string, body io.Reader, _ int64, contentType string) error {
	return s.client.do(ctx, request{
		method: http.MethodPost,
		path:   s.objectPath(key),
		raw:    body,
		headers: map[string]string{
			"Content-Type":  contentType,
			"Cache-Control": "3600",
			"x-upsert":      "false",
		},
	}, nil)
}

func (s *Storage) PublicURL(key string) string {
	return s.publicBase() + "/" + url.PathEscape(key)
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	err := s.client.do(ctx, request{method: http.MethodDelete, path: s.objectPath(key)}, nil)
	if isStatus(err, http.StatusNotFound) {
		return interfaces.ErrBlobNotFound
	}
	return err
}

func (s *Storage) KeyFromURL(raw string) (string, bool) {
	key, ok := blob.KeyFromURL(s.publicBase(), raw)
	if !ok {
		return "", false
	}
	unescaped, err := url.PathUnescape(key)
	if err != nil {
		return "", false
	}
	return unescaped, true
}

func (s *Storage) publicBase() string {
	return strings.TrimRight(s.client.baseURL, "/") + "/storage/v1/object/public/" + url.PathEscape(s.client.bucket)
}
