package localcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-estate/internal/auth"
)

// TokenStore keeps the admin session token under KeySession so a restarted
// process can restore the staff session.
type TokenStore struct {
	cache *Cache
}

var _ auth.TokenStore = (*TokenStore)(nil)

func (c *Cache) Tokens() *TokenStore {
	return &TokenStore{cache: c}
}

type storedSession struct {
	AccessToken string `json:"access_token"`
}

func (s *TokenStore) LoadToken(ctx context.Context) (string, error) {
	var stored storedSession
	ok, err := s.cache.read(ctx, KeySession, &stored)
	if err != nil || !ok {
		return "", err
	}
	return stored.AccessToken, nil
}

func (s *TokenStore) SaveToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}
	return s.cache.write(ctx, KeySession, storedSession{AccessToken: token})
}

func (s *TokenStore) ClearToken(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	if err := os.Remove(s.cache.path(KeySession)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("localcache: clear session: %w", err)
	}
	return nil
}
