package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-estate/internal/auth"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

// Auth implements interfaces.AuthBackend with the password grant of the auth
// service. The access token is shared with the client so table calls run as
// the signed-in user.
type Auth struct {
	client    *Client
	tokens    auth.TokenStore
	now       func() time.Time
	listeners *auth.Listeners

	mu      sync.Mutex
	session *interfaces.AuthSession
	timer   *time.Timer
}

var _ interfaces.AuthBackend = (*Auth)(nil)

// AuthOption customises Auth.
type AuthOption func(*Auth)

// WithTokenStore keeps the access token between runs.
func WithTokenStore(store auth.TokenStore) AuthOption {
	return func(a *Auth) {
		if store != nil {
			a.tokens = store
		}
	}
}

func WithClock(now func() time.Time) AuthOption {
	return func(a *Auth) {
		if now != nil {
			a.now = now
		}
	}
}

func NewAuth(client *Client, opts ...AuthOption) *Auth {
	a := &Auth{
		client:    client,
		tokens:    auth.NewMemoryTokenStore(),
		now:       time.Now,
		listeners: auth.NewListeners(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	ExpiresAt   int64  `json:"expires_at"`
	User        user   `json:"user"`
}

type user struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (a *Auth) SignInWithPassword(ctx context.Context, identifier, secret string) (*interfaces.AuthSession, error) {
	var resp tokenResponse
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body: map[string]string{
			"email":    strings.TrimSpace(identifier),
			"password": secret,
		},
		token: a.client.apiKey,
	}, &resp)
	if err != nil {
		return nil, err
	}

	session := &interfaces.AuthSession{
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
		AccessToken: resp.AccessToken,
		ExpiresAt:   a.expiry(resp),
	}
	if err := a.tokens.SaveToken(ctx, session.AccessToken); err != nil {
		a.client.logger.Warn("supabase.auth.token_save_failed", "error", err)
	}
	a.install(session)
	a.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventSignedIn, Session: copySession(session)})
	return copySession(session), nil
}

func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	token := ""
	if a.session != nil {
		token = a.session.AccessToken
	}
	a.mu.Unlock()

	var err error
	if token != "" {
		err = a.client.do(ctx, request{method: http.MethodPost, path: "/auth/v1/logout", token: token}, nil)
	}
	a.install(nil)
	if clearErr := a.tokens.ClearToken(ctx); clearErr != nil {
		a.client.logger.Warn("supabase.auth.token_clear_failed", "error", clearErr)
	}
	a.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventSignedOut})
	return err
}

// CurrentSession returns the in-process session or, failing that, verifies a
// stored token with the auth service. A rejected token is discarded.
func (a *Auth) CurrentSession(ctx context.Context) (*interfaces.AuthSession, error) {
	a.mu.Lock()
	if a.session != nil && a.session.Valid(a.now()) {
		out := copySession(a.session)
		a.mu.Unlock()
		return out, nil
	}
	a.mu.Unlock()

	token, err := a.tokens.LoadToken(ctx)
	if err != nil || token == "" {
		return nil, err
	}

	var u user
	err = a.client.do(ctx, request{method: http.MethodGet, path: "/auth/v1/user", token: token}, &u)
	if isStatus(err, http.StatusUnauthorized) || isStatus(err, http.StatusForbidden) {
		_ = a.tokens.ClearToken(ctx)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session := &interfaces.AuthSession{UserID: u.ID, Email: u.Email, AccessToken: token}
	a.install(session)
	a.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventInitialSession, Session: copySession(session)})
	return copySession(session), nil
}

func (a *Auth) OnAuthStateChange(fn func(interfaces.AuthEvent)) func() {
	return a.listeners.Add(fn)
}

// Close stops the expiry timer.
func (a *Auth) Close() {
	a.install(nil)
}

func (a *Auth) expiry(resp tokenResponse) time.Time {
	switch {
	case resp.ExpiresAt > 0:
		return time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		return a.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	default:
		return time.Time{}
	}
}

// install swaps the active session, shares its token with the client and
// arms a timer that reports expiry.
func (a *Auth) install(session *interfaces.AuthSession) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.session = session
	if session == nil {
		a.client.setAccessToken("")
		return
	}
	a.client.setAccessToken(session.AccessToken)
	if session.ExpiresAt.IsZero() {
		return
	}
	token := session.AccessToken
	a.timer = time.AfterFunc(session.ExpiresAt.Sub(a.now()), func() {
		a.mu.Lock()
		if a.session == nil || a.session.AccessToken != token {
			a.mu.Unlock()
			return
		}
		a.session = nil
		a.timer = nil
		a.client.setAccessToken("")
		a.mu.Unlock()
		a.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventSessionExpired})
	})
}

func copySession(s *interfaces.AuthSession) *interfaces.AuthSession {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
