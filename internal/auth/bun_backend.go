package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-estate/internal/identity"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

type adminUserModel struct {
	bun.BaseModel `bun:"table:admin_users,alias:au"`

	ID           uuid.UUID `bun:",pk,type:uuid"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull"`
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// BunConfig configures token issuance for BunBackend.
type BunConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// BunBackend authenticates staff accounts stored in the admin_users table and
// issues HS256 session tokens. The active token is kept in a TokenStore so a
// restarted process can restore the session.
type BunBackend struct {
	db     *bun.DB
	secret []byte
	issuer string
	ttl    time.Duration
	cost   int
	tokens TokenStore
	now    func() time.Time
	logger interfaces.Logger

	mu        sync.Mutex
	session   *interfaces.AuthSession
	timer     *time.Timer
	listeners *Listeners
}

// BunOption customises a BunBackend.
type BunOption func(*BunBackend)

// WithTokenStore persists session tokens through store.
func WithTokenStore(store TokenStore) BunOption {
	return func(b *BunBackend) {
		if store != nil {
			b.tokens = store
		}
	}
}

// WithClock overrides the clock used to stamp token lifetimes.
func WithClock(now func() time.Time) BunOption {
	return func(b *BunBackend) {
		if now != nil {
			b.now = now
		}
	}
}

// WithBcryptCost sets the cost used when hashing admin passwords.
func WithBcryptCost(cost int) BunOption {
	return func(b *BunBackend) {
		b.cost = cost
	}
}

// WithLogger sets the logger used for non-fatal token store failures.
func WithLogger(logger interfaces.Logger) BunOption {
	return func(b *BunBackend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func NewBunBackend(db *bun.DB, cfg BunConfig, opts ...BunOption) (*BunBackend, error) {
	if db == nil {
		return nil, ErrDatabaseRequired
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrSecretRequired
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	b := &BunBackend{
		db:        db,
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		ttl:       ttl,
		cost:      bcrypt.DefaultCost,
		tokens:    NewMemoryTokenStore(),
		now:       time.Now,
		logger:    logging.NoOp(),
		listeners: NewListeners(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

var _ interfaces.AuthBackend = (*BunBackend)(nil)

// EnsureSchema creates the admin_users table when missing.
func (b *BunBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.db.NewCreateTable().Model((*adminUserModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// UpsertAdmin creates the staff account for email or resets its password.
func (b *BunBackend) UpsertAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return ErrCredentialsMissing
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	now := b.now().UTC()
	model := &adminUserModel{
		ID:           identity.AdminUserUUID(email),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = b.db.NewInsert().
		Model(model).
		On("CONFLICT (id) DO UPDATE").
		Set("password_hash = EXCLUDED.password_hash").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (b *BunBackend) SignInWithPassword(ctx context.Context, identifier, secret string) (*interfaces.AuthSession, error) {
	email := normalizeEmail(identifier)
	if email == "" || secret == "" {
		return nil, ErrCredentialsMissing
	}

	var user adminUserModel
	err := b.db.NewSelect().Model(&user).Where("email = ?", email).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := b.issue(user)
	if err != nil {
		return nil, err
	}
	if err := b.tokens.SaveToken(ctx, session.AccessToken); err != nil {
		b.logger.Warn("auth.token.save_failed", "error", err)
	}

	b.install(session)
	b.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventSignedIn, Session: cloneSession(session)})
	return cloneSession(session), nil
}

func (b *BunBackend) SignOut(ctx context.Context) error {
	b.install(nil)
	err := b.tokens.ClearToken(ctx)
	b.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventSignedOut})
	return err
}

// CurrentSession returns the in-memory session, or restores one from the
// token store. Stored tokens that fail verification are discarded.
func (b *BunBackend) CurrentSession(ctx context.Context) (*interfaces.AuthSession, error) {
	b.mu.Lock()
	if b.session.Valid(b.now()) {
		current := cloneSession(b.session)
		b.mu.Unlock()
		return current, nil
	}
	b.mu.Unlock()

	token, err := b.tokens.LoadToken(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	session, err := b.verify(token)
	if err != nil {
		b.logger.Debug("auth.token.discarded", "error", err)
		if clearErr := b.tokens.ClearToken(ctx); clearErr != nil {
			b.logger.Warn("auth.token.clear_failed", "error", clearErr)
		}
		return nil, nil
	}

	b.install(session)
	b.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventInitialSession, Session: cloneSession(session)})
	return cloneSession(session), nil
}

func (b *BunBackend) OnAuthStateChange(fn func(interfaces.AuthEvent)) func() {
	return b.listeners.Add(fn)
}

// Close stops the pending expiry timer.
func (b *BunBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *BunBackend) issue(user adminUserModel) (*interfaces.AuthSession, error) {
	now := b.now()
	expires := now.Add(b.ttl)
	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    b.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return &interfaces.AuthSession{
		UserID:      user.ID.String(),
		Email:       user.Email,
		AccessToken: signed,
		ExpiresAt:   expires,
	}, nil
}

func (b *BunBackend) verify(token string) (*interfaces.AuthSession, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return b.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}
	return &interfaces.AuthSession{
		UserID:      claims.Subject,
		Email:       claims.Email,
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// install replaces the active session and re-arms the expiry timer.
func (b *BunBackend) install(session *interfaces.AuthSession) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.session = session
	if session == nil || session.ExpiresAt.IsZero() {
		return
	}
	token := session.AccessToken
	b.timer = time.AfterFunc(session.ExpiresAt.Sub(b.now()), func() {
		b.expire(token)
	})
}

func (b *BunBackend) expire(token string) {
	b.mu.Lock()
	if b.session == nil || b.session.AccessToken != token {
		b.mu.Unlock()
		return
	}
	b.session = nil
	b.timer = nil
	b.mu.Unlock()

	if err := b.tokens.ClearToken(context.Background()); err != nil {
		b.logger.Warn("auth.token.clear_failed", "error", err)
	}
	b.listeners.Emit(interfaces.AuthEvent{Type: interfaces.AuthEventSessionExpired})
}
