// Package sitedata composes the session manager and the three stores into the
// single data source the public site and the staff console read from.
package sitedata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-estate/internal/listings"
	"github.com/goliatone/go-estate/internal/logging"
	"github.com/goliatone/go-estate/internal/media"
	"github.com/goliatone/go-estate/internal/session"
	"github.com/goliatone/go-estate/internal/sitecontent"
	"github.com/goliatone/go-estate/pkg/interfaces"
)

var (
	ErrSessionRequired  = errors.New("sitedata: session manager is required")
	ErrListingsRequired = errors.New("sitedata: listings store is required")
	ErrMediaRequired    = errors.New("sitedata: media store is required")
	ErrContentRequired  = errors.New("sitedata: content store is required")
	ErrNotPrivileged    = errors.New("sitedata: a staff session is required for this operation")
	ErrAlreadyStarted   = errors.New("sitedata: provider already started")
	ErrClosed           = errors.New("sitedata: provider is closed")
)

// Snapshots is the offline copy written after successful loads and read when
// a remote load fails.
type Snapshots interface {
	SaveListings(ctx context.Context, items []listings.Listing) error
	Listings(ctx context.Context) ([]listings.Listing, bool, error)
	SaveMedia(ctx context.Context, items []media.Asset) error
	Media(ctx context.Context) ([]media.Asset, bool, error)
	SaveContent(ctx context.Context, content sitecontent.SiteContent) error
	Content(ctx context.Context) (sitecontent.SiteContent, bool, error)
}

// SeedFunc returns the listings written to an empty remote collection.
type SeedFunc func() ([]listings.Listing, error)

// Provider owns startup synchronisation, auth driven resyncs and the write
// API. Every write requires a privileged session and returns once the
// remote write has landed.
type Provider struct {
	session  *session.Manager
	listings *listings.Store
	media    *media.Store
	content  *sitecontent.Store

	snapshots      Snapshots
	seed           SeedFunc
	logger         interfaces.Logger
	refreshSpec    string
	startupTimeout time.Duration

	loading atomic.Bool
	started atomic.Bool
	closed  atomic.Bool

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	scheduler *cron.Cron
	closeOnce sync.Once

	// onResync runs after each auth driven resync.
	onResync func(session.Change)
}

type Option func(*Provider)

func WithLogger(logger interfaces.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSnapshots enables the offline cache.
func WithSnapshots(s Snapshots) Option {
	return func(p *Provider) {
		p.snapshots = s
	}
}

// WithSeed seeds an empty listings collection during Start.
func WithSeed(seed SeedFunc) Option {
	return func(p *Provider) {
		p.seed = seed
	}
}

// WithRefreshSchedule reloads every collection on a standard cron schedule.
func WithRefreshSchedule(spec string) Option {
	return func(p *Provider) {
		p.refreshSpec = strings.TrimSpace(spec)
	}
}

// WithStartupTimeout bounds the initial loads. Zero means no bound.
func WithStartupTimeout(timeout time.Duration) Option {
	return func(p *Provider) {
		if timeout >= 0 {
			p.startupTimeout = timeout
		}
	}
}

func NewProvider(sess *session.Manager, listingStore *listings.Store, mediaStore *media.Store, contentStore *sitecontent.Store, opts ...Option) (*Provider, error) {
	switch {
	case sess == nil:
		return nil, ErrSessionRequired
	case listingStore == nil:
		return nil, ErrListingsRequired
	case mediaStore == nil:
		return nil, ErrMediaRequired
	case contentStore == nil:
		return nil, ErrContentRequired
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Provider{
		session:  sess,
		listings: listingStore,
		media:    mediaStore,
		content:  contentStore,
		logger:   logging.NoOp(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start loads listings, media and site content and restores the session
// concurrently. Individual load failures are logged and do not fail Start;
// the affected collection keeps its cached or empty state. Afterwards the
// provider follows auth changes and the refresh schedule until Close.
func (p *Provider) Start(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	var scheduler *cron.Cron
	if p.refreshSpec != "" {
		scheduler = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
		if _, err := scheduler.AddFunc(p.refreshSpec, p.scheduledRefresh); err != nil {
			p.started.Store(false)
			return fmt.Errorf("sitedata: refresh schedule %q: %w", p.refreshSpec, err)
		}
	}

	p.loading.Store(true)
	loadCtx := ctx
	if p.startupTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, p.startupTimeout)
		defer cancel()
	}

	started := time.Now()
	var g errgroup.Group
	g.Go(func() error {
		_ = p.syncListings(loadCtx, true)
		return nil
	})
	g.Go(func() error {
		_ = p.syncMedia(loadCtx)
		return nil
	})
	g.Go(func() error {
		_ = p.syncContent(loadCtx)
		return nil
	})
	g.Go(func() error {
		p.session.RestoreSession(loadCtx)
		return nil
	})
	_ = g.Wait()
	p.loading.Store(false)
	p.logger.Info("provider.start.completed",
		"listings", len(p.listings.Snapshot()),
		"media", len(p.media.Snapshot()),
		"privileged", p.session.IsPrivileged(),
		"duration", time.Since(started),
	)

	changes := p.session.Subscribe(p.ctx)
	p.wg.Add(1)
	go p.follow(changes)

	if scheduler != nil {
		p.scheduler = scheduler
		scheduler.Start()
		p.logger.Info("provider.refresh.scheduled", "spec", p.refreshSpec)
	}
	return nil
}

// follow reloads listings and media after every auth transition so reads
// reflect what the new session is allowed to see.
func (p *Provider) follow(changes <-chan session.Change) {
	defer p.wg.Done()
	for change := range changes {
		p.logger.Debug("provider.resync", "event", string(change.Event), "privileged", change.Privileged)
		var g errgroup.Group
		g.Go(func() error { return p.syncListings(p.ctx, false) })
		g.Go(func() error { return p.syncMedia(p.ctx) })
		if err := g.Wait(); err != nil {
			p.logger.Warn("provider.resync.failed", "event", string(change.Event), "error", err)
		}
		if p.onResync != nil {
			p.onResync(change)
		}
	}
}

func (p *Provider) scheduledRefresh() {
	if err := p.Refresh(p.ctx); err != nil {
		p.logger.Warn("provider.refresh.failed", "error", err)
	}
}

// Refresh reloads every collection and returns the joined load errors.
func (p *Provider) Refresh(ctx context.Context) error {
	if p.closed.Load() {
		return ErrClosed
	}
	var (
		mu   sync.Mutex
		errs []error
	)
	collect := func(err error) error {
		if err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
		return nil
	}
	var g errgroup.Group
	g.Go(func() error { return collect(p.syncListings(ctx, false)) })
	g.Go(func() error { return collect(p.syncMedia(ctx)) })
	g.Go(func() error { return collect(p.syncContent(ctx)) })
	_ = g.Wait()
	return errors.Join(errs...)
}

// IsAdmin reports whether a staff session is held.
func (p *Provider) IsAdmin() bool {
	return p.session.IsPrivileged()
}

// Loading is true while Start runs its initial loads.
func (p *Provider) Loading() bool {
	return p.loading.Load()
}

// Login signs in; failures are *session.AuthError with a displayable message.
func (p *Provider) Login(ctx context.Context, email, password string) error {
	return p.session.SignIn(ctx, email, password)
}

func (p *Provider) Logout(ctx context.Context) {
	p.session.SignOut(ctx)
}

// Close stops the refresh schedule and the auth follower and closes the
// session manager. It is safe to call more than once.
func (p *Provider) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		if p.scheduler != nil {
			<-p.scheduler.Stop().Done()
		}
		p.cancel()
		p.session.Close()
		p.wg.Wait()
	})
}

func (p *Provider) requireAdmin(op string) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if !p.session.IsPrivileged() {
		p.logger.Warn("provider.write.denied", "operation", op)
		return ErrNotPrivileged
	}
	return nil
}
