package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"biju-kart/internal/store"

	"github.com/rs/zerolog"
)

// DefaultHydrateTimeout bounds the first read of a session's snapshot.
const DefaultHydrateTimeout = 5 * time.Second

// Provider is the application-wide owner of per-session carts.
type Provider struct {
	store          store.Store
	coupons        CouponValidator
	prefix         string
	pricing        Pricing
	hydrateTimeout time.Duration
	logger         zerolog.Logger
	now            func() time.Time

	mu    sync.Mutex
	carts map[string]*entry
}

type entry struct {
	cart     *Manager
	lastUsed time.Time
}

// ProviderOptions configures a Provider.
type ProviderOptions struct {
	KeyPrefix      string
	Pricing        Pricing
	HydrateTimeout time.Duration
}

// NewProvider creates a Provider persisting carts to st.
func NewProvider(st store.Store, coupons CouponValidator, opts ProviderOptions, logger zerolog.Logger) *Provider {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKey
	}
	if opts.Pricing == (Pricing{}) {
		opts.Pricing = DefaultPricing()
	}
	if opts.HydrateTimeout <= 0 {
		opts.HydrateTimeout = DefaultHydrateTimeout
	}

	return &Provider{
		store:          st,
		coupons:        coupons,
		prefix:         opts.KeyPrefix,
		pricing:        opts.Pricing,
		hydrateTimeout: opts.HydrateTimeout,
		logger:         logger.With().Str("component", "cart-provider").Logger(),
		now:            time.Now,
		carts:          make(map[string]*entry),
	}
}

// Key returns the store key of a session's cart.
func (p *Provider) Key(sessionID string) string {
	if sessionID == "" {
		return p.prefix
	}
	return p.prefix + ":" + sessionID
}

// Cart returns the session's cart, creating and hydrating it on first use.
//
// Hydration outlives the caller's cancellation and is bounded by the
// hydrate timeout. A corrupt snapshot is discarded and the empty cart is
// kept. When the store could not be read at all, the empty cart is handed
// out uncached so the next request reads the snapshot again.
func (p *Provider) Cart(ctx context.Context, sessionID string) *Manager {
	if m := p.lookup(sessionID); m != nil {
		return m
	}

	// Hydrate outside the lock so one slow read does not stall other sessions.
	created := newManager(p.store, p.coupons, Options{
		Key:     p.Key(sessionID),
		Pricing: p.pricing,
	}, p.logger)

	hydrateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.hydrateTimeout)
	err := created.hydrate(hydrateCtx)
	cancel()

	if err != nil {
		var readErr *PersistenceReadError
		if !errors.As(err, &readErr) || !readErr.Corrupt {
			p.logger.Warn().Err(err).Str("session_id", sessionID).Msg("cart snapshot unreadable, not caching cart")
			return created
		}
		created.logger.Warn().Err(err).Msg("discarding stored cart snapshot")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.carts[sessionID]; ok {
		e.lastUsed = p.now()
		return e.cart
	}
	p.carts[sessionID] = &entry{cart: created, lastUsed: p.now()}
	return created
}

func (p *Provider) lookup(sessionID string) *Manager {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.carts[sessionID]
	if !ok {
		return nil
	}
	e.lastUsed = p.now()
	return e.cart
}

// EvictIdle drops every cart not used within idle and returns how many
// were dropped. Stored snapshots are kept.
func (p *Provider) EvictIdle(idle time.Duration) int {
	cutoff := p.now().Add(-idle)

	p.mu.Lock()
	defer p.mu.Unlock()

	evicted := 0
	for sessionID, e := range p.carts {
		if e.lastUsed.Before(cutoff) {
			delete(p.carts, sessionID)
			evicted++
		}
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (p *Provider) RunEviction(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := p.EvictIdle(idle); n > 0 {
				p.logger.Debug().Int("evicted", n).Int("remaining", p.Len()).Msg("evicted idle carts")
			}
		}
	}
}

// Len returns the number of carts held in memory.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.carts)
}
