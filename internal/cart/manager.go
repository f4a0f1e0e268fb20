// Package cart owns the authoritative line items of a browsing session and
// derives the money figures shown at checkout.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"biju-kart/internal/coupon"
	"biju-kart/internal/model"
	"biju-kart/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ShippingOverride names why the current shipping figure differs from the flat fee.
type ShippingOverride string

const (
	OverrideNone      ShippingOverride = "none"
	OverrideThreshold ShippingOverride = "threshold"
	OverrideCoupon    ShippingOverride = "coupon"
)

// DefaultKey is the store key used when none is configured.
const DefaultKey = "cart"

// Pricing holds the shipping rule parameters.
type Pricing struct {
	FreeShippingAbove decimal.Decimal
	FlatShippingFee   decimal.Decimal
}

// DefaultPricing returns free shipping from 200.00 and a 15.90 flat fee.
func DefaultPricing() Pricing {
	return Pricing{
		FreeShippingAbove: decimal.RequireFromString("200.00"),
		FlatShippingFee:   decimal.RequireFromString("15.90"),
	}
}

// CouponValidator resolves a coupon code to its effect.
type CouponValidator interface {
	Validate(ctx context.Context, code string) (coupon.Effect, error)
}

// PersistenceReadError reports a stored snapshot that could not be read or parsed.
// Corrupt is set when the snapshot was read but could not be decoded.
type PersistenceReadError struct {
	Key     string
	Err     error
	Corrupt bool
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("failed to read cart snapshot %q: %v", e.Key, e.Err)
}

func (e *PersistenceReadError) Unwrap() error {
	return e.Err
}

// Snapshot is a consistent view of the cart at one instant.
type Snapshot struct {
	Items            []model.LineItem
	Subtotal         decimal.Decimal
	Shipping         decimal.Decimal
	Discount         decimal.Decimal
	Total            decimal.Decimal
	ShippingOverride ShippingOverride
	CouponCode       string
}

// Manager is the single owner of one cart's mutations. It is safe for
// concurrent use.
type Manager struct {
	key     string
	store   store.Store
	coupons CouponValidator
	pricing Pricing
	logger  zerolog.Logger

	mu       sync.RWMutex
	items    []model.LineItem
	discount decimal.Decimal
	shipping decimal.Decimal
	override ShippingOverride
	coupon   string

	// discountCode is the percent coupon behind discount.
	discountCode string
	// unread is set while the stored snapshot could not be read.
	unread       bool

	// hydrateMu serialises snapshot read retries.
	hydrateMu sync.Mutex
	// writeMu orders snapshot writes in mutation order.
	writeMu sync.Mutex
	// couponMu queues ApplyCoupon calls.
	couponMu sync.Mutex
}

// Options configures a Manager.
type Options struct {
	Key     string
	Pricing Pricing
}

// NewManager creates a cart bound to key in st and hydrates it once.
// An unreadable snapshot is logged and the cart starts empty.
func NewManager(ctx context.Context, st store.Store, coupons CouponValidator, opts Options, logger zerolog.Logger) *Manager {
	m := newManager(st, coupons, opts, logger)
	if err := m.hydrate(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("discarding stored cart snapshot")
	}
	return m
}

func newManager(st store.Store, coupons CouponValidator, opts Options, logger zerolog.Logger) *Manager {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Pricing == (Pricing{}) {
		opts.Pricing = DefaultPricing()
	}

	return &Manager{
		key:      opts.Key,
		store:    st,
		coupons:  coupons,
		pricing:  opts.Pricing,
		logger:   logger.With().Str("component", "cart").Str("key", opts.Key).Logger(),
		items:    []model.LineItem{},
		discount: decimal.Zero,
		shipping: decimal.Zero,
		override: OverrideNone,
	}
}

func (m *Manager) hydrate(ctx context.Context) error {
	raw, err := m.store.Get(ctx, m.key)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		m.mu.Lock()
		m.unread = true
		m.mu.Unlock()
		return &PersistenceReadError{Key: m.key, Err: err}
	}

	var items []model.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return &PersistenceReadError{Key: m.key, Err: err, Corrupt: true}
	}

	restored := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 {
			m.logger.Warn().Str("item_id", item.ID).Int("quantity", item.Quantity).Msg("skipping invalid stored line item")
			continue
		}
		restored = append(restored, item)
	}

	m.mu.Lock()
	m.items = restored
	m.unread = false
	m.recomputeShipping()
	m.mu.Unlock()

	m.logger.Debug().Int("items", len(restored)).Msg("cart hydrated")
	return nil
}

// AddItem merges item into the line with the same id and variation, or appends it.
func (m *Manager) AddItem(ctx context.Context, item model.LineItem) error {
	if item.Quantity < 1 {
		return model.ErrInvalidQuantity
	}

	return m.mutate(ctx, func() {
		if i := m.indexOf(item.ID, item.Variation); i >= 0 {
			m.items[i].Quantity += item.Quantity
			return
		}
		item.Variation = item.Variation.Clone()
		m.items = append(m.items, item)
	})
}

// RemoveItem removes the line matching id and variation. Missing lines are ignored.
func (m *Manager) RemoveItem(ctx context.Context, id string, variation model.Variation) error {
	return m.mutate(ctx, func() {
		if i := m.indexOf(id, variation); i >= 0 {
			m.items = append(m.items[:i], m.items[i+1:]...)
		}
	})
}

// UpdateQuantity replaces the quantity of the matching line. A quantity of
// zero or less removes it.
func (m *Manager) UpdateQuantity(ctx context.Context, id string, quantity int, variation model.Variation) error {
	if quantity <= 0 {
		return m.RemoveItem(ctx, id, variation)
	}

	return m.mutate(ctx, func() {
		if i := m.indexOf(id, variation); i >= 0 {
			m.items[i].Quantity = quantity
		}
	})
}

// Clear empties the cart and resets the discount and applied coupon.
func (m *Manager) Clear(ctx context.Context) error {
	return m.mutate(ctx, func() {
		m.items = []model.LineItem{}
		m.resetCoupons()
	})
}

// RemoveOrdered takes the ordered lines out of the cart and drops the
// applied coupons. Each matching line loses the ordered quantity. Lines
// added or grown after the order snapshot keep the difference.
func (m *Manager) RemoveOrdered(ctx context.Context, ordered []model.LineItem) error {
	return m.mutate(ctx, func() {
		for _, item := range ordered {
			i := m.indexOf(item.ID, item.Variation)
			if i < 0 {
				continue
			}
			if m.items[i].Quantity > item.Quantity {
				m.items[i].Quantity -= item.Quantity
				continue
			}
			m.items = append(m.items[:i], m.items[i+1:]...)
		}
		m.resetCoupons()
	})
}

// ApplyCoupon validates code and applies its effect when validation resolves.
// Calls on one cart are queued. Failures leave the cart untouched.
func (m *Manager) ApplyCoupon(ctx context.Context, code string) (coupon.Effect, error) {
	m.couponMu.Lock()
	defer m.couponMu.Unlock()

	effect, err := m.coupons.Validate(ctx, code)
	if err != nil {
		m.logger.Debug().Err(err).Str("code", code).Msg("coupon rejected")
		return coupon.Effect{}, err
	}

	m.mu.Lock()
	switch effect.Type {
	case coupon.EffectPercentDiscount:
		m.discount = m.subtotal().Mul(effect.Rate).Round(2)
		m.discountCode = code
	case coupon.EffectFreeShipping:
		m.shipping = decimal.Zero
		m.override = OverrideCoupon
	default:
		m.mu.Unlock()
		return coupon.Effect{}, fmt.Errorf("unsupported coupon effect %q", effect.Type)
	}
	m.coupon = code
	discount, shipping := m.discount, m.shipping
	m.mu.Unlock()

	m.logger.Info().
		Str("code", code).
		Str("effect", string(effect.Type)).
		Str("discount", discount.StringFixed(2)).
		Str("shipping", shipping.StringFixed(2)).
		Msg("coupon applied")

	return effect, nil
}

// Items returns a copy of the line items in insertion order.
func (m *Manager) Items() []model.LineItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.copyItems()
}

// Subtotal returns Σ price × quantity.
func (m *Manager) Subtotal() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.subtotal()
}

// Shipping returns the current shipping charge.
func (m *Manager) Shipping() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shipping
}

// Discount returns the currently applied discount.
func (m *Manager) Discount() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.discount
}

// Total returns subtotal + shipping − discount.
func (m *Manager) Total() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.subtotal().Add(m.shipping).Sub(m.discount)
}

// CouponCode returns the last coupon applied successfully whose effect is
// still in force, or "".
func (m *Manager) CouponCode() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.coupon
}

// ShippingOverride reports which rule produced the current shipping figure.
func (m *Manager) ShippingOverride() ShippingOverride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.override
}

// Snapshot returns every figure under one read lock.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subtotal := m.subtotal()
	return Snapshot{
		Items:            m.copyItems(),
		Subtotal:         subtotal,
		Shipping:         m.shipping,
		Discount:         m.discount,
		Total:            subtotal.Add(m.shipping).Sub(m.discount),
		ShippingOverride: m.override,
		CouponCode:       m.coupon,
	}
}

// mutate applies fn under the state lock, reapplies the shipping rule and
// persists the resulting items.
func (m *Manager) mutate(ctx context.Context, fn func()) error {
	if err := m.rehydrate(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	fn()
	m.recomputeShipping()
	payload, err := json.Marshal(m.items)
	// Take the write lock before releasing state so writes land in mutation order.
	m.writeMu.Lock()
	m.mu.Unlock()
	defer m.writeMu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}

	if err := m.store.Set(ctx, m.key, string(payload)); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist cart snapshot")
		return fmt.Errorf("failed to persist cart: %w", err)
	}

	return nil
}

// rehydrate retries a snapshot read that failed earlier.
func (m *Manager) rehydrate(ctx context.Context) error {
	m.hydrateMu.Lock()
	defer m.hydrateMu.Unlock()

	m.mu.RLock()
	unread := m.unread
	m.mu.RUnlock()
	if !unread {
		return nil
	}

	if err := m.hydrate(ctx); err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	return nil
}

// recomputeShipping applies the item-driven shipping rule. Callers hold mu.
func (m *Manager) recomputeShipping() {
	if m.override == OverrideCoupon {
		m.coupon = m.discountCode
	}

	switch {
	case len(m.items) == 0:
		m.shipping = decimal.Zero
		m.override = OverrideNone
	case m.subtotal().GreaterThanOrEqual(m.pricing.FreeShippingAbove):
		m.shipping = decimal.Zero
		m.override = OverrideThreshold
	default:
		m.shipping = m.pricing.FlatShippingFee
		m.override = OverrideNone
	}
}

func (m *Manager) resetCoupons() {
	m.discount = decimal.Zero
	m.discountCode = ""
	m.coupon = ""
}

func (m *Manager) subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range m.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (m *Manager) indexOf(id string, variation model.Variation) int {
	for i, item := range m.items {
		if item.Matches(id, variation) {
			return i
		}
	}
	return -1
}

func (m *Manager) copyItems() []model.LineItem {
	out := make([]model.LineItem, len(m.items))
	for i, item := range m.items {
		item.Variation = item.Variation.Clone()
		out[i] = item
	}
	return out
}
