package coupon

import (
	"context"

	"github.com/shopspring/decimal"
)

// EffectType names what a coupon does to a cart.
type EffectType string

const (
	// EffectPercentDiscount sets the discount to subtotal × Rate.
	EffectPercentDiscount EffectType = "percent_discount"

	// EffectFreeShipping zeroes shipping.
	EffectFreeShipping EffectType = "free_shipping"
)

// Effect is the outcome of a successfully validated coupon.
type Effect struct {
	Type EffectType      `json:"type"`
	Rate decimal.Decimal `json:"rate"`
}

// Service validates coupon codes against the active policy table.
type Service interface {
	// Validate resolves code to its effect after the configured latency.
	// Unknown codes yield model.ErrInvalidCoupon. Codes are case-sensitive.
	Validate(ctx context.Context, code string) (Effect, error)

	// Close releases resources held by the service.
	Close() error
}

// PolicySet maps coupon codes to their effects.
type PolicySet interface {
	// Lookup returns the effect registered for code.
	Lookup(code string) (Effect, bool)

	// Size returns the number of codes in the set.
	Size() int

	// Codes returns the registered codes in sorted order.
	Codes() []string
}

// Loader defines the interface for loading policy files.
type Loader interface {
	// Load reads a gzipped policy file and returns its PolicySet.
	Load(ctx context.Context, filePath string) (PolicySet, error)
}
