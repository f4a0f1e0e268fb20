package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// VariationOption is one selected product option, e.g. a colour or a size.
type VariationOption struct {
	ID    string `json:"id"`
	Type  string `json:"type,omitempty"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variation maps an option dimension ("color", "size") to the selected option.
type Variation map[string]VariationOption

// Key returns the canonical form of the variation used for line item identity.
// Nil and empty variations share the empty key.
func (v Variation) Key() string {
	if len(v) == 0 {
		return ""
	}
	// encoding/json writes map keys in sorted order, so construction order never leaks in.
	b, err := json.Marshal(map[string]VariationOption(v))
	if err != nil {
		return ""
	}
	return string(b)
}

// Equal reports whether two variations select the same options.
func (v Variation) Equal(other Variation) bool {
	return v.Key() == other.Key()
}

// Clone returns a copy that shares no state with v.
func (v Variation) Clone() Variation {
	if v == nil {
		return nil
	}
	out := make(Variation, len(v))
	for k, opt := range v {
		out[k] = opt
	}
	return out
}

// LineItem is one entry in a cart. Name, image and price are captured when the
// item is added and are not re-synced with the catalogue.
type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Variation Variation       `json:"variation,omitempty"`
}

// Matches reports whether the item is identified by id and variation.
func (i LineItem) Matches(id string, variation Variation) bool {
	return i.ID == id && i.Variation.Equal(variation)
}

// LineTotal returns price × quantity.
func (i LineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AddItemRequest represents the request payload for adding an item to the cart.
type AddItemRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Variation Variation       `json:"variation,omitempty"`
}

// LineItem converts the request into a cart line item.
func (r AddItemRequest) LineItem() LineItem {
	return LineItem{
		ID:        r.ID,
		Name:      r.Name,
		Image:     r.Image,
		Price:     r.Price,
		Quantity:  r.Quantity,
		Variation: r.Variation,
	}
}

// UpdateItemRequest represents the request payload for changing a line item quantity.
type UpdateItemRequest struct {
	Quantity  int       `json:"quantity"`
	Variation Variation `json:"variation,omitempty"`
}

// RemoveItemRequest carries the variation of the line item to remove.
type RemoveItemRequest struct {
	Variation Variation `json:"variation,omitempty"`
}

// ApplyCouponRequest represents the request payload for applying a coupon.
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// CartResponse is the consumer view of a cart.
type CartResponse struct {
	SessionID        string          `json:"sessionId"`
	Items            []LineItem      `json:"items"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Shipping         decimal.Decimal `json:"shipping"`
	Discount         decimal.Decimal `json:"discount"`
	Total            decimal.Decimal `json:"total"`
	ShippingOverride string          `json:"shippingOverride"`
	CouponCode       string          `json:"couponCode,omitempty"`
}
