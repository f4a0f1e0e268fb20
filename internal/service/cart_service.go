package service

import (
	"context"
	"strings"

	"biju-kart/internal/cart"
	"biju-kart/internal/model"
	"biju-kart/internal/payment"

	"github.com/rs/zerolog"
)

type cartService struct {
	carts  *cart.Provider
	logger zerolog.Logger
}

// NewCartService creates a cart service over the application's cart provider.
func NewCartService(carts *cart.Provider, logger zerolog.Logger) CartService {
	return &cartService{
		carts:  carts,
		logger: logger.With().Str("service", "cart").Logger(),
	}
}

// Get returns the current view of the session cart.
func (s *cartService) Get(ctx context.Context, sessionID string) *model.CartResponse {
	return toCartResponse(sessionID, s.carts.Cart(ctx, sessionID).Snapshot())
}

// AddItem validates the request and merges it into the cart.
func (s *cartService) AddItem(ctx context.Context, sessionID string, req *model.AddItemRequest) (*model.CartResponse, error) {
	if req == nil || strings.TrimSpace(req.ID) == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Item id is required")
	}
	if req.Price.IsNegative() {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Item price must not be negative")
	}

	m := s.carts.Cart(ctx, sessionID)
	if err := m.AddItem(ctx, req.LineItem()); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Str("item_id", req.ID).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	return toCartResponse(sessionID, m.Snapshot()), nil
}

// UpdateItem sets the quantity of a line item. Zero or less removes it.
func (s *cartService) UpdateItem(ctx context.Context, sessionID, itemID string, req *model.UpdateItemRequest) (*model.CartResponse, error) {
	m := s.carts.Cart(ctx, sessionID)
	if err := m.UpdateQuantity(ctx, itemID, req.Quantity, req.Variation); err != nil {
		return nil, err
	}
	return toCartResponse(sessionID, m.Snapshot()), nil
}

// RemoveItem drops a line item.
func (s *cartService) RemoveItem(ctx context.Context, sessionID, itemID string, variation model.Variation) (*model.CartResponse, error) {
	m := s.carts.Cart(ctx, sessionID)
	if err := m.RemoveItem(ctx, itemID, variation); err != nil {
		return nil, err
	}
	return toCartResponse(sessionID, m.Snapshot()), nil
}

// Clear empties the session cart.
func (s *cartService) Clear(ctx context.Context, sessionID string) (*model.CartResponse, error) {
	m := s.carts.Cart(ctx, sessionID)
	if err := m.Clear(ctx); err != nil {
		return nil, err
	}
	return toCartResponse(sessionID, m.Snapshot()), nil
}

// ApplyCoupon blocks for the coupon service round trip.
func (s *cartService) ApplyCoupon(ctx context.Context, sessionID, code string) (*model.CartResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Coupon code is required")
	}

	m := s.carts.Cart(ctx, sessionID)
	if _, err := m.ApplyCoupon(ctx, code); err != nil {
		return nil, err
	}
	return toCartResponse(sessionID, m.Snapshot()), nil
}

// Installments lists card payment plans for the cart total.
func (s *cartService) Installments(ctx context.Context, sessionID string) []payment.Installment {
	return payment.Installments(s.carts.Cart(ctx, sessionID).Total())
}

func toCartResponse(sessionID string, snap cart.Snapshot) *model.CartResponse {
	return &model.CartResponse{
		SessionID:        sessionID,
		Items:            snap.Items,
		Subtotal:         snap.Subtotal,
		Shipping:         snap.Shipping,
		Discount:         snap.Discount,
		Total:            snap.Total,
		ShippingOverride: string(snap.ShippingOverride),
		CouponCode:       snap.CouponCode,
	}
}
