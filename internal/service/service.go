// Package service holds the storefront use cases behind the HTTP handlers.
package service

import (
	"context"

	"biju-kart/internal/model"
	"biju-kart/internal/payment"

	"github.com/google/uuid"
)

// ProductService defines catalogue browsing operations.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetCategories lists every category.
	GetCategories(ctx context.Context) ([]model.Category, error)

	// GetByCategory lists the products of a category slug.
	GetByCategory(ctx context.Context, slug string, limit, offset int) ([]model.Product, error)
}

// CartService exposes the session cart to the HTTP layer.
type CartService interface {
	Get(ctx context.Context, sessionID string) *model.CartResponse
	AddItem(ctx context.Context, sessionID string, req *model.AddItemRequest) (*model.CartResponse, error)
	UpdateItem(ctx context.Context, sessionID, itemID string, req *model.UpdateItemRequest) (*model.CartResponse, error)
	RemoveItem(ctx context.Context, sessionID, itemID string, variation model.Variation) (*model.CartResponse, error)
	Clear(ctx context.Context, sessionID string) (*model.CartResponse, error)
	ApplyCoupon(ctx context.Context, sessionID, code string) (*model.CartResponse, error)

	// Installments lists the card payment plans for the cart total.
	Installments(ctx context.Context, sessionID string) []payment.Installment
}

// OrderService defines checkout and order lookup.
type OrderService interface {
	// PlaceOrder charges the session cart and records the order.
	PlaceOrder(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// PaymentStatus reports the gateway status of a transaction.
	PaymentStatus(ctx context.Context, transactionID string) (string, error)
}
