package handler

import (
	"context"
	"net/http"

	"biju-kart/internal/middleware"
	"biju-kart/internal/model"
	"biju-kart/internal/payment"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) GetCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockProductService) GetByCategory(ctx context.Context, slug string, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, slug, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func cartResult(args mock.Arguments) (*model.CartResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartResponse), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, sessionID string) *model.CartResponse {
	return m.Called(ctx, sessionID).Get(0).(*model.CartResponse)
}

func (m *MockCartService) AddItem(ctx context.Context, sessionID string, req *model.AddItemRequest) (*model.CartResponse, error) {
	return cartResult(m.Called(ctx, sessionID, req))
}

func (m *MockCartService) UpdateItem(ctx context.Context, sessionID, itemID string, req *model.UpdateItemRequest) (*model.CartResponse, error) {
	return cartResult(m.Called(ctx, sessionID, itemID, req))
}

func (m *MockCartService) RemoveItem(ctx context.Context, sessionID, itemID string, variation model.Variation) (*model.CartResponse, error) {
	return cartResult(m.Called(ctx, sessionID, itemID, variation))
}

func (m *MockCartService) Clear(ctx context.Context, sessionID string) (*model.CartResponse, error) {
	return cartResult(m.Called(ctx, sessionID))
}

func (m *MockCartService) ApplyCoupon(ctx context.Context, sessionID, code string) (*model.CartResponse, error) {
	return cartResult(m.Called(ctx, sessionID, code))
}

func (m *MockCartService) Installments(ctx context.Context, sessionID string) []payment.Installment {
	return m.Called(ctx, sessionID).Get(0).([]payment.Installment)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) PaymentStatus(ctx context.Context, transactionID string) (string, error) {
	args := m.Called(ctx, transactionID)
	return args.String(0), args.Error(1)
}

// withRoute attaches chi URL params and a session to the request.
func withRoute(r *http.Request, session string, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if session != "" {
		ctx = middleware.WithSessionID(ctx, session)
	}
	return r.WithContext(ctx)
}
