package service

import (
	"context"
	"fmt"
	"time"

	"biju-kart/internal/cart"
	"biju-kart/internal/model"
	"biju-kart/internal/payment"
	"biju-kart/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	carts       *cart.Provider
	gateway     payment.Gateway
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	carts *cart.Provider,
	gateway payment.Gateway,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		carts:       carts,
		gateway:     gateway,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder charges the session cart, records the order with its items in
// one transaction and takes the ordered lines out of the cart.
func (s *orderService) PlaceOrder(ctx context.Context, sessionID string, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("checkout request is nil")
	}

	m := s.carts.Cart(ctx, sessionID)
	snap := m.Snapshot()
	if len(snap.Items) == 0 {
		s.logger.Debug().Str("session_id", sessionID).Msg("checkout with empty cart")
		return nil, model.ErrEmptyCart
	}
	if !snap.Total.IsPositive() {
		s.logger.Warn().
			Str("session_id", sessionID).
			Str("total", snap.Total.StringFixed(2)).
			Msg("checkout with non-positive total")
		return nil, model.ErrInvalidTotal
	}

	installments, err := s.validateCheckout(req, snap)
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, len(snap.Items))
	for i, item := range snap.Items {
		productIDs[i] = item.ID
	}

	if err := s.productRepo.ValidateProductsExist(ctx, productIDs); err != nil {
		s.logger.Warn().
			Int("product_count", len(productIDs)).
			Err(err).
			Msg("product validation failed")
		return nil, err
	}

	orderID := uuid.New()
	result, err := s.gateway.ProcessPayment(ctx, payment.Request{
		OrderID:      orderID.String(),
		Method:       req.PaymentMethod,
		Amount:       snap.Total,
		Installments: installments,
		CreditCard:   req.CreditCard,
		Customer:     req.Customer,
	})
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", orderID.String()).
			Str("method", string(req.PaymentMethod)).
			Msg("payment failed")
		return nil, err
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:            orderID,
		SessionID:     sessionID,
		PaymentMethod: req.PaymentMethod,
		TransactionID: result.TransactionID,
		Status:        result.Status,
		PaymentURL:    result.PaymentURL,
		Installments:  installments,
		Subtotal:      snap.Subtotal,
		Shipping:      snap.Shipping,
		Discount:      snap.Discount,
		Total:         snap.Total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if snap.CouponCode != "" {
		code := snap.CouponCode
		order.CouponCode = &code
	}

	orderItems := make([]model.OrderItem, len(snap.Items))
	for i, item := range snap.Items {
		orderItems[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Variation: item.Variation,
		}
	}

	if err := s.record(ctx, order, orderItems); err != nil {
		return nil, err
	}

	if err := m.RemoveOrdered(ctx, snap.Items); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("order placed but cart could not be cleared")
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("transaction_id", order.TransactionID).
		Str("status", order.Status).
		Str("total", order.Total.StringFixed(2)).
		Int("item_count", len(orderItems)).
		Msg("order placed successfully")

	return &model.OrderResponse{
		Order: *order,
		Items: orderItems,
	}, nil
}

// record writes the order and its items in one transaction.
func (s *orderService) record(ctx context.Context, order *model.Order, items []model.OrderItem) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// validateCheckout checks the payment method and returns the installment count.
func (s *orderService) validateCheckout(req *model.CheckoutRequest, snap cart.Snapshot) (int, error) {
	switch req.PaymentMethod {
	case model.PaymentMethodCreditCard:
		if req.CreditCard == nil {
			return 0, model.ErrCardRequired
		}
		installments, err := payment.ValidateInstallments(snap.Total, req.Installments)
		if err != nil {
			s.logger.Warn().
				Int("installments", req.Installments).
				Str("total", snap.Total.StringFixed(2)).
				Msg("installment count not offered")
			return 0, err
		}
		return installments, nil
	case model.PaymentMethodBoleto, model.PaymentMethodPix:
		return 1, nil
	default:
		s.logger.Warn().Str("method", string(req.PaymentMethod)).Msg("invalid payment method")
		return 0, model.ErrInvalidPaymentMethod
	}
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return &model.OrderResponse{
		Order: *order,
		Items: items,
	}, nil
}

// PaymentStatus asks the gateway for the transaction status.
func (s *orderService) PaymentStatus(ctx context.Context, transactionID string) (string, error) {
	status, err := s.gateway.TransactionStatus(ctx, transactionID)
	if err != nil {
		s.logger.Error().Err(err).Str("transaction_id", transactionID).Msg("failed to check payment status")
		return "", fmt.Errorf("failed to check payment status: %w", err)
	}
	return status, nil
}
