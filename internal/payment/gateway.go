// Package payment simulates the card, boleto and pix gateway used at checkout.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"biju-kart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// sandboxBaseURL is where boleto and pix payment pages are served.
const sandboxBaseURL = "https://sandbox.pagseguro.com.br"

// Request describes one payment attempt.
type Request struct {
	OrderID      string
	Method       model.PaymentMethod
	Amount       decimal.Decimal
	Installments int
	CreditCard   *model.CreditCard
	Customer     model.CustomerInfo
}

// Result is the gateway's answer to a payment attempt.
type Result struct {
	TransactionID string
	Status        string
	PaymentURL    *string
	Message       string
}

// Gateway processes payments and reports transaction status.
type Gateway interface {
	ProcessPayment(ctx context.Context, req Request) (*Result, error)
	TransactionStatus(ctx context.Context, transactionID string) (string, error)
}

// GatewayConfig holds the simulated delays.
type GatewayConfig struct {
	Latency       time.Duration
	StatusLatency time.Duration
}

// DefaultGatewayConfig returns 1.5s for payments and 1s for status lookups.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Latency:       1500 * time.Millisecond,
		StatusLatency: time.Second,
	}
}

type simulatedGateway struct {
	cfg    GatewayConfig
	logger zerolog.Logger
}

// NewSimulatedGateway creates a sandbox gateway with deterministic outcomes.
func NewSimulatedGateway(cfg GatewayConfig, logger zerolog.Logger) Gateway {
	return &simulatedGateway{
		cfg:    cfg,
		logger: logger.With().Str("component", "payment-gateway").Logger(),
	}
}

// ProcessPayment approves cards ending in an even digit. Boleto and pix
// payments are always created pending with a payment page URL.
func (g *simulatedGateway) ProcessPayment(ctx context.Context, req Request) (*Result, error) {
	log := g.logger.With().
		Str("order_id", req.OrderID).
		Str("method", string(req.Method)).
		Str("amount", req.Amount.StringFixed(2)).
		Logger()

	if err := sleep(ctx, g.cfg.Latency); err != nil {
		log.Warn().Err(err).Msg("payment cancelled")
		return nil, err
	}

	var (
		result *Result
		err    error
	)
	switch req.Method {
	case model.PaymentMethodCreditCard:
		result, err = chargeCard(req)
	case model.PaymentMethodBoleto:
		result = pendingPayment("BOL", "boleto")
	case model.PaymentMethodPix:
		result = pendingPayment("PIX", "pix")
	default:
		err = model.ErrInvalidPaymentMethod
	}

	if err != nil {
		log.Info().Err(err).Msg("payment rejected")
		return nil, err
	}

	log.Info().
		Str("transaction_id", result.TransactionID).
		Str("status", result.Status).
		Msg("payment processed")

	return result, nil
}

func chargeCard(req Request) (*Result, error) {
	if req.CreditCard == nil {
		return nil, model.ErrCardRequired
	}

	number := strings.ReplaceAll(req.CreditCard.Number, " ", "")
	if len(number) != 16 || strings.Trim(number, "0123456789") != "" {
		return nil, model.ErrInvalidCard
	}

	last := int(number[len(number)-1] - '0')
	if last%2 != 0 {
		return nil, model.ErrPaymentDeclined
	}

	return &Result{
		TransactionID: newTransactionID("CC"),
		Status:        model.PaymentStatusPaid,
		Message:       "Payment approved",
	}, nil
}

func pendingPayment(prefix, path string) *Result {
	id := newTransactionID(prefix)
	url := fmt.Sprintf("%s/%s/%s", sandboxBaseURL, path, id)
	return &Result{
		TransactionID: id,
		Status:        model.PaymentStatusPending,
		PaymentURL:    &url,
		Message:       "Awaiting payment",
	}
}

func newTransactionID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

var statusCycle = [...]string{
	model.PaymentStatusPaid,
	model.PaymentStatusPending,
	model.PaymentStatusProcessing,
	model.PaymentStatusCancelled,
	model.PaymentStatusRefunded,
}

// TransactionStatus derives a status from the last hex digit of the id.
func (g *simulatedGateway) TransactionStatus(ctx context.Context, transactionID string) (string, error) {
	if err := sleep(ctx, g.cfg.StatusLatency); err != nil {
		return "", err
	}

	status := StatusFor(transactionID)
	g.logger.Debug().
		Str("transaction_id", transactionID).
		Str("status", status).
		Msg("transaction status checked")

	return status, nil
}

// StatusFor maps a transaction id to its simulated status.
func StatusFor(transactionID string) string {
	if transactionID == "" {
		return model.PaymentStatusUnknown
	}

	digit, err := strconv.ParseUint(transactionID[len(transactionID)-1:], 16, 8)
	if err != nil {
		return model.PaymentStatusUnknown
	}

	return statusCycle[digit%uint64(len(statusCycle))]
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
