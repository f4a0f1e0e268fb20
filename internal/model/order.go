package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a customer pays for an order.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodBoleto     PaymentMethod = "boleto"
	PaymentMethodPix        PaymentMethod = "pix"
)

// Payment statuses reported by the gateway.
const (
	PaymentStatusPaid       = "PAID"
	PaymentStatusPending    = "PENDING"
	PaymentStatusProcessing = "PROCESSING"
	PaymentStatusCancelled  = "CANCELLED"
	PaymentStatusRefunded   = "REFUNDED"
	PaymentStatusUnknown    = "UNKNOWN"
)

// Order represents a placed order.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	SessionID     string          `json:"sessionId" db:"session_id"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	TransactionID string          `json:"transactionId" db:"transaction_id"`
	Status        string          `json:"status" db:"status"`
	PaymentURL    *string         `json:"paymentUrl,omitempty" db:"payment_url"`
	Installments  int             `json:"installments" db:"installments"`
	CouponCode    *string         `json:"couponCode,omitempty" db:"coupon_code"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	Shipping      decimal.Decimal `json:"shipping" db:"shipping"`
	Discount      decimal.Decimal `json:"discount" db:"discount"`
	Total         decimal.Decimal `json:"total" db:"total"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"productId" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Image     string          `json:"image" db:"image"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Variation Variation       `json:"variation,omitempty" db:"variation"`
}

// CreditCard holds the card data submitted for a credit card payment.
type CreditCard struct {
	Number          string `json:"number"`
	Name            string `json:"name"`
	ExpirationMonth string `json:"expirationMonth"`
	ExpirationYear  string `json:"expirationYear"`
	SecurityCode    string `json:"securityCode"`
}

// CustomerInfo identifies the buyer.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	TaxID string `json:"taxId"`
	Phone string `json:"phone,omitempty"`
}

// CheckoutRequest represents the request payload for placing an order.
type CheckoutRequest struct {
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Installments  int           `json:"installments,omitempty"`
	CreditCard    *CreditCard   `json:"creditCard,omitempty"`
	Customer      CustomerInfo  `json:"customer"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
