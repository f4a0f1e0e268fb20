package payment

import (
	"biju-kart/internal/model"

	"github.com/shopspring/decimal"
)

// MonthlyInterestRate applies to plans longer than InterestFreeInstallments.
var MonthlyInterestRate = decimal.RequireFromString("1.99")

// InterestFreeInstallments is the longest plan without interest.
const InterestFreeInstallments = 3

// Installment is one option of a card payment plan.
type Installment struct {
	Count        int             `json:"count"`
	Amount       decimal.Decimal `json:"amount"`
	Total        decimal.Decimal `json:"total"`
	InterestFree bool            `json:"interestFree"`
}

// MaxInstallments returns the longest plan offered for total. Nothing is
// offered for a total of zero or less.
func MaxInstallments(total decimal.Decimal) int {
	switch {
	case !total.IsPositive():
		return 0
	case total.GreaterThanOrEqual(decimal.NewFromInt(100)):
		return 12
	case total.GreaterThanOrEqual(decimal.NewFromInt(60)):
		return 6
	default:
		return 3
	}
}

// Installments lists every plan from 1 to MaxInstallments(total).
func Installments(total decimal.Decimal) []Installment {
	limit := MaxInstallments(total)
	factor := decimal.NewFromInt(1).Add(MonthlyInterestRate.Div(decimal.NewFromInt(100)))

	options := make([]Installment, 0, limit)
	for i := 1; i <= limit; i++ {
		count := decimal.NewFromInt(int64(i))
		amount := total.Div(count)
		free := i <= InterestFreeInstallments
		if !free {
			amount = amount.Mul(factor)
		}
		amount = amount.Round(2)

		options = append(options, Installment{
			Count:        i,
			Amount:       amount,
			Total:        amount.Mul(count),
			InterestFree: free,
		})
	}

	return options
}

// ValidateInstallments checks that count is an offered plan for total.
// Zero means a single payment.
func ValidateInstallments(total decimal.Decimal, count int) (int, error) {
	if !total.IsPositive() {
		return 0, model.ErrInvalidTotal
	}
	if count == 0 {
		return 1, nil
	}
	if count < 1 || count > MaxInstallments(total) {
		return 0, model.ErrInvalidInstallments
	}
	return count, nil
}
