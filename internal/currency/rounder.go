package currency

import (
	"payment-collect-visa/internal/domain"

	"github.com/shopspring/decimal"
)

// Rounder rounds half-even to the currency's rounding step and fixes its
// number of fraction digits.
type Rounder struct{}

func NewRounder() Rounder { return Rounder{} }

func (Rounder) Round(c domain.Currency, amount decimal.Decimal) decimal.Decimal {
	if c.Rounding.IsPositive() {
		amount = amount.Div(c.Rounding).RoundBank(0).Mul(c.Rounding)
	}
	return amount.RoundBank(c.Digits)
}

// FromCode builds a currency with the usual rounding for an ISO code.
// Unknown codes get two fraction digits.
func FromCode(code string) domain.Currency {
	digits := int32(2)
	switch code {
	case "CLP", "PYG", "JPY", "KRW":
		digits = 0
	case "BHD", "KWD", "TND":
		digits = 3
	}
	return domain.Currency{
		Code:     code,
		Digits:   digits,
		Rounding: decimal.New(1, -digits),
	}
}
