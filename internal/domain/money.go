package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func (m Money) Mul(factor int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(factor))), Currency: m.Currency}
}

// String renders the amount with the currency's standard number of decimals, e.g. "USD 20.00".
func (m Money) String() string {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return m.Currency.String() + " " + m.Amount.StringFixed(int32(scale))
}
