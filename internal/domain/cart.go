package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// CartLine is one product entry in the cart. Payload carries display fields
// that the cart never interprets.
type CartLine[P any] struct {
	ProductID   string          `validate:"required"`
	Quantity    int             `validate:"min=1,ltefield=MaxQuantity"`
	MaxQuantity int             `validate:"min=1"`
	Price       decimal.Decimal `validate:"-"`

	Payload P `validate:"-"`
}

func (l CartLine[P]) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type CartState[P any] struct {
	Items       []CartLine[P]
	TotalItems  int
	TotalAmount decimal.Decimal
	IsLoading   bool
}

// NewLoadingState is the state a cart starts in before hydration.
func NewLoadingState[P any]() CartState[P] {
	return CartState[P]{
		Items:       []CartLine[P]{},
		TotalAmount: decimal.Zero,
		IsLoading:   true,
	}
}

// WithItems returns a copy of s holding items, with totals recomputed.
func (s CartState[P]) WithItems(items []CartLine[P]) CartState[P] {
	s.Items = items
	s.TotalItems, s.TotalAmount = totals(items)
	return s
}

func (s CartState[P]) IsItemInCart(productID string) bool {
	return s.indexOf(productID) >= 0
}

func (s CartState[P]) GetItemQuantity(productID string) int {
	if i := s.indexOf(productID); i >= 0 {
		return s.Items[i].Quantity
	}
	return 0
}

func (s CartState[P]) Line(productID string) (CartLine[P], bool) {
	if i := s.indexOf(productID); i >= 0 {
		return s.Items[i], true
	}
	return CartLine[P]{}, false
}

func (s CartState[P]) Total(unit currency.Unit) Money {
	return Money{Amount: s.TotalAmount, Currency: unit}
}

// Clone returns a copy whose Items slice can be modified without affecting s.
func (s CartState[P]) Clone() CartState[P] {
	items := make([]CartLine[P], len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

func (s CartState[P]) indexOf(productID string) int {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func totals[P any](items []CartLine[P]) (int, decimal.Decimal) {
	count := 0
	amount := decimal.Zero
	for _, item := range items {
		count += item.Quantity
		amount = amount.Add(item.Subtotal())
	}
	return count, amount
}
