package snapshot_test

import (
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/snapshot"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line = domain.CartLine[domain.ProductDisplay]

func TestEncode(t *testing.T) {
	items := []line{
		{
			ProductID:   "p1",
			Quantity:    2,
			MaxQuantity: 5,
			Price:       decimal.RequireFromString("10.5"),
			Payload:     domain.ProductDisplay{Name: "Mug", ImageURL: "https://img.example/mug.png"},
		},
		{
			ProductID:   "p2",
			Quantity:    1,
			MaxQuantity: 1,
			Price:       decimal.Zero,
			Payload:     domain.ProductDisplay{Name: "Sticker"},
		},
	}

	data, err := snapshot.Encode(items)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"productId":"p1","quantity":2,"maxQuantity":5,"price":10.5,"name":"Mug","imageUrl":"https://img.example/mug.png"},
		{"productId":"p2","quantity":1,"maxQuantity":1,"price":0,"name":"Sticker"}
	]`, string(data))
}

func TestEncode_Empty(t *testing.T) {
	data, err := snapshot.Encode[domain.ProductDisplay](nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestEncodeLine_CoreFieldsWin(t *testing.T) {
	l := domain.CartLine[map[string]any]{
		ProductID:   "p1",
		Quantity:    1,
		MaxQuantity: 2,
		Price:       decimal.NewFromInt(3),
		Payload:     map[string]any{"productId": "spoofed", "color": "red"},
	}

	data, err := snapshot.EncodeLine(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"productId":"p1","quantity":1,"maxQuantity":2,"price":3,"color":"red"}`, string(data))
}

func TestEncodeLine_NilPayload(t *testing.T) {
	l := domain.CartLine[*domain.ProductDisplay]{
		ProductID:   "p1",
		Quantity:    1,
		MaxQuantity: 1,
		Price:       decimal.NewFromInt(1),
	}

	data, err := snapshot.EncodeLine(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"productId":"p1","quantity":1,"maxQuantity":1,"price":1}`, string(data))
}

func TestEncodeLine_NonObjectPayload(t *testing.T) {
	l := domain.CartLine[string]{
		ProductID:   "p1",
		Quantity:    1,
		MaxQuantity: 1,
		Price:       decimal.NewFromInt(1),
		Payload:     "just a string",
	}

	_, err := snapshot.EncodeLine(l)
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		want      []line
		wantError bool
	}{
		{
			name: "valid payload: ok",
			data: `[{"productId":"p1","quantity":2,"maxQuantity":5,"price":10,"name":"Mug"}]`,
			want: []line{{
				ProductID:   "p1",
				Quantity:    2,
				MaxQuantity: 5,
				Price:       decimal.NewFromInt(10),
				Payload:     domain.ProductDisplay{Name: "Mug"},
			}},
		},
		{
			name: "quoted price: ok",
			data: `[{"productId":"p1","quantity":1,"maxQuantity":1,"price":"4.99"}]`,
			want: []line{{
				ProductID:   "p1",
				Quantity:    1,
				MaxQuantity: 1,
				Price:       decimal.RequireFromString("4.99"),
			}},
		},
		{
			name: "empty array: ok",
			data: `[]`,
			want: []line{},
		},
		{
			name:      "not JSON: error",
			data:      `{{not json`,
			wantError: true,
		},
		{
			name:      "object instead of array: error",
			data:      `{"productId":"p1"}`,
			wantError: true,
		},
		{
			name:      "element is not an object: error",
			data:      `[1, 2]`,
			wantError: true,
		},
		{
			name:      "missing product ID: error",
			data:      `[{"quantity":1,"maxQuantity":1,"price":1}]`,
			wantError: true,
		},
		{
			name:      "empty product ID: error",
			data:      `[{"productId":"","quantity":1,"maxQuantity":1,"price":1}]`,
			wantError: true,
		},
		{
			name:      "fractional quantity: error",
			data:      `[{"productId":"p1","quantity":1.5,"maxQuantity":2,"price":1}]`,
			wantError: true,
		},
		{
			name: "max int quantity: ok",
			data: `[{"productId":"p1","quantity":9223372036854775807,"maxQuantity":9223372036854775807,"price":1}]`,
			want: []line{{
				ProductID:   "p1",
				Quantity:    math.MaxInt,
				MaxQuantity: math.MaxInt,
				Price:       decimal.NewFromInt(1),
			}},
		},
		{
			name:      "quantity beyond int range: error",
			data:      `[{"productId":"p1","quantity":9223372036854775808,"maxQuantity":9223372036854775807,"price":1}]`,
			wantError: true,
		},
		{
			name:      "exponent quantity: error",
			data:      `[{"productId":"p1","quantity":1e2,"maxQuantity":200,"price":1}]`,
			wantError: true,
		},
		{
			name:      "zero quantity: error",
			data:      `[{"productId":"p1","quantity":0,"maxQuantity":2,"price":1}]`,
			wantError: true,
		},
		{
			name:      "quantity above max: error",
			data:      `[{"productId":"p1","quantity":3,"maxQuantity":2,"price":1}]`,
			wantError: true,
		},
		{
			name:      "negative price: error",
			data:      `[{"productId":"p1","quantity":1,"maxQuantity":2,"price":-1}]`,
			wantError: true,
		},
		{
			name:      "price is not numeric: error",
			data:      `[{"productId":"p1","quantity":1,"maxQuantity":2,"price":"cheap"}]`,
			wantError: true,
		},
		{
			name: "duplicate product ID: error",
			data: `[
				{"productId":"p1","quantity":1,"maxQuantity":2,"price":1},
				{"productId":"p1","quantity":2,"maxQuantity":2,"price":1}
			]`,
			wantError: true,
		},
		{
			name: "one bad line rejects the whole payload: error",
			data: `[
				{"productId":"p1","quantity":1,"maxQuantity":2,"price":1},
				{"productId":"p2","quantity":"many","maxQuantity":2,"price":1}
			]`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := snapshot.Decode[domain.ProductDisplay]([]byte(tt.data))
			if tt.wantError {
				require.ErrorIs(t, err, snapshot.ErrInvalidSnapshot)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)

			assert.Empty(t, cmp.Diff(tt.want, got, decimalComparer()))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	items := make([]line, 0, 10)
	for i := range 10 {
		maxQuantity := gofakeit.IntRange(1, 20)
		items = append(items, line{
			ProductID:   gofakeit.UUID() + "-" + string(rune('a'+i)),
			Quantity:    gofakeit.IntRange(1, maxQuantity),
			MaxQuantity: maxQuantity,
			Price:       decimal.NewFromFloat(gofakeit.Price(0, 500)).Round(2),
			Payload: domain.ProductDisplay{
				Name:       gofakeit.ProductName(),
				ImageURL:   gofakeit.URL(),
				CategoryID: gofakeit.UUID(),
			},
		})
	}

	data, err := snapshot.Encode(items)
	require.NoError(t, err)

	got, err := snapshot.Decode[domain.ProductDisplay](data)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(items, got, decimalComparer()))
}

func TestRoundTrip_LargeQuantities(t *testing.T) {
	items := []line{
		{
			ProductID:   "p1",
			Quantity:    2_999_999_999,
			MaxQuantity: 3_000_000_000,
			Price:       decimal.RequireFromString("0.01"),
		},
		{
			ProductID:   "p2",
			Quantity:    math.MaxInt,
			MaxQuantity: math.MaxInt,
			Price:       decimal.Zero,
		},
		{
			ProductID:   "p3",
			Quantity:    (1 << 53) + 1,
			MaxQuantity: (1 << 53) + 1,
			Price:       decimal.NewFromInt(1),
		},
	}

	data, err := snapshot.Encode(items)
	require.NoError(t, err)

	got, err := snapshot.Decode[domain.ProductDisplay](data)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(items, got, decimalComparer()))
}

func decimalComparer() cmp.Option {
	return cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})
}
