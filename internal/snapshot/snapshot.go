// Package snapshot converts cart lines to and from the persisted JSON layout:
// a single array of objects carrying productId, quantity, maxQuantity and
// price next to the flattened payload fields.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	fieldProductID   = "productId"
	fieldQuantity    = "quantity"
	fieldMaxQuantity = "maxQuantity"
	fieldPrice       = "price"
)

// ErrInvalidSnapshot is returned when a persisted payload cannot be trusted.
// The whole payload is rejected, never partially recovered.
var ErrInvalidSnapshot = errors.New("invalid cart snapshot")

var validate = validator.New()

func Encode[P any](items []domain.CartLine[P]) ([]byte, error) {
	out := []byte("[]")

	for i, item := range items {
		obj, err := EncodeLine(item)
		if err != nil {
			return nil, fmt.Errorf("EncodeLine[%d]: %w", i, err)
		}

		out, err = sjson.SetRawBytes(out, "-1", obj)
		if err != nil {
			return nil, fmt.Errorf("sjson.SetRawBytes: %w", err)
		}
	}

	return out, nil
}

// EncodeLine renders one line as a JSON object. Core fields override payload
// fields with the same name.
func EncodeLine[P any](line domain.CartLine[P]) ([]byte, error) {
	obj, err := json.Marshal(line.Payload)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	payload := gjson.ParseBytes(obj)
	switch {
	case payload.Type == gjson.Null:
		obj = []byte("{}")
	case !payload.IsObject():
		return nil, fmt.Errorf("payload must encode to a JSON object, got %s", payload.Type)
	}

	productID, err := json.Marshal(line.ProductID)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	fields := []struct {
		path string
		raw  string
	}{
		{fieldProductID, string(productID)},
		{fieldQuantity, strconv.Itoa(line.Quantity)},
		{fieldMaxQuantity, strconv.Itoa(line.MaxQuantity)},
		{fieldPrice, line.Price.String()},
	}

	for _, f := range fields {
		obj, err = sjson.SetRawBytes(obj, f.path, []byte(f.raw))
		if err != nil {
			return nil, fmt.Errorf("sjson.SetRawBytes[%s]: %w", f.path, err)
		}
	}

	return obj, nil
}

func Decode[P any](data []byte) ([]domain.CartLine[P], error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidSnapshot)
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrInvalidSnapshot, root.Type)
	}

	elems := root.Array()
	items := make([]domain.CartLine[P], 0, len(elems))
	seen := make(map[string]struct{}, len(elems))

	for i, elem := range elems {
		line, err := decodeLine[P](elem)
		if err != nil {
			return nil, fmt.Errorf("%w: line[%d]: %w", ErrInvalidSnapshot, i, err)
		}

		if _, ok := seen[line.ProductID]; ok {
			return nil, fmt.Errorf("%w: duplicate productId[%s]", ErrInvalidSnapshot, line.ProductID)
		}
		seen[line.ProductID] = struct{}{}

		items = append(items, line)
	}

	return items, nil
}

func decodeLine[P any](elem gjson.Result) (domain.CartLine[P], error) {
	if !elem.IsObject() {
		return domain.CartLine[P]{}, fmt.Errorf("expected object, got %s", elem.Type)
	}

	productID := elem.Get(fieldProductID)
	if productID.Type != gjson.String {
		return domain.CartLine[P]{}, fmt.Errorf("%s is not a string", fieldProductID)
	}

	quantity, err := integerField(elem, fieldQuantity)
	if err != nil {
		return domain.CartLine[P]{}, err
	}

	maxQuantity, err := integerField(elem, fieldMaxQuantity)
	if err != nil {
		return domain.CartLine[P]{}, err
	}

	price, err := priceField(elem)
	if err != nil {
		return domain.CartLine[P]{}, err
	}

	var payload P
	if err := json.Unmarshal([]byte(elem.Raw), &payload); err != nil {
		return domain.CartLine[P]{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	line := domain.CartLine[P]{
		ProductID:   productID.Str,
		Quantity:    quantity,
		MaxQuantity: maxQuantity,
		Price:       price,
		Payload:     payload,
	}

	if err := validate.Struct(line); err != nil {
		return domain.CartLine[P]{}, fmt.Errorf("validate.Struct: %w", err)
	}

	return line, nil
}

func integerField(elem gjson.Result, name string) (int, error) {
	r := elem.Get(name)
	if r.Type != gjson.Number {
		return 0, fmt.Errorf("%s is not a number", name)
	}

	n, err := strconv.Atoi(r.Raw)
	if err != nil {
		return 0, fmt.Errorf("%s[%s] is not an integer: %w", name, r.Raw, err)
	}

	return n, nil
}

func priceField(elem gjson.Result) (decimal.Decimal, error) {
	r := elem.Get(fieldPrice)

	var raw string
	switch r.Type {
	case gjson.Number:
		raw = r.Raw
	case gjson.String:
		raw = r.Str
	default:
		return decimal.Decimal{}, fmt.Errorf("%s is not a number", fieldPrice)
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s[%s] is not valid: %w", fieldPrice, raw, err)
	}

	if price.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s[%s] is negative", fieldPrice, raw)
	}

	return price, nil
}
