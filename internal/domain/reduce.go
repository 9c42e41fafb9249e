package domain

// Reduce applies cmd to state and returns the next state. The second result
// reports whether the item list changed. Out of range quantities are clamped
// and unknown products are ignored, so Reduce never fails.
//
// state is never modified; the returned Items slice is always fresh when
// something changed.
func Reduce[P any](state CartState[P], cmd Command) (CartState[P], bool) {
	var (
		items   []CartLine[P]
		changed bool
	)

	switch c := cmd.(type) {
	case AddItem[P]:
		items, changed = addItem(state.Items, c.Line, c.Quantity)
	case RemoveItem:
		items, changed = removeItem(state.Items, c.ProductID)
	case UpdateQuantity:
		items, changed = updateQuantity(state.Items, c.ProductID, c.Quantity)
	case ClearCart:
		items, changed = []CartLine[P]{}, len(state.Items) > 0
	default:
		return state, false
	}

	if !changed {
		return state, false
	}

	return state.WithItems(items), true
}

func addItem[P any](items []CartLine[P], line CartLine[P], quantity int) ([]CartLine[P], bool) {
	if line.ProductID == "" || line.Price.IsNegative() {
		return items, false
	}
	if quantity <= 0 {
		quantity = 1
	}

	for i, existing := range items {
		if existing.ProductID != line.ProductID {
			continue
		}

		// existing.Quantity+quantity can overflow int
		next := existing.Quantity + min(quantity, max(existing.MaxQuantity-existing.Quantity, 0))
		if next == existing.Quantity {
			return items, false
		}

		out := clone(items)
		out[i].Quantity = next
		return out, true
	}

	line.MaxQuantity = max(line.MaxQuantity, 1)
	line.Quantity = clamp(quantity, 1, line.MaxQuantity)

	out := make([]CartLine[P], 0, len(items)+1)
	out = append(out, items...)
	return append(out, line), true
}

func removeItem[P any](items []CartLine[P], productID string) ([]CartLine[P], bool) {
	for i := range items {
		if items[i].ProductID != productID {
			continue
		}

		out := make([]CartLine[P], 0, len(items)-1)
		out = append(out, items[:i]...)
		return append(out, items[i+1:]...), true
	}

	return items, false
}

func updateQuantity[P any](items []CartLine[P], productID string, quantity int) ([]CartLine[P], bool) {
	if quantity <= 0 {
		return removeItem(items, productID)
	}

	for i, existing := range items {
		if existing.ProductID != productID {
			continue
		}

		next := min(quantity, existing.MaxQuantity)
		if next == existing.Quantity {
			return items, false
		}

		out := clone(items)
		out[i].Quantity = next
		return out, true
	}

	return items, false
}

func clone[P any](items []CartLine[P]) []CartLine[P] {
	out := make([]CartLine[P], len(items))
	copy(out, items)
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
