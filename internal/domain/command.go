package domain

// Command is one cart transition. The set is closed: AddItem, RemoveItem,
// UpdateQuantity and ClearCart.
type Command interface {
	command()
}

// AddItem adds Line to the cart. A Quantity of zero or less means one.
type AddItem[P any] struct {
	Line     CartLine[P]
	Quantity int
}

type RemoveItem struct {
	ProductID string
}

// UpdateQuantity sets the quantity of an existing line. Zero or less removes it.
type UpdateQuantity struct {
	ProductID string
	Quantity  int
}

type ClearCart struct{}

func (AddItem[P]) command()     {}
func (RemoveItem) command()     {}
func (UpdateQuantity) command() {}
func (ClearCart) command()      {}
