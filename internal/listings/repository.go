package listings

import "context"

// Repository is the remote listings table.
type Repository interface {
	List(ctx context.Context) ([]*Listing, error)
	Create(ctx context.Context, listing *Listing) (*Listing, error)
	Update(ctx context.Context, listing *Listing) (*Listing, error)
	Delete(ctx context.Context, id string) error
}

// Order is one display-order assignment.
type Order struct {
	ID           string
	DisplayOrder int
}

// OrderWriter is implemented by repositories that can persist a whole
// ordering in one write. Either every order lands or none does.
type OrderWriter interface {
	UpdateDisplayOrders(ctx context.Context, orders []Order) error
}

func ordersOf(items []Listing) []Order {
	orders := make([]Order, len(items))
	for i, item := range items {
		orders[i] = Order{ID: item.ID, DisplayOrder: item.DisplayOrder}
	}
	return orders
}
