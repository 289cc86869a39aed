// Package cart implements the shopping cart for one browsing session on
// one restaurant: line items merged by product identity, a running total,
// and submission of the consolidated cart as a new order.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/antojo-app/api/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors returned by Submit.
var (
	// ErrEmptyCart and ErrNoActor are detected locally; Submit never
	// contacts the store when it returns either of them.
	ErrEmptyCart = errors.New("cart is empty")
	ErrNoActor   = errors.New("no acting user")

	// ErrRemote wraps a failure of the order-creation call itself.
	// The cart is left untouched so the user can retry.
	ErrRemote = errors.New("order creation failed")
)

// OrderCreator persists a new order and returns its assigned id.
// Satisfied by *client.Client.
type OrderCreator interface {
	CreateOrder(ctx context.Context, userID, restaurantID uuid.UUID, items []model.LineItem) (uuid.UUID, error)
}

// Cart accumulates line items for a single session. It is owned by one
// browsing view and must not be shared across goroutines.
type Cart struct {
	creator OrderCreator
	items   []model.LineItem
}

// New creates an empty cart that submits through creator.
func New(creator OrderCreator) *Cart {
	return &Cart{creator: creator}
}

// Add puts one unit of the article into the cart. If a line for the same
// product already exists its quantity is incremented; otherwise a new line
// is appended, capturing the article's current name and price. Insertion
// order is preserved for display.
func (c *Cart) Add(a model.Article) {
	for i := range c.items {
		if c.items[i].ProductID == a.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, model.LineItem{
		ProductID: a.ID,
		Name:      a.Name,
		UnitPrice: a.Price,
		Quantity:  1,
	})
}

// Items returns a snapshot copy of the current line items.
func (c *Cart) Items() []model.LineItem {
	out := make([]model.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct product lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Total returns Σ unit price × quantity over all lines. Zero for an empty
// cart.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// Submit sends the consolidated cart to the store as a new order for the
// given user and restaurant. On success the cart is cleared and the new
// order id returned. An empty cart or a nil user id fails locally without
// any remote call; a remote failure is wrapped in ErrRemote and the cart
// kept intact for retry.
func (c *Cart) Submit(ctx context.Context, userID, restaurantID uuid.UUID) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, ErrNoActor
	}
	if len(c.items) == 0 {
		return uuid.Nil, ErrEmptyCart
	}

	orderID, err := c.creator.CreateOrder(ctx, userID, restaurantID, c.Items())
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}

	c.items = nil
	return orderID, nil
}
