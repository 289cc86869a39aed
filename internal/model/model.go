// Package model holds the client-side domain types shared by the cart,
// board and favorites engines and by the REST client that backs them.
// Server handlers use internal/database models instead; these types are the
// shapes the API exposes over the wire.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product line in a cart or a submitted order. Within a
// cart there is at most one LineItem per ProductID; a repeated addition
// increments Quantity instead of appending.
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int32           `json:"quantity"`
}

// Subtotal returns UnitPrice × Quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt32(li.Quantity))
}

// Order is a persisted order as returned by the API. Total is a historical
// fact computed at submission time; it is never recomputed from the catalog.
type Order struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"order_number"`
	UserID       uuid.UUID       `json:"user_id"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	Items        []LineItem      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	State        string          `json:"state"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Article is a catalog entry of one restaurant.
type Article struct {
	ID           uuid.UUID       `json:"id"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Tags         []string        `json:"tags"`
	ImageURL     string          `json:"image_url"`
}

type Restaurant struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Street   string    `json:"street"`
	City     string    `json:"city"`
	Cuisines []string  `json:"cuisines"`
}

type Review struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Rating       int32     `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}
