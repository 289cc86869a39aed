package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Restaurant struct {
	ID        uuid.UUID
	Name      string
	Street    string
	City      string
	Cuisines  []string
	CreatedAt time.Time
}

type Article struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	Tags         []string
	ImageURL     pgtype.Text
	IsActive     bool
	CreatedAt    time.Time
}

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	ActorType string
	CreatedAt time.Time
}

type Order struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	UserID       uuid.UUID
	OrderNumber  string
	State        string
	Total        pgtype.Numeric
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	UnitPrice pgtype.Numeric
	Quantity  int32
	Position  int32
}

type Review struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	RestaurantID uuid.UUID
	Rating       int32
	Comment      pgtype.Text
	CreatedAt    time.Time
}
