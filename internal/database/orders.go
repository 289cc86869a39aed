package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const getNextOrderNumber = `
SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM 5) AS INTEGER)), 0) + 1
FROM orders
WHERE restaurant_id = $1
`

// GetNextOrderNumber returns the next sequential order number for the
// restaurant. Concurrent transactions can read the same MAX; the unique
// constraint on (restaurant_id, order_number) catches the loser, which
// retries.
func (q *Queries) GetNextOrderNumber(ctx context.Context, restaurantID uuid.UUID) (int32, error) {
	var n int32
	err := q.db.QueryRow(ctx, getNextOrderNumber, restaurantID).Scan(&n)
	return n, err
}

const createOrder = `
INSERT INTO orders (restaurant_id, user_id, order_number, state, total)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, restaurant_id, user_id, order_number, state, total, created_at, updated_at
`

type CreateOrderParams struct {
	RestaurantID uuid.UUID
	UserID       uuid.UUID
	OrderNumber  string
	State        string
	Total        pgtype.Numeric
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	var o Order
	err := q.db.QueryRow(ctx, createOrder, arg.RestaurantID, arg.UserID, arg.OrderNumber,
		arg.State, arg.Total).
		Scan(&o.ID, &o.RestaurantID, &o.UserID, &o.OrderNumber, &o.State, &o.Total,
			&o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const createOrderItem = `
INSERT INTO order_items (order_id, product_id, name, unit_price, quantity, position)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, product_id, name, unit_price, quantity, position
`

type CreateOrderItemParams struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	UnitPrice pgtype.Numeric
	Quantity  int32
	Position  int32
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	var it OrderItem
	err := q.db.QueryRow(ctx, createOrderItem, arg.OrderID, arg.ProductID, arg.Name,
		arg.UnitPrice, arg.Quantity, arg.Position).
		Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Position)
	return it, err
}

const getOrder = `
SELECT id, restaurant_id, user_id, order_number, state, total, created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	var o Order
	err := q.db.QueryRow(ctx, getOrder, id).
		Scan(&o.ID, &o.RestaurantID, &o.UserID, &o.OrderNumber, &o.State, &o.Total,
			&o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const listOrdersByRestaurant = `
SELECT id, restaurant_id, user_id, order_number, state, total, created_at, updated_at
FROM orders
WHERE restaurant_id = $1
ORDER BY created_at
`

func (q *Queries) ListOrdersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

const listOrdersByUser = `
SELECT id, restaurant_id, user_id, order_number, state, total, created_at, updated_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

const listOrderItemsByOrder = `
SELECT id, order_id, product_id, name, unit_price, quantity, position
FROM order_items
WHERE order_id = $1
ORDER BY position
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Position); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const updateOrderState = `
UPDATE orders
SET state = $2, updated_at = now()
WHERE id = $1 AND state = $3
RETURNING id, restaurant_id, user_id, order_number, state, total, created_at, updated_at
`

type UpdateOrderStateParams struct {
	ID       uuid.UUID
	State    string
	StateWas string
}

// UpdateOrderState persists a state change only if the row still holds
// StateWas, so a transition raced by another writer returns no rows
// instead of silently overwriting.
func (q *Queries) UpdateOrderState(ctx context.Context, arg UpdateOrderStateParams) (Order, error) {
	var o Order
	err := q.db.QueryRow(ctx, updateOrderState, arg.ID, arg.State, arg.StateWas).
		Scan(&o.ID, &o.RestaurantID, &o.UserID, &o.OrderNumber, &o.State, &o.Total,
			&o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const bulkUpdateOrderState = `
UPDATE orders
SET state = $3, updated_at = now()
WHERE restaurant_id = $1 AND state = $2
`

type BulkUpdateOrderStateParams struct {
	RestaurantID uuid.UUID
	FromState    string
	ToState      string
}

// BulkUpdateOrderState moves every order of the restaurant in FromState to
// ToState and returns the number of rows modified.
func (q *Queries) BulkUpdateOrderState(ctx context.Context, arg BulkUpdateOrderStateParams) (int64, error) {
	tag, err := q.db.Exec(ctx, bulkUpdateOrderState, arg.RestaurantID, arg.FromState, arg.ToState)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteOrders = `
DELETE FROM orders
WHERE restaurant_id = $1 AND id = ANY($2)
`

type DeleteOrdersParams struct {
	RestaurantID uuid.UUID
	IDs          []uuid.UUID
}

// DeleteOrders removes the given orders of the restaurant; order_items go
// with them via ON DELETE CASCADE. Returns the number of orders deleted.
func (q *Queries) DeleteOrders(ctx context.Context, arg DeleteOrdersParams) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteOrders, arg.RestaurantID, arg.IDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanOrders(rows pgx.Rows) ([]Order, error) {
	var items []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.RestaurantID, &o.UserID, &o.OrderNumber, &o.State,
			&o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}
