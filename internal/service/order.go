package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/antojo-app/api/internal/database"
	"github.com/antojo-app/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems       = errors.New("items are required")
	ErrInvalidQuantity  = errors.New("quantity must be >= 1")
	ErrDuplicateItem    = errors.New("duplicate product in items")
	ErrArticleNotFound  = errors.New("article not found in restaurant")
	ErrInvalidArticleID = errors.New("invalid product_id")
	ErrNoUser           = errors.New("user_id is required")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderNumber(ctx context.Context, restaurantID uuid.UUID) (int32, error)
	GetArticleForOrder(ctx context.Context, arg database.GetArticleForOrderParams) (database.GetArticleForOrderRow, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx), so the
// service can run its queries inside the transaction it opens.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order. Items
// arrive already consolidated by the client cart (one line per product);
// the service re-checks that and rejects duplicates.
type CreateOrderRequest struct {
	RestaurantID uuid.UUID
	UserID       uuid.UUID
	Items        []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single consolidated line in the order. Only
// the product id and quantity are trusted; name and price are taken from
// the catalog at creation time.
type CreateOrderItemRequest struct {
	ProductID string
	Quantity  int32
}

// CreateOrderResult is the full created order with its item snapshot.
type CreateOrderResult struct {
	Order database.Order
	Items []database.OrderItem
}

// OrderService handles order creation.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// processedItem holds a priced line ready to insert.
type processedItem struct {
	productID uuid.UUID
	name      string
	unitPrice decimal.Decimal
	quantity  int32
}

// CreateOrder validates the items against the restaurant's catalog, prices
// them server-side, and creates the order atomically in the Pending state.
// The stored total is Σ unit price × quantity at this moment; it is never
// recomputed when catalog prices change later. Retries up to
// maxOrderNumberRetries times on order_number unique constraint violations
// (concurrent transactions can read the same MAX).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if req.UserID == uuid.Nil {
		return nil, ErrNoUser
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	seen := make(map[string]bool, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
		if seen[item.ProductID] {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrDuplicateItem)
		}
		seen[item.ProductID] = true
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks for a unique constraint violation on the
// per-restaurant order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_restaurant_id_order_number_key"
	}
	return false
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	nextNum, err := store.GetNextOrderNumber(ctx, req.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}
	orderNumber := fmt.Sprintf("ANT-%03d", nextNum)

	total := decimal.Zero
	items := make([]processedItem, 0, len(req.Items))
	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidArticleID)
		}

		article, err := store.GetArticleForOrder(ctx, database.GetArticleForOrderParams{
			ID:           productID,
			RestaurantID: req.RestaurantID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrArticleNotFound)
			}
			return nil, fmt.Errorf("items[%d]: get article: %w", i, err)
		}

		unitPrice := numericToDecimal(article.Price)
		total = total.Add(unitPrice.Mul(decimal.NewFromInt32(item.Quantity)))
		items = append(items, processedItem{
			productID: productID,
			name:      article.Name,
			unitPrice: unitPrice,
			quantity:  item.Quantity,
		})
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		RestaurantID: req.RestaurantID,
		UserID:       req.UserID,
		OrderNumber:  orderNumber,
		State:        enum.OrderStatePending,
		Total:        decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	itemRows := make([]database.OrderItem, 0, len(items))
	for pos, pi := range items {
		row, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   order.ID,
			ProductID: pi.productID,
			Name:      pi.name,
			UnitPrice: decimalToNumeric(pi.unitPrice),
			Quantity:  pi.quantity,
			Position:  int32(pos),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		itemRows = append(itemRows, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{Order: order, Items: itemRows}, nil
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
