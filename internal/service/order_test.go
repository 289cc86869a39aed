package service

import (
	"context"
	"errors"
	"testing"

	"github.com/antojo-app/api/internal/database"
	"github.com/antojo-app/api/internal/enum"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- Mocks ---

// mockTx implements pgx.Tx with only the methods the service touches.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr error
	committed bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error { return nil }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

type mockTxBeginner struct {
	tx  *mockTx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// mockOrderStore implements OrderStore with configurable behavior.
type mockOrderStore struct {
	getNextOrderNumberFn func(ctx context.Context, restaurantID uuid.UUID) (int32, error)
	getArticleForOrderFn func(ctx context.Context, arg database.GetArticleForOrderParams) (database.GetArticleForOrderRow, error)
	createOrderFn        func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn    func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)

	createOrderCalls int
}

func (m *mockOrderStore) GetNextOrderNumber(ctx context.Context, restaurantID uuid.UUID) (int32, error) {
	if m.getNextOrderNumberFn != nil {
		return m.getNextOrderNumberFn(ctx, restaurantID)
	}
	return 1, nil
}

func (m *mockOrderStore) GetArticleForOrder(ctx context.Context, arg database.GetArticleForOrderParams) (database.GetArticleForOrderRow, error) {
	if m.getArticleForOrderFn != nil {
		return m.getArticleForOrderFn(ctx, arg)
	}
	return database.GetArticleForOrderRow{}, pgx.ErrNoRows
}

func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	m.createOrderCalls++
	if m.createOrderFn != nil {
		return m.createOrderFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	if m.createOrderItemFn != nil {
		return m.createOrderItemFn(ctx, arg)
	}
	return database.OrderItem{
		ID:        uuid.New(),
		OrderID:   arg.OrderID,
		ProductID: arg.ProductID,
		Name:      arg.Name,
		UnitPrice: arg.UnitPrice,
		Quantity:  arg.Quantity,
		Position:  arg.Position,
	}, nil
}

// --- Helpers ---

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

func newTestService(store *mockOrderStore) *OrderService {
	pool := &mockTxBeginner{tx: &mockTx{}}
	newStore := func(db database.DBTX) OrderStore { return store }
	return NewOrderService(pool, newStore)
}

// catalogStore returns a store that knows the given articles and echoes
// order creation back with the given state.
func catalogStore(t *testing.T, articles map[uuid.UUID]database.GetArticleForOrderRow) *mockOrderStore {
	t.Helper()
	return &mockOrderStore{
		getArticleForOrderFn: func(ctx context.Context, arg database.GetArticleForOrderParams) (database.GetArticleForOrderRow, error) {
			row, ok := articles[arg.ID]
			if !ok {
				return database.GetArticleForOrderRow{}, pgx.ErrNoRows
			}
			return row, nil
		},
		createOrderFn: func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
			return database.Order{
				ID:           uuid.New(),
				RestaurantID: arg.RestaurantID,
				UserID:       arg.UserID,
				OrderNumber:  arg.OrderNumber,
				State:        arg.State,
				Total:        arg.Total,
			}, nil
		},
	}
}

// --- Tests ---

func TestCreateOrderEmptyItems(t *testing.T) {
	svc := newTestService(&mockOrderStore{})
	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		RestaurantID: uuid.New(),
		UserID:       uuid.New(),
	})
	if !errors.Is(err, ErrEmptyItems) {
		t.Fatalf("err: got %v, want ErrEmptyItems", err)
	}
}

func TestCreateOrderNoUser(t *testing.T) {
	svc := newTestService(&mockOrderStore{})
	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		RestaurantID: uuid.New(),
		Items:        []CreateOrderItemRequest{{ProductID: uuid.New().String(), Quantity: 1}},
	})
	if !errors.Is(err, ErrNoUser) {
		t.Fatalf("err: got %v, want ErrNoUser", err)
	}
}

func TestCreateOrderInvalidQuantity(t *testing.T) {
	svc := newTestService(&mockOrderStore{})
	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		RestaurantID: uuid.New(),
		UserID:       uuid.New(),
		Items:        []CreateOrderItemRequest{{ProductID: uuid.New().String(), Quantity: 0}},
	})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("err: got %v, want ErrInvalidQuantity", err)
	}
}

func TestCreateOrderDuplicateProduct(t *testing.T) {
	svc := newTestService(&mockOrderStore{})
	pid := uuid.New().String()
	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		RestaurantID: uuid.New(),
		UserID:       uuid.New(),
		Items: []CreateOrderItemRequest{
			{ProductID: pid, Quantity: 1},
			{ProductID: pid, Quantity: 2},
		},
	})
	if !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("err: got %v, want ErrDuplicateItem", err)
	}
}

func TestCreateOrderUnknownArticle(t *testing.T) {
	store := catalogStore(t, nil)
	svc := newTestService(store)
	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		RestaurantID: uuid.New(),
		UserID:       uuid.New(),
		Items:        []CreateOrderItemRequest{{ProductID: uuid.New().String(), Quantity: 1}},
	})
	if !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("err: got %v, want ErrArticleNotFound", err)
	}
	if store.createOrderCalls != 0 {
		t.Errorf("order created despite unknown article")
	}
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	tacoID, aguaID := uuid.New(), uuid.New()
	store := catalogStore(t, map[uuid.UUID]database.GetArticleForOrderRow{
		tacoID: {ID: tacoID, Name: "Taco", Price: makeNumeric("10.00")},
		aguaID: {ID: aguaID, Name: "Agua", Price: makeNumeric("5.00")},
	})
	svc := newTestService(store)

	result, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		RestaurantID: uuid.New(),
		UserID:       uuid.New(),
		Items: []CreateOrderItemRequest{
			{ProductID: tacoID.String(), Quantity: 2},
			{ProductID: aguaID.String(), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if result.Order.State != enum.OrderStatePending {
		t.Errorf("state: got %s, want Pending", result.Order.State)
	}
	if !numericEquals(result.Order.Total, "25.00") {
		t.Errorf("total: got %v, want 25.00", numericToDecimal(result.Order.Total))
	}
	if result.Order.OrderNumber != "ANT-001" {
		t.Errorf("order number: got %s, want ANT-001", result.Order.OrderNumber)
	}
	if len(result.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(result.Items))
	}
	if result.Items[0].Name != "Taco" || !numericEquals(result.Items[0].UnitPrice, "10.00") {
		t.Errorf("first item: got %s @ %v", result.Items[0].Name, numericToDecimal(result.Items[0].UnitPrice))
	}
	if result.Items[0].Position != 0 || result.Items[1].Position != 1 {
		t.Errorf("positions: got %d, %d", result.Items[0].Position, result.Items[1].Position)
	}
}

func TestCreateOrderRetriesNumberConflict(t *testing.T) {
	pid := uuid.New()
	conflict := &pgconn.PgError{Code: "23505", ConstraintName: "orders_restaurant_id_order_number_key"}

	attempts := 0
	store := catalogStore(t, map[uuid.UUID]database.GetArticleForOrderRow{
		pid: {ID: pid, Name: "Pizza", Price: makeNumeric("12.00")},
	})
	inner := store.createOrderFn
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		attempts++
		if attempts == 1 {
			return database.Order{}, conflict
		}
		return inner(ctx, arg)
	}

	svc := newTestService(store)
	result, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		RestaurantID: uuid.New(),
		UserID:       uuid.New(),
		Items:        []CreateOrderItemRequest{{ProductID: pid.String(), Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts: got %d, want 2", attempts)
	}
	if result == nil {
		t.Fatal("nil result after retry")
	}
}

func TestCreateOrderGivesUpAfterRetries(t *testing.T) {
	pid := uuid.New()
	conflict := &pgconn.PgError{Code: "23505", ConstraintName: "orders_restaurant_id_order_number_key"}

	store := catalogStore(t, map[uuid.UUID]database.GetArticleForOrderRow{
		pid: {ID: pid, Name: "Pizza", Price: makeNumeric("12.00")},
	})
	store.createOrderFn = func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
		return database.Order{}, conflict
	}

	svc := newTestService(store)
	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		RestaurantID: uuid.New(),
		UserID:       uuid.New(),
		Items:        []CreateOrderItemRequest{{ProductID: pid.String(), Quantity: 1}},
	})

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		t.Fatalf("err: got %v, want the underlying conflict", err)
	}
	if store.createOrderCalls != maxOrderNumberRetries {
		t.Errorf("attempts: got %d, want %d", store.createOrderCalls, maxOrderNumberRetries)
	}
}
