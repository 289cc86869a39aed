package board

import (
	"context"
	"errors"
	"testing"

	"github.com/antojo-app/api/internal/enum"
	"github.com/antojo-app/api/internal/model"
	"github.com/google/uuid"
)

// mockStore implements Store with configurable behavior and call counters.
type mockStore struct {
	listFn   func(ctx context.Context, restaurantID uuid.UUID) ([]model.Order, error)
	setFn    func(ctx context.Context, orderID uuid.UUID, newState string) error
	bulkFn   func(ctx context.Context, restaurantID uuid.UUID, fromState, toState string) (int, error)
	deleteFn func(ctx context.Context, orderIDs []uuid.UUID) error

	listCalls   int
	setCalls    int
	bulkCalls   int
	deleteCalls int
}

func (m *mockStore) ListOrders(ctx context.Context, restaurantID uuid.UUID) ([]model.Order, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx, restaurantID)
	}
	return nil, nil
}

func (m *mockStore) SetOrderState(ctx context.Context, orderID uuid.UUID, newState string) error {
	m.setCalls++
	if m.setFn != nil {
		return m.setFn(ctx, orderID, newState)
	}
	return nil
}

func (m *mockStore) BulkSetOrderState(ctx context.Context, restaurantID uuid.UUID, fromState, toState string) (int, error) {
	m.bulkCalls++
	if m.bulkFn != nil {
		return m.bulkFn(ctx, restaurantID, fromState, toState)
	}
	return 0, nil
}

func (m *mockStore) DeleteOrders(ctx context.Context, orderIDs []uuid.UUID) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, orderIDs)
	}
	return nil
}

func order(state string) model.Order {
	return model.Order{ID: uuid.New(), State: state}
}

// loadedBoard returns a board whose local list is the given orders.
func loadedBoard(t *testing.T, store *mockStore, orders []model.Order) *Board {
	t.Helper()
	prev := store.listFn
	store.listFn = func(ctx context.Context, rid uuid.UUID) ([]model.Order, error) {
		return orders, nil
	}
	b := New(store, uuid.New())
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	store.listFn = prev
	store.listCalls = 0
	return b
}

func TestAdvanceForward(t *testing.T) {
	o := order(enum.OrderStatePending)
	store := &mockStore{}
	b := loadedBoard(t, store, []model.Order{o})

	steps := []string{enum.OrderStatePreparing, enum.OrderStateDelivered}
	for _, want := range steps {
		if err := b.Advance(context.Background(), o.ID, Forward); err != nil {
			t.Fatalf("advance to %s: %v", want, err)
		}
		if got := b.Orders()[0].State; got != want {
			t.Fatalf("state: got %s, want %s", got, want)
		}
	}
}

func TestAdvanceForwardFromDeliveredIsNoOp(t *testing.T) {
	o := order(enum.OrderStateDelivered)
	store := &mockStore{}
	b := loadedBoard(t, store, []model.Order{o})

	if err := b.Advance(context.Background(), o.ID, Forward); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if store.setCalls != 0 {
		t.Errorf("store called %d times, want 0", store.setCalls)
	}
	if got := b.Orders()[0].State; got != enum.OrderStateDelivered {
		t.Errorf("state changed to %s", got)
	}
}

func TestAdvanceBackwardFromPendingIsNoOp(t *testing.T) {
	o := order(enum.OrderStatePending)
	store := &mockStore{}
	b := loadedBoard(t, store, []model.Order{o})

	if err := b.Advance(context.Background(), o.ID, Backward); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if store.setCalls != 0 {
		t.Errorf("store called %d times, want 0", store.setCalls)
	}
	if got := b.Orders()[0].State; got != enum.OrderStatePending {
		t.Errorf("state changed to %s", got)
	}
}

func TestAdvanceUnknownStateIsNoOp(t *testing.T) {
	o := order("Cancelado")
	store := &mockStore{}
	b := loadedBoard(t, store, []model.Order{o})

	if err := b.Advance(context.Background(), o.ID, Forward); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if store.setCalls != 0 {
		t.Errorf("store called %d times, want 0", store.setCalls)
	}
}

func TestAdvanceRemoteFailureLeavesState(t *testing.T) {
	o := order(enum.OrderStatePending)
	store := &mockStore{
		setFn: func(ctx context.Context, id uuid.UUID, s string) error {
			return errors.New("503")
		},
	}
	b := loadedBoard(t, store, []model.Order{o})

	err := b.Advance(context.Background(), o.ID, Forward)
	if !errors.Is(err, ErrTransition) {
		t.Fatalf("err: got %v, want ErrTransition", err)
	}
	if got := b.Orders()[0].State; got != enum.OrderStatePending {
		t.Errorf("state mutated on failure: %s", got)
	}
}

func TestColumns(t *testing.T) {
	orders := []model.Order{
		order(enum.OrderStatePending),
		order(enum.OrderStatePreparing),
		order(enum.OrderStateDelivered),
		order("Unknown"),
	}
	b := loadedBoard(t, &mockStore{}, orders)

	cols := b.Columns()
	if len(cols) != 4 {
		t.Fatalf("buckets: got %d, want 4", len(cols))
	}

	total := 0
	seen := make(map[uuid.UUID]bool)
	for state, bucket := range cols {
		for _, o := range bucket {
			if o.State != state {
				t.Errorf("order %v in bucket %q has state %q", o.ID, state, o.State)
			}
			if seen[o.ID] {
				t.Errorf("order %v appears in more than one bucket", o.ID)
			}
			seen[o.ID] = true
			total++
		}
	}
	if total != len(orders) {
		t.Errorf("union: got %d orders, want %d", total, len(orders))
	}
	if _, ok := cols["Unknown"]; !ok {
		t.Error("unknown state bucket missing")
	}
}

func TestColumnsAlwaysHasPipelineKeys(t *testing.T) {
	b := loadedBoard(t, &mockStore{}, nil)
	cols := b.Columns()
	for _, s := range States() {
		if _, ok := cols[s]; !ok {
			t.Errorf("missing column %q", s)
		}
	}
}

func TestAdvanceAllFromDelivered(t *testing.T) {
	store := &mockStore{}
	b := loadedBoard(t, store, []model.Order{order(enum.OrderStateDelivered)})

	_, err := b.AdvanceAll(context.Background(), enum.OrderStateDelivered)
	if !errors.Is(err, ErrInvalidBulkTransition) {
		t.Fatalf("err: got %v, want ErrInvalidBulkTransition", err)
	}
	if store.bulkCalls != 0 {
		t.Errorf("store called %d times, want 0", store.bulkCalls)
	}
}

func TestAdvanceAllReloadsList(t *testing.T) {
	rid := uuid.New()
	before := []model.Order{order(enum.OrderStatePending), order(enum.OrderStatePending)}
	after := []model.Order{
		{ID: before[0].ID, State: enum.OrderStatePreparing},
		{ID: before[1].ID, State: enum.OrderStatePreparing},
		order(enum.OrderStatePending), // arrived concurrently
	}

	store := &mockStore{
		bulkFn: func(ctx context.Context, gotRID uuid.UUID, from, to string) (int, error) {
			if from != enum.OrderStatePending || to != enum.OrderStatePreparing {
				t.Errorf("transition: got %s -> %s", from, to)
			}
			return 2, nil
		},
		listFn: func(ctx context.Context, gotRID uuid.UUID) ([]model.Order, error) {
			return after, nil
		},
	}
	b := New(store, rid)
	b.orders = before

	n, err := b.AdvanceAll(context.Background(), enum.OrderStatePending)
	if err != nil {
		t.Fatalf("advance all: %v", err)
	}
	if n != 2 {
		t.Errorf("modified: got %d, want 2", n)
	}
	if len(b.Orders()) != 3 {
		t.Errorf("list not reloaded: %d orders, want 3", len(b.Orders()))
	}
}

func TestAdvanceAllBulkFailureLeavesList(t *testing.T) {
	before := []model.Order{order(enum.OrderStatePending)}
	store := &mockStore{
		bulkFn: func(ctx context.Context, rid uuid.UUID, from, to string) (int, error) {
			return 0, errors.New("boom")
		},
	}
	b := loadedBoard(t, store, before)

	_, err := b.AdvanceAll(context.Background(), enum.OrderStatePending)
	if !errors.Is(err, ErrBulkAdvance) {
		t.Fatalf("err: got %v, want ErrBulkAdvance", err)
	}
	if store.listCalls != 0 {
		t.Errorf("reloaded after failed bulk: %d list calls", store.listCalls)
	}
	if got := b.Orders()[0].State; got != enum.OrderStatePending {
		t.Errorf("state mutated on failure: %s", got)
	}
}

func TestToggleIsInvolution(t *testing.T) {
	o := order(enum.OrderStatePending)
	b := loadedBoard(t, &mockStore{}, []model.Order{o})

	b.Toggle(o.ID)
	if !b.Selected(o.ID) {
		t.Fatal("not selected after first toggle")
	}
	b.Toggle(o.ID)
	if b.Selected(o.ID) {
		t.Fatal("still selected after second toggle")
	}
	if len(b.SelectedIDs()) != 0 {
		t.Errorf("selection not empty: %v", b.SelectedIDs())
	}
}

func TestRefreshPrunesStaleSelection(t *testing.T) {
	a, c := order(enum.OrderStatePending), order(enum.OrderStatePreparing)
	store := &mockStore{}
	b := loadedBoard(t, store, []model.Order{a, c})
	b.Toggle(a.ID)
	b.Toggle(c.ID)

	// Server dropped order c.
	store.listFn = func(ctx context.Context, rid uuid.UUID) ([]model.Order, error) {
		return []model.Order{a}, nil
	}
	if err := b.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if !b.Selected(a.ID) {
		t.Error("live selection dropped")
	}
	if b.Selected(c.ID) {
		t.Error("stale selection kept")
	}
}

func TestDeleteSelectedEmptyIsNoOp(t *testing.T) {
	store := &mockStore{}
	b := loadedBoard(t, store, []model.Order{order(enum.OrderStatePending)})

	if err := b.DeleteSelected(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.deleteCalls != 0 {
		t.Errorf("store called %d times, want 0", store.deleteCalls)
	}
}

func TestDeleteSelectedSuccess(t *testing.T) {
	a, c, d := order(enum.OrderStatePending), order(enum.OrderStatePending), order(enum.OrderStateDelivered)
	store := &mockStore{
		deleteFn: func(ctx context.Context, ids []uuid.UUID) error {
			if len(ids) != 2 {
				t.Errorf("ids: got %d, want 2", len(ids))
			}
			return nil
		},
	}
	b := loadedBoard(t, store, []model.Order{a, c, d})
	b.Toggle(a.ID)
	b.Toggle(d.ID)

	if err := b.DeleteSelected(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	left := b.Orders()
	if len(left) != 1 || left[0].ID != c.ID {
		t.Errorf("orders left: %v, want only %v", left, c.ID)
	}
	if len(b.SelectedIDs()) != 0 {
		t.Errorf("selection not cleared: %v", b.SelectedIDs())
	}
}

func TestDeleteSelectedFailureLeavesEverything(t *testing.T) {
	a := order(enum.OrderStatePending)
	store := &mockStore{
		deleteFn: func(ctx context.Context, ids []uuid.UUID) error {
			return errors.New("500")
		},
	}
	b := loadedBoard(t, store, []model.Order{a})
	b.Toggle(a.ID)

	err := b.DeleteSelected(context.Background())
	if !errors.Is(err, ErrDelete) {
		t.Fatalf("err: got %v, want ErrDelete", err)
	}
	if len(b.Orders()) != 1 {
		t.Error("order removed despite failure")
	}
	if !b.Selected(a.ID) {
		t.Error("selection cleared despite failure")
	}
}

func TestSuccessor(t *testing.T) {
	cases := []struct {
		from string
		want string
		ok   bool
	}{
		{enum.OrderStatePending, enum.OrderStatePreparing, true},
		{enum.OrderStatePreparing, enum.OrderStateDelivered, true},
		{enum.OrderStateDelivered, "", false},
		{"Cancelado", "", false},
	}
	for _, c := range cases {
		got, ok := Successor(c.from)
		if got != c.want || ok != c.ok {
			t.Errorf("Successor(%q): got (%q, %v), want (%q, %v)", c.from, got, ok, c.want, c.ok)
		}
	}
}
