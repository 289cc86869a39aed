// Package board implements the restaurant-side fulfillment board: the
// local order list partitioned by state, validated single-step and bulk
// transitions along the fulfillment pipeline, and the selection set that
// drives bulk delete. The board owns its order list and selection
// exclusively; all remote effects go through Store and local state is only
// mutated after the store confirms.
package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/antojo-app/api/internal/model"
	"github.com/google/uuid"
)

// Errors reported by board operations.
var (
	// ErrTransition: a single state change was rejected or failed
	// remotely. The local record is unchanged.
	ErrTransition = errors.New("state transition failed")

	// ErrInvalidBulkTransition: a bulk advance was requested from a state
	// with no successor. This is a contract violation by the caller and
	// never reaches the store.
	ErrInvalidBulkTransition = errors.New("bulk transition from terminal or unknown state")

	// ErrBulkAdvance: the bulk request or the reconciling reload failed.
	ErrBulkAdvance = errors.New("bulk advance failed")

	// ErrDelete: the bulk delete failed remotely. List and selection are
	// unchanged.
	ErrDelete = errors.New("bulk delete failed")
)

// Store is the authoritative order store the board runs against.
// Satisfied by *client.BoardClient.
type Store interface {
	ListOrders(ctx context.Context, restaurantID uuid.UUID) ([]model.Order, error)
	SetOrderState(ctx context.Context, orderID uuid.UUID, newState string) error
	BulkSetOrderState(ctx context.Context, restaurantID uuid.UUID, fromState, toState string) (int, error)
	DeleteOrders(ctx context.Context, orderIDs []uuid.UUID) error
}

// Board is the fulfillment view for one restaurant. It is owned by a
// single view and must not be shared across goroutines.
type Board struct {
	store        Store
	restaurantID uuid.UUID
	orders       []model.Order
	selected     map[uuid.UUID]struct{}
}

// New creates an empty board for the given restaurant. Call Refresh to
// load the order list.
func New(store Store, restaurantID uuid.UUID) *Board {
	return &Board{
		store:        store,
		restaurantID: restaurantID,
		selected:     make(map[uuid.UUID]struct{}),
	}
}

// Refresh replaces the local order list with a fresh read from the store
// and prunes selections that no longer exist server-side.
func (b *Board) Refresh(ctx context.Context) error {
	orders, err := b.store.ListOrders(ctx, b.restaurantID)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	b.orders = orders
	b.reconcileSelection()
	return nil
}

// Orders returns a snapshot copy of the local order list.
func (b *Board) Orders() []model.Order {
	out := make([]model.Order, len(b.orders))
	copy(out, b.orders)
	return out
}

// Columns partitions the local orders into buckets keyed by state. Orders
// whose state is not a pipeline state are bucketed under their literal
// state string rather than dropped, so unexpected server states stay
// visible. Known pipeline states are always present as keys, even empty.
func (b *Board) Columns() map[string][]model.Order {
	cols := make(map[string][]model.Order, len(pipeline))
	for _, s := range pipeline {
		cols[s] = nil
	}
	for _, o := range b.orders {
		cols[o.State] = append(cols[o.State], o)
	}
	return cols
}

// Advance moves one order a single step along the pipeline. A step that
// would leave the pipeline (forward from Delivered, backward from Pending,
// or any move on an unknown state) is a local no-op: no remote call, no
// error. Otherwise the store is asked to persist the new state; only on
// success is the local record updated in place.
func (b *Board) Advance(ctx context.Context, orderID uuid.UUID, dir Direction) error {
	idx := b.indexOf(orderID)
	if idx < 0 {
		return fmt.Errorf("%w: order %s not on board", ErrTransition, orderID)
	}

	step := 1
	if dir == Backward {
		step = -1
	}
	newRank := rank(b.orders[idx].State) + step
	if rank(b.orders[idx].State) < 0 || newRank < 0 || newRank >= len(pipeline) {
		return nil
	}

	newState := pipeline[newRank]
	if err := b.store.SetOrderState(ctx, orderID, newState); err != nil {
		return fmt.Errorf("%w: %v", ErrTransition, err)
	}
	b.orders[idx].State = newState
	return nil
}

// AdvanceAll moves every order currently in fromState to its successor
// with one bulk request, then reconciles by reloading the whole list from
// the store. The bulk result is never patched into the local list: orders
// may have been added or moved concurrently, so the fresh read is the only
// correct view. fromState must have a successor; Delivered or an unknown
// state fails with ErrInvalidBulkTransition before any remote call.
// Returns the number of orders the store reports as modified.
func (b *Board) AdvanceAll(ctx context.Context, fromState string) (int, error) {
	toState, ok := Successor(fromState)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBulkTransition, fromState)
	}

	n, err := b.store.BulkSetOrderState(ctx, b.restaurantID, fromState, toState)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBulkAdvance, err)
	}

	if err := b.Refresh(ctx); err != nil {
		return n, fmt.Errorf("%w: reload after bulk: %v", ErrBulkAdvance, err)
	}
	return n, nil
}

// Toggle adds the id to the selection if absent and removes it if present.
func (b *Board) Toggle(orderID uuid.UUID) {
	if _, ok := b.selected[orderID]; ok {
		delete(b.selected, orderID)
		return
	}
	b.selected[orderID] = struct{}{}
}

// Selected reports whether the id is currently marked.
func (b *Board) Selected(orderID uuid.UUID) bool {
	_, ok := b.selected[orderID]
	return ok
}

// SelectedIDs returns the marked ids in board-list order.
func (b *Board) SelectedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.selected))
	for _, o := range b.orders {
		if _, ok := b.selected[o.ID]; ok {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// DeleteSelected deletes every selected order with one request. An empty
// selection is a no-op. On success the deleted orders are removed from the
// local list and the selection cleared together, so a deleted order can
// never be shown as still selectable. On failure neither changes.
func (b *Board) DeleteSelected(ctx context.Context) error {
	ids := b.SelectedIDs()
	if len(ids) == 0 {
		return nil
	}

	if err := b.store.DeleteOrders(ctx, ids); err != nil {
		return fmt.Errorf("%w: %v", ErrDelete, err)
	}

	kept := b.orders[:0]
	for _, o := range b.orders {
		if _, ok := b.selected[o.ID]; !ok {
			kept = append(kept, o)
		}
	}
	b.orders = kept
	b.selected = make(map[uuid.UUID]struct{})
	return nil
}

// reconcileSelection intersects the selection with the current order list.
// Ids that disappeared server-side are dropped silently; they can no
// longer be acted on.
func (b *Board) reconcileSelection() {
	live := make(map[uuid.UUID]struct{}, len(b.orders))
	for _, o := range b.orders {
		live[o.ID] = struct{}{}
	}
	for id := range b.selected {
		if _, ok := live[id]; !ok {
			delete(b.selected, id)
		}
	}
}

func (b *Board) indexOf(orderID uuid.UUID) int {
	for i := range b.orders {
		if b.orders[i].ID == orderID {
			return i
		}
	}
	return -1
}
