package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/antojo-app/api/internal/database"
	"github.com/antojo-app/api/internal/enum"
	"github.com/antojo-app/api/internal/service"
	"github.com/antojo-app/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// OrderStore defines the database methods needed by order read/update
// handlers. Satisfied by *database.Queries.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrdersByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderState(ctx context.Context, arg database.UpdateOrderStateParams) (database.Order, error)
	BulkUpdateOrderState(ctx context.Context, arg database.BulkUpdateOrderStateParams) (int64, error)
	DeleteOrders(ctx context.Context, arg database.DeleteOrdersParams) (int64, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc   OrderServicer
	store OrderStore
	hub   *ws.Hub
}

// NewOrderHandler creates a new OrderHandler. hub may be nil in tests;
// broadcasts are skipped then.
func NewOrderHandler(svc OrderServicer, store OrderStore, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/state", h.UpdateState)
	r.Post("/bulk-advance", h.BulkAdvance)
	r.Delete("/", h.BulkDelete)
}

// --- Request / Response types ---

type createOrderRequest struct {
	UserID string                   `json:"user_id"`
	Items  []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type orderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderNumber  string              `json:"order_number"`
	UserID       uuid.UUID           `json:"user_id"`
	RestaurantID uuid.UUID           `json:"restaurant_id"`
	Items        []orderItemResponse `json:"items"`
	Total        string              `json:"total"`
	State        string              `json:"state"`
	CreatedAt    time.Time           `json:"created_at"`
}

type orderItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int32     `json:"quantity"`
}

type updateStateRequest struct {
	State string `json:"state"`
}

type bulkAdvanceRequest struct {
	FromState string `json:"from_state"`
}

type bulkAdvanceResponse struct {
	FromState string `json:"from_state"`
	ToState   string `json:"to_state"`
	Modified  int64  `json:"modified"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type bulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// --- Handlers ---

// Create handles POST /restaurants/{rid}/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items are required")
		return
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			writeError(w, http.StatusBadRequest, formatItemError(i, "product_id is required"))
			return
		}
		if item.Quantity < 1 {
			writeError(w, http.StatusBadRequest, formatItemError(i, "quantity must be >= 1"))
			return
		}
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateOrderItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		RestaurantID: restaurantID,
		UserID:       userID,
		Items:        svcItems,
	})
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := toOrderResponse(result.Order, result.Items)
	h.broadcast(restaurantID, "order.created", resp)
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /restaurants/{rid}/orders. Each order carries its item
// snapshot so the board can render lines without extra round-trips.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	orders, err := h.store.ListOrdersByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		items, err := h.store.ListOrderItemsByOrder(r.Context(), o.ID)
		if err != nil {
			log.Printf("ERROR: list order items: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		resp = append(resp, toOrderResponse(o, items))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /restaurants/{rid}/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order.RestaurantID != restaurantID {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, items))
}

// UpdateState handles PATCH /restaurants/{rid}/orders/{id}/state. Only
// moves of exactly one pipeline step, forward or backward, are accepted.
func (h *OrderHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req updateStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.State == "" {
		writeError(w, http.StatusBadRequest, "state is required")
		return
	}
	if stateRank(req.State) < 0 {
		writeError(w, http.StatusBadRequest, "invalid state")
		return
	}

	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Printf("ERROR: get order for state update: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if current.RestaurantID != restaurantID {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if err := validateStateTransition(current.State, req.State); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	updated, err := h.store.UpdateOrderState(r.Context(), database.UpdateOrderStateParams{
		ID:       orderID,
		State:    req.State,
		StateWas: current.State,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The state changed between our read and write.
			writeError(w, http.StatusConflict, "order state changed, please retry")
			return
		}
		log.Printf("ERROR: update order state: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := toOrderResponse(updated, items)
	h.broadcast(restaurantID, "order.state_changed", resp)
	writeJSON(w, http.StatusOK, resp)
}

// BulkAdvance handles POST /restaurants/{rid}/orders/bulk-advance. It
// moves every order in from_state to its successor and reports how many
// rows changed. The terminal state has no successor and is rejected.
func (h *OrderHandler) BulkAdvance(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	var req bulkAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	toState, ok := stateSuccessor(req.FromState)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "no next state for "+strconv.Quote(req.FromState))
		return
	}

	n, err := h.store.BulkUpdateOrderState(r.Context(), database.BulkUpdateOrderStateParams{
		RestaurantID: restaurantID,
		FromState:    req.FromState,
		ToState:      toState,
	})
	if err != nil {
		log.Printf("ERROR: bulk advance orders: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := bulkAdvanceResponse{FromState: req.FromState, ToState: toState, Modified: n}
	h.broadcast(restaurantID, "orders.bulk_advanced", resp)
	writeJSON(w, http.StatusOK, resp)
}

// BulkDelete handles DELETE /restaurants/{rid}/orders with a body of ids.
func (h *OrderHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids are required")
		return
	}

	ids := make([]uuid.UUID, len(req.IDs))
	for i, s := range req.IDs {
		id, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid order ID "+strconv.Quote(s))
			return
		}
		ids[i] = id
	}

	n, err := h.store.DeleteOrders(r.Context(), database.DeleteOrdersParams{
		RestaurantID: restaurantID,
		IDs:          ids,
	})
	if err != nil {
		log.Printf("ERROR: bulk delete orders: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := bulkDeleteResponse{Deleted: n}
	h.broadcast(restaurantID, "orders.deleted", map[string]any{"ids": req.IDs, "deleted": n})
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *OrderHandler) broadcast(restaurantID uuid.UUID, eventType string, payload any) {
	if h.hub == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s event: %v", eventType, err)
		return
	}
	h.hub.BroadcastToRestaurant(restaurantID, ws.Event{Type: eventType, Payload: raw})
}

func formatItemError(idx int, msg string) string {
	return "items[" + strconv.Itoa(idx) + "]: " + msg
}

// isValidationError checks if the error is a known validation error from
// the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrDuplicateItem) ||
		errors.Is(err, service.ErrArticleNotFound) ||
		errors.Is(err, service.ErrInvalidArticleID) ||
		errors.Is(err, service.ErrNoUser)
}

func toOrderResponse(o database.Order, items []database.OrderItem) orderResponse {
	resp := orderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		UserID:       o.UserID,
		RestaurantID: o.RestaurantID,
		Total:        numericToString(o.Total),
		State:        o.State,
		CreatedAt:    o.CreatedAt,
		Items:        make([]orderItemResponse, len(items)),
	}
	for i, it := range items {
		resp.Items[i] = orderItemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: numericToString(it.UnitPrice),
			Quantity:  it.Quantity,
		}
	}
	return resp
}

// orderStates is the fulfillment pipeline in rank order.
var orderStates = []string{
	enum.OrderStatePending,
	enum.OrderStatePreparing,
	enum.OrderStateDelivered,
}

func stateRank(state string) int {
	for i, s := range orderStates {
		if s == state {
			return i
		}
	}
	return -1
}

func stateSuccessor(state string) (string, bool) {
	r := stateRank(state)
	if r < 0 || r+1 >= len(orderStates) {
		return "", false
	}
	return orderStates[r+1], true
}

// validateStateTransition accepts exactly one pipeline step, in either
// direction. Anything else (skips, self-moves, unknown current state) is
// rejected.
func validateStateTransition(current, next string) error {
	cur, nxt := stateRank(current), stateRank(next)
	if cur < 0 {
		return errors.New("cannot transition from " + strconv.Quote(current))
	}
	if nxt != cur+1 && nxt != cur-1 {
		return errors.New("cannot transition from " + current + " to " + next)
	}
	return nil
}
