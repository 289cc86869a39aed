package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/antojo-app/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ReviewStore defines the database methods needed by review handlers.
// Satisfied by *database.Queries.
type ReviewStore interface {
	CreateReview(ctx context.Context, arg database.CreateReviewParams) (database.Review, error)
	ListReviewsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Review, error)
}

// ReviewHandler handles restaurant review endpoints.
type ReviewHandler struct {
	store ReviewStore
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(store ReviewStore) *ReviewHandler {
	return &ReviewHandler{store: store}
}

// RegisterRoutes registers review endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/reviews
func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

// --- Request / Response types ---

type createReviewRequest struct {
	UserID  string `json:"user_id"`
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Rating       int32     `json:"rating"`
	Comment      *string   `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
}

func toReviewResponse(r database.Review) reviewResponse {
	resp := reviewResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		RestaurantID: r.RestaurantID,
		Rating:       r.Rating,
		CreatedAt:    r.CreatedAt,
	}
	if r.Comment.Valid {
		resp.Comment = &r.Comment.String
	}
	return resp
}

// --- Handlers ---

// List handles GET /restaurants/{rid}/reviews, newest first.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	reviews, err := h.store.ListReviewsByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list reviews: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]reviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		resp = append(resp, toReviewResponse(rv))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /restaurants/{rid}/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	params := database.CreateReviewParams{
		UserID:       userID,
		RestaurantID: restaurantID,
		Rating:       req.Rating,
	}
	if req.Comment != "" {
		params.Comment = pgtype.Text{String: req.Comment, Valid: true}
	}

	review, err := h.store.CreateReview(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create review: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toReviewResponse(review))
}
