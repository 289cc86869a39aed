package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/antojo-app/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FavoriteStore defines the database methods needed by favorite handlers.
// Satisfied by *database.Queries.
type FavoriteStore interface {
	AddFavorite(ctx context.Context, arg database.FavoriteParams) error
	RemoveFavorite(ctx context.Context, arg database.FavoriteParams) error
	ListFavoriteRestaurants(ctx context.Context, userID uuid.UUID) ([]database.Restaurant, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
}

// FavoriteHandler handles user favorite endpoints.
type FavoriteHandler struct {
	store FavoriteStore
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(store FavoriteStore) *FavoriteHandler {
	return &FavoriteHandler{store: store}
}

// RegisterRoutes registers favorite endpoints on the given Chi router.
// Expected to be mounted inside a user-scoped subrouter:
// /users/{uid}/favorites
func (h *FavoriteHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Put("/{rid}", h.Add)
	r.Delete("/{rid}", h.Remove)
}

// List handles GET /users/{uid}/favorites.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	restaurants, err := h.store.ListFavoriteRestaurants(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR: list favorites: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]restaurantResponse, 0, len(restaurants))
	for _, rest := range restaurants {
		resp = append(resp, toRestaurantResponse(rest))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Add handles PUT /users/{uid}/favorites/{rid}. Idempotent: adding an
// existing favorite returns 204 as well.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	params, ok := h.favoriteParams(w, r)
	if !ok {
		return
	}

	// Reject favorites to restaurants that don't exist.
	if _, err := h.store.GetRestaurant(r.Context(), params.RestaurantID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "restaurant not found")
			return
		}
		log.Printf("ERROR: get restaurant for favorite: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.store.AddFavorite(r.Context(), params); err != nil {
		log.Printf("ERROR: add favorite: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /users/{uid}/favorites/{rid}. Idempotent: removing
// an absent favorite returns 204 as well.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	params, ok := h.favoriteParams(w, r)
	if !ok {
		return
	}

	if err := h.store.RemoveFavorite(r.Context(), params); err != nil {
		log.Printf("ERROR: remove favorite: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) favoriteParams(w http.ResponseWriter, r *http.Request) (database.FavoriteParams, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return database.FavoriteParams{}, false
	}
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return database.FavoriteParams{}, false
	}
	return database.FavoriteParams{UserID: userID, RestaurantID: restaurantID}, true
}
