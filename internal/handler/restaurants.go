package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/antojo-app/api/internal/database"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RestaurantStore defines the database methods needed by restaurant handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type RestaurantStore interface {
	ListRestaurants(ctx context.Context, arg database.ListRestaurantsParams) ([]database.Restaurant, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (database.Restaurant, error)
	CreateRestaurant(ctx context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error)
	ListArticlesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Article, error)
	ListReviewsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Review, error)
}

// RestaurantHandler handles restaurant catalog endpoints.
type RestaurantHandler struct {
	store RestaurantStore
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(store RestaurantStore) *RestaurantHandler {
	return &RestaurantHandler{store: store}
}

// RegisterRoutes registers restaurant endpoints on the given Chi router.
// Expected to be mounted at /restaurants.
func (h *RestaurantHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{rid}", h.Get)
	r.Get("/{rid}/detail", h.Detail)
}

// --- Request / Response types ---

type createRestaurantRequest struct {
	Name     string   `json:"name"`
	Street   string   `json:"street"`
	City     string   `json:"city"`
	Cuisines []string `json:"cuisines"`
}

type restaurantResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	Cuisines  []string  `json:"cuisines"`
	CreatedAt time.Time `json:"created_at"`
}

type restaurantDetailResponse struct {
	restaurantResponse
	Articles []articleResponse `json:"articles"`
	Reviews  []reviewResponse  `json:"reviews"`
}

func toRestaurantResponse(r database.Restaurant) restaurantResponse {
	resp := restaurantResponse{
		ID:        r.ID,
		Name:      r.Name,
		Street:    r.Street,
		City:      r.City,
		Cuisines:  r.Cuisines,
		CreatedAt: r.CreatedAt,
	}
	if resp.Cuisines == nil {
		resp.Cuisines = []string{}
	}
	return resp
}

// --- Handlers ---

// List handles GET /restaurants?search=...&cuisine=...
// Both filters are optional and combine with AND.
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	params := database.ListRestaurantsParams{
		Search:  r.URL.Query().Get("search"),
		Cuisine: r.URL.Query().Get("cuisine"),
	}

	restaurants, err := h.store.ListRestaurants(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list restaurants: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]restaurantResponse, 0, len(restaurants))
	for _, rest := range restaurants {
		resp = append(resp, toRestaurantResponse(rest))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /restaurants/{rid}.
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	restaurant, err := h.store.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "restaurant not found")
			return
		}
		log.Printf("ERROR: get restaurant: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
}

// Detail handles GET /restaurants/{rid}/detail. It bundles the restaurant
// with its menu and reviews so the detail page needs a single request.
func (h *RestaurantHandler) Detail(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	restaurant, err := h.store.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "restaurant not found")
			return
		}
		log.Printf("ERROR: get restaurant: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	articles, err := h.store.ListArticlesByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list articles: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	reviews, err := h.store.ListReviewsByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list reviews: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := restaurantDetailResponse{
		restaurantResponse: toRestaurantResponse(restaurant),
		Articles:           make([]articleResponse, 0, len(articles)),
		Reviews:            make([]reviewResponse, 0, len(reviews)),
	}
	for _, a := range articles {
		resp.Articles = append(resp.Articles, toArticleResponse(a))
	}
	for _, rv := range reviews {
		resp.Reviews = append(resp.Reviews, toReviewResponse(rv))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /restaurants.
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	restaurant, err := h.store.CreateRestaurant(r.Context(), database.CreateRestaurantParams{
		Name:     req.Name,
		Street:   req.Street,
		City:     req.City,
		Cuisines: req.Cuisines,
	})
	if err != nil {
		log.Printf("ERROR: create restaurant: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toRestaurantResponse(restaurant))
}
