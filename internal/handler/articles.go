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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ArticleStore defines the database methods needed by article handlers.
// Satisfied by *database.Queries.
type ArticleStore interface {
	ListArticlesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Article, error)
	GetArticle(ctx context.Context, arg database.GetArticleParams) (database.Article, error)
	CreateArticle(ctx context.Context, arg database.CreateArticleParams) (database.Article, error)
	UpdateArticle(ctx context.Context, arg database.UpdateArticleParams) (database.Article, error)
}

// ArticleHandler handles menu article endpoints.
type ArticleHandler struct {
	store ArticleStore
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(store ArticleStore) *ArticleHandler {
	return &ArticleHandler{store: store}
}

// RegisterRoutes registers article endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/articles
func (h *ArticleHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
}

// --- Request / Response types ---

type createArticleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"image_url"`
}

type updateArticleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Tags        []string `json:"tags"`
}

type articleResponse struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Price        string    `json:"price"`
	Tags         []string  `json:"tags"`
	ImageURL     *string   `json:"image_url"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func toArticleResponse(a database.Article) articleResponse {
	resp := articleResponse{
		ID:           a.ID,
		RestaurantID: a.RestaurantID,
		Name:         a.Name,
		Price:        numericToString(a.Price),
		Tags:         a.Tags,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if a.Description.Valid {
		resp.Description = &a.Description.String
	}
	if a.ImageURL.Valid {
		resp.ImageURL = &a.ImageURL.String
	}
	return resp
}

// --- Handlers ---

// List handles GET /restaurants/{rid}/articles. Only active articles are
// returned.
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	articles, err := h.store.ListArticlesByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list articles: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		resp = append(resp, toArticleResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /restaurants/{rid}/articles.
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	var req createArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price format")
		return
	}
	if price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price cannot be negative")
		return
	}

	var priceNumeric pgtype.Numeric
	if err := priceNumeric.Scan(price.String()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid price format")
		return
	}

	params := database.CreateArticleParams{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Price:        priceNumeric,
		Tags:         req.Tags,
	}
	if req.Description != "" {
		params.Description = pgtype.Text{String: req.Description, Valid: true}
	}
	if req.ImageURL != "" {
		params.ImageURL = pgtype.Text{String: req.ImageURL, Valid: true}
	}

	article, err := h.store.CreateArticle(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create article: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toArticleResponse(article))
}

// Get handles GET /restaurants/{rid}/articles/{id}.
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}
	articleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article ID")
		return
	}

	article, err := h.store.GetArticle(r.Context(), database.GetArticleParams{
		ID:           articleID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		log.Printf("ERROR: get article: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponse(article))
}

// Update handles PUT /restaurants/{rid}/articles/{id}. The image is not
// part of this payload; it keeps its stored value.
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}
	articleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article ID")
		return
	}

	var req updateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid price format")
		return
	}
	if price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price cannot be negative")
		return
	}

	var priceNumeric pgtype.Numeric
	if err := priceNumeric.Scan(price.String()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid price format")
		return
	}

	params := database.UpdateArticleParams{
		ID:           articleID,
		RestaurantID: restaurantID,
		Name:         req.Name,
		Price:        priceNumeric,
		Tags:         req.Tags,
	}
	if req.Description != "" {
		params.Description = pgtype.Text{String: req.Description, Valid: true}
	}

	article, err := h.store.UpdateArticle(r.Context(), params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		log.Printf("ERROR: update article: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toArticleResponse(article))
}
