package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/antojo-app/api/internal/database"
	"github.com/antojo-app/api/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockRestaurantStore struct {
	restaurants map[uuid.UUID]database.Restaurant
	articles    map[uuid.UUID][]database.Article
	reviews     map[uuid.UUID][]database.Review
}

func newMockRestaurantStore() *mockRestaurantStore {
	return &mockRestaurantStore{
		restaurants: make(map[uuid.UUID]database.Restaurant),
		articles:    make(map[uuid.UUID][]database.Article),
		reviews:     make(map[uuid.UUID][]database.Review),
	}
}

func (m *mockRestaurantStore) ListRestaurants(_ context.Context, arg database.ListRestaurantsParams) ([]database.Restaurant, error) {
	var result []database.Restaurant
	for _, r := range m.restaurants {
		if arg.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(arg.Search)) {
			continue
		}
		if arg.Cuisine != "" {
			found := false
			for _, c := range r.Cuisines {
				if c == arg.Cuisine {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *mockRestaurantStore) GetRestaurant(_ context.Context, id uuid.UUID) (database.Restaurant, error) {
	r, ok := m.restaurants[id]
	if !ok {
		return database.Restaurant{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockRestaurantStore) CreateRestaurant(_ context.Context, arg database.CreateRestaurantParams) (database.Restaurant, error) {
	r := database.Restaurant{
		ID:        uuid.New(),
		Name:      arg.Name,
		Street:    arg.Street,
		City:      arg.City,
		Cuisines:  arg.Cuisines,
		CreatedAt: time.Now(),
	}
	m.restaurants[r.ID] = r
	return r, nil
}

func (m *mockRestaurantStore) ListArticlesByRestaurant(_ context.Context, restaurantID uuid.UUID) ([]database.Article, error) {
	return m.articles[restaurantID], nil
}

func (m *mockRestaurantStore) ListReviewsByRestaurant(_ context.Context, restaurantID uuid.UUID) ([]database.Review, error) {
	return m.reviews[restaurantID], nil
}

func (m *mockRestaurantStore) seed(name string, cuisines ...string) database.Restaurant {
	r := database.Restaurant{
		ID:        uuid.New(),
		Name:      name,
		Street:    "Gran Vía 10",
		City:      "Madrid",
		Cuisines:  cuisines,
		CreatedAt: time.Now(),
	}
	m.restaurants[r.ID] = r
	return r
}

func setupRestaurantRouter(store *mockRestaurantStore) *chi.Mux {
	h := handler.NewRestaurantHandler(store)
	r := chi.NewRouter()
	r.Route("/restaurants", h.RegisterRoutes)
	return r
}

func decodeRestaurantList(t *testing.T, body string) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestRestaurantList_All(t *testing.T) {
	store := newMockRestaurantStore()
	store.seed("La Trattoria", "Italiana")
	store.seed("Sakura", "Japonesa")

	router := setupRestaurantRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeRestaurantList(t, rr.Body.String())
	if len(resp) != 2 {
		t.Fatalf("expected 2 restaurants, got %d", len(resp))
	}
}

func TestRestaurantList_SearchFilter(t *testing.T) {
	store := newMockRestaurantStore()
	store.seed("La Trattoria", "Italiana")
	store.seed("Sakura", "Japonesa")

	router := setupRestaurantRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants?search=trattoria", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeRestaurantList(t, rr.Body.String())
	if len(resp) != 1 {
		t.Fatalf("expected 1 restaurant, got %d", len(resp))
	}
	if resp[0]["name"] != "La Trattoria" {
		t.Errorf("expected La Trattoria, got %v", resp[0]["name"])
	}
}

func TestRestaurantList_CuisineFilter(t *testing.T) {
	store := newMockRestaurantStore()
	store.seed("La Trattoria", "Italiana")
	store.seed("Sakura", "Japonesa")

	router := setupRestaurantRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants?cuisine=Japonesa", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeRestaurantList(t, rr.Body.String())
	if len(resp) != 1 {
		t.Fatalf("expected 1 restaurant, got %d", len(resp))
	}
	if resp[0]["name"] != "Sakura" {
		t.Errorf("expected Sakura, got %v", resp[0]["name"])
	}
}

func TestRestaurantGet_NotFound(t *testing.T) {
	store := newMockRestaurantStore()
	router := setupRestaurantRouter(store)

	rr := doRequest(t, router, "GET", "/restaurants/"+uuid.New().String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestRestaurantDetail_BundlesArticlesAndReviews(t *testing.T) {
	store := newMockRestaurantStore()
	restaurant := store.seed("La Trattoria", "Italiana")
	store.articles[restaurant.ID] = []database.Article{
		{ID: uuid.New(), RestaurantID: restaurant.ID, Name: "Pizza Margherita", Price: testNumeric("12.50"), IsActive: true, CreatedAt: time.Now()},
	}
	store.reviews[restaurant.ID] = []database.Review{
		{ID: uuid.New(), UserID: uuid.New(), RestaurantID: restaurant.ID, Rating: 5, CreatedAt: time.Now()},
	}

	router := setupRestaurantRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants/"+restaurant.ID.String()+"/detail", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["name"] != "La Trattoria" {
		t.Errorf("expected La Trattoria, got %v", resp["name"])
	}
	articles := resp["articles"].([]interface{})
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	article := articles[0].(map[string]interface{})
	if article["price"] != "12.50" {
		t.Errorf("expected price 12.50, got %v", article["price"])
	}
	reviews := resp["reviews"].([]interface{})
	if len(reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(reviews))
	}
}

func TestRestaurantCreate_MissingName(t *testing.T) {
	store := newMockRestaurantStore()
	router := setupRestaurantRouter(store)

	body := map[string]interface{}{"street": "Gran Vía 10", "city": "Madrid"}
	rr := doRequest(t, router, "POST", "/restaurants", body)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
