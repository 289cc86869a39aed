// Package client is the REST client used by the cart, board and favorites
// engines. It speaks the antojo API wire format and reports server errors
// as plain Go errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/antojo-app/api/internal/model"
	"github.com/google/uuid"
)

// Client is a thin HTTP client for the antojo API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type apiError struct {
	Error string `json:"error"`
}

// do executes the request and decodes the JSON response into out (unless
// out is nil). Non-2xx responses are returned as errors carrying the
// server's error message.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// --- Catalog ---

// Restaurants lists restaurants, optionally filtered by a name search and
// a cuisine. Empty filters match everything.
func (c *Client) Restaurants(ctx context.Context, search, cuisine string) ([]model.Restaurant, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if cuisine != "" {
		q.Set("cuisine", cuisine)
	}
	path := "/restaurants"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []model.Restaurant
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RestaurantDetail fetches a restaurant together with its menu and reviews.
func (c *Client) RestaurantDetail(ctx context.Context, restaurantID uuid.UUID) (model.Restaurant, []model.Article, []model.Review, error) {
	var out struct {
		model.Restaurant
		Articles []model.Article `json:"articles"`
		Reviews  []model.Review  `json:"reviews"`
	}
	path := "/restaurants/" + restaurantID.String() + "/detail"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return model.Restaurant{}, nil, nil, err
	}
	return out.Restaurant, out.Articles, out.Reviews, nil
}

// Articles lists the active menu of one restaurant.
func (c *Client) Articles(ctx context.Context, restaurantID uuid.UUID) ([]model.Article, error) {
	var out []model.Article
	path := "/restaurants/" + restaurantID.String() + "/articles"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Article fetches a single active menu entry.
func (c *Client) Article(ctx context.Context, restaurantID, articleID uuid.UUID) (model.Article, error) {
	var out model.Article
	path := "/restaurants/" + restaurantID.String() + "/articles/" + articleID.String()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return model.Article{}, err
	}
	return out, nil
}

type updateArticleBody struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Tags        []string `json:"tags"`
}

// UpdateArticle rewrites the editable fields of a menu entry. The stored
// image is untouched.
func (c *Client) UpdateArticle(ctx context.Context, restaurantID uuid.UUID, a model.Article) (model.Article, error) {
	body := updateArticleBody{
		Name:        a.Name,
		Description: a.Description,
		Price:       a.Price.String(),
		Tags:        a.Tags,
	}
	var out model.Article
	path := "/restaurants/" + restaurantID.String() + "/articles/" + a.ID.String()
	if err := c.do(ctx, http.MethodPut, path, body, &out); err != nil {
		return model.Article{}, err
	}
	return out, nil
}

// --- Orders (cart.OrderCreator) ---

type createOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type createOrderBody struct {
	UserID string            `json:"user_id"`
	Items  []createOrderItem `json:"items"`
}

// CreateOrder submits a consolidated cart as a new order and returns the
// new order's id. The server prices items from its catalog; only product
// ids and quantities are sent.
func (c *Client) CreateOrder(ctx context.Context, userID, restaurantID uuid.UUID, items []model.LineItem) (uuid.UUID, error) {
	body := createOrderBody{UserID: userID.String()}
	for _, li := range items {
		body.Items = append(body.Items, createOrderItem{
			ProductID: li.ProductID.String(),
			Quantity:  li.Quantity,
		})
	}

	var out model.Order
	path := "/restaurants/" + restaurantID.String() + "/orders"
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return uuid.Nil, err
	}
	return out.ID, nil
}

// --- Order board (board.Store) ---

// BoardClient is the Client bound to one restaurant's order board. It
// satisfies the board store interface; per-order operations resolve
// against the bound restaurant.
type BoardClient struct {
	c            *Client
	restaurantID uuid.UUID
}

// OrderBoard returns a BoardClient scoped to the given restaurant.
func (c *Client) OrderBoard(restaurantID uuid.UUID) *BoardClient {
	return &BoardClient{c: c, restaurantID: restaurantID}
}

// ListOrders fetches all orders of the restaurant, oldest first.
func (b *BoardClient) ListOrders(ctx context.Context, restaurantID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	path := "/restaurants/" + restaurantID.String() + "/orders"
	if err := b.c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetOrderState moves one order to newState. The server only accepts
// single-step moves along the fulfillment pipeline.
func (b *BoardClient) SetOrderState(ctx context.Context, orderID uuid.UUID, newState string) error {
	body := map[string]string{"state": newState}
	path := "/restaurants/" + b.restaurantID.String() + "/orders/" + orderID.String() + "/state"
	return b.c.do(ctx, http.MethodPatch, path, body, nil)
}

// BulkSetOrderState advances every order in fromState to toState and
// returns the number of orders changed.
func (b *BoardClient) BulkSetOrderState(ctx context.Context, restaurantID uuid.UUID, fromState, toState string) (int, error) {
	body := map[string]string{"from_state": fromState}
	var out struct {
		ToState  string `json:"to_state"`
		Modified int64  `json:"modified"`
	}
	path := "/restaurants/" + restaurantID.String() + "/orders/bulk-advance"
	if err := b.c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return 0, err
	}
	if out.ToState != toState {
		return 0, fmt.Errorf("server advanced to %q, expected %q", out.ToState, toState)
	}
	return int(out.Modified), nil
}

// DeleteOrders removes the given orders from the bound restaurant.
func (b *BoardClient) DeleteOrders(ctx context.Context, orderIDs []uuid.UUID) error {
	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}
	body := map[string][]string{"ids": ids}
	path := "/restaurants/" + b.restaurantID.String() + "/orders"
	return b.c.do(ctx, http.MethodDelete, path, body, nil)
}

// --- Favorites (favorites.Store) ---

// AddFavorite marks a restaurant as a favorite of the user. Idempotent.
func (c *Client) AddFavorite(ctx context.Context, userID, restaurantID uuid.UUID) error {
	path := "/users/" + userID.String() + "/favorites/" + restaurantID.String()
	return c.do(ctx, http.MethodPut, path, nil, nil)
}

// RemoveFavorite unmarks a restaurant as a favorite of the user. Idempotent.
func (c *Client) RemoveFavorite(ctx context.Context, userID, restaurantID uuid.UUID) error {
	path := "/users/" + userID.String() + "/favorites/" + restaurantID.String()
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ListFavorites fetches the user's favorite restaurants.
func (c *Client) ListFavorites(ctx context.Context, userID uuid.UUID) ([]model.Restaurant, error) {
	var out []model.Restaurant
	path := "/users/" + userID.String() + "/favorites"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Reviews ---

type createReviewBody struct {
	UserID  string `json:"user_id"`
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview posts a review for a restaurant.
func (c *Client) CreateReview(ctx context.Context, userID, restaurantID uuid.UUID, rating int32, comment string) (model.Review, error) {
	body := createReviewBody{UserID: userID.String(), Rating: rating, Comment: comment}
	var out model.Review
	path := "/restaurants/" + restaurantID.String() + "/reviews"
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return model.Review{}, err
	}
	return out, nil
}
