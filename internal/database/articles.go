package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listArticlesByRestaurant = `
SELECT id, restaurant_id, name, description, price, tags, image_url, is_active, created_at
FROM articles
WHERE restaurant_id = $1 AND is_active = true
ORDER BY name
`

func (q *Queries) ListArticlesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Article, error) {
	rows, err := q.db.Query(ctx, listArticlesByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.RestaurantID, &a.Name, &a.Description, &a.Price,
			&a.Tags, &a.ImageURL, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

const getArticleForOrder = `
SELECT id, name, price
FROM articles
WHERE id = $1 AND restaurant_id = $2 AND is_active = true
`

type GetArticleForOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

type GetArticleForOrderRow struct {
	ID    uuid.UUID
	Name  string
	Price pgtype.Numeric
}

func (q *Queries) GetArticleForOrder(ctx context.Context, arg GetArticleForOrderParams) (GetArticleForOrderRow, error) {
	var row GetArticleForOrderRow
	err := q.db.QueryRow(ctx, getArticleForOrder, arg.ID, arg.RestaurantID).
		Scan(&row.ID, &row.Name, &row.Price)
	return row, err
}

const getArticle = `
SELECT id, restaurant_id, name, description, price, tags, image_url, is_active, created_at
FROM articles
WHERE id = $1 AND restaurant_id = $2 AND is_active = true
`

type GetArticleParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetArticle(ctx context.Context, arg GetArticleParams) (Article, error) {
	var a Article
	err := q.db.QueryRow(ctx, getArticle, arg.ID, arg.RestaurantID).
		Scan(&a.ID, &a.RestaurantID, &a.Name, &a.Description, &a.Price,
			&a.Tags, &a.ImageURL, &a.IsActive, &a.CreatedAt)
	return a, err
}

const updateArticle = `
UPDATE articles
SET name = $3, description = $4, price = $5, tags = $6
WHERE id = $1 AND restaurant_id = $2 AND is_active = true
RETURNING id, restaurant_id, name, description, price, tags, image_url, is_active, created_at
`

type UpdateArticleParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	Tags         []string
}

// UpdateArticle rewrites the editable fields of a menu entry. The image is
// managed separately and survives the update untouched.
func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error) {
	var a Article
	err := q.db.QueryRow(ctx, updateArticle, arg.ID, arg.RestaurantID, arg.Name,
		arg.Description, arg.Price, arg.Tags).
		Scan(&a.ID, &a.RestaurantID, &a.Name, &a.Description, &a.Price,
			&a.Tags, &a.ImageURL, &a.IsActive, &a.CreatedAt)
	return a, err
}

const createArticle = `
INSERT INTO articles (restaurant_id, name, description, price, tags, image_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, restaurant_id, name, description, price, tags, image_url, is_active, created_at
`

type CreateArticleParams struct {
	RestaurantID uuid.UUID
	Name         string
	Description  pgtype.Text
	Price        pgtype.Numeric
	Tags         []string
	ImageURL     pgtype.Text
}

func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (Article, error) {
	var a Article
	err := q.db.QueryRow(ctx, createArticle, arg.RestaurantID, arg.Name, arg.Description,
		arg.Price, arg.Tags, arg.ImageURL).
		Scan(&a.ID, &a.RestaurantID, &a.Name, &a.Description, &a.Price,
			&a.Tags, &a.ImageURL, &a.IsActive, &a.CreatedAt)
	return a, err
}
