package database

import (
	"context"

	"github.com/google/uuid"
)

const listRestaurants = `
SELECT id, name, street, city, cuisines, created_at
FROM restaurants
WHERE ($1::text = '' OR name ILIKE '%' || $1 || '%')
  AND ($2::text = '' OR $2 = ANY(cuisines))
ORDER BY name
`

type ListRestaurantsParams struct {
	Search  string
	Cuisine string
}

func (q *Queries) ListRestaurants(ctx context.Context, arg ListRestaurantsParams) ([]Restaurant, error) {
	rows, err := q.db.Query(ctx, listRestaurants, arg.Search, arg.Cuisine)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Restaurant
	for rows.Next() {
		var r Restaurant
		if err := rows.Scan(&r.ID, &r.Name, &r.Street, &r.City, &r.Cuisines, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getRestaurant = `
SELECT id, name, street, city, cuisines, created_at
FROM restaurants
WHERE id = $1
`

func (q *Queries) GetRestaurant(ctx context.Context, id uuid.UUID) (Restaurant, error) {
	var r Restaurant
	err := q.db.QueryRow(ctx, getRestaurant, id).
		Scan(&r.ID, &r.Name, &r.Street, &r.City, &r.Cuisines, &r.CreatedAt)
	return r, err
}

const createRestaurant = `
INSERT INTO restaurants (name, street, city, cuisines)
VALUES ($1, $2, $3, $4)
RETURNING id, name, street, city, cuisines, created_at
`

type CreateRestaurantParams struct {
	Name     string
	Street   string
	City     string
	Cuisines []string
}

func (q *Queries) CreateRestaurant(ctx context.Context, arg CreateRestaurantParams) (Restaurant, error) {
	var r Restaurant
	err := q.db.QueryRow(ctx, createRestaurant, arg.Name, arg.Street, arg.City, arg.Cuisines).
		Scan(&r.ID, &r.Name, &r.Street, &r.City, &r.Cuisines, &r.CreatedAt)
	return r, err
}
