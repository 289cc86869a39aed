package database

import (
	"context"

	"github.com/google/uuid"
)

const addFavorite = `
INSERT INTO favorites (user_id, restaurant_id)
VALUES ($1, $2)
ON CONFLICT (user_id, restaurant_id) DO NOTHING
`

type FavoriteParams struct {
	UserID       uuid.UUID
	RestaurantID uuid.UUID
}

// AddFavorite is idempotent: favoriting an already favorited restaurant
// is a no-op, never a duplicate row.
func (q *Queries) AddFavorite(ctx context.Context, arg FavoriteParams) error {
	_, err := q.db.Exec(ctx, addFavorite, arg.UserID, arg.RestaurantID)
	return err
}

const removeFavorite = `
DELETE FROM favorites
WHERE user_id = $1 AND restaurant_id = $2
`

func (q *Queries) RemoveFavorite(ctx context.Context, arg FavoriteParams) error {
	_, err := q.db.Exec(ctx, removeFavorite, arg.UserID, arg.RestaurantID)
	return err
}

const listFavoriteRestaurants = `
SELECT r.id, r.name, r.street, r.city, r.cuisines, r.created_at
FROM favorites f
JOIN restaurants r ON r.id = f.restaurant_id
WHERE f.user_id = $1
ORDER BY r.name
`

func (q *Queries) ListFavoriteRestaurants(ctx context.Context, userID uuid.UUID) ([]Restaurant, error) {
	rows, err := q.db.Query(ctx, listFavoriteRestaurants, userID)
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
