package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createReview = `
INSERT INTO reviews (user_id, restaurant_id, rating, comment)
VALUES ($1, $2, $3, $4)
RETURNING id, user_id, restaurant_id, rating, comment, created_at
`

type CreateReviewParams struct {
	UserID       uuid.UUID
	RestaurantID uuid.UUID
	Rating       int32
	Comment      pgtype.Text
}

func (q *Queries) CreateReview(ctx context.Context, arg CreateReviewParams) (Review, error) {
	var r Review
	err := q.db.QueryRow(ctx, createReview, arg.UserID, arg.RestaurantID, arg.Rating, arg.Comment).
		Scan(&r.ID, &r.UserID, &r.RestaurantID, &r.Rating, &r.Comment, &r.CreatedAt)
	return r, err
}

const listReviewsByRestaurant = `
SELECT id, user_id, restaurant_id, rating, comment, created_at
FROM reviews
WHERE restaurant_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListReviewsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Review, error) {
	rows, err := q.db.Query(ctx, listReviewsByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.RestaurantID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
