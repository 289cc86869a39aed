package database

import (
	"context"

	"github.com/google/uuid"
)

const createUser = `
INSERT INTO users (name, email, actor_type)
VALUES ($1, $2, $3)
RETURNING id, name, email, actor_type, created_at
`

type CreateUserParams struct {
	Name      string
	Email     string
	ActorType string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, createUser, arg.Name, arg.Email, arg.ActorType).
		Scan(&u.ID, &u.Name, &u.Email, &u.ActorType, &u.CreatedAt)
	return u, err
}

const getUser = `
SELECT id, name, email, actor_type, created_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := q.db.QueryRow(ctx, getUser, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.ActorType, &u.CreatedAt)
	return u, err
}
