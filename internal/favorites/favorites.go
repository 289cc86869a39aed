// Package favorites maintains one user's favorite-restaurant set against
// the remote store. All mutations are confirm-then-apply: the local set
// changes only after the store accepts the add or remove.
package favorites

import (
	"context"
	"fmt"

	"github.com/antojo-app/api/internal/model"
	"github.com/google/uuid"
)

// Store is the remote favorite relation. Satisfied by *client.Client.
type Store interface {
	AddFavorite(ctx context.Context, userID, restaurantID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, restaurantID uuid.UUID) error
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]model.Restaurant, error)
}

// Set holds the favorites of a single user. Owned by one browsing view;
// not safe for concurrent use. Concurrent toggles of the same restaurant
// are not locked against each other: the last remote call to resolve
// determines the final local state.
type Set struct {
	store       Store
	userID      uuid.UUID
	restaurants []model.Restaurant
}

// New creates an empty set for the user. Call Load to populate it.
func New(store Store, userID uuid.UUID) *Set {
	return &Set{store: store, userID: userID}
}

// Load replaces the local set with the store's view.
func (s *Set) Load(ctx context.Context) error {
	restaurants, err := s.store.ListFavorites(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("list favorites: %w", err)
	}
	s.restaurants = restaurants
	return nil
}

// Contains reports membership of the restaurant in the local set.
func (s *Set) Contains(restaurantID uuid.UUID) bool {
	for _, r := range s.restaurants {
		if r.ID == restaurantID {
			return true
		}
	}
	return false
}

// Restaurants returns a snapshot copy of the favorite restaurants.
func (s *Set) Restaurants() []model.Restaurant {
	out := make([]model.Restaurant, len(s.restaurants))
	copy(out, s.restaurants)
	return out
}

// Toggle flips the favorite relation for the restaurant. Membership is
// decided by the local set at the moment of the call, not by anything
// cached earlier. The remote call is issued first; the local set is only
// updated after it succeeds, so a failed call leaves membership exactly as
// it was.
func (s *Set) Toggle(ctx context.Context, restaurant model.Restaurant) error {
	if s.Contains(restaurant.ID) {
		if err := s.store.RemoveFavorite(ctx, s.userID, restaurant.ID); err != nil {
			return fmt.Errorf("remove favorite: %w", err)
		}
		kept := s.restaurants[:0]
		for _, r := range s.restaurants {
			if r.ID != restaurant.ID {
				kept = append(kept, r)
			}
		}
		s.restaurants = kept
		return nil
	}

	if err := s.store.AddFavorite(ctx, s.userID, restaurant.ID); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	s.restaurants = append(s.restaurants, restaurant)
	return nil
}
