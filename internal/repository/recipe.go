package repository

import (
	"context"
	"iter"

	"recipe-box/internal/domain"
)

// RecipeRepository exposes persistence operations for Recipe records.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Recipe, error)
	// ListByOwner yields the owner's recipes, most recently updated first.
	// Every range over the returned sequence runs a fresh query.
	ListByOwner(ctx context.Context, ownerID int64) iter.Seq2[domain.Recipe, error]
	// Update loads the recipe, passes it to fn and persists the result in a
	// single transaction. Nothing is written if fn returns an error.
	Update(ctx context.Context, id int64, fn func(*domain.Recipe) error) (*domain.Recipe, error)
	Delete(ctx context.Context, id int64) error
}
