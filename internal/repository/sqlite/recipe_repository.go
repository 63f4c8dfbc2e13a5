package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"recipe-box/internal/domain"
	"recipe-box/internal/repository"
)

const (
	selectRecipe = `
SELECT id, owner_id, name, ingredients, instructions, created_at, updated_at
FROM recipes`

	defaultPageSize = 50
)

type RecipeRepository struct {
	db       *sql.DB
	pageSize int
}

func NewRecipeRepository(db *sql.DB) repository.RecipeRepository {
	return &RecipeRepository{db: db, pageSize: defaultPageSize}
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (int64, error) {
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = time.Now().UTC()
	}
	if recipe.UpdatedAt.IsZero() {
		recipe.UpdatedAt = recipe.CreatedAt
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO recipes (owner_id, name, ingredients, instructions, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		recipe.OwnerID,
		recipe.Name,
		recipe.Ingredients,
		recipe.Instructions,
		recipe.CreatedAt.UTC(),
		recipe.UpdatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recipe last insert id: %w", err)
	}
	recipe.ID = id
	return id, nil
}

func (r *RecipeRepository) Get(ctx context.Context, id int64) (*domain.Recipe, error) {
	row := r.db.QueryRowContext(ctx, selectRecipe+`
WHERE id=?`,
		id,
	)
	return scanRecipe(row)
}

// ListByOwner pages through the owner's recipes with a keyset cursor. Each
// page is read and its rows closed before anything is yielded, so the caller
// may use the database while ranging.
func (r *RecipeRepository) ListByOwner(ctx context.Context, ownerID int64) iter.Seq2[domain.Recipe, error] {
	return func(yield func(domain.Recipe, error) bool) {
		var cursor *domain.Recipe
		for {
			page, err := r.listPage(ctx, ownerID, cursor)
			if err != nil {
				yield(domain.Recipe{}, err)
				return
			}
			for _, recipe := range page {
				if !yield(recipe, nil) {
					return
				}
			}
			if len(page) < r.pageSize {
				return
			}
			cursor = &page[len(page)-1]
		}
	}
}

func (r *RecipeRepository) listPage(ctx context.Context, ownerID int64, after *domain.Recipe) ([]domain.Recipe, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if after == nil {
		rows, err = r.db.QueryContext(ctx, selectRecipe+`
WHERE owner_id=?
ORDER BY updated_at DESC, id DESC
LIMIT ?`,
			ownerID,
			r.pageSize,
		)
	} else {
		rows, err = r.db.QueryContext(ctx, selectRecipe+`
WHERE owner_id=? AND (updated_at < ? OR (updated_at = ? AND id < ?))
ORDER BY updated_at DESC, id DESC
LIMIT ?`,
			ownerID,
			after.UpdatedAt.UTC(),
			after.UpdatedAt.UTC(),
			after.ID,
			r.pageSize,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []domain.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return recipes, nil
}

func (r *RecipeRepository) Update(ctx context.Context, id int64, fn func(*domain.Recipe) error) (*domain.Recipe, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	recipe, err := scanRecipe(tx.QueryRowContext(ctx, selectRecipe+`
WHERE id=?`,
		id,
	))
	if err != nil {
		return nil, err
	}

	if err := fn(recipe); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE recipes
SET name=?, ingredients=?, instructions=?, updated_at=?
WHERE id=?`,
		recipe.Name,
		recipe.Ingredients,
		recipe.Instructions,
		recipe.UpdatedAt.UTC(),
		id,
	); err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit recipe update: %w", err)
	}
	return recipe, nil
}

func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("recipe delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("recipe %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanRecipe(row scanner) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := row.Scan(
		&recipe.ID,
		&recipe.OwnerID,
		&recipe.Name,
		&recipe.Ingredients,
		&recipe.Instructions,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("recipe: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan recipe: %w", err)
	}
	recipe.CreatedAt = recipe.CreatedAt.UTC()
	recipe.UpdatedAt = recipe.UpdatedAt.UTC()
	return &recipe, nil
}
