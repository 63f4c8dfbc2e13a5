package service

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"recipe-box/internal/domain"
	"recipe-box/internal/repository"
)

// RecipeService owns recipe records. It performs no ownership checks; callers
// acting for a user go through Guard.
type RecipeService interface {
	Create(ctx context.Context, ownerID int64, name, ingredients, instructions string) (*domain.Recipe, error)
	Get(ctx context.Context, id int64) (*domain.Recipe, error)
	ListByOwner(ctx context.Context, ownerID int64) iter.Seq2[domain.Recipe, error]
	Update(ctx context.Context, id int64, patch domain.RecipePatch) (*domain.Recipe, error)
	Delete(ctx context.Context, id int64) error
}

type recipeService struct {
	recipes repository.RecipeRepository
	logger  logrus.FieldLogger
	now     func() time.Time
}

func NewRecipeService(recipes repository.RecipeRepository, logger logrus.FieldLogger) RecipeService {
	if logger == nil {
		logger = logrus.New()
	}
	return &recipeService{
		recipes: recipes,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *recipeService) Create(ctx context.Context, ownerID int64, name, ingredients, instructions string) (*domain.Recipe, error) {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"name", &name},
		{"ingredients", &ingredients},
		{"instructions", &instructions},
	} {
		if err := requireText(f.name, f.value); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	recipe := &domain.Recipe{
		OwnerID:      ownerID,
		Name:         name,
		Ingredients:  ingredients,
		Instructions: instructions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"recipe_id": recipe.ID, "owner_id": ownerID}).Info("recipe created")
	return recipe, nil
}

func (s *recipeService) Get(ctx context.Context, id int64) (*domain.Recipe, error) {
	return s.recipes.Get(ctx, id)
}

func (s *recipeService) ListByOwner(ctx context.Context, ownerID int64) iter.Seq2[domain.Recipe, error] {
	return s.recipes.ListByOwner(ctx, ownerID)
}

func (s *recipeService) Update(ctx context.Context, id int64, patch domain.RecipePatch) (*domain.Recipe, error) {
	patch, err := cleanPatch(patch)
	if err != nil {
		return nil, err
	}

	recipe, err := s.recipes.Update(ctx, id, func(r *domain.Recipe) error {
		patch.Apply(r)
		now := s.now().UTC()
		// updated-at must move forward even if the clock has not
		if !now.After(r.UpdatedAt) {
			now = r.UpdatedAt.Add(time.Microsecond)
		}
		r.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("recipe_id", id).Info("recipe updated")
	return recipe, nil
}

func (s *recipeService) Delete(ctx context.Context, id int64) error {
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("recipe_id", id).Info("recipe deleted")
	return nil
}

// requireText trims *v in place and rejects blank values.
func requireText(field string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrValidation, field)
	}
	return nil
}

// cleanPatch returns a copy of patch with trimmed values, so the caller's
// strings are left untouched.
func cleanPatch(patch domain.RecipePatch) (domain.RecipePatch, error) {
	var out domain.RecipePatch
	for _, f := range []struct {
		name string
		in   *string
		out  **string
	}{
		{"name", patch.Name, &out.Name},
		{"ingredients", patch.Ingredients, &out.Ingredients},
		{"instructions", patch.Instructions, &out.Instructions},
	} {
		if f.in == nil {
			continue
		}
		v := *f.in
		if err := requireText(f.name, &v); err != nil {
			return domain.RecipePatch{}, err
		}
		*f.out = &v
	}
	return out, nil
}
