package service

import (
	"context"
	"iter"

	"recipe-box/internal/domain"
)

// Principal is the outcome of a successful authentication. The zero value is
// unauthenticated and is refused by every Guard operation.
type Principal struct {
	accountID int64
}

// AccountID returns the authenticated account.
func (p Principal) AccountID() int64 { return p.accountID }

// Authenticated reports whether p came from a resolved session.
func (p Principal) Authenticated() bool { return p.accountID > 0 }

// Guard gates recipe operations on ownership. NotFound and PermissionDenied
// are kept apart here; boundaries decide how much of that to reveal.
type Guard struct {
	sessions SessionService
	recipes  RecipeService
}

func NewGuard(sessions SessionService, recipes RecipeService) *Guard {
	return &Guard{sessions: sessions, recipes: recipes}
}

// Authenticate resolves a session token into a Principal.
func (g *Guard) Authenticate(ctx context.Context, token string) (Principal, error) {
	accountID, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		return Principal{}, err
	}
	return Principal{accountID: accountID}, nil
}

func (g *Guard) List(ctx context.Context, p Principal) (iter.Seq2[domain.Recipe, error], error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return g.recipes.ListByOwner(ctx, p.accountID), nil
}

func (g *Guard) Add(ctx context.Context, p Principal, name, ingredients, instructions string) (*domain.Recipe, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return g.recipes.Create(ctx, p.accountID, name, ingredients, instructions)
}

func (g *Guard) View(ctx context.Context, p Principal, id int64) (*domain.Recipe, error) {
	return g.owned(ctx, p, id)
}

func (g *Guard) Edit(ctx context.Context, p Principal, id int64, patch domain.RecipePatch) (*domain.Recipe, error) {
	if _, err := g.owned(ctx, p, id); err != nil {
		return nil, err
	}
	return g.recipes.Update(ctx, id, patch)
}

func (g *Guard) Delete(ctx context.Context, p Principal, id int64) error {
	if _, err := g.owned(ctx, p, id); err != nil {
		return err
	}
	return g.recipes.Delete(ctx, id)
}

func (g *Guard) owned(ctx context.Context, p Principal, id int64) (*domain.Recipe, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	recipe, err := g.recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.OwnerID != p.accountID {
		return nil, domain.ErrPermissionDenied
	}
	return recipe, nil
}
