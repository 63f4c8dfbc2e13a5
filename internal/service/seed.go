package service

import (
	"context"
	"fmt"
)

const (
	SampleAccountName  = "Sample User"
	SampleAccountEmail = "sample@example.com"
)

var sampleRecipes = []struct {
	name, ingredients, instructions string
}{
	{
		"Pasta Carbonara",
		"Spaghetti, Eggs, Pancetta, Parmesan, Black Pepper, Salt",
		"1. Cook pasta\n2. Fry pancetta\n3. Mix eggs and cheese\n4. Combine everything",
	},
	{
		"Chicken Curry",
		"Chicken, Curry Powder, Coconut Milk, Onion, Garlic, Rice",
		"1. Cook chicken\n2. Sauté onions and garlic\n3. Add curry powder\n4. Add coconut milk\n5. Simmer and serve with rice",
	},
}

// SeedSample creates the sample account and its recipes when the database
// has no accounts yet. It reports whether anything was written.
func SeedSample(ctx context.Context, app *App, password string) (bool, error) {
	has, err := app.Accounts.HasAccounts(ctx)
	if err != nil {
		return false, fmt.Errorf("check accounts: %w", err)
	}
	if has {
		return false, nil
	}

	account, err := app.Accounts.Register(ctx, SampleAccountName, SampleAccountEmail, password)
	if err != nil {
		return false, fmt.Errorf("seed account: %w", err)
	}
	for _, r := range sampleRecipes {
		if _, err := app.Recipes.Create(ctx, account.ID, r.name, r.ingredients, r.instructions); err != nil {
			return false, fmt.Errorf("seed recipe %q: %w", r.name, err)
		}
	}

	app.Logger.WithField("email", SampleAccountEmail).Info("seeded sample data")
	return true, nil
}
