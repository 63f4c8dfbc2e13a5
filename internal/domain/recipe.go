package domain

import "time"

// Recipe is a single recipe kept by its owner.
type Recipe struct {
	ID           int64
	OwnerID      int64
	Name         string
	Ingredients  string
	Instructions string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecipePatch carries a partial edit. Nil fields keep their previous value.
type RecipePatch struct {
	Name         *string
	Ingredients  *string
	Instructions *string
}

// Apply copies the supplied fields onto r.
func (p RecipePatch) Apply(r *Recipe) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Ingredients != nil {
		r.Ingredients = *p.Ingredients
	}
	if p.Instructions != nil {
		r.Instructions = *p.Instructions
	}
}
