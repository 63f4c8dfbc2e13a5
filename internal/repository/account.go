package repository

import (
	"context"

	"recipe-box/internal/domain"
)

// AccountRepository defines persistence operations for Account entities.
// Lookups return domain.ErrNotFound for missing rows and Create returns
// domain.ErrDuplicateEmail when the email is taken.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	Count(ctx context.Context) (int64, error)
}
