package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"recipe-box/internal/domain"
	"recipe-box/internal/repository"
)

// bcrypt ignores input past this length, so longer passwords are refused.
const maxPasswordBytes = 72

// AccountService is the credential store: registration and password checks.
type AccountService interface {
	Register(ctx context.Context, name, email, password string) (*domain.Account, error)
	Authenticate(ctx context.Context, email, password string) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	HasAccounts(ctx context.Context) (bool, error)
}

type accountService struct {
	accounts repository.AccountRepository
	cost     int
	logger   logrus.FieldLogger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAccountService(accounts repository.AccountRepository, cost int, logger logrus.FieldLogger) AccountService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &accountService{
		accounts: accounts,
		cost:     cost,
		logger:   logger,
	}
}

// NormalizeEmail trims and lower-cases an address; emails compare case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckPasswordConfirmation validates the repeated password entered on a
// registration form before Register is called.
func CheckPasswordConfirmation(password, confirm string) error {
	if confirm == "" {
		return fmt.Errorf("%w: password confirmation is required", domain.ErrValidation)
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}
	return nil
}

func (s *accountService) Register(ctx context.Context, name, email, password string) (*domain.Account, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is malformed", domain.ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if _, err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}

	s.logger.WithField("account_id", account.ID).Info("account registered")
	return sanitizeAccount(account), nil
}

func (s *accountService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrAuthentication
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// spend the same bcrypt work as a real check
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, domain.ErrAuthentication
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.WithField("account_id", account.ID).Warn("failed login attempt")
		return nil, domain.ErrAuthentication
	}

	return sanitizeAccount(account), nil
}

func (s *accountService) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeAccount(account), nil
}

func (s *accountService) HasAccounts(ctx context.Context) (bool, error) {
	n, err := s.accounts.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *accountService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("recipe-box-dummy-password"), s.cost)
		if err != nil {
			s.logger.WithError(err).Warn("generate dummy hash")
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func sanitizeAccount(account *domain.Account) *domain.Account {
	if account == nil {
		return nil
	}
	return &domain.Account{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}
