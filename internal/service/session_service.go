package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"recipe-box/internal/auth"
	"recipe-box/internal/domain"
	"recipe-box/internal/repository"
)

// SessionConfig controls token signing and session lifetimes.
type SessionConfig struct {
	Secret      []byte
	TTL         time.Duration
	RememberTTL time.Duration
}

// SessionService turns verified accounts into session tokens and back.
type SessionService interface {
	Login(ctx context.Context, accountID int64, remember bool) (string, *domain.Session, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Logout(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type sessionService struct {
	sessions repository.SessionRepository
	accounts repository.AccountRepository
	cfg      SessionConfig
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewSessionService(sessions repository.SessionRepository, accounts repository.AccountRepository, cfg SessionConfig, logger logrus.FieldLogger) SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &sessionService{
		sessions: sessions,
		accounts: accounts,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *sessionService) Login(ctx context.Context, accountID int64, remember bool) (string, *domain.Session, error) {
	if len(s.cfg.Secret) == 0 {
		return "", nil, fmt.Errorf("session secret is not configured")
	}
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrAuthentication
		}
		return "", nil, err
	}

	ttl := s.cfg.TTL
	if remember {
		ttl = s.cfg.RememberTTL
	}
	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Remember:  remember,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	token, err := auth.GenerateToken(session.ID, accountID, s.cfg.Secret, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"remember":   remember,
	}).Info("session started")
	return token, session, nil
}

func (s *sessionService) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrUnauthenticated
	}

	sessionID, accountID, err := auth.ParseToken(token, s.cfg.Secret)
	if err != nil {
		return 0, domain.ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrUnauthenticated
		}
		return 0, err
	}
	if session.AccountID != accountID {
		return 0, domain.ErrUnauthenticated
	}
	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.logger.WithError(err).Warn("drop expired session")
		}
		return 0, domain.ErrUnauthenticated
	}
	return session.AccountID, nil
}

func (s *sessionService) Logout(ctx context.Context, token string) error {
	sessionID, err := auth.SessionID(token, s.cfg.Secret)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.logger.Info("session ended")
	return nil
}

func (s *sessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.WithField("count", n).Info("purged expired sessions")
	}
	return n, nil
}
