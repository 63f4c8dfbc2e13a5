package service

import (
	"github.com/sirupsen/logrus"

	"recipe-box/internal/repository"
)

// Options configures NewApp.
type Options struct {
	BcryptCost int
	Session    SessionConfig
	Logger     logrus.FieldLogger
}

// App is the application context shared by the web handler and the console.
// It is built once per process and passed explicitly.
type App struct {
	Accounts AccountService
	Sessions SessionService
	Recipes  RecipeService
	Guard    *Guard
	Logger   logrus.FieldLogger
}

func NewApp(accounts repository.AccountRepository, recipes repository.RecipeRepository, sessions repository.SessionRepository, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	accountSvc := NewAccountService(accounts, opts.BcryptCost, logger.WithField("component", "accounts"))
	sessionSvc := NewSessionService(sessions, accounts, opts.Session, logger.WithField("component", "sessions"))
	recipeSvc := NewRecipeService(recipes, logger.WithField("component", "recipes"))

	return &App{
		Accounts: accountSvc,
		Sessions: sessionSvc,
		Recipes:  recipeSvc,
		Guard:    NewGuard(sessionSvc, recipeSvc),
		Logger:   logger,
	}
}
