package main

import (
	"context"
	"crypto/rand"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"recipe-box/internal/config"
	"recipe-box/internal/console"
	"recipe-box/internal/repository/sqlite"
	"recipe-box/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	fs := pflag.NewFlagSet("recipe-console", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	// keep the menu readable unless asked otherwise
	if level > logrus.WarnLevel && !fs.Lookup("log-level").Changed {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	ctx := context.Background()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db, nil); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	// console tokens never leave the process
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		logger.Fatalf("generate session secret: %v", err)
	}

	app := service.NewApp(sqlite.NewAccountRepository(db), sqlite.NewRecipeRepository(db), sqlite.NewSessionRepository(db), service.Options{
		BcryptCost: cfg.Auth.BcryptCost,
		Session: service.SessionConfig{
			Secret:      secret,
			TTL:         cfg.Session.TTL,
			RememberTTL: cfg.Session.RememberTTL,
		},
		Logger: logger,
	})
	if _, err := app.Sessions.PurgeExpired(ctx); err != nil {
		logger.Warnf("purge expired sessions: %v", err)
	}

	if err := console.New(app, os.Stdin, os.Stdout).Run(ctx); err != nil {
		logger.Fatalf("console: %v", err)
	}
}
