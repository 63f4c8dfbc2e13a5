package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"recipe-box/internal/config"
	apphttp "recipe-box/internal/http"
	"recipe-box/internal/repository"
	"recipe-box/internal/repository/redis"
	"recipe-box/internal/repository/sqlite"
	"recipe-box/internal/service"
)

const purgeInterval = time.Hour

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	fs := pflag.NewFlagSet("recipe-server", pflag.ExitOnError)
	config.RegisterFlags(fs)
	secureCookie := fs.Bool("secure-cookie", false, "mark the session cookie Secure (serve over https)")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		logger.Fatalf("auth secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db, logger); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}

	sessions, closeSessions, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup session store: %v", err)
	}
	if sessions == nil {
		sessions = sqlite.NewSessionRepository(db)
	}
	defer closeSessions()

	app := service.NewApp(sqlite.NewAccountRepository(db), sqlite.NewRecipeRepository(db), sessions, service.Options{
		BcryptCost: cfg.Auth.BcryptCost,
		Session: service.SessionConfig{
			Secret:      []byte(cfg.Auth.Secret),
			TTL:         cfg.Session.TTL,
			RememberTTL: cfg.Session.RememberTTL,
		},
		Logger: logger,
	})

	if cfg.Seed.Password != "" {
		seeded, err := service.SeedSample(ctx, app, cfg.Seed.Password)
		if err != nil {
			logger.Fatalf("seed sample data: %v", err)
		}
		if seeded {
			logger.Infof("seeded sample account %s", service.SampleAccountEmail)
		}
	}

	go purgeSessions(ctx, app, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(app, apphttp.CookieConfig{Secure: *secureCookie})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildSessionStore returns nil for the sqlite store, which shares the
// database handle opened by main.
func buildSessionStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.SessionRepository, func(), error) {
	if cfg.Session.Store != "redis" {
		return nil, func() {}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("using redis session store at %s", cfg.Redis.Addr)
	return redis.NewSessionRepository(client), func() { client.Close() }, nil
}

func purgeSessions(ctx context.Context, app *service.App, logger *logrus.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		removed, err := app.Sessions.PurgeExpired(ctx)
		if err != nil && ctx.Err() == nil {
			logger.Warnf("purge expired sessions: %v", err)
		} else if removed > 0 {
			logger.Debugf("purged %d expired sessions", removed)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
