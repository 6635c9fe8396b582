package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/rowanleaf/service-accounts-go/internal/auth"
	"github.com/rowanleaf/service-accounts-go/internal/config"
	"github.com/rowanleaf/service-accounts-go/internal/migrations"
	"github.com/rowanleaf/service-accounts-go/internal/router"
	"github.com/rowanleaf/service-accounts-go/internal/user"
	userrepo "github.com/rowanleaf/service-accounts-go/internal/user/repo"
	"github.com/rowanleaf/service-accounts-go/pkg/database"
	"github.com/rowanleaf/service-accounts-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.NewLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-accounts-go")

	// load and validate config once; nothing serves with a bad config
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		sugar.Fatalf("config: %v", err)
	}

	// init db
	sqlDB, err := database.Connect(database.Config{
		DSN:            cfg.DatabaseURL,
		MaxConns:       cfg.DBMaxConns,
		ConnectTimeout: cfg.DBTimeout,
	})
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// migrate before accepting traffic; failure aborts the process
	if err := migrations.Up(context.Background(), sqlDB); err != nil {
		sugar.Fatalf("db migrate: %v", err)
	}

	// wrap with sqlx for convenience in repos/services
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	// wire components; dependencies are explicit, no ambient globals
	repo := userrepo.NewUserRepo(sqlxDB, cfg.DBTimeout)
	hasher := user.BcryptHasher{Cost: cfg.BcryptCost}
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)

	authSvc := auth.NewService(repo, hasher, tokens)
	userSvc := user.NewService(repo, hasher)

	authHandler := auth.NewHandler(authSvc, sugar)
	userHandler := user.NewHandler(userSvc, sugar)
	guard := auth.Guard(tokens, repo, sugar)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := router.RegisterRoutes(sugar, authHandler, userHandler, guard)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	// run server in background
	go func() {
		sugar.Infof("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
