package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	sharedauth "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/auth"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/docstore"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/logging"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/pubsub"
	sharedserver "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/server"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/user-service/internal/config"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/user-service/internal/httpapi"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/user-service/internal/user"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("user-service")

	userRepo, cleanup, err := newRepository(ctx, cfg, logger)
	if err != nil {
		panic(fmt.Errorf("repository init: %w", err))
	}
	defer cleanup()

	publisher := pubsub.NewPublisher(cfg.Events.Brokers, logger)
	defer publisher.Close()

	userService := user.NewService(userRepo, publisher, logger)

	verifier, err := sharedauth.NewVerifier(sharedauth.Config{
		Mode:      sharedauth.Mode(cfg.Auth.Mode),
		ProjectID: cfg.GCPProjectID,
		JWKSURL:   cfg.Auth.JWKSURL,
		Audience:  cfg.Auth.Audience,
		Issuer:    cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := sharedserver.NewRouter("user-service", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(sharedauth.Middleware(verifier))

			// Register user routes
			httpapi.RegisterRoutes(r, userService, logger)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := sharedserver.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (user.Repository, func(), error) {
	if cfg.DataStore == "memory" {
		logger.Warn("using in-memory datastore; data is not persisted")
		return user.NewMemoryRepository(), func() {}, nil
	}

	client, err := docstore.NewClient(ctx, docstore.Config{
		ProjectID:    cfg.GCPProjectID,
		DatabaseID:   cfg.Firestore.DatabaseID,
		EmulatorHost: cfg.Firestore.EmulatorHost,
	})
	if err != nil {
		return nil, nil, err
	}
	return user.NewFirestoreRepository(client), func() { _ = client.Close() }, nil
}
