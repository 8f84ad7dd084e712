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
	sharedserver "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/server"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/config"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/httpapi"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/progress"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("progress-service")

	repo, cleanup, err := newRepository(ctx, cfg, logger)
	if err != nil {
		panic(fmt.Errorf("repository init: %w", err))
	}
	defer cleanup()

	progressService, err := progress.NewService(repo, progress.Options{
		FetchConcurrency: cfg.Leaderboard.FetchConcurrency,
		IncludeInactive:  cfg.Leaderboard.IncludeInactive,
		DefaultLimit:     cfg.Leaderboard.DefaultLimit,
		MaxLimit:         cfg.Leaderboard.MaxLimit,
	}, logger)
	if err != nil {
		panic(fmt.Errorf("progress service: %w", err))
	}

	verifier, err := sharedauth.NewVerifier(sharedauth.Config{
		Mode:      cfg.Auth.Mode,
		ProjectID: cfg.GCPProjectID,
		JWKSURL:   cfg.Auth.JWKSURL,
		Audience:  cfg.Auth.Audience,
		Issuer:    cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := sharedserver.NewRouter("progress-service", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(sharedauth.Middleware(verifier))
			httpapi.RegisterRoutes(r, progressService, logger)
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

func newRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (progress.Repository, func(), error) {
	switch cfg.DataStore {
	case config.DataStoreMemory:
		logger.Warn("using in-memory datastore; data is not persisted")
		return progress.NewMemoryRepository(), func() {}, nil
	case config.DataStoreFirestore:
		client, err := docstore.NewClient(ctx, docstore.Config{
			ProjectID:    cfg.GCPProjectID,
			DatabaseID:   cfg.Firestore.DatabaseID,
			EmulatorHost: cfg.Firestore.EmulatorHost,
		})
		if err != nil {
			return nil, nil, err
		}
		return progress.NewFirestoreRepository(client), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported datastore: %s", cfg.DataStore)
	}
}
