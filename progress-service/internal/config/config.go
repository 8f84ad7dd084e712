package config

import (
	"fmt"
	"strings"

	sharedauth "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/auth"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/envconfig"
)

// Config encapsulates the runtime configuration for the progress service.
type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string
	DataStore    DataStore
	Auth         AuthConfig
	Firestore    FirestoreConfig
	Leaderboard  LeaderboardConfig
}

// DataStore enumerates supported persistence backends.
type DataStore string

const (
	// DataStoreMemory keeps documents in-memory (useful for local development/testing).
	DataStoreMemory DataStore = "memory"
	// DataStoreFirestore reads documents from Google Cloud Firestore.
	DataStoreFirestore DataStore = "firestore"
)

// AuthConfig stores authentication middleware setup.
type AuthConfig struct {
	Mode     sharedauth.Mode
	JWKSURL  string
	Audience string
	Issuer   string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	DatabaseID   string
	EmulatorHost string
}

// LeaderboardConfig tunes leaderboard construction.
type LeaderboardConfig struct {
	IncludeInactive  bool
	FetchConcurrency int `validate:"min=1,max=128"`
	DefaultLimit     int `validate:"min=1"`
	MaxLimit         int `validate:"min=1,gtefield=DefaultLimit"`
}

// Load reads environment variables into Config with validation.
func Load() (Config, error) {
	if err := envconfig.LoadDotEnv(envconfig.Get("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	includeInactive, err := envconfig.GetBool("LEADERBOARD_INCLUDE_INACTIVE", true)
	if err != nil {
		return Config{}, err
	}
	concurrency, err := envconfig.GetInt("LEADERBOARD_FETCH_CONCURRENCY", 16)
	if err != nil {
		return Config{}, err
	}
	defaultLimit, err := envconfig.GetInt("LEADERBOARD_DEFAULT_LIMIT", 50)
	if err != nil {
		return Config{}, err
	}
	maxLimit, err := envconfig.GetInt("LEADERBOARD_MAX_LIMIT", 200)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		DataStore:    DataStore(strings.ToLower(envconfig.Get("DATASTORE", string(DataStoreMemory)))),
		Auth: AuthConfig{
			Mode:     sharedauth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(sharedauth.ModeNoop)))),
			JWKSURL:  envconfig.Get("AUTH_JWKS_URL", ""),
			Audience: envconfig.Get("AUTH_AUDIENCE", ""),
			Issuer:   envconfig.Get("AUTH_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			DatabaseID:   envconfig.Get("FIRESTORE_DATABASE_ID", ""),
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		Leaderboard: LeaderboardConfig{
			IncludeInactive:  includeInactive,
			FetchConcurrency: concurrency,
			DefaultLimit:     defaultLimit,
			MaxLimit:         maxLimit,
		},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if err := envconfig.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch cfg.DataStore {
	case DataStoreMemory:
		// no-op
	case DataStoreFirestore:
		if cfg.GCPProjectID == "" {
			return fmt.Errorf("gcp project id required when datastore=firestore")
		}
	default:
		return fmt.Errorf("unsupported datastore: %s", cfg.DataStore)
	}

	switch cfg.Auth.Mode {
	case sharedauth.ModeFirebase:
		if cfg.GCPProjectID == "" && cfg.Auth.Audience == "" {
			return fmt.Errorf("GCP_PROJECT_ID or AUTH_AUDIENCE is required when AUTH_MODE=firebase")
		}
	case sharedauth.ModeNoop:
		// no-op
	default:
		return fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}

	return nil
}
