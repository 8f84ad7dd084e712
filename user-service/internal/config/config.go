package config

import (
	"fmt"
	"strings"

	sharedauth "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/auth"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/envconfig"
)

// Config encapsulates the runtime configuration for the user service.
type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string
	DataStore    string `validate:"required,oneof=memory firestore"`
	Auth         AuthConfig
	Firestore    FirestoreConfig
	Events       EventsConfig
}

type AuthConfig struct {
	Mode     string `validate:"required,oneof=firebase noop"`
	JWKSURL  string
	Audience string
	Issuer   string
}

type FirestoreConfig struct {
	DatabaseID   string
	EmulatorHost string
}

type EventsConfig struct {
	Brokers []string `validate:"dive,hostname_port"`
}

func Load() (Config, error) {
	if err := envconfig.LoadDotEnv(envconfig.Get("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		DataStore:    strings.ToLower(envconfig.Get("DATASTORE", "memory")),
		Auth: AuthConfig{
			Mode:     strings.ToLower(envconfig.Get("AUTH_MODE", string(sharedauth.ModeNoop))),
			JWKSURL:  envconfig.Get("AUTH_JWKS_URL", ""),
			Audience: envconfig.Get("AUTH_AUDIENCE", ""),
			Issuer:   envconfig.Get("AUTH_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			DatabaseID:   envconfig.Get("FIRESTORE_DATABASE_ID", ""),
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
		Events: EventsConfig{
			Brokers: envconfig.GetList("EVENTS_BROKERS"),
		},
	}
	if err := envconfig.Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.DataStore == "firestore" && cfg.GCPProjectID == "" {
		return Config{}, fmt.Errorf("GCP_PROJECT_ID is required when DATASTORE=firestore")
	}
	return cfg, nil
}
