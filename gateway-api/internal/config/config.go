package config

import (
	"fmt"
	"net/url"
	"strings"

	sharedauth "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/auth"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/envconfig"
)

type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string

	AuthMode     sharedauth.Mode `validate:"required,oneof=firebase noop"`
	AuthJWKSURL  string
	AuthAudience string
	AuthIssuer   string

	UserURL     *url.URL
	WorkshopURL *url.URL
	ProgressURL *url.URL

	// UpstreamIDToken mints Google ID tokens for upstream calls (Cloud Run service-to-service).
	UpstreamIDToken bool
}

func Load() (Config, error) {
	if err := envconfig.LoadDotEnv(envconfig.Get("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	idToken, err := envconfig.GetBool("UPSTREAM_ID_TOKEN", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:            envconfig.Get("PORT", "8080"),
		GCPProjectID:    envconfig.Get("GCP_PROJECT_ID", ""),
		AuthMode:        sharedauth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(sharedauth.ModeNoop)))),
		AuthJWKSURL:     envconfig.Get("AUTH_JWKS_URL", ""),
		AuthAudience:    envconfig.Get("AUTH_AUDIENCE", ""),
		AuthIssuer:      envconfig.Get("AUTH_ISSUER", ""),
		UpstreamIDToken: idToken,
	}

	upstreams := []struct {
		env, fallback string
		dst           **url.URL
	}{
		{"USER_URL", "http://user-service:8080", &cfg.UserURL},
		{"WORKSHOP_URL", "http://workshop-service:8080", &cfg.WorkshopURL},
		{"PROGRESS_URL", "http://progress-service:8080", &cfg.ProgressURL},
	}
	for _, u := range upstreams {
		parsed, err := ParseURLCompat(envconfig.Get(u.env, u.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", u.env, err)
		}
		*u.dst = parsed
	}

	if err := envconfig.Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.AuthMode == sharedauth.ModeFirebase && cfg.GCPProjectID == "" && cfg.AuthAudience == "" {
		return Config{}, fmt.Errorf("GCP_PROJECT_ID or AUTH_AUDIENCE is required when AUTH_MODE=firebase")
	}
	return cfg, nil
}

// ParseURLCompat parses a required absolute URL from env.
// It is intentionally strict (requires scheme + host).
func ParseURLCompat(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("missing url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url: %s", raw)
	}
	return u, nil
}
