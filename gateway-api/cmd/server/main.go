package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"google.golang.org/api/idtoken"

	sharedauth "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/auth"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/logging"
	sharedserver "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/server"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/gateway-api/internal/config"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/gateway-api/internal/httpapi"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("gateway-api")

	verifier, err := sharedauth.NewVerifier(sharedauth.Config{
		Mode:      cfg.AuthMode,
		ProjectID: cfg.GCPProjectID,
		JWKSURL:   cfg.AuthJWKSURL,
		Audience:  cfg.AuthAudience,
		Issuer:    cfg.AuthIssuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	targets := httpapi.Targets{}
	for _, t := range []struct {
		origin *url.URL
		dst    *httpapi.Upstream
	}{
		{cfg.UserURL, &targets.User},
		{cfg.WorkshopURL, &targets.Workshop},
		{cfg.ProgressURL, &targets.Progress},
	} {
		upstream, err := newUpstream(ctx, t.origin, cfg.UpstreamIDToken)
		if err != nil {
			panic(fmt.Errorf("upstream %s: %w", t.origin, err))
		}
		*t.dst = upstream
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.Router(verifier, targets, logger),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := sharedserver.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

// newUpstream mints a Google ID token for the origin's audience when enabled (Cloud Run
// service-to-service).
func newUpstream(ctx context.Context, origin *url.URL, useIDToken bool) (httpapi.Upstream, error) {
	upstream := httpapi.Upstream{URL: origin}
	if !useIDToken {
		return upstream, nil
	}
	audience := origin.Scheme + "://" + origin.Host
	client, err := idtoken.NewClient(ctx, audience)
	if err != nil {
		return httpapi.Upstream{}, fmt.Errorf("idtoken client: %w", err)
	}
	upstream.Transport = client.Transport
	return upstream, nil
}
