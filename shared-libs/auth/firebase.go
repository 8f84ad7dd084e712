package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultFirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	firebaseIssuerPrefix   = "https://securetoken.google.com/"
)

var errMissingSubject = errors.New("token missing subject claim")

// firebaseVerifier validates Firebase Authentication ID tokens.
type firebaseVerifier struct {
	jwks     *keyfunc.JWKS
	audience string
	issuer   string
}

func newFirebaseVerifier(cfg Config) (Verifier, error) {
	cfg = firebaseDefaults(cfg)
	if cfg.Audience == "" || cfg.Issuer == "" {
		return nil, errors.New("firebase auth requires a project id or explicit audience and issuer")
	}

	options := keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			// Refresh failures surface as verification errors on the next request.
		},
	}

	jwks, err := keyfunc.Get(cfg.JWKSURL, options)
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}

	return &firebaseVerifier{jwks: jwks, audience: cfg.Audience, issuer: cfg.Issuer}, nil
}

func firebaseDefaults(cfg Config) Config {
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = defaultFirebaseJWKSURL
	}
	if cfg.Audience == "" {
		cfg.Audience = cfg.ProjectID
	}
	if cfg.Issuer == "" && cfg.ProjectID != "" {
		cfg.Issuer = firebaseIssuerPrefix + cfg.ProjectID
	}
	return cfg
}

func (v *firebaseVerifier) Verify(_ context.Context, token string) (AuthenticatedUser, error) {
	options := []jwt.ParserOption{
		jwt.WithLeeway(5 * time.Second),
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithIssuer(v.issuer),
	}

	t, err := jwt.Parse(token, v.jwks.Keyfunc, options...)
	if err != nil {
		return AuthenticatedUser{}, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return AuthenticatedUser{}, errors.New("unexpected claims type")
	}

	return userFromClaims(claims, token)
}

func userFromClaims(claims jwt.MapClaims, token string) (AuthenticatedUser, error) {
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return AuthenticatedUser{}, errMissingSubject
	}

	email, _ := claims["email"].(string)

	expiresAt := int64(0)
	if expRaw, ok := claims["exp"].(float64); ok {
		expiresAt = int64(expRaw)
	}

	return AuthenticatedUser{
		UserID:    subject,
		Email:     email,
		ExpiresAt: expiresAt,
		Token:     token,
	}, nil
}
