package httpapi

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/auth"
	sharedserver "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/server"
)

// Upstream is a downstream service origin. A nil Transport uses http.DefaultTransport.
type Upstream struct {
	URL       *url.URL
	Transport http.RoundTripper
}

type Targets struct {
	User     Upstream
	Workshop Upstream
	Progress Upstream
}

func Router(verifier auth.Verifier, targets Targets, logger *slog.Logger) http.Handler {
	return sharedserver.NewRouter("gateway-api", func(r chi.Router) {
		// Everything else is authenticated.
		r.Group(func(r chi.Router) {
			r.Use(stripIdentityHeaders)
			r.Use(auth.Middleware(verifier))
			r.Use(injectUserHeaders(logger))

			user := proxyHandler(targets.User, logger)
			workshop := proxyHandler(targets.Workshop, logger)
			progress := proxyHandler(targets.Progress, logger)

			r.Mount("/v1/users", user)
			r.Mount("/v1/workshops", workshop)
			r.Mount("/v1/lessons", workshop)
			r.Mount("/v1/reflections", workshop)
			r.Mount("/v1/leaderboard", progress)
			r.Mount("/v1/badges", progress)
			r.Mount("/v1/progress", progress)
		})
	})
}

// stripIdentityHeaders drops identity headers sent by clients so only the verified token decides
// who the caller is.
func stripIdentityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(auth.HeaderUserID)
		r.Header.Del(auth.HeaderUserEmail)
		next.ServeHTTP(w, r)
	})
}

func injectUserHeaders(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := auth.UserFromContext(r.Context()); ok && strings.TrimSpace(u.UserID) != "" {
				r.Header.Set(auth.HeaderUserID, u.UserID)
				if u.Email != "" {
					r.Header.Set(auth.HeaderUserEmail, u.Email)
				}
				if logger != nil {
					logger.Debug("proxying request", "user_id", u.UserID, "path", r.URL.Path)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func proxyHandler(target Upstream, logger *slog.Logger) http.Handler {
	if target.URL == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream not configured", http.StatusBadGateway)
		})
	}

	proxy := httputil.NewSingleHostReverseProxy(target.URL)
	origDirector := proxy.Director
	proxy.Director = func(req *http.Request) {
		origDirector(req)
		// Ensure the upstream sees the right Host and preserve original path.
		req.Host = target.URL.Host
		// Upstreams trust X-User-ID; the ID token transport sets its own Authorization.
		req.Header.Del("Authorization")
	}
	if target.Transport != nil {
		proxy.Transport = target.Transport
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if logger != nil && err != nil {
			logger.Error("proxy error", slog.Any("error", err), slog.String("path", r.URL.Path))
		}
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	return proxy
}
