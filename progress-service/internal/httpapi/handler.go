package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/progress"
	sharedauth "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/auth"
	sharederrors "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/errors"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/logging"
)

const serviceTimeout = 15 * time.Second

// Service is the read model the handlers serve.
type Service interface {
	GetLeaderboard(ctx context.Context, q progress.LeaderboardQuery) (progress.LeaderboardPage, error)
	GetBadges(ctx context.Context, userID string) (progress.BadgesView, error)
	GetProgress(ctx context.Context, userID string) (progress.ProgressView, error)
}

// RegisterRoutes registers leaderboard, badge and progress routes.
func RegisterRoutes(r chi.Router, service Service, logger *slog.Logger) {
	r.Get("/v1/leaderboard", getLeaderboard(service, logger))
	r.Get("/v1/badges/me", getBadges(service, logger))
	r.Get("/v1/progress/me", getProgress(service, logger))
}

func getLeaderboard(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := callerID(r)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "missing user ID")
			return
		}

		limit, err := parseNonNegativeInt(r.URL.Query().Get("limit"))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		offset, err := parseNonNegativeInt(r.URL.Query().Get("offset"))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		page, err := service.GetLeaderboard(ctx, progress.LeaderboardQuery{ViewerID: userID, Limit: limit, Offset: offset})
		if err != nil {
			logRequestError(r.Context(), logger, "failed to build leaderboard", err, userID)
			respondProgressServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func getBadges(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := callerID(r)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "missing user ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		view, err := service.GetBadges(ctx, userID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to evaluate badges", err, userID)
			respondProgressServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func getProgress(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := callerID(r)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "missing user ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		view, err := service.GetProgress(ctx, userID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to load progress", err, userID)
			respondProgressServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func respondProgressServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, progress.ErrMissingUserID):
		writeError(w, r, http.StatusBadRequest, "user ID required")
	case errors.Is(err, progress.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "user not found")
	case errors.Is(err, progress.ErrSourceUnavailable), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "data source unavailable, try again later")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func callerID(r *http.Request) string {
	if user, ok := sharedauth.UserFromContext(r.Context()); ok && user.UserID != "" {
		return user.UserID
	}
	return r.Header.Get(sharedauth.HeaderUserID)
}

func parseNonNegativeInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, errors.New("invalid integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, sharederrors.ErrorResponse{
		Code:      sharederrors.FromStatusCode(status),
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func logRequestError(ctx context.Context, logger *slog.Logger, message string, err error, userID string) {
	if logger == nil || err == nil {
		return
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logging.WithRequestID(ctx, logger, reqID)
	}
	logger.Error(message, slog.String("userId", userID), slog.Any("error", err))
}
