package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	sharedauth "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/auth"
	sharederrors "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/errors"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/logging"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/user-service/internal/user"
)

const (
	serviceTimeout    = 8 * time.Second
	maxPatchBodyBytes = 64 * 1024 // 64KB of JSON is more than enough for profile updates
)

// RegisterRoutes registers all user routes
func RegisterRoutes(r chi.Router, service user.Service, logger *slog.Logger) {
	r.Route("/v1/users", func(r chi.Router) {
		r.Use(middleware.Recoverer)

		r.Get("/me", getProfile(service, logger))
		r.Patch("/me", updateProfile(service, logger))
		r.Put("/me/role", selectRole(service, logger))
	})
}

func getProfile(service user.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := callerID(r)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "missing user ID")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		profile, err := service.GetProfile(ctx, userID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to load profile", err, userID)
			respondUserServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, profile)
	}
}

func updateProfile(service user.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := callerID(r)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "missing user ID")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxPatchBodyBytes)
		defer r.Body.Close()

		var body struct {
			DisplayName *string   `json:"display_name"`
			Bio         *string   `json:"bio"`
			Skills      *[]string `json:"skills"`
			Location    *string   `json:"location"`
			LinkedIn    *string   `json:"linkedin"`
		}
		if !decodeStrict(w, r, &body) {
			return
		}
		payload := user.ProfileUpdateInput{
			DisplayName: body.DisplayName,
			Bio:         body.Bio,
			Skills:      body.Skills,
			Location:    body.Location,
			LinkedIn:    body.LinkedIn,
		}
		if payload.Empty() {
			writeError(w, r, http.StatusBadRequest, errInvalidPayload.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		profile, err := service.UpdateProfile(ctx, userID, payload)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to update profile", err, userID)
			respondUserServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, profile)
	}
}

func selectRole(service user.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := callerID(r)
		if userID == "" {
			writeError(w, r, http.StatusUnauthorized, "missing user ID")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxPatchBodyBytes)
		defer r.Body.Close()

		var selection user.RoleSelection
		if !decodeStrict(w, r, &selection) {
			return
		}
		if selection.Email == "" {
			selection.Email = callerEmail(r)
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		profile, err := service.SelectRole(ctx, userID, selection)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to select role", err, userID)
			respondUserServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, profile)
	}
}

var errInvalidPayload = errors.New("invalid request body")

// decodeStrict decodes exactly one JSON object with no unknown fields, writing the error response
// itself on failure.
func decodeStrict(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil && decoder.Decode(&struct{}{}) != io.EOF {
		err = errInvalidPayload
	}
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, r, http.StatusRequestEntityTooLarge, "payload too large")
	} else {
		writeError(w, r, http.StatusBadRequest, errInvalidPayload.Error())
	}
	return false
}

func respondUserServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrMissingUserID):
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
	case errors.Is(err, user.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "data source unavailable, try again later")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func callerID(r *http.Request) string {
	if u, ok := sharedauth.UserFromContext(r.Context()); ok && u.UserID != "" {
		return u.UserID
	}
	return r.Header.Get(sharedauth.HeaderUserID)
}

func callerEmail(r *http.Request) string {
	if u, ok := sharedauth.UserFromContext(r.Context()); ok && u.Email != "" {
		return u.Email
	}
	return r.Header.Get(sharedauth.HeaderUserEmail)
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
