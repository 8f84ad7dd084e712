package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	sharedauth "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/auth"
	sharederrors "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/errors"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/logging"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/workshop-service/internal/workshop"
)

const (
	serviceTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

// Service is the workshop domain the handlers serve.
type Service interface {
	ListWorkshops(ctx context.Context, createdBy string) ([]workshop.Workshop, error)
	CreateWorkshop(ctx context.Context, userID string, input workshop.CreateWorkshopInput) (workshop.Workshop, error)
	GetWorkshop(ctx context.Context, userID, workshopID string) (workshop.WorkshopDetail, error)
	AddLesson(ctx context.Context, userID, workshopID string, input workshop.AddLessonInput) (workshop.Lesson, error)
	Register(ctx context.Context, userID, workshopID string) (workshop.Registration, error)
	Unregister(ctx context.Context, userID, workshopID string) error
	WorkshopStatistics(ctx context.Context, userID, workshopID string) (workshop.Statistics, error)
	GetLesson(ctx context.Context, userID, lessonID string) (workshop.LessonDetail, error)
	SubmitReflection(ctx context.Context, userID, lessonID string, input workshop.SubmitReflectionInput) (workshop.Reflection, error)
	ListPendingReflections(ctx context.Context, userID string) ([]workshop.PendingReflection, error)
	ReviewReflection(ctx context.Context, userID, reflectionID string, decision workshop.Decision) (workshop.Reflection, error)
}

// RegisterRoutes registers workshop, lesson and reflection routes.
func RegisterRoutes(r chi.Router, service Service, logger *slog.Logger) {
	r.Route("/v1/workshops", func(r chi.Router) {
		r.Get("/", listWorkshops(service, logger))
		r.Post("/", createWorkshop(service, logger))
		r.Get("/{workshopID}", getWorkshop(service, logger))
		r.Post("/{workshopID}/lessons", addLesson(service, logger))
		r.Post("/{workshopID}/registration", register(service, logger))
		r.Delete("/{workshopID}/registration", unregister(service, logger))
		r.Get("/{workshopID}/statistics", workshopStatistics(service, logger))
	})
	r.Route("/v1/lessons", func(r chi.Router) {
		r.Get("/{lessonID}", getLesson(service, logger))
		r.Post("/{lessonID}/reflections", submitReflection(service, logger))
	})
	r.Route("/v1/reflections", func(r chi.Router) {
		r.Get("/pending", listPendingReflections(service, logger))
		r.Post("/{reflectionID}/approve", reviewReflection(service, logger, workshop.DecisionApprove))
		r.Post("/{reflectionID}/reject", reviewReflection(service, logger, workshop.DecisionReject))
	})
}

func listWorkshops(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		createdBy := r.URL.Query().Get("created_by")
		if createdBy == "me" {
			createdBy = userID
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		workshops, err := service.ListWorkshops(ctx, createdBy)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to list workshops", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"workshops": workshops})
	}
}

func createWorkshop(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		var input workshop.CreateWorkshopInput
		if !decodeBody(w, r, &input) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		created, err := service.CreateWorkshop(ctx, userID, input)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to create workshop", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func getWorkshop(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		detail, err := service.GetWorkshop(ctx, userID, chi.URLParam(r, "workshopID"))
		if err != nil {
			logRequestError(r.Context(), logger, "failed to get workshop", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func addLesson(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		var input workshop.AddLessonInput
		if !decodeBody(w, r, &input) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		lesson, err := service.AddLesson(ctx, userID, chi.URLParam(r, "workshopID"), input)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to add lesson", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, lesson)
	}
}

func register(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		reg, err := service.Register(ctx, userID, chi.URLParam(r, "workshopID"))
		if err != nil {
			logRequestError(r.Context(), logger, "failed to register", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, reg)
	}
}

func unregister(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		if err := service.Unregister(ctx, userID, chi.URLParam(r, "workshopID")); err != nil {
			logRequestError(r.Context(), logger, "failed to unregister", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func workshopStatistics(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		stats, err := service.WorkshopStatistics(ctx, userID, chi.URLParam(r, "workshopID"))
		if err != nil {
			logRequestError(r.Context(), logger, "failed to compute workshop statistics", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func getLesson(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		detail, err := service.GetLesson(ctx, userID, chi.URLParam(r, "lessonID"))
		if err != nil {
			logRequestError(r.Context(), logger, "failed to get lesson", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func submitReflection(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		var input workshop.SubmitReflectionInput
		if !decodeBody(w, r, &input) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		reflection, err := service.SubmitReflection(ctx, userID, chi.URLParam(r, "lessonID"), input)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to submit reflection", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, reflection)
	}
}

func listPendingReflections(service Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		pending, err := service.ListPendingReflections(ctx, userID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to list pending reflections", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"reflections": pending})
	}
}

func reviewReflection(service Service, logger *slog.Logger, decision workshop.Decision) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireCaller(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		reflection, err := service.ReviewReflection(ctx, userID, chi.URLParam(r, "reflectionID"), decision)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to review reflection", err, userID)
			respondWorkshopServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reflection)
	}
}

func respondWorkshopServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workshop.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, workshop.ErrNotRegistered):
		writeError(w, r, http.StatusForbidden, "register for the workshop first")
	case errors.Is(err, workshop.ErrForbidden):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, workshop.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, workshop.ErrAlreadyRegistered),
		errors.Is(err, workshop.ErrAlreadySubmitted),
		errors.Is(err, workshop.ErrAlreadyReviewed),
		errors.Is(err, workshop.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusServiceUnavailable, "data source unavailable, try again later")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := callerID(r)
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return "", false
	}
	return userID, true
}

func callerID(r *http.Request) string {
	if user, ok := sharedauth.UserFromContext(r.Context()); ok && user.UserID != "" {
		return user.UserID
	}
	return r.Header.Get(sharedauth.HeaderUserID)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
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
