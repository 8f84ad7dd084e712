package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/workshop-service/internal/workshop"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

type testEnv struct {
	repo   *workshop.MemoryRepository
	router http.Handler
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	repo := workshop.NewMemoryRepository()
	repo.PutMember(workshop.Member{UserID: "rec", Email: "rec@corp.io", Role: workshop.RoleRecruiter})
	repo.PutMember(workshop.Member{UserID: "js", Email: "js@mail.io", Role: workshop.RoleJobSeeker})

	svc, err := workshop.NewService(repo, nil, fixedClock{}, workshop.NewUUIDGenerator(), nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	RegisterRoutes(r, svc, nil)
	return testEnv{repo: repo, router: r}
}

func (e testEnv) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestWorkshopFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/v1/workshops", "rec", map[string]any{
		"title":       "Go APIs",
		"description": "Build services",
		"skills":      []string{"Go", "HTTP"},
		"difficulty":  "beginner",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[workshop.Workshop](t, rec)

	rec = env.do(t, http.MethodPost, "/v1/workshops/"+created.ID+"/lessons", "rec", map[string]any{
		"title": "Routing", "content": "chi routers",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	lesson := decode[workshop.Lesson](t, rec)

	rec = env.do(t, http.MethodPost, "/v1/lessons/"+lesson.ID+"/reflections", "js", map[string]any{"content": "nice"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/workshops/"+created.ID+"/registration", "js", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/v1/workshops/"+created.ID+"/registration", "js", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/v1/lessons/"+lesson.ID+"/reflections", "js", map[string]any{"content": "nice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	reflection := decode[workshop.Reflection](t, rec)
	require.Equal(t, workshop.StatusPending, reflection.Status)

	rec = env.do(t, http.MethodGet, "/v1/reflections/pending", "rec", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[struct {
		Reflections []workshop.PendingReflection `json:"reflections"`
	}](t, rec)
	require.Len(t, pending.Reflections, 1)
	require.Equal(t, "js@mail.io", pending.Reflections[0].UserEmail)
	require.Equal(t, "Routing", pending.Reflections[0].LessonTitle)
	require.Equal(t, "Go APIs", pending.Reflections[0].WorkshopTitle)

	rec = env.do(t, http.MethodPost, "/v1/reflections/"+reflection.ID+"/approve", "rec", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	approved := decode[workshop.Reflection](t, rec)
	require.Equal(t, workshop.StatusApproved, approved.Status)
	require.Equal(t, 50, *approved.Points)

	rec = env.do(t, http.MethodPost, "/v1/reflections/"+reflection.ID+"/reject", "rec", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/v1/workshops/"+created.ID+"/statistics", "rec", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[workshop.Statistics](t, rec)
	require.Equal(t, 1, stats.Registrations)
	require.Equal(t, 1, stats.Approved)
	require.Equal(t, 50, stats.AveragePoints)

	rec = env.do(t, http.MethodGet, "/v1/workshops/"+created.ID, "js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[workshop.WorkshopDetail](t, rec)
	require.True(t, detail.Registered)
	require.Len(t, detail.Lessons, 1)

	rec = env.do(t, http.MethodDelete, "/v1/workshops/"+created.ID+"/registration", "js", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListWorkshopsCreatedByMe(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.repo.CreateWorkshop(context.Background(), workshop.Workshop{ID: "w1", Title: "Mine", CreatedBy: "rec"}))
	require.NoError(t, env.repo.CreateWorkshop(context.Background(), workshop.Workshop{ID: "w2", Title: "Theirs", CreatedBy: "other"}))

	rec := env.do(t, http.MethodGet, "/v1/workshops?created_by=me", "rec", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Workshops []workshop.Workshop `json:"workshops"`
	}](t, rec)
	require.Len(t, body.Workshops, 1)
	require.Equal(t, "w1", body.Workshops[0].ID)

	rec = env.do(t, http.MethodGet, "/v1/workshops", "js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[struct {
		Workshops []workshop.Workshop `json:"workshops"`
	}](t, rec)
	require.Len(t, body.Workshops, 2)
}

func TestErrorResponses(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		userID string
		body   any
		want   int
	}{
		{name: "missing caller", method: http.MethodGet, path: "/v1/workshops", want: http.StatusUnauthorized},
		{name: "job seeker creating workshop", method: http.MethodPost, path: "/v1/workshops", userID: "js",
			body: map[string]any{"title": "t", "description": "d", "skills": []string{"go"}, "difficulty": "beginner"}, want: http.StatusForbidden},
		{name: "invalid workshop", method: http.MethodPost, path: "/v1/workshops", userID: "rec",
			body: map[string]any{"title": "t"}, want: http.StatusBadRequest},
		{name: "unknown workshop", method: http.MethodGet, path: "/v1/workshops/nope", userID: "js", want: http.StatusNotFound},
		{name: "unknown lesson", method: http.MethodGet, path: "/v1/lessons/nope", userID: "js", want: http.StatusNotFound},
		{name: "unknown reflection", method: http.MethodPost, path: "/v1/reflections/nope/approve", userID: "rec", want: http.StatusNotFound},
		{name: "pending as job seeker", method: http.MethodGet, path: "/v1/reflections/pending", userID: "js", want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.userID, tt.body)
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCreateWorkshopRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/workshops", bytes.NewBufferString("{"))
	req.Header.Set("X-User-ID", "rec")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRespondWorkshopServiceErrorMapsDeadline(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	respondWorkshopServiceError(rec, req, context.DeadlineExceeded)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	respondWorkshopServiceError(rec, req, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
