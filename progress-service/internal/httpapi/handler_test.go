package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/progress"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/scoring"
	sharederrors "github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/errors"
)

type fakeService struct {
	leaderboardFn func(context.Context, progress.LeaderboardQuery) (progress.LeaderboardPage, error)
	badgesFn      func(context.Context, string) (progress.BadgesView, error)
	progressFn    func(context.Context, string) (progress.ProgressView, error)
}

func (f *fakeService) GetLeaderboard(ctx context.Context, q progress.LeaderboardQuery) (progress.LeaderboardPage, error) {
	return f.leaderboardFn(ctx, q)
}

func (f *fakeService) GetBadges(ctx context.Context, userID string) (progress.BadgesView, error) {
	return f.badgesFn(ctx, userID)
}

func (f *fakeService) GetProgress(ctx context.Context, userID string) (progress.ProgressView, error) {
	return f.progressFn(ctx, userID)
}

func newRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, nil)
	return r
}

func TestGetLeaderboardPassesViewerAndPaging(t *testing.T) {
	var got progress.LeaderboardQuery
	svc := &fakeService{leaderboardFn: func(_ context.Context, q progress.LeaderboardQuery) (progress.LeaderboardPage, error) {
		got = q
		return progress.LeaderboardPage{
			Entries: []scoring.Entry{{
				Aggregate: scoring.Aggregate{UserID: "A", Email: "a@x.io", TotalPoints: 50, ApprovedCount: 1, DistinctWorkshopCount: 1},
				Rank:      1,
				Badges:    scoring.EvaluateBadges(scoring.Stats{TotalPoints: 50, ApprovedReflections: 1, DistinctCompletedWorkshops: 1}),
			}},
			TotalParticipants: 1,
			Viewer:            &scoring.ViewerSummary{Rank: 1, TotalPoints: 50},
		}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard?limit=10&offset=5", nil)
	req.Header.Set("X-User-ID", "A")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, progress.LeaderboardQuery{ViewerID: "A", Limit: 10, Offset: 5}, got)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	entries := body["entries"].([]any)
	first := entries[0].(map[string]any)
	require.Equal(t, "A", first["user_id"])
	require.Equal(t, float64(1), first["rank"])
	require.Equal(t, float64(50), first["total_points"])
	require.Equal(t, float64(1), first["completed_workshops"])
	require.Equal(t, "starter", first["badges"].([]any)[0].(map[string]any)["id"])
	require.Equal(t, float64(1), body["viewer"].(map[string]any)["rank"])
}

func TestGetLeaderboardRejectsBadPaging(t *testing.T) {
	svc := &fakeService{}
	for _, query := range []string{"limit=-1", "offset=abc"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard?"+query, nil)
		req.Header.Set("X-User-ID", "A")
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestGetLeaderboardSourceUnavailable(t *testing.T) {
	svc := &fakeService{leaderboardFn: func(context.Context, progress.LeaderboardQuery) (progress.LeaderboardPage, error) {
		return progress.LeaderboardPage{}, fmt.Errorf("%w: boom", progress.ErrSourceUnavailable)
	}}

	req := httptest.NewRequest(http.MethodGet, "/v1/leaderboard", nil)
	req.Header.Set("X-User-ID", "A")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body sharederrors.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, sharederrors.CodeUnavailable, body.Code)
}

func TestMissingUserID(t *testing.T) {
	for _, path := range []string{"/v1/leaderboard", "/v1/badges/me", "/v1/progress/me"} {
		rec := httptest.NewRecorder()
		newRouter(&fakeService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestGetBadgesErrorMapping(t *testing.T) {
	cases := map[error]int{
		progress.ErrNotFound:      http.StatusNotFound,
		progress.ErrMissingUserID: http.StatusBadRequest,
		errors.New("boom"):        http.StatusInternalServerError,
	}
	for svcErr, status := range cases {
		svc := &fakeService{badgesFn: func(context.Context, string) (progress.BadgesView, error) {
			return progress.BadgesView{}, svcErr
		}}
		req := httptest.NewRequest(http.MethodGet, "/v1/badges/me", nil)
		req.Header.Set("X-User-ID", "u")
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, req)
		require.Equal(t, status, rec.Code, svcErr.Error())
	}
}

func TestGetProgress(t *testing.T) {
	svc := &fakeService{progressFn: func(_ context.Context, userID string) (progress.ProgressView, error) {
		require.Equal(t, "u", userID)
		return progress.ProgressView{TotalPoints: 20, Reflections: []progress.ProgressItem{{ID: "r1", Status: "approved"}}}, nil
	}}
	req := httptest.NewRequest(http.MethodGet, "/v1/progress/me", nil)
	req.Header.Set("X-User-ID", "u")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body progress.ProgressView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, 20, body.TotalPoints)
	require.Len(t, body.Reflections, 1)
}
