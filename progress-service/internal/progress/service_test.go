package progress

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/scoring"
)

type fakeRepo struct {
	listParticipantsFn    func(context.Context) ([]scoring.Participant, error)
	listUserReflectionsFn func(context.Context, string) ([]Reflection, error)
	getUserFn             func(context.Context, string) (User, error)
	countWorkshopsFn      func(context.Context, string) (int, error)
	lessonTitlesFn        func(context.Context, []string) (map[string]string, error)
	workshopTitlesFn      func(context.Context, []string) (map[string]string, error)
}

func (f *fakeRepo) ListParticipants(ctx context.Context) ([]scoring.Participant, error) {
	if f.listParticipantsFn != nil {
		return f.listParticipantsFn(ctx)
	}
	return nil, errors.New("listParticipantsFn not provided")
}

func (f *fakeRepo) ListUserReflections(ctx context.Context, userID string) ([]Reflection, error) {
	if f.listUserReflectionsFn != nil {
		return f.listUserReflectionsFn(ctx, userID)
	}
	return nil, nil
}

func (f *fakeRepo) GetUser(ctx context.Context, userID string) (User, error) {
	if f.getUserFn != nil {
		return f.getUserFn(ctx, userID)
	}
	return User{}, ErrNotFound
}

func (f *fakeRepo) CountWorkshopsCreatedBy(ctx context.Context, userID string) (int, error) {
	if f.countWorkshopsFn != nil {
		return f.countWorkshopsFn(ctx, userID)
	}
	return 0, nil
}

func (f *fakeRepo) LessonTitles(ctx context.Context, ids []string) (map[string]string, error) {
	if f.lessonTitlesFn != nil {
		return f.lessonTitlesFn(ctx, ids)
	}
	return map[string]string{}, nil
}

func (f *fakeRepo) WorkshopTitles(ctx context.Context, ids []string) (map[string]string, error) {
	if f.workshopTitlesFn != nil {
		return f.workshopTitlesFn(ctx, ids)
	}
	return map[string]string{}, nil
}

func newTestService(t *testing.T, repo Repository, opts Options) *Service {
	t.Helper()
	svc, err := NewService(repo, opts, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func points(v int) *int { return &v }

func TestGetLeaderboardRanksAndSummarizesViewer(t *testing.T) {
	repo := &fakeRepo{
		listParticipantsFn: func(context.Context) ([]scoring.Participant, error) {
			return []scoring.Participant{{UserID: "A", Email: "a@x.io"}, {UserID: "B"}, {UserID: "C", Email: "c@x.io"}}, nil
		},
		listUserReflectionsFn: func(_ context.Context, userID string) ([]Reflection, error) {
			switch userID {
			case "A":
				return []Reflection{{UserID: "A", WorkshopID: "w1", Status: scoring.StatusApproved, Points: points(50)}}, nil
			case "B":
				return []Reflection{{UserID: "B", WorkshopID: "w1", Status: scoring.StatusApproved, Points: points(50)}}, nil
			default:
				return []Reflection{{UserID: "C", WorkshopID: "w1", Status: scoring.StatusRejected, Points: points(-30)}}, nil
			}
		},
	}
	svc := newTestService(t, repo, DefaultOptions())

	page, err := svc.GetLeaderboard(context.Background(), LeaderboardQuery{ViewerID: "B"})
	if err != nil {
		t.Fatalf("GetLeaderboard returned error: %v", err)
	}
	if page.TotalParticipants != 3 || len(page.Entries) != 3 {
		t.Fatalf("unexpected board size: %+v", page)
	}
	want := []string{"A", "B", "C"}
	for i, e := range page.Entries {
		if e.UserID != want[i] || e.Rank != i+1 {
			t.Fatalf("entry %d = %s rank %d, want %s rank %d", i, e.UserID, e.Rank, want[i], i+1)
		}
	}
	if page.Entries[1].Email != scoring.NoEmail {
		t.Fatalf("expected email fallback, got %q", page.Entries[1].Email)
	}
	if page.Viewer == nil || page.Viewer.Rank != 2 || page.Viewer.TotalPoints != 50 {
		t.Fatalf("unexpected viewer summary: %+v", page.Viewer)
	}
}

func TestGetLeaderboardFailsWholeBoardOnHistoryError(t *testing.T) {
	repo := &fakeRepo{
		listParticipantsFn: func(context.Context) ([]scoring.Participant, error) {
			return []scoring.Participant{{UserID: "A"}, {UserID: "B"}, {UserID: "C"}}, nil
		},
		listUserReflectionsFn: func(_ context.Context, userID string) ([]Reflection, error) {
			if userID == "B" {
				return nil, errors.New("deadline exceeded")
			}
			return []Reflection{{UserID: userID, Status: scoring.StatusApproved, Points: points(50)}}, nil
		},
	}
	svc := newTestService(t, repo, DefaultOptions())

	page, err := svc.GetLeaderboard(context.Background(), LeaderboardQuery{})
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if len(page.Entries) != 0 || page.Viewer != nil {
		t.Fatalf("expected no partial board, got %+v", page)
	}
}

func TestGetLeaderboardFailsOnParticipantError(t *testing.T) {
	repo := &fakeRepo{
		listParticipantsFn: func(context.Context) ([]scoring.Participant, error) {
			return nil, errors.New("permission denied")
		},
	}
	svc := newTestService(t, repo, DefaultOptions())

	if _, err := svc.GetLeaderboard(context.Background(), LeaderboardQuery{}); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestGetLeaderboardBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	participants := make([]scoring.Participant, 20)
	for i := range participants {
		participants[i] = scoring.Participant{UserID: string(rune('a' + i))}
	}
	repo := &fakeRepo{
		listParticipantsFn: func(context.Context) ([]scoring.Participant, error) { return participants, nil },
		listUserReflectionsFn: func(context.Context, string) ([]Reflection, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return nil, nil
		},
	}
	svc := newTestService(t, repo, Options{FetchConcurrency: 3, IncludeInactive: true})

	page, err := svc.GetLeaderboard(context.Background(), LeaderboardQuery{})
	if err != nil {
		t.Fatalf("GetLeaderboard returned error: %v", err)
	}
	if page.TotalParticipants != 20 {
		t.Fatalf("expected 20 participants, got %d", page.TotalParticipants)
	}
	if peak.Load() > 3 {
		t.Fatalf("expected at most 3 concurrent fetches, saw %d", peak.Load())
	}
}

func TestGetLeaderboardPaging(t *testing.T) {
	repo := NewMemoryRepository()
	for i, id := range []string{"u1", "u2", "u3", "u4", "u5"} {
		repo.PutUser(User{ID: id, Email: id + "@x.io", Role: RoleJobSeeker})
		repo.AddReflection(Reflection{UserID: id, Status: scoring.StatusApproved, Points: points(10 * (i + 1))})
	}
	repo.PutUser(User{ID: "r1", Role: RoleRecruiter})
	svc := newTestService(t, repo, Options{DefaultLimit: 2, MaxLimit: 3})

	page, err := svc.GetLeaderboard(context.Background(), LeaderboardQuery{ViewerID: "u1", Offset: 1})
	if err != nil {
		t.Fatalf("GetLeaderboard returned error: %v", err)
	}
	if len(page.Entries) != 2 || page.Entries[0].UserID != "u4" || page.Entries[0].Rank != 2 {
		t.Fatalf("unexpected page: %+v", page.Entries)
	}
	if page.Viewer == nil || page.Viewer.Rank != 5 {
		t.Fatalf("viewer must be ranked over the full board: %+v", page.Viewer)
	}

	page, err = svc.GetLeaderboard(context.Background(), LeaderboardQuery{Limit: 50, Offset: 4})
	if err != nil {
		t.Fatalf("GetLeaderboard returned error: %v", err)
	}
	if page.Page.Limit != 3 || len(page.Entries) != 1 {
		t.Fatalf("expected clamped limit and last entry, got %+v", page)
	}

	page, err = svc.GetLeaderboard(context.Background(), LeaderboardQuery{Offset: 99})
	if err != nil || len(page.Entries) != 0 || page.TotalParticipants != 5 {
		t.Fatalf("expected empty window past the end, got %+v err=%v", page, err)
	}
}

func TestGetLeaderboardExcludeInactive(t *testing.T) {
	repo := NewMemoryRepository()
	repo.PutUser(User{ID: "active", Role: RoleJobSeeker})
	repo.PutUser(User{ID: "idle", Role: RoleJobSeeker})
	repo.AddReflection(Reflection{UserID: "active", Status: scoring.StatusApproved, Points: points(50)})
	repo.AddReflection(Reflection{UserID: "idle", Status: scoring.StatusPending})

	svc := newTestService(t, repo, Options{IncludeInactive: false})
	page, err := svc.GetLeaderboard(context.Background(), LeaderboardQuery{})
	if err != nil {
		t.Fatalf("GetLeaderboard returned error: %v", err)
	}
	if page.TotalParticipants != 1 || page.Entries[0].UserID != "active" {
		t.Fatalf("unexpected entries: %+v", page.Entries)
	}
}

func TestGetBadgesJobSeeker(t *testing.T) {
	repo := NewMemoryRepository()
	repo.PutUser(User{ID: "js", Role: RoleJobSeeker})
	for _, w := range []string{"w1", "w2", "w3"} {
		repo.AddReflection(Reflection{UserID: "js", WorkshopID: w, Status: scoring.StatusApproved, Points: points(50)})
	}
	svc := newTestService(t, repo, DefaultOptions())

	view, err := svc.GetBadges(context.Background(), "js")
	if err != nil {
		t.Fatalf("GetBadges returned error: %v", err)
	}
	if len(view.Badges) != 3 || view.Badges[2].ID != "expert" {
		t.Fatalf("unexpected badges: %+v", view.Badges)
	}
	if view.Stats == nil || view.Stats.TotalPoints != 150 || view.Stats.DistinctCompletedWorkshops != 3 {
		t.Fatalf("unexpected stats: %+v", view.Stats)
	}
	if view.CreatedWorkshops != nil {
		t.Fatalf("job seekers have no created workshop count")
	}
}

func TestGetBadgesRecruiter(t *testing.T) {
	repo := NewMemoryRepository()
	repo.PutUser(User{ID: "rec", Role: RoleRecruiter})
	for _, id := range []string{"w1", "w2", "w3", "w4", "w5"} {
		repo.PutWorkshop(id, "Workshop "+id, "rec")
	}
	repo.PutWorkshop("w6", "Other", "someone-else")
	svc := newTestService(t, repo, DefaultOptions())

	view, err := svc.GetBadges(context.Background(), "rec")
	if err != nil {
		t.Fatalf("GetBadges returned error: %v", err)
	}
	if len(view.Badges) != 1 || view.Badges[0].ID != "recruiter_creator" {
		t.Fatalf("unexpected badges: %+v", view.Badges)
	}
	if view.CreatedWorkshops == nil || *view.CreatedWorkshops != 5 {
		t.Fatalf("unexpected created count: %v", view.CreatedWorkshops)
	}
}

func TestGetBadgesErrors(t *testing.T) {
	svc := newTestService(t, NewMemoryRepository(), DefaultOptions())

	if _, err := svc.GetBadges(context.Background(), " "); !errors.Is(err, ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got %v", err)
	}
	if _, err := svc.GetBadges(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetBadgesWithoutRole(t *testing.T) {
	repo := NewMemoryRepository()
	repo.PutUser(User{ID: "new"})
	svc := newTestService(t, repo, DefaultOptions())

	view, err := svc.GetBadges(context.Background(), "new")
	if err != nil {
		t.Fatalf("GetBadges returned error: %v", err)
	}
	if view.Badges == nil || len(view.Badges) != 0 {
		t.Fatalf("expected empty badge list, got %+v", view.Badges)
	}
}

func TestGetProgressJoinsTitlesAndSortsNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	repo.PutLesson("l1", "Intro to Go")
	repo.PutWorkshop("w1", "Backend Basics", "rec")
	repo.AddReflection(Reflection{ID: "old", UserID: "js", LessonID: "l1", WorkshopID: "w1", Status: scoring.StatusApproved, Points: points(50), SubmittedAt: base})
	repo.AddReflection(Reflection{ID: "new", UserID: "js", LessonID: "missing", WorkshopID: "gone", Status: scoring.StatusPending, SubmittedAt: base.Add(time.Hour)})
	repo.AddReflection(Reflection{ID: "mid", UserID: "js", LessonID: "l1", WorkshopID: "w1", Status: scoring.StatusRejected, Points: points(-30), SubmittedAt: base.Add(30 * time.Minute)})
	svc := newTestService(t, repo, DefaultOptions())

	view, err := svc.GetProgress(context.Background(), "js")
	if err != nil {
		t.Fatalf("GetProgress returned error: %v", err)
	}
	if view.TotalPoints != 20 {
		t.Fatalf("expected 20 total points, got %d", view.TotalPoints)
	}
	order := []string{view.Reflections[0].ID, view.Reflections[1].ID, view.Reflections[2].ID}
	if order[0] != "new" || order[1] != "mid" || order[2] != "old" {
		t.Fatalf("unexpected order: %v", order)
	}
	if view.Reflections[0].LessonTitle != "" || view.Reflections[0].WorkshopTitle != "" {
		t.Fatalf("missing joins must yield empty titles: %+v", view.Reflections[0])
	}
	if view.Reflections[2].LessonTitle != "Intro to Go" || view.Reflections[2].WorkshopTitle != "Backend Basics" {
		t.Fatalf("unexpected titles: %+v", view.Reflections[2])
	}
}

func TestGetProgressToleratesTitleLookupFailure(t *testing.T) {
	repo := &fakeRepo{
		listUserReflectionsFn: func(context.Context, string) ([]Reflection, error) {
			return []Reflection{{ID: "r1", LessonID: "l1", Status: scoring.StatusApproved, Points: points(50)}}, nil
		},
		lessonTitlesFn: func(context.Context, []string) (map[string]string, error) {
			return nil, errors.New("unavailable")
		},
	}
	svc := newTestService(t, repo, DefaultOptions())

	view, err := svc.GetProgress(context.Background(), "js")
	if err != nil {
		t.Fatalf("GetProgress returned error: %v", err)
	}
	if len(view.Reflections) != 1 || view.Reflections[0].LessonTitle != "" || view.TotalPoints != 50 {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestGetProgressReflectionFailure(t *testing.T) {
	repo := &fakeRepo{
		listUserReflectionsFn: func(context.Context, string) ([]Reflection, error) {
			return nil, errors.New("boom")
		},
	}
	svc := newTestService(t, repo, DefaultOptions())

	if _, err := svc.GetProgress(context.Background(), "js"); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestReflectionFromData(t *testing.T) {
	reviewed := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	r := reflectionFromData("r1", map[string]any{
		"userId":     "u1",
		"lessonId":   "l1",
		"workshopId": "w1",
		"status":     "approved",
		"points":     "fifty",
		"reviewedAt": reviewed,
	})
	if r.Points != nil {
		t.Fatalf("malformed points must be nil, got %v", *r.Points)
	}
	if r.Status != scoring.StatusApproved || r.ReviewedAt == nil || !r.ReviewedAt.Equal(reviewed) {
		t.Fatalf("unexpected reflection: %+v", r)
	}

	r = reflectionFromData("r2", map[string]any{"points": int64(-30)})
	if r.Points == nil || *r.Points != -30 || r.ReviewedAt != nil {
		t.Fatalf("unexpected reflection: %+v", r)
	}
}
