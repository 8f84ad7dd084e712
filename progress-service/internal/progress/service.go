package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/scoring"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/dto"
)

// Options tune leaderboard construction.
type Options struct {
	// FetchConcurrency bounds concurrent reflection-history reads.
	FetchConcurrency int
	IncludeInactive  bool
	DefaultLimit     int
	MaxLimit         int
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		FetchConcurrency: 16,
		IncludeInactive:  true,
		DefaultLimit:     50,
		MaxLimit:         200,
	}
}

// Service builds leaderboard, badge and progress views from the store.
type Service struct {
	repo   Repository
	opts   Options
	logger *slog.Logger
}

// NewService constructs a Service instance with the provided collaborators.
func NewService(repo Repository, opts Options, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	defaults := DefaultOptions()
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = defaults.FetchConcurrency
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = defaults.DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = defaults.MaxLimit
	}
	if opts.DefaultLimit > opts.MaxLimit {
		opts.DefaultLimit = opts.MaxLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, opts: opts, logger: logger}, nil
}

// GetLeaderboard ranks every participant and returns the requested window. The viewer summary is
// computed over the full board. If any source read fails no entries are returned.
func (s *Service) GetLeaderboard(ctx context.Context, q LeaderboardQuery) (LeaderboardPage, error) {
	start := time.Now()
	board, err := s.buildLeaderboard(ctx, q.ViewerID)
	if err != nil {
		leaderboardBuilds.WithLabelValues("error").Inc()
		return LeaderboardPage{}, err
	}
	leaderboardBuilds.WithLabelValues("ok").Inc()
	leaderboardBuildSeconds.Observe(time.Since(start).Seconds())
	leaderboardParticipants.Set(float64(len(board.Entries)))

	limit := q.Limit
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	total := len(board.Entries)
	lo := min(offset, total)
	hi := min(lo+limit, total)

	s.logger.DebugContext(ctx, "leaderboard built", "participants", total, "viewer_ranked", board.Viewer != nil)

	return LeaderboardPage{
		Entries:           board.Entries[lo:hi],
		TotalParticipants: total,
		Viewer:            board.Viewer,
		Page:              dto.PageInfo{Limit: limit, Offset: offset, Total: total},
	}, nil
}

func (s *Service) buildLeaderboard(ctx context.Context, viewerID string) (scoring.Leaderboard, error) {
	participants, err := s.repo.ListParticipants(ctx)
	if err != nil {
		return scoring.Leaderboard{}, fmt.Errorf("%w: list participants: %w", ErrSourceUnavailable, err)
	}

	histories := make([][]scoring.ReflectionRecord, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.FetchConcurrency)
	for i, p := range participants {
		g.Go(func() error {
			reflections, err := s.repo.ListUserReflections(gctx, p.UserID)
			if err != nil {
				return fmt.Errorf("reflections for %s: %w", p.UserID, err)
			}
			records := make([]scoring.ReflectionRecord, 0, len(reflections))
			for _, r := range reflections {
				records = append(records, r.Record())
			}
			histories[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return scoring.Leaderboard{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	byUser := make(map[string][]scoring.ReflectionRecord, len(participants))
	for i, p := range participants {
		byUser[p.UserID] = histories[i]
	}

	policy := scoring.IncludeInactive
	if !s.opts.IncludeInactive {
		policy = scoring.ExcludeInactive
	}
	return scoring.Build(participants, byUser, viewerID, policy), nil
}

// GetBadges evaluates the badge track matching the user's role.
func (s *Service) GetBadges(ctx context.Context, userID string) (BadgesView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return BadgesView{}, ErrMissingUserID
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return BadgesView{}, err
	}

	switch user.Role {
	case RoleRecruiter:
		created, err := s.repo.CountWorkshopsCreatedBy(ctx, userID)
		if err != nil {
			return BadgesView{}, fmt.Errorf("count workshops: %w", err)
		}
		return BadgesView{
			Role:             user.Role,
			Badges:           scoring.EvaluateRecruiterBadges(created),
			CreatedWorkshops: &created,
		}, nil
	case RoleJobSeeker:
		reflections, err := s.repo.ListUserReflections(ctx, userID)
		if err != nil {
			return BadgesView{}, fmt.Errorf("list reflections: %w", err)
		}
		records := make([]scoring.ReflectionRecord, 0, len(reflections))
		for _, r := range reflections {
			records = append(records, r.Record())
		}
		stats := scoring.AggregateReflections(scoring.Participant{UserID: userID, Email: user.Email}, records).Stats()
		return BadgesView{
			Role:   user.Role,
			Badges: scoring.EvaluateBadges(stats),
			Stats:  &stats,
		}, nil
	default:
		// No role selected yet.
		return BadgesView{Role: user.Role, Badges: []scoring.Badge{}}, nil
	}
}

// GetProgress lists the user's reflections newest first with lesson and workshop titles. Titles
// that cannot be resolved are left empty.
func (s *Service) GetProgress(ctx context.Context, userID string) (ProgressView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ProgressView{}, ErrMissingUserID
	}

	reflections, err := s.repo.ListUserReflections(ctx, userID)
	if err != nil {
		return ProgressView{}, fmt.Errorf("%w: list reflections: %w", ErrSourceUnavailable, err)
	}

	lessonIDs := make([]string, 0, len(reflections))
	workshopIDs := make([]string, 0, len(reflections))
	records := make([]scoring.ReflectionRecord, 0, len(reflections))
	for _, r := range reflections {
		lessonIDs = appendUnique(lessonIDs, r.LessonID)
		workshopIDs = appendUnique(workshopIDs, r.WorkshopID)
		records = append(records, r.Record())
	}

	var lessonTitles, workshopTitles map[string]string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		titles, err := s.repo.LessonTitles(gctx, lessonIDs)
		if err != nil {
			s.logger.WarnContext(ctx, "lesson titles unavailable", "userId", userID, "error", err)
			return nil
		}
		lessonTitles = titles
		return nil
	})
	g.Go(func() error {
		titles, err := s.repo.WorkshopTitles(gctx, workshopIDs)
		if err != nil {
			s.logger.WarnContext(ctx, "workshop titles unavailable", "userId", userID, "error", err)
			return nil
		}
		workshopTitles = titles
		return nil
	})
	_ = g.Wait()

	items := make([]ProgressItem, 0, len(reflections))
	for _, r := range reflections {
		items = append(items, ProgressItem{
			ID:            r.ID,
			LessonID:      r.LessonID,
			LessonTitle:   lessonTitles[r.LessonID],
			WorkshopID:    r.WorkshopID,
			WorkshopTitle: workshopTitles[r.WorkshopID],
			Content:       r.Content,
			Status:        string(r.Status),
			Points:        r.Points,
			SubmittedAt:   r.SubmittedAt,
			ReviewedAt:    r.ReviewedAt,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SubmittedAt.After(items[j].SubmittedAt)
	})

	return ProgressView{TotalPoints: scoring.TotalPoints(records), Reflections: items}, nil
}

func appendUnique(ids []string, id string) []string {
	if id == "" {
		return ids
	}
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
