package workshop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/events"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/pubsub"
)

const joinConcurrency = 8

// Service orchestrates the domain operations for workshops, lessons and reflections.
type Service struct {
	repo      Repository
	publisher pubsub.Publisher
	clock     Clock
	ids       IDGenerator
	logger    *slog.Logger
}

// NewService constructs a Service instance with the provided collaborators.
func NewService(repo Repository, publisher pubsub.Publisher, clock Clock, ids IDGenerator, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if ids == nil {
		return nil, errors.New("id generator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = pubsub.NewLogPublisher(logger)
	}
	return &Service{repo: repo, publisher: publisher, clock: clock, ids: ids, logger: logger}, nil
}

// ListWorkshops returns all workshops, or only those created by createdBy when set.
func (s *Service) ListWorkshops(ctx context.Context, createdBy string) ([]Workshop, error) {
	return s.repo.ListWorkshops(ctx, strings.TrimSpace(createdBy))
}

// CreateWorkshop publishes a new workshop authored by a recruiter.
func (s *Service) CreateWorkshop(ctx context.Context, userID string, input CreateWorkshopInput) (Workshop, error) {
	if _, err := s.requireRole(ctx, userID, RoleRecruiter); err != nil {
		return Workshop{}, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Difficulty = strings.ToLower(strings.TrimSpace(input.Difficulty))
	input.Skills = normalizeSkills(input.Skills)
	if err := validateInput(input); err != nil {
		return Workshop{}, err
	}

	w := Workshop{
		ID:          s.ids.NewID(),
		Title:       input.Title,
		Description: input.Description,
		Skills:      input.Skills,
		Difficulty:  input.Difficulty,
		CreatedBy:   userID,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.repo.CreateWorkshop(ctx, w); err != nil {
		return Workshop{}, err
	}

	workshopsCreated.Inc()
	s.publish(ctx, pubsub.TopicWorkshopEvents, w.ID, events.TypeWorkshopCreated, events.WorkshopCreated{
		WorkshopID: w.ID,
		CreatedBy:  userID,
		Title:      w.Title,
		Difficulty: w.Difficulty,
		Skills:     w.Skills,
	})
	return w, nil
}

// GetWorkshop returns the workshop with its lessons and the caller's registration state.
func (s *Service) GetWorkshop(ctx context.Context, userID, workshopID string) (WorkshopDetail, error) {
	w, err := s.repo.GetWorkshop(ctx, workshopID)
	if err != nil {
		return WorkshopDetail{}, err
	}

	detail := WorkshopDetail{Workshop: w}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lessons, err := s.repo.ListLessons(gctx, workshopID)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		detail.Lessons = lessons
		return nil
	})
	g.Go(func() error {
		count, err := s.repo.CountRegistrations(gctx, workshopID)
		if err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		detail.RegistrationCount = count
		return nil
	})
	g.Go(func() error {
		_, err := s.repo.GetRegistration(gctx, userID, workshopID)
		switch {
		case err == nil:
			detail.Registered = true
		case errors.Is(err, ErrNotFound):
		default:
			return fmt.Errorf("get registration: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return WorkshopDetail{}, err
	}
	if detail.Lessons == nil {
		detail.Lessons = []Lesson{}
	}
	return detail, nil
}

// AddLesson appends a lesson to a workshop owned by the caller.
func (s *Service) AddLesson(ctx context.Context, userID, workshopID string, input AddLessonInput) (Lesson, error) {
	if _, err := s.requireRole(ctx, userID, RoleRecruiter); err != nil {
		return Lesson{}, err
	}
	w, err := s.repo.GetWorkshop(ctx, workshopID)
	if err != nil {
		return Lesson{}, err
	}
	if w.CreatedBy != userID {
		return Lesson{}, fmt.Errorf("%w: only the workshop creator can add lessons", ErrForbidden)
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	if err := validateInput(input); err != nil {
		return Lesson{}, err
	}

	lesson := Lesson{
		ID:         s.ids.NewID(),
		WorkshopID: workshopID,
		Title:      input.Title,
		Content:    input.Content,
		CreatedAt:  s.clock.Now().UTC(),
	}
	if err := s.repo.CreateLesson(ctx, lesson); err != nil {
		return Lesson{}, err
	}

	s.publish(ctx, pubsub.TopicWorkshopEvents, workshopID, events.TypeLessonAdded, events.LessonAdded{
		LessonID:   lesson.ID,
		WorkshopID: workshopID,
		Title:      lesson.Title,
	})
	return lesson, nil
}

// GetLesson returns the lesson, its workshop title and the caller's reflection if one exists.
func (s *Service) GetLesson(ctx context.Context, userID, lessonID string) (LessonDetail, error) {
	lesson, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return LessonDetail{}, err
	}

	detail := LessonDetail{Lesson: lesson}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := s.repo.GetWorkshop(gctx, lesson.WorkshopID)
		switch {
		case err == nil:
			detail.WorkshopTitle = w.Title
		case errors.Is(err, ErrNotFound):
		default:
			return fmt.Errorf("get workshop: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		reflection, err := s.repo.FindReflection(gctx, userID, lessonID)
		switch {
		case err == nil:
			detail.Reflection = &reflection
		case errors.Is(err, ErrNotFound):
		default:
			return fmt.Errorf("find reflection: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return LessonDetail{}, err
	}
	return detail, nil
}

// Register enrolls a job seeker in a workshop.
func (s *Service) Register(ctx context.Context, userID, workshopID string) (Registration, error) {
	if _, err := s.requireRole(ctx, userID, RoleJobSeeker); err != nil {
		return Registration{}, err
	}
	if _, err := s.repo.GetWorkshop(ctx, workshopID); err != nil {
		return Registration{}, err
	}

	reg := Registration{
		ID:           RegistrationID(userID, workshopID),
		UserID:       userID,
		WorkshopID:   workshopID,
		Status:       RegistrationRegistered,
		RegisteredAt: s.clock.Now().UTC(),
	}
	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		if errors.Is(err, ErrConflict) {
			return Registration{}, ErrAlreadyRegistered
		}
		return Registration{}, err
	}

	registrationChanges.WithLabelValues("registered").Inc()
	s.publish(ctx, pubsub.TopicWorkshopEvents, workshopID, events.TypeRegistrationChanged, events.RegistrationChanged{
		UserID:     userID,
		WorkshopID: workshopID,
		Registered: true,
	})
	return reg, nil
}

// Unregister removes the caller's registration for a workshop.
func (s *Service) Unregister(ctx context.Context, userID, workshopID string) error {
	if err := s.repo.DeleteRegistration(ctx, userID, workshopID); err != nil {
		return err
	}

	registrationChanges.WithLabelValues("unregistered").Inc()
	s.publish(ctx, pubsub.TopicWorkshopEvents, workshopID, events.TypeRegistrationChanged, events.RegistrationChanged{
		UserID:     userID,
		WorkshopID: workshopID,
		Registered: false,
	})
	return nil
}

// SubmitReflection records a pending reflection for a lesson of a workshop the learner is
// registered for. The lesson's workshop id is copied onto the reflection.
func (s *Service) SubmitReflection(ctx context.Context, userID, lessonID string, input SubmitReflectionInput) (Reflection, error) {
	if _, err := s.requireRole(ctx, userID, RoleJobSeeker); err != nil {
		return Reflection{}, err
	}

	input.Content = strings.TrimSpace(input.Content)
	if err := validateInput(input); err != nil {
		return Reflection{}, err
	}

	lesson, err := s.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return Reflection{}, err
	}
	if _, err := s.repo.GetRegistration(ctx, userID, lesson.WorkshopID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Reflection{}, ErrNotRegistered
		}
		return Reflection{}, err
	}
	if _, err := s.repo.FindReflection(ctx, userID, lessonID); err == nil {
		return Reflection{}, ErrAlreadySubmitted
	} else if !errors.Is(err, ErrNotFound) {
		return Reflection{}, err
	}

	reflection := Reflection{
		ID:          ReflectionID(userID, lessonID),
		UserID:      userID,
		LessonID:    lessonID,
		WorkshopID:  lesson.WorkshopID,
		Content:     input.Content,
		Status:      StatusPending,
		SubmittedAt: s.clock.Now().UTC(),
	}
	if err := s.repo.CreateReflection(ctx, reflection); err != nil {
		if errors.Is(err, ErrConflict) {
			return Reflection{}, ErrAlreadySubmitted
		}
		return Reflection{}, err
	}

	reflectionsSubmitted.Inc()
	s.publish(ctx, pubsub.TopicReflectionEvents, reflection.ID, events.TypeReflectionSubmitted, events.ReflectionSubmitted{
		ReflectionID: reflection.ID,
		UserID:       userID,
		LessonID:     lessonID,
		WorkshopID:   lesson.WorkshopID,
	})
	return reflection, nil
}

// ListPendingReflections returns reflections awaiting review joined with the learner's email and
// the lesson and workshop titles.
func (s *Service) ListPendingReflections(ctx context.Context, userID string) ([]PendingReflection, error) {
	if _, err := s.requireRole(ctx, userID, RoleRecruiter); err != nil {
		return nil, err
	}

	pending, err := s.repo.ListPendingReflections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending reflections: %w", err)
	}

	var userIDs, lessonIDs []string
	for _, r := range pending {
		userIDs = appendUnique(userIDs, r.UserID)
		lessonIDs = appendUnique(lessonIDs, r.LessonID)
	}

	var members map[string]Member
	lessons := make(map[string]Lesson, len(lessonIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		found, err := s.repo.GetMembers(gctx, userIDs)
		if err != nil {
			s.logger.WarnContext(ctx, "learner lookup failed", "error", err)
			return nil
		}
		members = found
		return nil
	})
	g.Go(func() error {
		lessons = s.lookupLessons(gctx, lessonIDs)
		return nil
	})
	_ = g.Wait()

	var workshopIDs []string
	for _, r := range pending {
		workshopIDs = appendUnique(workshopIDs, workshopOf(r, lessons))
	}
	workshops := s.lookupWorkshops(ctx, workshopIDs)

	out := make([]PendingReflection, 0, len(pending))
	for _, r := range pending {
		item := PendingReflection{Reflection: r}
		item.UserEmail = members[r.UserID].Email
		item.LessonTitle = lessons[r.LessonID].Title
		if item.WorkshopID = workshopOf(r, lessons); item.WorkshopID != "" {
			item.WorkshopTitle = workshops[item.WorkshopID].Title
		}
		out = append(out, item)
	}
	return out, nil
}

// workshopOf prefers the denormalized workshop id and falls back to the lesson's.
func workshopOf(r Reflection, lessons map[string]Lesson) string {
	if r.WorkshopID != "" {
		return r.WorkshopID
	}
	return lessons[r.LessonID].WorkshopID
}

func (s *Service) lookupLessons(ctx context.Context, ids []string) map[string]Lesson {
	found := make(map[string]Lesson, len(ids))
	results := make([]*Lesson, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(joinConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			lesson, err := s.repo.GetLesson(gctx, id)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					s.logger.WarnContext(ctx, "lesson lookup failed", "lessonId", id, "error", err)
				}
				return nil
			}
			results[i] = &lesson
			return nil
		})
	}
	_ = g.Wait()
	for _, l := range results {
		if l != nil {
			found[l.ID] = *l
		}
	}
	return found
}

func (s *Service) lookupWorkshops(ctx context.Context, ids []string) map[string]Workshop {
	found := make(map[string]Workshop, len(ids))
	results := make([]*Workshop, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(joinConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			w, err := s.repo.GetWorkshop(gctx, id)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					s.logger.WarnContext(ctx, "workshop lookup failed", "workshopId", id, "error", err)
				}
				return nil
			}
			results[i] = &w
			return nil
		})
	}
	_ = g.Wait()
	for _, w := range results {
		if w != nil {
			found[w.ID] = *w
		}
	}
	return found
}

// ReviewReflection approves (+50) or rejects (-30) a pending reflection.
func (s *Service) ReviewReflection(ctx context.Context, userID, reflectionID string, decision Decision) (Reflection, error) {
	if _, err := s.requireRole(ctx, userID, RoleRecruiter); err != nil {
		return Reflection{}, err
	}
	review, ok := decision.Review(userID, s.clock.Now().UTC())
	if !ok {
		return Reflection{}, fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, decision)
	}

	reflection, err := s.repo.ApplyReview(ctx, reflectionID, review)
	if err != nil {
		return Reflection{}, err
	}

	reviewsApplied.WithLabelValues(review.Status).Inc()
	s.logger.InfoContext(ctx, "reflection reviewed",
		"reflectionId", reflectionID,
		"learnerId", reflection.UserID,
		"status", review.Status,
		"reviewedBy", userID,
	)
	s.publish(ctx, pubsub.TopicReflectionEvents, reflection.ID, events.TypeReflectionReviewed, events.ReflectionReviewed{
		ReflectionID: reflection.ID,
		UserID:       reflection.UserID,
		WorkshopID:   reflection.WorkshopID,
		Status:       review.Status,
		Points:       review.Points,
		ReviewedBy:   userID,
		ReviewedAt:   review.ReviewedAt,
	})
	return reflection, nil
}

// WorkshopStatistics summarizes registrations and reflection outcomes for a workshop owned by the
// caller.
func (s *Service) WorkshopStatistics(ctx context.Context, userID, workshopID string) (Statistics, error) {
	if _, err := s.requireRole(ctx, userID, RoleRecruiter); err != nil {
		return Statistics{}, err
	}
	w, err := s.repo.GetWorkshop(ctx, workshopID)
	if err != nil {
		return Statistics{}, err
	}
	if w.CreatedBy != userID {
		return Statistics{}, fmt.Errorf("%w: only the workshop creator can view statistics", ErrForbidden)
	}

	var (
		registrations int
		lessons       []Lesson
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.repo.CountRegistrations(gctx, workshopID)
		if err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}
		registrations = count
		return nil
	})
	g.Go(func() error {
		list, err := s.repo.ListLessons(gctx, workshopID)
		if err != nil {
			return fmt.Errorf("list lessons: %w", err)
		}
		lessons = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return Statistics{}, err
	}

	reflections := make([][]Reflection, len(lessons))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(joinConcurrency)
	for i, lesson := range lessons {
		g.Go(func() error {
			list, err := s.repo.ListLessonReflections(gctx, lesson.ID)
			if err != nil {
				return fmt.Errorf("reflections for lesson %s: %w", lesson.ID, err)
			}
			reflections[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Statistics{}, err
	}

	return computeStatistics(workshopID, registrations, lessons, reflections), nil
}

func (s *Service) requireRole(ctx context.Context, userID, role string) (Member, error) {
	if strings.TrimSpace(userID) == "" {
		return Member{}, fmt.Errorf("%w: missing user", ErrForbidden)
	}
	m, err := s.repo.GetMember(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Member{}, fmt.Errorf("%w: role not selected", ErrForbidden)
	}
	if err != nil {
		return Member{}, fmt.Errorf("get member: %w", err)
	}
	if m.Role != role {
		return Member{}, fmt.Errorf("%w: requires %s role", ErrForbidden, role)
	}
	return m, nil
}

func (s *Service) publish(ctx context.Context, topic, key, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, topic, key, eventType, payload); err != nil {
		eventPublishFailures.WithLabelValues(topic).Inc()
		s.logger.WarnContext(ctx, "event publish failed", "topic", topic, "type", eventType, "error", err)
	}
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
