package workshop

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-process Repository for local development and tests.
type MemoryRepository struct {
	mu            sync.RWMutex
	members       map[string]Member
	workshops     map[string]Workshop
	lessons       map[string]Lesson
	registrations map[string]Registration
	reflections   map[string]Reflection
}

// NewMemoryRepository constructs an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		members:       make(map[string]Member),
		workshops:     make(map[string]Workshop),
		lessons:       make(map[string]Lesson),
		registrations: make(map[string]Registration),
		reflections:   make(map[string]Reflection),
	}
}

// PutMember stores or replaces a user document.
func (r *MemoryRepository) PutMember(m Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[m.UserID] = m
}

func (r *MemoryRepository) GetMember(_ context.Context, userID string) (Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[userID]
	if !ok {
		return Member{}, ErrNotFound
	}
	return m, nil
}

func (r *MemoryRepository) GetMembers(_ context.Context, userIDs []string) (map[string]Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Member, len(userIDs))
	for _, id := range userIDs {
		if m, ok := r.members[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (r *MemoryRepository) CreateWorkshop(_ context.Context, w Workshop) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.workshops[w.ID]; exists {
		return ErrConflict
	}
	w.Skills = append([]string(nil), w.Skills...)
	r.workshops[w.ID] = w
	return nil
}

func (r *MemoryRepository) GetWorkshop(_ context.Context, id string) (Workshop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workshops[id]
	if !ok {
		return Workshop{}, ErrNotFound
	}
	return w, nil
}

func (r *MemoryRepository) ListWorkshops(_ context.Context, createdBy string) ([]Workshop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Workshop{}
	for _, w := range r.workshops {
		if createdBy != "" && w.CreatedBy != createdBy {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) CreateLesson(_ context.Context, l Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.lessons[l.ID]; exists {
		return ErrConflict
	}
	r.lessons[l.ID] = l
	return nil
}

func (r *MemoryRepository) GetLesson(_ context.Context, id string) (Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lessons[id]
	if !ok {
		return Lesson{}, ErrNotFound
	}
	return l, nil
}

func (r *MemoryRepository) ListLessons(_ context.Context, workshopID string) ([]Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Lesson{}
	for _, l := range r.lessons {
		if l.WorkshopID == workshopID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) CreateRegistration(_ context.Context, reg Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.registrations[reg.ID]; exists {
		return ErrConflict
	}
	r.registrations[reg.ID] = reg
	return nil
}

func (r *MemoryRepository) GetRegistration(_ context.Context, userID, workshopID string) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.registrations[RegistrationID(userID, workshopID)]
	if !ok {
		return Registration{}, ErrNotFound
	}
	return reg, nil
}

func (r *MemoryRepository) DeleteRegistration(_ context.Context, userID, workshopID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := RegistrationID(userID, workshopID)
	if _, ok := r.registrations[id]; !ok {
		return ErrNotFound
	}
	delete(r.registrations, id)
	return nil
}

func (r *MemoryRepository) CountRegistrations(_ context.Context, workshopID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, reg := range r.registrations {
		if reg.WorkshopID == workshopID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) CreateReflection(_ context.Context, reflection Reflection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reflections[reflection.ID]; exists {
		return ErrConflict
	}
	r.reflections[reflection.ID] = reflection
	return nil
}

func (r *MemoryRepository) GetReflection(_ context.Context, id string) (Reflection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reflection, ok := r.reflections[id]
	if !ok {
		return Reflection{}, ErrNotFound
	}
	return reflection, nil
}

func (r *MemoryRepository) FindReflection(_ context.Context, userID, lessonID string) (Reflection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, reflection := range r.reflections {
		if reflection.UserID == userID && reflection.LessonID == lessonID {
			return reflection, nil
		}
	}
	return Reflection{}, ErrNotFound
}

func (r *MemoryRepository) ListLessonReflections(_ context.Context, lessonID string) ([]Reflection, error) {
	return r.filterReflections(func(reflection Reflection) bool { return reflection.LessonID == lessonID }), nil
}

func (r *MemoryRepository) ListPendingReflections(_ context.Context) ([]Reflection, error) {
	return r.filterReflections(func(reflection Reflection) bool { return reflection.Status == StatusPending }), nil
}

func (r *MemoryRepository) filterReflections(keep func(Reflection) bool) []Reflection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Reflection{}
	for _, reflection := range r.reflections {
		if keep(reflection) {
			out = append(out, reflection)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *MemoryRepository) ApplyReview(_ context.Context, reflectionID string, review Review) (Reflection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.reflections[reflectionID]
	if !ok {
		return Reflection{}, ErrNotFound
	}
	if current.Status != StatusPending {
		return Reflection{}, ErrAlreadyReviewed
	}
	reviewed := current.withReview(review)
	r.reflections[reflectionID] = reviewed
	return reviewed, nil
}
