package progress

import (
	"context"
	"sort"
	"sync"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/scoring"
)

// MemoryRepository is an in-process Repository for local development and tests. Participants are
// returned ordered by user id, matching Firestore's default document order.
type MemoryRepository struct {
	mu          sync.RWMutex
	users       map[string]User
	reflections map[string][]Reflection
	lessons     map[string]string
	workshops   map[string]memoryWorkshop
}

type memoryWorkshop struct {
	title     string
	createdBy string
}

// NewMemoryRepository constructs an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:       make(map[string]User),
		reflections: make(map[string][]Reflection),
		lessons:     make(map[string]string),
		workshops:   make(map[string]memoryWorkshop),
	}
}

// PutUser stores or replaces a user.
func (r *MemoryRepository) PutUser(u User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

// AddReflection appends a reflection to its owner's history.
func (r *MemoryRepository) AddReflection(reflection Reflection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reflections[reflection.UserID] = append(r.reflections[reflection.UserID], reflection)
}

// PutLesson stores a lesson title.
func (r *MemoryRepository) PutLesson(id, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lessons[id] = title
}

// PutWorkshop stores a workshop title and creator.
func (r *MemoryRepository) PutWorkshop(id, title, createdBy string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workshops[id] = memoryWorkshop{title: title, createdBy: createdBy}
}

func (r *MemoryRepository) ListParticipants(ctx context.Context) ([]scoring.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var participants []scoring.Participant
	for _, u := range r.users {
		if u.Role == RoleJobSeeker {
			participants = append(participants, scoring.Participant{UserID: u.ID, Email: u.Email})
		}
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i].UserID < participants[j].UserID })
	return participants, nil
}

func (r *MemoryRepository) ListUserReflections(ctx context.Context, userID string) ([]Reflection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Reflection(nil), r.reflections[userID]...), nil
}

func (r *MemoryRepository) GetUser(ctx context.Context, userID string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepository) CountWorkshopsCreatedBy(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, w := range r.workshops {
		if w.createdBy == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) LessonTitles(ctx context.Context, ids []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	titles := make(map[string]string, len(ids))
	for _, id := range ids {
		if title, ok := r.lessons[id]; ok {
			titles[id] = title
		}
	}
	return titles, nil
}

func (r *MemoryRepository) WorkshopTitles(ctx context.Context, ids []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	titles := make(map[string]string, len(ids))
	for _, id := range ids {
		if w, ok := r.workshops[id]; ok {
			titles[id] = w.title
		}
	}
	return titles, nil
}
