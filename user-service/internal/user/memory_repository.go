package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository for local development and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	metadata map[string]ProfileMetadata
	now      func() time.Time
}

// NewMemoryRepository constructs an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles: make(map[string]Profile),
		metadata: make(map[string]ProfileMetadata),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetMetadata fixes the counters reported for a user.
func (r *MemoryRepository) SetMetadata(userID string, m ProfileMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadata[userID] = m
}

func (r *MemoryRepository) GetProfile(_ context.Context, userID string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profileLocked(userID), nil
}

func (r *MemoryRepository) profileLocked(userID string) *Profile {
	p, ok := r.profiles[userID]
	if !ok {
		return defaultProfile(userID)
	}
	p.Skills = append([]string{}, p.Skills...)
	return &p
}

func (r *MemoryRepository) UpsertProfile(_ context.Context, userID string, updates ProfileUpdateInput) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.touchLocked(userID)
	if updates.DisplayName != nil {
		p.DisplayName = *updates.DisplayName
	}
	if updates.Bio != nil {
		p.Bio = *updates.Bio
	}
	if updates.Skills != nil {
		p.Skills = append([]string{}, (*updates.Skills)...)
	}
	if updates.Location != nil {
		p.Location = *updates.Location
	}
	if updates.LinkedIn != nil {
		p.LinkedIn = *updates.LinkedIn
	}
	r.profiles[userID] = p
	return r.profileLocked(userID), nil
}

func (r *MemoryRepository) SetRole(_ context.Context, userID string, selection RoleSelection) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.touchLocked(userID)
	p.Role = selection.Role
	if selection.Email != "" {
		p.Email = selection.Email
	}
	r.profiles[userID] = p
	return r.profileLocked(userID), nil
}

func (r *MemoryRepository) touchLocked(userID string) Profile {
	now := r.now()
	p, ok := r.profiles[userID]
	if !ok {
		p = Profile{UserID: userID, CreatedAt: now}
	}
	p.UpdatedAt = now
	return p
}

func (r *MemoryRepository) GetProfileMetadata(_ context.Context, userID string) (ProfileMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadata[userID], nil
}
