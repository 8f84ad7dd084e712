package user

import (
	"context"
	"time"
)

// Role values a user can select.
const (
	RoleJobSeeker = "jobSeeker"
	RoleRecruiter = "recruiter"
)

// Profile represents the users document stored in Firestore.
type Profile struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	Skills      []string  `json:"skills"`
	Location    string    `json:"location"`
	LinkedIn    string    `json:"linkedin"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// ProfileMetadata captures derived counters that accompany a profile response.
type ProfileMetadata struct {
	ReflectionsSubmitted int `json:"reflections_submitted"`
	WorkshopsRegistered  int `json:"workshops_registered"`
	WorkshopsCreated     int `json:"workshops_created"`
}

// ProfileResponse combines persisted profile fields with derived metadata.
type ProfileResponse struct {
	Profile
	ProfileMetadata
}

// ProfileUpdateInput describes the allowed fields during a PATCH request. Nil fields are left
// untouched.
type ProfileUpdateInput struct {
	DisplayName *string   `validate:"omitempty,max=100"`
	Bio         *string   `validate:"omitempty,max=2000"`
	Skills      *[]string `validate:"omitempty,max=30,dive,max=50"`
	Location    *string   `validate:"omitempty,max=100"`
	LinkedIn    *string   `validate:"omitempty,url,max=300"`
}

// Empty reports whether no field was supplied.
func (in ProfileUpdateInput) Empty() bool {
	return in.DisplayName == nil && in.Bio == nil && in.Skills == nil && in.Location == nil && in.LinkedIn == nil
}

// RoleSelection is the body of a role selection request.
type RoleSelection struct {
	Role  string `json:"role" validate:"required,oneof=jobSeeker recruiter"`
	Email string `json:"email" validate:"omitempty,email"`
}

// Repository defines the interface for user data access.
type Repository interface {
	// GetProfile returns an empty profile for users without a document.
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpsertProfile(ctx context.Context, userID string, updates ProfileUpdateInput) (*Profile, error)
	SetRole(ctx context.Context, userID string, selection RoleSelection) (*Profile, error)
	GetProfileMetadata(ctx context.Context, userID string) (ProfileMetadata, error)
}

// Service defines the user service interface.
type Service interface {
	GetProfile(ctx context.Context, userID string) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, updates ProfileUpdateInput) (*ProfileResponse, error)
	SelectRole(ctx context.Context, userID string, selection RoleSelection) (*ProfileResponse, error)
}
