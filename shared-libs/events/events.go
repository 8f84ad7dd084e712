package events

import "time"

// Event types published on the domain topics.
const (
	TypeUserRoleSelected    = "user.role_selected"
	TypeWorkshopCreated     = "workshop.created"
	TypeLessonAdded         = "workshop.lesson_added"
	TypeRegistrationChanged = "workshop.registration_changed"
	TypeReflectionSubmitted = "reflection.submitted"
	TypeReflectionReviewed  = "reflection.reviewed"
)

// Envelope wraps every payload written to a topic.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// UserRoleSelected is emitted when a user picks job seeker or recruiter.
type UserRoleSelected struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// WorkshopCreated is emitted when a recruiter publishes a workshop.
type WorkshopCreated struct {
	WorkshopID string   `json:"workshopId"`
	CreatedBy  string   `json:"createdBy"`
	Title      string   `json:"title"`
	Difficulty string   `json:"difficulty"`
	Skills     []string `json:"skills"`
}

// LessonAdded is emitted when a lesson is appended to a workshop.
type LessonAdded struct {
	LessonID   string `json:"lessonId"`
	WorkshopID string `json:"workshopId"`
	Title      string `json:"title"`
}

// RegistrationChanged is emitted when a learner joins or leaves a workshop.
type RegistrationChanged struct {
	UserID     string `json:"userId"`
	WorkshopID string `json:"workshopId"`
	Registered bool   `json:"registered"`
}

// ReflectionSubmitted is emitted when a learner submits a lesson reflection.
type ReflectionSubmitted struct {
	ReflectionID string `json:"reflectionId"`
	UserID       string `json:"userId"`
	LessonID     string `json:"lessonId"`
	WorkshopID   string `json:"workshopId"`
}

// ReflectionReviewed is emitted when a recruiter approves or rejects a reflection.
type ReflectionReviewed struct {
	ReflectionID string    `json:"reflectionId"`
	UserID       string    `json:"userId"`
	WorkshopID   string    `json:"workshopId"`
	Status       string    `json:"status"`
	Points       int       `json:"points"`
	ReviewedBy   string    `json:"reviewedBy"`
	ReviewedAt   time.Time `json:"reviewedAt"`
}
