package workshop

import (
	"context"
	"time"
)

// Role values stored on user documents.
const (
	RoleJobSeeker = "jobSeeker"
	RoleRecruiter = "recruiter"
)

// Difficulty levels a workshop can declare.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// ValidDifficulties lists the allowed difficulty values.
var ValidDifficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// Reflection statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Points written by a review.
const (
	ApprovedPoints = 50
	RejectedPoints = -30
)

// RegistrationRegistered is the status of an active registration.
const RegistrationRegistered = "registered"

// Member is the caller as stored in the users collection.
type Member struct {
	UserID string
	Email  string
	Role   string
}

// Workshop is a recruiter-authored course.
type Workshop struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	Difficulty  string    `json:"difficulty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Lesson belongs to exactly one workshop.
type Lesson struct {
	ID         string    `json:"id"`
	WorkshopID string    `json:"workshop_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Registration links a learner to a workshop.
type Registration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	WorkshopID   string    `json:"workshop_id"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Reflection is a learner's written response to a lesson.
type Reflection struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	LessonID    string     `json:"lesson_id"`
	WorkshopID  string     `json:"workshop_id"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	Points      *int       `json:"points"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  string     `json:"reviewed_by,omitempty"`
}

// Review is the outcome written onto a pending reflection.
type Review struct {
	Status     string
	Points     int
	ReviewedBy string
	ReviewedAt time.Time
}

func (r Reflection) withReview(review Review) Reflection {
	points := review.Points
	reviewedAt := review.ReviewedAt
	r.Status = review.Status
	r.Points = &points
	r.ReviewedAt = &reviewedAt
	r.ReviewedBy = review.ReviewedBy
	return r
}

// Decision is a recruiter's verdict on a reflection.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Review converts the decision to the fields written on the reflection.
func (d Decision) Review(reviewer string, at time.Time) (Review, bool) {
	switch d {
	case DecisionApprove:
		return Review{Status: StatusApproved, Points: ApprovedPoints, ReviewedBy: reviewer, ReviewedAt: at}, true
	case DecisionReject:
		return Review{Status: StatusRejected, Points: RejectedPoints, ReviewedBy: reviewer, ReviewedAt: at}, true
	default:
		return Review{}, false
	}
}

// CreateWorkshopInput captures the data required to create a workshop.
type CreateWorkshopInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Skills      []string `json:"skills" validate:"required,min=1,max=20,dive,required,max=50"`
	Difficulty  string   `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
}

// AddLessonInput captures the data required to add a lesson.
type AddLessonInput struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required,max=20000"`
}

// SubmitReflectionInput captures a learner's reflection text.
type SubmitReflectionInput struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// WorkshopDetail is a workshop with its lessons and the caller's registration state.
type WorkshopDetail struct {
	Workshop
	Lessons           []Lesson `json:"lessons"`
	Registered        bool     `json:"registered"`
	RegistrationCount int      `json:"registration_count"`
}

// LessonDetail is a lesson with its workshop title and the caller's reflection, if any.
type LessonDetail struct {
	Lesson
	WorkshopTitle string      `json:"workshop_title"`
	Reflection    *Reflection `json:"reflection,omitempty"`
}

// PendingReflection is a reflection awaiting review, joined for display. Joins that cannot be
// resolved are left empty.
type PendingReflection struct {
	Reflection
	UserEmail     string `json:"user_email"`
	LessonTitle   string `json:"lesson_title"`
	WorkshopTitle string `json:"workshop_title"`
}

// Repository encapsulates persistence for workshops and everything hanging off them.
type Repository interface {
	GetMember(ctx context.Context, userID string) (Member, error)
	GetMembers(ctx context.Context, userIDs []string) (map[string]Member, error)

	CreateWorkshop(ctx context.Context, w Workshop) error
	GetWorkshop(ctx context.Context, id string) (Workshop, error)
	// ListWorkshops returns workshops newest first; createdBy filters when non-empty.
	ListWorkshops(ctx context.Context, createdBy string) ([]Workshop, error)

	CreateLesson(ctx context.Context, l Lesson) error
	GetLesson(ctx context.Context, id string) (Lesson, error)
	// ListLessons returns lessons oldest first.
	ListLessons(ctx context.Context, workshopID string) ([]Lesson, error)

	CreateRegistration(ctx context.Context, reg Registration) error
	GetRegistration(ctx context.Context, userID, workshopID string) (Registration, error)
	DeleteRegistration(ctx context.Context, userID, workshopID string) error
	CountRegistrations(ctx context.Context, workshopID string) (int, error)

	CreateReflection(ctx context.Context, r Reflection) error
	GetReflection(ctx context.Context, id string) (Reflection, error)
	FindReflection(ctx context.Context, userID, lessonID string) (Reflection, error)
	ListLessonReflections(ctx context.Context, lessonID string) ([]Reflection, error)
	// ListPendingReflections returns pending reflections oldest first.
	ListPendingReflections(ctx context.Context) ([]Reflection, error)
	// ApplyReview writes the review if the reflection is still pending, otherwise ErrAlreadyReviewed.
	ApplyReview(ctx context.Context, reflectionID string, review Review) (Reflection, error)
}

// Clock delivers the current time; extracted for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers for new documents.
type IDGenerator interface {
	NewID() string
}
