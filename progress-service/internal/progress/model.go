package progress

import (
	"context"
	"time"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/scoring"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/dto"
)

// Role values stored on user documents.
const (
	RoleJobSeeker = "jobSeeker"
	RoleRecruiter = "recruiter"
)

// User is the subset of a user document this service reads.
type User struct {
	ID    string
	Email string
	Role  string
}

// Reflection is a stored reflection as read by this service.
type Reflection struct {
	ID          string
	UserID      string
	LessonID    string
	WorkshopID  string
	Content     string
	Status      scoring.ReflectionStatus
	Points      *int
	SubmittedAt time.Time
	ReviewedAt  *time.Time
}

// Record converts the reflection to the scorer's input.
func (r Reflection) Record() scoring.ReflectionRecord {
	return scoring.ReflectionRecord{
		ID:         r.ID,
		UserID:     r.UserID,
		LessonID:   r.LessonID,
		WorkshopID: r.WorkshopID,
		Status:     r.Status,
		Points:     r.Points,
	}
}

// Repository reads the documents the leaderboard and progress views are built from.
type Repository interface {
	// ListParticipants returns job seekers in store order.
	ListParticipants(ctx context.Context) ([]scoring.Participant, error)
	ListUserReflections(ctx context.Context, userID string) ([]Reflection, error)
	GetUser(ctx context.Context, userID string) (User, error)
	CountWorkshopsCreatedBy(ctx context.Context, userID string) (int, error)
	// LessonTitles and WorkshopTitles omit ids that do not resolve.
	LessonTitles(ctx context.Context, ids []string) (map[string]string, error)
	WorkshopTitles(ctx context.Context, ids []string) (map[string]string, error)
}

// LeaderboardQuery selects a page of the board for a viewer.
type LeaderboardQuery struct {
	ViewerID string
	Limit    int
	Offset   int
}

// LeaderboardPage is a window of the ranked board.
type LeaderboardPage struct {
	Entries           []scoring.Entry        `json:"entries"`
	TotalParticipants int                    `json:"total_participants"`
	Viewer            *scoring.ViewerSummary `json:"viewer,omitempty"`
	Page              dto.PageInfo           `json:"page"`
}

// BadgesView is the caller's earned badges with the numbers behind them.
type BadgesView struct {
	Role             string          `json:"role"`
	Badges           []scoring.Badge `json:"badges"`
	Stats            *scoring.Stats  `json:"stats,omitempty"`
	CreatedWorkshops *int            `json:"created_workshops,omitempty"`
}

// ProgressItem is one reflection joined with its lesson and workshop titles.
type ProgressItem struct {
	ID            string     `json:"id"`
	LessonID      string     `json:"lesson_id"`
	LessonTitle   string     `json:"lesson_title"`
	WorkshopID    string     `json:"workshop_id"`
	WorkshopTitle string     `json:"workshop_title"`
	Content       string     `json:"content"`
	Status        string     `json:"status"`
	Points        *int       `json:"points"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
}

// ProgressView is the caller's reflection history.
type ProgressView struct {
	TotalPoints int            `json:"total_points"`
	Reflections []ProgressItem `json:"reflections"`
}
