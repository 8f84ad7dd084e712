package scoring

// ReflectionStatus is the review state of a reflection.
type ReflectionStatus string

const (
	StatusPending  ReflectionStatus = "pending"
	StatusApproved ReflectionStatus = "approved"
	StatusRejected ReflectionStatus = "rejected"
)

// Points awarded by a review.
const (
	ApprovedPoints = 50
	RejectedPoints = -30
)

// ReflectionRecord is the part of a stored reflection the scorer reads.
// Points is nil while pending or when the stored value is missing or malformed.
type ReflectionRecord struct {
	ID         string
	UserID     string
	LessonID   string
	WorkshopID string
	Status     ReflectionStatus
	Points     *int
}

// Participant is a user eligible for the leaderboard.
type Participant struct {
	UserID string
	Email  string
}

// Aggregate is the per-user rollup of a reflection history.
// ApprovedCount is always >= DistinctWorkshopCount.
type Aggregate struct {
	UserID                string `json:"user_id"`
	Email                 string `json:"email"`
	TotalPoints           int    `json:"total_points"`
	ApprovedCount         int    `json:"approved_count"`
	DistinctWorkshopCount int    `json:"completed_workshops"`
}

// Stats returns the badge inputs of the aggregate.
func (a Aggregate) Stats() Stats {
	return Stats{
		TotalPoints:                a.TotalPoints,
		ApprovedReflections:        a.ApprovedCount,
		DistinctCompletedWorkshops: a.DistinctWorkshopCount,
	}
}

// Active reports whether the participant has any scored or approved reflection.
func (a Aggregate) Active() bool {
	return a.TotalPoints != 0 || a.ApprovedCount > 0
}

// TotalPoints sums the points of the records. Nil points count as zero.
func TotalPoints(records []ReflectionRecord) int {
	total := 0
	for _, r := range records {
		if r.Points != nil {
			total += *r.Points
		}
	}
	return total
}

// AggregateReflections rolls up a participant's reflections. Only approved reflections with a
// non-empty workshop id count towards distinct workshops.
func AggregateReflections(p Participant, records []ReflectionRecord) Aggregate {
	agg := Aggregate{UserID: p.UserID, Email: p.Email}
	workshops := make(map[string]struct{})
	for _, r := range records {
		if r.Points != nil {
			agg.TotalPoints += *r.Points
		}
		if r.Status != StatusApproved {
			continue
		}
		agg.ApprovedCount++
		if r.WorkshopID != "" {
			workshops[r.WorkshopID] = struct{}{}
		}
	}
	agg.DistinctWorkshopCount = len(workshops)
	return agg
}

// IntPtr is a convenience for building records with points.
func IntPtr(v int) *int {
	return &v
}
