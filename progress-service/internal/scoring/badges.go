// Package scoring turns reflection histories into points, badges and leaderboard ranks.
//
// Everything here is pure: callers fetch records from the store, and the functions in this package
// recompute derived values on every call. Nothing is cached or persisted.
package scoring

// Badge thresholds.
const (
	StarterMinApproved         = 1
	AchieverMinPoints          = 100
	ExpertMinDistinctWorkshops = 3
	CreatorMinWorkshops        = 5
)

// BadgeKind is the closed set of badges a user can hold.
type BadgeKind int

const (
	BadgeStarter BadgeKind = iota
	BadgeAchiever
	BadgeExpert
	BadgeWorkshopCreator
)

// JobSeekerBadges lists the job seeker track in display order.
var JobSeekerBadges = []BadgeKind{BadgeStarter, BadgeAchiever, BadgeExpert}

// RecruiterBadges lists the recruiter track in display order.
var RecruiterBadges = []BadgeKind{BadgeWorkshopCreator}

// Badge is the display form of a BadgeKind.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Requirement string `json:"requirement"`
}

// Stats are the aggregate inputs of the job seeker track.
type Stats struct {
	TotalPoints                int `json:"total_points"`
	ApprovedReflections        int `json:"approved_reflections"`
	DistinctCompletedWorkshops int `json:"completed_workshops"`
}

// Badge returns the static text of the kind.
func (k BadgeKind) Badge() Badge {
	switch k {
	case BadgeStarter:
		return Badge{
			ID:          "starter",
			Name:        "Starter Class",
			Description: "Registered and completed the first reflection",
			Icon:        "🥉",
			Requirement: "1 completed reflection",
		}
	case BadgeAchiever:
		return Badge{
			ID:          "achiever",
			Name:        "Achiever Class",
			Description: "Accumulated 100+ points",
			Icon:        "🥈",
			Requirement: "100+ points",
		}
	case BadgeExpert:
		return Badge{
			ID:          "expert",
			Name:        "Expert Class",
			Description: "Completed 3+ workshop lessons",
			Icon:        "🥇",
			Requirement: "3+ completed lessons",
		}
	case BadgeWorkshopCreator:
		return Badge{
			ID:          "recruiter_creator",
			Name:        "Workshop Creator",
			Description: "Created 5 workshops",
			Icon:        "🏆",
			Requirement: "Created 5 workshops",
		}
	default:
		return Badge{}
	}
}

func (k BadgeKind) String() string {
	return k.Badge().ID
}

// earnedBy reports whether a job seeker with the given stats holds the badge.
func (k BadgeKind) earnedBy(s Stats) bool {
	switch k {
	case BadgeStarter:
		return s.ApprovedReflections >= StarterMinApproved
	case BadgeAchiever:
		return s.TotalPoints >= AchieverMinPoints
	case BadgeExpert:
		return s.DistinctCompletedWorkshops >= ExpertMinDistinctWorkshops
	default:
		return false
	}
}

// EvaluateBadges returns the job seeker badges earned for the stats, in track order.
// The result is never nil.
func EvaluateBadges(s Stats) []Badge {
	out := make([]Badge, 0, len(JobSeekerBadges))
	for _, kind := range JobSeekerBadges {
		if kind.earnedBy(s) {
			out = append(out, kind.Badge())
		}
	}
	return out
}

// EvaluateRecruiterBadges returns the recruiter badges earned for a count of created workshops.
// The result is never nil.
func EvaluateRecruiterBadges(createdWorkshops int) []Badge {
	out := make([]Badge, 0, len(RecruiterBadges))
	if createdWorkshops >= CreatorMinWorkshops {
		out = append(out, BadgeWorkshopCreator.Badge())
	}
	return out
}
