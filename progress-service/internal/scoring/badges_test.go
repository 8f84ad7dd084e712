package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func badgeIDs(badges []Badge) []string {
	ids := make([]string, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestEvaluateBadgesThresholdGrid(t *testing.T) {
	for _, points := range []int{-60, 0, 99, 100, 250} {
		for _, approved := range []int{0, 1, 2, 5} {
			for _, workshops := range []int{0, 1, 2, 3, 4} {
				if workshops > approved {
					continue
				}
				stats := Stats{TotalPoints: points, ApprovedReflections: approved, DistinctCompletedWorkshops: workshops}
				ids := badgeIDs(EvaluateBadges(stats))

				require.Equal(t, approved >= 1, contains(ids, "starter"), "%+v", stats)
				require.Equal(t, points >= 100, contains(ids, "achiever"), "%+v", stats)
				require.Equal(t, workshops >= 3, contains(ids, "expert"), "%+v", stats)
				require.LessOrEqual(t, len(ids), 3)
			}
		}
	}
}

func TestEvaluateBadgesOrderAndText(t *testing.T) {
	badges := EvaluateBadges(Stats{TotalPoints: 150, ApprovedReflections: 3, DistinctCompletedWorkshops: 3})

	require.Equal(t, []string{"starter", "achiever", "expert"}, badgeIDs(badges))
	require.Equal(t, Badge{
		ID:          "starter",
		Name:        "Starter Class",
		Description: "Registered and completed the first reflection",
		Icon:        "🥉",
		Requirement: "1 completed reflection",
	}, badges[0])
	require.Equal(t, "🥈", badges[1].Icon)
	require.Equal(t, "3+ completed lessons", badges[2].Requirement)
}

func TestEvaluateBadgesEmptyIsNotNil(t *testing.T) {
	badges := EvaluateBadges(Stats{})
	require.NotNil(t, badges)
	require.Empty(t, badges)
}

func TestEvaluateBadgesIsIdempotent(t *testing.T) {
	stats := Stats{TotalPoints: 100, ApprovedReflections: 1, DistinctCompletedWorkshops: 1}
	require.Equal(t, EvaluateBadges(stats), EvaluateBadges(stats))
}

func TestEvaluateBadgesNotSticky(t *testing.T) {
	before := EvaluateBadges(Stats{TotalPoints: 100, ApprovedReflections: 2, DistinctCompletedWorkshops: 1})
	require.Contains(t, badgeIDs(before), "achiever")

	after := EvaluateBadges(Stats{TotalPoints: 70, ApprovedReflections: 2, DistinctCompletedWorkshops: 1})
	require.NotContains(t, badgeIDs(after), "achiever")
}

func TestEvaluateRecruiterBadges(t *testing.T) {
	for created := 0; created <= 7; created++ {
		badges := EvaluateRecruiterBadges(created)
		if created >= 5 {
			require.Equal(t, []string{"recruiter_creator"}, badgeIDs(badges))
			require.Equal(t, "Workshop Creator", badges[0].Name)
			require.Equal(t, "🏆", badges[0].Icon)
		} else {
			require.NotNil(t, badges)
			require.Empty(t, badges)
		}
	}
}

func TestBadgeKindText(t *testing.T) {
	require.Equal(t, "expert", BadgeExpert.String())
	require.Equal(t, Badge{}, BadgeKind(99).Badge())
	require.False(t, BadgeWorkshopCreator.earnedBy(Stats{TotalPoints: 1000, ApprovedReflections: 10, DistinctCompletedWorkshops: 10}))
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
