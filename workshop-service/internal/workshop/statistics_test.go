package workshop

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeStatistics(t *testing.T) {
	lessons := []Lesson{{ID: "l1", Title: "One"}, {ID: "l2", Title: "Two"}, {ID: "l3", Title: "Three"}}
	reflections := [][]Reflection{
		{
			{Status: StatusApproved, Points: intPtr(50)},
			{Status: StatusApproved, Points: intPtr(45)},
			{Status: StatusRejected, Points: intPtr(-30)},
		},
		{
			{Status: StatusPending},
			{Status: "archived"},
		},
	}

	stats := computeStatistics("w1", 4, lessons, reflections)

	require.Equal(t, "w1", stats.WorkshopID)
	require.Equal(t, 4, stats.Registrations)
	require.Equal(t, 5, stats.TotalReflections)
	require.Equal(t, 2, stats.Approved)
	require.Equal(t, 1, stats.Rejected)
	require.Equal(t, 2, stats.Pending)
	require.Equal(t, 48, stats.AveragePoints)
	require.Equal(t, []LessonStatistics{
		{LessonID: "l1", Title: "One", Reflections: 3},
		{LessonID: "l2", Title: "Two", Reflections: 2},
		{LessonID: "l3", Title: "Three", Reflections: 0},
	}, stats.Lessons)
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := computeStatistics("w1", 0, nil, nil)
	require.Zero(t, stats.AveragePoints)
	require.NotNil(t, stats.Lessons)
	require.Empty(t, stats.Lessons)
}

func TestComputeStatisticsApprovedWithoutPoints(t *testing.T) {
	reflections := [][]Reflection{{{Status: StatusApproved}, {Status: StatusApproved, Points: intPtr(50)}}}
	stats := computeStatistics("w1", 1, []Lesson{{ID: "l1"}}, reflections)
	require.Equal(t, 25, stats.AveragePoints)
}

func intPtr(v int) *int { return &v }
