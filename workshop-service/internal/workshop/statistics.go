package workshop

import "math"

// LessonStatistics counts reflections on one lesson.
type LessonStatistics struct {
	LessonID    string `json:"lesson_id"`
	Title       string `json:"title"`
	Reflections int    `json:"reflections"`
}

// Statistics summarizes engagement with a workshop.
type Statistics struct {
	WorkshopID       string             `json:"workshop_id"`
	Registrations    int                `json:"registrations"`
	TotalReflections int                `json:"total_reflections"`
	Approved         int                `json:"approved"`
	Rejected         int                `json:"rejected"`
	Pending          int                `json:"pending"`
	AveragePoints    int                `json:"average_points"`
	Lessons          []LessonStatistics `json:"lessons"`
}

// computeStatistics tallies reflections per lesson. Any status other than approved or rejected
// counts as pending. AveragePoints is the rounded mean over approved reflections with points.
func computeStatistics(workshopID string, registrations int, lessons []Lesson, reflections [][]Reflection) Statistics {
	stats := Statistics{
		WorkshopID:    workshopID,
		Registrations: registrations,
		Lessons:       make([]LessonStatistics, 0, len(lessons)),
	}
	approvedPoints := 0
	for i, lesson := range lessons {
		var batch []Reflection
		if i < len(reflections) {
			batch = reflections[i]
		}
		stats.Lessons = append(stats.Lessons, LessonStatistics{LessonID: lesson.ID, Title: lesson.Title, Reflections: len(batch)})
		stats.TotalReflections += len(batch)
		for _, r := range batch {
			switch r.Status {
			case StatusApproved:
				stats.Approved++
				if r.Points != nil {
					approvedPoints += *r.Points
				}
			case StatusRejected:
				stats.Rejected++
			default:
				stats.Pending++
			}
		}
	}
	if stats.Approved > 0 {
		stats.AveragePoints = int(math.Floor(float64(approvedPoints)/float64(stats.Approved) + 0.5))
	}
	return stats
}
