package progress

import (
	"time"

	"roadmaptracker/backend/models"
)

// StepWindow is the planned first and last day of one step.
type StepWindow struct {
	Start time.Time
	End   time.Time
}

// PlanSchedule lays items out back to back from start, in the given order,
// each taking DurationDays calendar days (at least one).
func PlanSchedule(items []models.RoadmapItem, start time.Time) []StepWindow {
	windows := make([]StepWindow, len(items))
	cursor := DateOf(start)
	for i, item := range items {
		days := item.DurationDays
		if days < 1 {
			days = 1
		}
		windows[i] = StepWindow{Start: cursor, End: cursor.AddDate(0, 0, days-1)}
		cursor = cursor.AddDate(0, 0, days)
	}
	return windows
}
