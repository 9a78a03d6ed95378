package progress

import (
	"time"

	"roadmaptracker/backend/models"
)

// StreakState is the streak bookkeeping carried in a progress document.
type StreakState struct {
	Streak         int
	LastStreakDate *time.Time
}

// StreakFromDocument reads the streak fields. An unparsable date is treated
// as absent.
func StreakFromDocument(doc *models.ProgressDocument) StreakState {
	s := StreakState{Streak: doc.Streak}
	if doc.LastStreakDate == nil {
		return s
	}
	last, err := time.Parse(models.DateLayout, *doc.LastStreakDate)
	if err != nil {
		return s
	}
	s.LastStreakDate = &last
	return s
}

// Apply writes the state back into doc.
func (s StreakState) Apply(doc *models.ProgressDocument) {
	doc.Streak = s.Streak
	if s.LastStreakDate == nil {
		doc.LastStreakDate = nil
		return
	}
	formatted := s.LastStreakDate.Format(models.DateLayout)
	doc.LastStreakDate = &formatted
}

// RecordCompletion is the transition for "a step was checked on today".
// Checking more steps on the same day leaves the state unchanged.
func RecordCompletion(s StreakState, today time.Time) StreakState {
	day := DateOf(today)
	if s.LastStreakDate != nil {
		switch DaysBetween(*s.LastStreakDate, day) {
		case 0:
			return s
		case 1:
			return StreakState{Streak: s.Streak + 1, LastStreakDate: &day}
		}
	}
	return StreakState{Streak: 1, LastStreakDate: &day}
}

// EffectiveStreak is the streak shown on the dashboard. A user who acted
// yesterday is shown the streak they would have after acting today, and a
// broken streak already shows as 1. Neither is persisted.
func EffectiveStreak(s StreakState, today time.Time) int {
	if s.LastStreakDate == nil {
		return s.Streak
	}
	gap := DaysBetween(*s.LastStreakDate, today)
	switch {
	case gap == 1:
		return s.Streak + 1
	case gap > 1:
		return 1
	default:
		return s.Streak
	}
}
