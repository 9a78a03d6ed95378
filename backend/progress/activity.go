package progress

import (
	"time"

	"roadmaptracker/backend/models"
)

const windowSize = 7

// Sample is one session's contribution: the date it started and how long it lasted.
type Sample struct {
	Date     time.Time
	Duration time.Duration
}

type Series struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Activity holds minutes-per-bucket series, oldest bucket first.
type Activity struct {
	Day   Series `json:"day"`
	Week  Series `json:"week"`
	Month Series `json:"month"`
}

// SamplesFromSessions converts sessions to samples. Open sessions run until
// now; start times are read in loc.
func SamplesFromSessions(sessions []models.Session, now time.Time, loc *time.Location) []Sample {
	samples := make([]Sample, 0, len(sessions))
	for _, s := range sessions {
		end := now
		if s.EndTime != nil {
			end = *s.EndTime
		}
		d := end.Sub(s.StartTime)
		if d < 0 {
			d = 0
		}
		samples = append(samples, Sample{Date: DateOf(s.StartTime.In(loc)), Duration: d})
	}
	return samples
}

// Aggregate buckets samples into the trailing 7 days, 7 calendar weeks
// (Monday-anchored) and 7 calendar months ending at today. Samples outside a
// window are ignored for that window.
func Aggregate(samples []Sample, today time.Time) Activity {
	day := DateOf(today)

	daily := make(map[time.Time]time.Duration)
	weekly := make(map[time.Time]time.Duration)
	monthly := make(map[time.Time]time.Duration)
	for _, s := range samples {
		d := DateOf(s.Date)
		daily[d] += s.Duration
		weekly[weekStart(d)] += s.Duration
		monthly[monthStart(d)] += s.Duration
	}

	var a Activity
	thisWeek := weekStart(day)
	thisMonth := monthStart(day)
	for i := windowSize - 1; i >= 0; i-- {
		d := day.AddDate(0, 0, -i)
		a.Day.Labels = append(a.Day.Labels, d.Format("02"))
		a.Day.Values = append(a.Day.Values, minutes(daily[d]))

		w := thisWeek.AddDate(0, 0, -7*i)
		a.Week.Labels = append(a.Week.Labels, w.Format("Jan 02"))
		a.Week.Values = append(a.Week.Values, minutes(weekly[w]))

		m := thisMonth.AddDate(0, -i, 0)
		a.Month.Labels = append(a.Month.Labels, m.Format("Jan"))
		a.Month.Values = append(a.Month.Values, minutes(monthly[m]))
	}
	return a
}

// minutes truncates to whole seconds first, then to whole minutes.
func minutes(d time.Duration) int {
	return int(int64(d/time.Second) / 60)
}

// LastWeekShare is last week's minutes as a percentage of the whole weekly
// series, or 0 when nothing was tracked.
func LastWeekShare(week Series) int {
	if len(week.Values) < 2 {
		return 0
	}
	total := 0
	for _, v := range week.Values {
		total += v
	}
	if total <= 0 {
		return 0
	}
	return week.Values[len(week.Values)-2] * 100 / total
}
