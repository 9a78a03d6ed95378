package models

// DateLayout is the calendar-date encoding used inside progress documents.
const DateLayout = "2006-01-02"

type StepMark struct {
	Checked bool    `json:"checked"`
	Date    *string `json:"date"`
}

// ProgressDocument is the per-user record kept outside the relational store.
// Steps is keyed by "<roadmapID>:<stepCode>".
type ProgressDocument struct {
	Steps          map[string]StepMark `json:"steps"`
	Streak         int                 `json:"streak"`
	LastStreakDate *string             `json:"last_streak_date"`
}

func NewProgressDocument() *ProgressDocument {
	return &ProgressDocument{Steps: map[string]StepMark{}}
}

// Normalize fills nil maps and clamps a negative streak so callers can write
// into documents decoded from partial JSON.
func (d *ProgressDocument) Normalize() {
	if d.Steps == nil {
		d.Steps = map[string]StepMark{}
	}
	if d.Streak < 0 {
		d.Streak = 0
	}
}
