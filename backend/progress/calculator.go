package progress

import (
	"roadmaptracker/backend/models"
)

// Completable is anything with a completion flag, typically a roadmap item.
type Completable interface {
	Completed() bool
}

// PercentComplete returns floor(100*done/total), or 0 for no items.
func PercentComplete[T Completable](items []T) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, item := range items {
		if item.Completed() {
			done++
		}
	}
	return done * 100 / len(items)
}

// Course is the dashboard view of one active roadmap.
type Course struct {
	RoadmapID    uint   `json:"roadmap_id"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	Chapters     int    `json:"chapters"`
	Completed    int    `json:"completed"`
	EnrolledDate string `json:"enrolled_date"`
	Progress     int    `json:"progress"`
}

func (c Course) Finished() bool {
	return c.Chapters > 0 && c.Completed == c.Chapters
}

func (c Course) InProgress() bool {
	return c.Chapters > 0 && c.Completed < c.Chapters
}

// OverallProgress is the truncated mean of the course percentages.
func OverallProgress(courses []Course) int {
	if len(courses) == 0 {
		return 0
	}
	sum := 0
	for _, c := range courses {
		sum += c.Progress
	}
	return sum / len(courses)
}

// SelectActiveRoadmapPerRole keeps, per role, the roadmap with the latest
// start date. Roadmaps missing either date are skipped. Which of two
// roadmaps with the same start date wins is not defined.
func SelectActiveRoadmapPerRole(roadmaps []models.Roadmap) map[string]models.Roadmap {
	active := make(map[string]models.Roadmap)
	for _, r := range roadmaps {
		if r.StartDate.IsZero() || r.TargetCompletionDate.IsZero() {
			continue
		}
		current, ok := active[r.Role]
		if !ok || r.StartDate.After(current.StartDate) {
			active[r.Role] = r
		}
	}
	return active
}

// CourseFromRoadmap summarizes a roadmap whose Items are loaded.
func CourseFromRoadmap(r models.Roadmap, name string) Course {
	done := 0
	for _, item := range r.Items {
		if item.IsCompleted {
			done++
		}
	}
	return Course{
		RoadmapID:    r.ID,
		Role:         r.Role,
		Name:         name,
		Chapters:     len(r.Items),
		Completed:    done,
		EnrolledDate: r.StartDate.Format(models.DateLayout),
		Progress:     PercentComplete(r.Items),
	}
}

// CourseSplit backs the completed/in-progress donut chart.
type CourseSplit struct {
	Completed         int `json:"completed_courses"`
	InProgress        int `json:"in_progress_courses"`
	CompletedPercent  int `json:"completed_percent"`
	InProgressPercent int `json:"in_progress_percent"`
}

// SplitCourses counts finished and unfinished courses. Courses without items
// count as neither.
func SplitCourses(courses []Course) CourseSplit {
	var s CourseSplit
	for _, c := range courses {
		switch {
		case c.Finished():
			s.Completed++
		case c.InProgress():
			s.InProgress++
		}
	}
	total := s.Completed + s.InProgress
	if total == 0 {
		return s
	}
	s.CompletedPercent = s.Completed * 100 / total
	s.InProgressPercent = 100 - s.CompletedPercent
	return s
}
