package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roadmaptracker/backend/config"
	"roadmaptracker/backend/models"
	"roadmaptracker/backend/progress"
	"roadmaptracker/backend/store"
	"roadmaptracker/backend/utils"
)

type ActivityController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Store  store.ProgressStore
	Logger *zap.Logger
	Now    func() time.Time
}

func NewActivityController(db *gorm.DB, cfg *config.Config, st store.ProgressStore, logger *zap.Logger) *ActivityController {
	return &ActivityController{DB: db, Cfg: cfg, Store: st, Logger: logger, Now: time.Now}
}

// GetActivity godoc
// @Summary Dashboard data
// @Description Time spent per day, week and month, active courses, overall progress and streak
// @Tags activity
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /activity [get]
func (ac *ActivityController) GetActivity(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	loc := ac.Cfg.Location()
	now := ac.Now()
	today := progress.DateOf(now.In(loc))

	// The monthly window reaches furthest back. One extra day absorbs the
	// offset between loc and the UTC start times in the database.
	since := time.Date(today.Year(), today.Month()-6, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	var sessions []models.Session
	if err := ac.DB.Where("user_id = ? AND start_time >= ?", userID, since.UTC()).Find(&sessions).Error; err != nil {
		return ac.dbError(c, err)
	}
	activity := progress.Aggregate(progress.SamplesFromSessions(sessions, now, loc), today)

	courses, err := activeCourses(ac.DB, userID)
	if err != nil {
		return ac.dbError(c, err)
	}

	doc, err := ac.Store.Load(c.UserContext(), UserKey(userID))
	if err != nil {
		ac.Logger.Error("progress store failed", zap.String("path", c.Path()), zap.Error(err))
		return utils.InternalServerError(c, "Could not access progress store")
	}
	streak := progress.EffectiveStreak(progress.StreakFromDocument(doc), today)

	var user models.User
	if err := ac.DB.Select("id", "username", "login_count", "last_login").First(&user, userID).Error; err != nil {
		return ac.dbError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"username":         user.Username,
		"login_count":      user.LoginCount,
		"last_login":       user.LastLogin,
		"today":            today.Format(models.DateLayout),
		"activity":         activity,
		"courses":          courses,
		"overall_progress": progress.OverallProgress(courses),
		"course_split":     progress.SplitCourses(courses),
		"streak":           streak,
		"last_week_share":  progress.LastWeekShare(activity.Week),
	})
}

func (ac *ActivityController) dbError(c *fiber.Ctx, err error) error {
	ac.Logger.Error("activity query failed", zap.String("path", c.Path()), zap.Error(err))
	return utils.InternalServerError(c, "Could not query database")
}
