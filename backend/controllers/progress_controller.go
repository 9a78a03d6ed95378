package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roadmaptracker/backend/config"
	"roadmaptracker/backend/metrics"
	"roadmaptracker/backend/models"
	"roadmaptracker/backend/progress"
	"roadmaptracker/backend/store"
	"roadmaptracker/backend/utils"
)

type ProgressController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Store  store.ProgressStore
	Logger *zap.Logger
	Now    func() time.Time
}

func NewProgressController(db *gorm.DB, cfg *config.Config, st store.ProgressStore, logger *zap.Logger) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Store: st, Logger: logger, Now: time.Now}
}

type ToggleStepRequest struct {
	RoadmapID uint   `json:"roadmap_id" validate:"required"`
	StepCode  string `json:"step_code" validate:"required,max=50"`
	Checked   *bool  `json:"checked" validate:"required"`
}

// UserKey is the progress store key for a user.
func UserKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// StepKey identifies a step inside a progress document.
func StepKey(roadmapID uint, stepCode string) string {
	return fmt.Sprintf("%d:%s", roadmapID, stepCode)
}

// ToggleStep godoc
// @Summary Check or uncheck a roadmap step
// @Description Updates the item, mirrors it into the progress document and advances the streak on check
// @Tags progress
// @Accept json
// @Produce json
// @Param input body ToggleStepRequest true "Step and new state"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/steps [post]
func (pc *ProgressController) ToggleStep(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input ToggleStepRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}
	checked := *input.Checked

	item, err := pc.findItem(userID, input.RoadmapID, input.StepCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Step not found")
		}
		return pc.dbError(c, err)
	}

	today := progress.DateOf(pc.Now().In(pc.Cfg.Location()))
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		var completedDate *time.Time
		if checked {
			completedDate = &today
		}
		if err := tx.Model(&item).Updates(map[string]interface{}{
			"is_completed":   checked,
			"completed_date": completedDate,
		}).Error; err != nil {
			return err
		}
		if !checked {
			return nil
		}
		return tx.Model(&models.Roadmap{}).Where("id = ?", item.RoadmapID).
			Update("last_activity_date", today).Error
	})
	if err != nil {
		return pc.dbError(c, err)
	}

	ctx := c.UserContext()
	key := UserKey(userID)
	doc, err := pc.Store.Load(ctx, key)
	if err != nil {
		return pc.storeError(c, err)
	}

	mark := models.StepMark{Checked: checked}
	if checked {
		date := today.Format(models.DateLayout)
		mark.Date = &date
		progress.RecordCompletion(progress.StreakFromDocument(doc), today).Apply(doc)
	}
	doc.Steps[StepKey(item.RoadmapID, item.StepCode)] = mark

	if err := pc.Store.Save(ctx, key, doc); err != nil {
		return pc.storeError(c, err)
	}

	var items []models.RoadmapItem
	if err := pc.DB.Where("roadmap_id = ?", item.RoadmapID).Find(&items).Error; err != nil {
		return pc.dbError(c, err)
	}

	metrics.StepTogglesTotal.WithLabelValues(strconv.FormatBool(checked)).Inc()
	pc.Logger.Info("step toggled",
		zap.Uint("user_id", userID),
		zap.Uint("roadmap_id", item.RoadmapID),
		zap.String("step_code", item.StepCode),
		zap.Bool("checked", checked),
		zap.Int("streak", doc.Streak))

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"status":   "ok",
		"checked":  checked,
		"streak":   doc.Streak,
		"progress": progress.PercentComplete(items),
	})
}

// GetStep godoc
// @Summary Completion state of one step
// @Tags progress
// @Produce json
// @Param roadmap_id query int true "Roadmap ID"
// @Param step_code query string true "Step code"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/steps [get]
func (pc *ProgressController) GetStep(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	roadmapID, err := strconv.ParseUint(c.Query("roadmap_id"), 10, 64)
	if err != nil || roadmapID == 0 {
		return utils.BadRequest(c, "roadmap_id must be a positive integer")
	}
	stepCode := c.Query("step_code")
	if stepCode == "" {
		return utils.BadRequest(c, "step_code is required")
	}

	item, err := pc.findItem(userID, uint(roadmapID), stepCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Step not found")
		}
		return pc.dbError(c, err)
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"roadmap_id":     item.RoadmapID,
		"step_code":      item.StepCode,
		"checked":        item.IsCompleted,
		"completed_date": item.CompletedDate,
	})
}

// GetDocument godoc
// @Summary The user's progress document
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetDocument(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	doc, err := pc.Store.Load(c.UserContext(), UserKey(userID))
	if err != nil {
		return pc.storeError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, doc)
}

// findItem returns the item only if its roadmap belongs to userID.
func (pc *ProgressController) findItem(userID, roadmapID uint, stepCode string) (models.RoadmapItem, error) {
	var item models.RoadmapItem
	var roadmap models.Roadmap
	if err := pc.DB.Select("id").Where("id = ? AND user_id = ?", roadmapID, userID).First(&roadmap).Error; err != nil {
		return item, err
	}
	err := pc.DB.Where("roadmap_id = ? AND step_code = ?", roadmap.ID, stepCode).First(&item).Error
	return item, err
}

func (pc *ProgressController) dbError(c *fiber.Ctx, err error) error {
	pc.Logger.Error("progress query failed", zap.String("path", c.Path()), zap.Error(err))
	return utils.InternalServerError(c, "Could not query database")
}

func (pc *ProgressController) storeError(c *fiber.Ctx, err error) error {
	pc.Logger.Error("progress store failed", zap.String("path", c.Path()), zap.Error(err))
	return utils.InternalServerError(c, "Could not access progress store")
}
