package controllers

import (
	"errors"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roadmaptracker/backend/catalog"
	"roadmaptracker/backend/config"
	"roadmaptracker/backend/metrics"
	"roadmaptracker/backend/models"
	"roadmaptracker/backend/progress"
	"roadmaptracker/backend/utils"
)

type RoadmapController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Logger  *zap.Logger
	Catalog *catalog.Catalog
	Now     func() time.Time
}

func NewRoadmapController(db *gorm.DB, cfg *config.Config, logger *zap.Logger, cat *catalog.Catalog) *RoadmapController {
	return &RoadmapController{DB: db, Cfg: cfg, Logger: logger, Catalog: cat, Now: time.Now}
}

type GenerateRoadmapRequest struct {
	Role  string `json:"role" validate:"required,max=50"`
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type StepView struct {
	ItemID        uint       `json:"item_id"`
	StepCode      string     `json:"step_code"`
	Title         string     `json:"title"`
	DurationDays  int        `json:"duration_days"`
	SequenceOrder int        `json:"sequence_order"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedDate *time.Time `json:"completed_date"`
	PlannedStart  string     `json:"planned_start"`
	PlannedEnd    string     `json:"planned_end"`
}

type ModuleView struct {
	Title string     `json:"title"`
	Steps []StepView `json:"steps"`
}

// ListRoles godoc
// @Summary Role catalogue
// @Description Every offered role, whether a template exists, and the user's active roadmap for it
// @Tags roadmaps
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /roadmaps/roles [get]
func (rc *RoadmapController) ListRoles(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var roadmaps []models.Roadmap
	if err := rc.DB.Where("user_id = ?", userID).Find(&roadmaps).Error; err != nil {
		return rc.dbError(c, err)
	}
	active := progress.SelectActiveRoadmapPerRole(roadmaps)

	roles := make([]fiber.Map, 0, len(catalog.Roles))
	for _, role := range catalog.Roles {
		entry := fiber.Map{
			"role":         role,
			"display_name": catalog.DisplayName(role),
			"slug":         catalog.Slug(role),
			"available":    rc.Catalog.Has(role),
			"roadmap":      nil,
		}
		if r, ok := active[role]; ok {
			entry["roadmap"] = fiber.Map{
				"id":    r.ID,
				"start": r.StartDate.Format(models.DateLayout),
				"end":   r.TargetCompletionDate.Format(models.DateLayout),
			}
		}
		roles = append(roles, entry)
	}
	return utils.Success(c, fiber.StatusOK, roles)
}

// ListRoadmaps godoc
// @Summary The user's active roadmaps
// @Tags roadmaps
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /roadmaps [get]
func (rc *RoadmapController) ListRoadmaps(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courses, err := activeCourses(rc.DB, userID)
	if err != nil {
		return rc.dbError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, courses)
}

// GenerateRoadmap godoc
// @Summary Generate a roadmap from a role template
// @Tags roadmaps
// @Accept json
// @Produce json
// @Param input body GenerateRoadmapRequest true "Role and YYYY-MM-DD dates"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /roadmaps/generate [post]
func (rc *RoadmapController) GenerateRoadmap(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input GenerateRoadmapRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	start, err := utils.ParseDate(input.Start)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	end, err := utils.ParseDate(input.End)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	if end.Before(start) {
		return utils.BadRequest(c, "end date must not be before start date")
	}

	tpl, err := rc.Catalog.Get(input.Role)
	if err != nil {
		if errors.Is(err, catalog.ErrTemplateNotFound) {
			return utils.NotFound(c, "Roadmap not found for "+input.Role)
		}
		rc.Logger.Error("load roadmap template", zap.String("role", input.Role), zap.Error(err))
		return utils.InternalServerError(c, "Could not load roadmap template")
	}

	role := catalog.CanonicalRole(tpl.Role)
	roadmap := models.Roadmap{
		UserID:               userID,
		Role:                 role,
		StartDate:            start,
		TargetCompletionDate: end,
		TargetDurationWeeks:  progress.DaysBetween(start, end) / 7,
	}
	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&roadmap).Error; err != nil {
			return err
		}
		items := itemsFromTemplate(roadmap.ID, tpl)
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return rc.dbError(c, err)
	}

	metrics.RoadmapsGeneratedTotal.WithLabelValues(role).Inc()
	rc.Logger.Info("roadmap generated",
		zap.Uint("user_id", userID), zap.Uint("roadmap_id", roadmap.ID), zap.String("role", role))

	return utils.Created(c, fiber.Map{
		"roadmap_id":            roadmap.ID,
		"role":                  roadmap.Role,
		"slug":                  catalog.Slug(roadmap.Role),
		"start":                 input.Start,
		"end":                   input.End,
		"target_duration_weeks": roadmap.TargetDurationWeeks,
		"items":                 tpl.StepCount(),
	})
}

// GetRoadmap godoc
// @Summary The active roadmap for a role
// @Tags roadmaps
// @Produce json
// @Param role path string true "Role name or slug"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /roadmaps/role/{role} [get]
func (rc *RoadmapController) GetRoadmap(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, rc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	role := catalog.CanonicalRole(c.Params("role"))
	var roadmaps []models.Roadmap
	if err := rc.DB.Where("user_id = ? AND role = ?", userID, role).Find(&roadmaps).Error; err != nil {
		return rc.dbError(c, err)
	}
	active, ok := progress.SelectActiveRoadmapPerRole(roadmaps)[role]
	if !ok {
		return utils.NotFound(c, "No roadmap for "+role+", generate one first")
	}

	var items []models.RoadmapItem
	if err := rc.DB.Where("roadmap_id = ?", active.ID).Order("sequence_order").Find(&items).Error; err != nil {
		return rc.dbError(c, err)
	}

	projects := []catalog.Project{}
	if tpl, err := rc.Catalog.Get(role); err == nil && tpl.Projects != nil {
		projects = tpl.Projects
	}

	stepIDMap := make(map[string]uint, len(items))
	for _, item := range items {
		stepIDMap[item.StepCode] = item.ID
	}

	today := progress.DateOf(rc.Now().In(rc.Cfg.Location()))
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"roadmap_id":            active.ID,
		"role":                  active.Role,
		"display_role":          catalog.DisplayName(active.Role),
		"start_date":            active.StartDate.Format(models.DateLayout),
		"end_date":              active.TargetCompletionDate.Format(models.DateLayout),
		"target_duration_weeks": active.TargetDurationWeeks,
		"days_remaining":        progress.DaysBetween(today, active.TargetCompletionDate),
		"last_activity_date":    active.LastActivityDate,
		"progress":              progress.PercentComplete(items),
		"modules":               groupModules(items, active.StartDate),
		"projects":              projects,
		"step_id_map":           stepIDMap,
	})
}

func itemsFromTemplate(roadmapID uint, tpl *catalog.Template) []models.RoadmapItem {
	items := make([]models.RoadmapItem, 0, tpl.StepCount())
	seq := 1
	for _, module := range tpl.Modules {
		for _, step := range module.Steps {
			items = append(items, models.RoadmapItem{
				RoadmapID:     roadmapID,
				Title:         step.Title,
				Description:   module.Title,
				DurationDays:  step.DurationDays,
				SequenceOrder: seq,
				ModuleName:    module.Title,
				StepCode:      step.ID,
			})
			seq++
		}
	}
	return items
}

// groupModules keeps items in sequence order and starts a new module whenever
// the module name changes.
func groupModules(items []models.RoadmapItem, start time.Time) []ModuleView {
	plan := progress.PlanSchedule(items, start)
	modules := []ModuleView{}
	for i, item := range items {
		if len(modules) == 0 || modules[len(modules)-1].Title != item.ModuleName {
			modules = append(modules, ModuleView{Title: item.ModuleName})
		}
		m := &modules[len(modules)-1]
		m.Steps = append(m.Steps, StepView{
			ItemID:        item.ID,
			StepCode:      item.StepCode,
			Title:         item.Title,
			DurationDays:  item.DurationDays,
			SequenceOrder: item.SequenceOrder,
			IsCompleted:   item.IsCompleted,
			CompletedDate: item.CompletedDate,
			PlannedStart:  plan[i].Start.Format(models.DateLayout),
			PlannedEnd:    plan[i].End.Format(models.DateLayout),
		})
	}
	return modules
}

// activeCourses summarizes the user's active roadmap per role, ordered by role.
func activeCourses(db *gorm.DB, userID uint) ([]progress.Course, error) {
	var roadmaps []models.Roadmap
	if err := db.Preload("Items").Where("user_id = ?", userID).Find(&roadmaps).Error; err != nil {
		return nil, err
	}
	active := progress.SelectActiveRoadmapPerRole(roadmaps)

	courses := make([]progress.Course, 0, len(active))
	for _, r := range active {
		courses = append(courses, progress.CourseFromRoadmap(r, catalog.DisplayName(r.Role)))
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Role < courses[j].Role })
	return courses, nil
}

func (rc *RoadmapController) dbError(c *fiber.Ctx, err error) error {
	rc.Logger.Error("roadmap query failed", zap.String("path", c.Path()), zap.Error(err))
	return utils.InternalServerError(c, "Could not query database")
}
