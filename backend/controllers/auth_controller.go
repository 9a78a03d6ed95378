package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"roadmaptracker/backend/config"
	"roadmaptracker/backend/metrics"
	"roadmaptracker/backend/models"
	"roadmaptracker/backend/utils"
)

type AuthController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *zap.Logger
	Now    func() time.Time
}

func NewAuthController(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Logger: logger, Now: time.Now}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration data"
// @Success 201 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	var count int64
	if err := ac.DB.Model(&models.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return ac.dbError(c, err)
	}
	if count > 0 {
		return utils.Conflict(c, "Username already exists")
	}
	if err := ac.DB.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return ac.dbError(c, err)
	}
	if count > 0 {
		return utils.Conflict(c, "Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Username:      input.Username,
		Email:         input.Email,
		PasswordHash:  string(hashedPassword),
		Notifications: true,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return ac.dbError(c, err)
	}

	ac.Logger.Info("user registered", zap.Uint("user_id", user.ID))
	return utils.Created(c, fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}, "Registration successful, please log in")
}

// Login godoc
// @Summary User login
// @Description Verifies credentials, opens a session and returns a JWT bound to it
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return utils.Unauthorized(c, "Invalid username or password")
		}
		return ac.dbError(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return utils.Unauthorized(c, "Invalid username or password")
	}

	now := ac.Now().UTC()
	session := models.Session{UserID: user.ID, StartTime: now}
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"last_login":  now,
			"login_count": gorm.Expr("login_count + ?", 1),
		}).Error; err != nil {
			return err
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return ac.dbError(c, err)
	}

	token, err := utils.GenerateJWTToken(user.ID, session.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	metrics.LoginsTotal.WithLabelValues("accepted").Inc()
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"login_count": user.LoginCount + 1,
		},
	}, "Login successful")
}

// Logout godoc
// @Summary Close the current session
// @Tags auth
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	claims, err := utils.ExtractClaimsFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	err = ac.DB.Model(&models.Session{}).
		Where("id = ? AND user_id = ? AND end_time IS NULL", claims.SessionID, claims.UserID).
		Update("end_time", ac.Now().UTC()).Error
	if err != nil {
		return ac.dbError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, nil, "You have been logged out")
}

func (ac *AuthController) dbError(c *fiber.Ctx, err error) error {
	ac.Logger.Error("auth query failed", zap.String("path", c.Path()), zap.Error(err))
	return utils.InternalServerError(c, "Could not query database")
}
