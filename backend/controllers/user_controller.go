package controllers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"roadmaptracker/backend/config"
	"roadmaptracker/backend/models"
	"roadmaptracker/backend/utils"
)

// ProfileImagePrefix is the public path prefix uploaded images are served from.
const ProfileImagePrefix = "profile_images/"

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

type UserController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *zap.Logger
}

func NewUserController(db *gorm.DB, cfg *config.Config, logger *zap.Logger) *UserController {
	return &UserController{DB: db, Cfg: cfg, Logger: logger}
}

type UpdateUserRequest struct {
	Username      string `json:"username" validate:"omitempty,min=3,max=80" example:"john_doe"`
	Email         string `json:"email" validate:"omitempty,email,max=120" example:"user@example.com"`
	PhoneNumber   string `json:"phone_number" validate:"omitempty,max=20" example:"+15551234567"`
	Notifications *bool  `json:"notifications"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func profileView(user models.User) fiber.Map {
	return fiber.Map{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"phone_number":  user.PhoneNumber,
		"profile_image": user.ProfileImage,
		"notifications": user.Notifications,
		"login_count":   user.LoginCount,
		"last_login":    user.LastLogin,
		"created_at":    user.CreatedAt,
	}
}

// GetProfile godoc
// @Summary Get user profile
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user, err := uc.currentUser(c)
	if err != nil {
		return err
	}
	return utils.Success(c, fiber.StatusOK, profileView(*user))
}

// UpdateProfile godoc
// @Summary Update user profile
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateUserRequest true "Profile update data"
// @Success 200 {object} utils.SuccessResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input UpdateUserRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	user, err := uc.currentUser(c)
	if err != nil {
		return err
	}

	if input.Username != "" && input.Username != user.Username {
		taken, err := uc.taken("username", input.Username, user.ID)
		if err != nil {
			return uc.dbError(c, err)
		}
		if taken {
			return utils.Conflict(c, "Username already taken by another user")
		}
		user.Username = input.Username
	}

	if input.Email != "" && input.Email != user.Email {
		taken, err := uc.taken("email", input.Email, user.ID)
		if err != nil {
			return uc.dbError(c, err)
		}
		if taken {
			return utils.Conflict(c, "Email already registered")
		}
		user.Email = input.Email
	}

	if input.PhoneNumber != "" {
		user.PhoneNumber = input.PhoneNumber
	}
	if input.Notifications != nil {
		user.Notifications = *input.Notifications
	}

	if err := uc.DB.Model(user).Updates(map[string]interface{}{
		"username":      user.Username,
		"email":         user.Email,
		"phone_number":  user.PhoneNumber,
		"notifications": user.Notifications,
	}).Error; err != nil {
		return uc.dbError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, profileView(*user), "Profile updated successfully")
}

// ChangePassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Param input body ChangePasswordRequest true "Old and new password"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/password [put]
func (uc *UserController) ChangePassword(c *fiber.Ctx) error {
	var input ChangePasswordRequest
	if ok, err := utils.ParseAndValidate(c, &input); !ok {
		return err
	}

	user, err := uc.currentUser(c)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return utils.BadRequest(c, "Old password incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}
	if err := uc.DB.Model(user).Update("password_hash", string(hashedPassword)).Error; err != nil {
		return uc.dbError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, nil, "Password updated successfully")
}

// UploadProfileImage godoc
// @Summary Upload a profile image
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param profile_image formData file true "png, jpg, jpeg or gif"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 413 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile/image [post]
func (uc *UserController) UploadProfileImage(c *fiber.Ctx) error {
	user, err := uc.currentUser(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("profile_image")
	if err != nil {
		return utils.BadRequest(c, "profile_image file is required")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExtensions[ext] {
		return utils.BadRequest(c, "Allowed image types: png, jpg, jpeg, gif")
	}
	if file.Size > int64(uc.Cfg.MaxUploadBytes) {
		return utils.Error(c, fiber.StatusRequestEntityTooLarge,
			fmt.Errorf("image exceeds %d bytes", uc.Cfg.MaxUploadBytes))
	}

	if err := os.MkdirAll(uc.Cfg.UploadDir, 0o755); err != nil {
		uc.Logger.Error("create upload dir", zap.Error(err))
		return utils.InternalServerError(c, "Could not store image")
	}
	filename := fmt.Sprintf("%d_%s%s", user.ID, uuid.NewString(), ext)
	if err := c.SaveFile(file, filepath.Join(uc.Cfg.UploadDir, filename)); err != nil {
		uc.Logger.Error("save profile image", zap.Uint("user_id", user.ID), zap.Error(err))
		return utils.InternalServerError(c, "Could not store image")
	}

	user.ProfileImage = ProfileImagePrefix + filename
	if err := uc.DB.Model(user).Update("profile_image", user.ProfileImage).Error; err != nil {
		return uc.dbError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"profile_image": user.ProfileImage}, "Profile updated successfully")
}

// currentUser loads the token's user. Errors are *fiber.Error values for the
// app's error handler.
func (uc *UserController) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		uc.Logger.Error("load user", zap.Uint("user_id", userID), zap.Error(err))
		return nil, fiber.ErrInternalServerError
	}
	return &user, nil
}

func (uc *UserController) taken(column, value string, selfID uint) (bool, error) {
	var count int64
	err := uc.DB.Model(&models.User{}).
		Where(column+" = ? AND id <> ?", value, selfID).
		Count(&count).Error
	return count > 0, err
}

func (uc *UserController) dbError(c *fiber.Ctx, err error) error {
	uc.Logger.Error("user query failed", zap.String("path", c.Path()), zap.Error(err))
	return utils.InternalServerError(c, "Could not query database")
}
