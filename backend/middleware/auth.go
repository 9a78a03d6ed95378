package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"roadmaptracker/backend/config"
	"roadmaptracker/backend/models"
	"roadmaptracker/backend/utils"
)

// AuthMiddleware accepts a request only when its token is valid and the
// login session it names has not been closed by logout.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.ExtractClaimsFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var session models.Session
		err = db.Where("id = ? AND user_id = ?", claims.SessionID, claims.UserID).First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !session.IsOpen()) {
			return utils.Unauthorized(c, "Session expired")
		}
		if err != nil {
			return utils.InternalServerError(c, "Could not verify session")
		}

		utils.StoreClaims(c, claims)
		return c.Next()
	}
}
