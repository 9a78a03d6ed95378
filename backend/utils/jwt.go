package utils

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"roadmaptracker/backend/config"
)

const claimsLocalsKey = "claims"

// Claims ties a token to the login Session it was issued for.
type Claims struct {
	UserID    uint `json:"user_id"`
	SessionID uint `json:"session_id"`
	jwt.RegisteredClaims
}

func GenerateJWTToken(userID, sessionID uint, cfg *config.Config) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ExtractClaimsFromToken parses the Authorization header. A "Bearer " prefix
// is optional.
func ExtractClaimsFromToken(c *fiber.Ctx, cfg *config.Config) (*Claims, error) {
	if claims, ok := c.Locals(claimsLocalsKey).(*Claims); ok {
		return claims, nil
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
	if tokenString == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	if claims.UserID == 0 || claims.SessionID == 0 {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	return claims, nil
}

// StoreClaims caches verified claims on the request for later handlers.
func StoreClaims(c *fiber.Ctx, claims *Claims) {
	c.Locals(claimsLocalsKey, claims)
}

func ExtractUserIDFromToken(c *fiber.Ctx, cfg *config.Config) (uint, error) {
	claims, err := ExtractClaimsFromToken(c, cfg)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
