package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/trackhub/backend/internal/config"
	"github.com/trackhub/backend/internal/db"
	"github.com/trackhub/backend/internal/models"
)

const localsUserID = "userID"

// AuthRequired verifies the bearer token issued by the identity provider
// and upserts the account it names. Identity lives outside this service;
// all we share with the provider is the signing secret.
func AuthRequired(cfg *config.Config, client *db.Neo4jClient) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		user := &models.User{
			ID:        sub,
			Email:     claimString(claims, "email"),
			FirstName: claimString(claims, "firstName"),
			LastName:  claimString(claims, "lastName"),
			ImageURL:  claimString(claims, "imageUrl"),
		}
		if err := db.EnsureUser(c.Context(), client, user); err != nil {
			return fail(c, err)
		}

		c.Locals(localsUserID, sub)
		return c.Next()
	}
}

func userID(c fiber.Ctx) string {
	id, _ := c.Locals(localsUserID).(string)
	return id
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
