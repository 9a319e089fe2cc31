package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kgichohi/social_posts/internal/database"
	"github.com/kgichohi/social_posts/internal/models"
	"github.com/kgichohi/social_posts/internal/token"
)

const userKey = "current_user"

// RequireUser validates the bearer token and resolves its user_id claim to a
// live user row. A valid token whose user no longer exists is a 404, not a 401.
func RequireUser(tokens *token.Service, db *gorm.DB) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearerToken(c.Request())
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
			}

			var user models.User
			if err := database.FromContext(c, db).First(&user, claims.UserID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("user (id: %d) not found", claims.UserID))
				}
				return err
			}

			c.Set(userKey, &user)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errors.New("authorization header missing")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

// CurrentUser returns the user resolved by RequireUser, or nil outside it.
func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

// SetCurrentUser seeds the request user directly, bypassing token checks.
// Only handler tests use it.
func SetCurrentUser(c echo.Context, u *models.User) {
	c.Set(userKey, u)
}
