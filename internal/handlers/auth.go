package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kgichohi/social_posts/internal/database"
	"github.com/kgichohi/social_posts/internal/events"
	"github.com/kgichohi/social_posts/internal/hash"
	"github.com/kgichohi/social_posts/internal/models"
	"github.com/kgichohi/social_posts/internal/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.Service
	Producer *events.Producer
}

// Login authenticates by form fields "username" (the email) and "password".
// Unknown email and wrong password answer identically so that the endpoint
// cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	email := c.FormValue("username")
	password := c.FormValue("password")
	if email == "" || password == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "username and password are required")
	}

	db := database.FromContext(c, h.DB)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusForbidden, "invalid credentials")
		}
		return err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return echo.NewHTTPError(http.StatusForbidden, "invalid credentials")
	}

	signed, err := h.Tokens.Issue(user.ID, user.Name)
	if err != nil {
		return err
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]interface{}{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"name":    user.Name,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": signed,
		"token_type":   "bearer",
	})
}
