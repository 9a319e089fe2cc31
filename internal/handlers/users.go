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
)

type UserHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

func (h *UserHandler) Register(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "email, name and password are required")
	}

	digest, err := hash.HashPassword(req.Password)
	if err != nil {
		return err
	}

	db := database.FromContext(c, h.DB)

	var existing models.User
	err = db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: digest,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	publish(c, h.Producer, events.TopicUserEvents, fmt.Sprint(user.ID), map[string]interface{}{
		"type":    "user_registered",
		"user_id": user.ID,
		"name":    user.Name,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var user models.User
	db := database.FromContext(c, h.DB)
	if err := db.Preload("Posts").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("user (id: %d) not found", id))
		}
		return err
	}

	return c.JSON(http.StatusOK, user)
}
