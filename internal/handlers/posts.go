package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kgichohi/social_posts/internal/database"
	"github.com/kgichohi/social_posts/internal/es"
	"github.com/kgichohi/social_posts/internal/events"
	"github.com/kgichohi/social_posts/internal/logging"
	"github.com/kgichohi/social_posts/internal/middleware/auth"
	"github.com/kgichohi/social_posts/internal/models"
	"github.com/kgichohi/social_posts/internal/util"
)

type PostHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
	Index    *es.PostIndex
}

func (h *PostHandler) indexPost(c echo.Context, post *models.Post) {
	if h.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Index.IndexPost(ctx, post); err != nil {
		logging.FromContext(c.Request().Context()).Error("post indexing failed", "post_id", post.ID, "error", err)
	}
}

func (h *PostHandler) removeFromIndex(c echo.Context, id uint) {
	if h.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Index.RemovePost(ctx, id); err != nil {
		logging.FromContext(c.Request().Context()).Error("post index removal failed", "post_id", id, "error", err)
	}
}

func countVotes(db *gorm.DB, post *models.Post) error {
	return db.Model(&models.Vote{}).Where("post_id = ?", post.ID).Count(&post.VoteCount).Error
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	user := auth.CurrentUser(c)

	var req struct {
		Title     string `json:"title"`
		Content   string `json:"content"`
		Published *bool  `json:"published"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Title == "" || req.Content == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "title and content are required")
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	post := models.Post{
		Title:     req.Title,
		Content:   req.Content,
		Published: published,
		OwnerID:   user.ID,
	}

	db := database.FromContext(c, h.DB)
	if err := db.Create(&post).Error; err != nil {
		return err
	}
	post.Owner = user

	h.indexPost(c, &post)
	publish(c, h.Producer, events.TopicPostEvents, fmt.Sprint(post.ID), map[string]interface{}{
		"type":     "post_created",
		"post_id":  post.ID,
		"owner_id": post.OwnerID,
	})

	return c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	db := database.FromContext(c, h.DB)

	var post models.Post
	if err := db.Preload("Owner").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("post (id: %d) not found", id))
		}
		return err
	}
	if err := countVotes(db, &post); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) ListPosts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	db := database.FromContext(c, h.DB)

	var posts []models.Post
	if err := db.Preload("Owner").Order("id ASC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return err
	}
	for i := range posts {
		if err := countVotes(db, &posts[i]); err != nil {
			return err
		}
	}

	return c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) PatchPost(c echo.Context) error {
	user := auth.CurrentUser(c)

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	var req struct {
		Title     *string `json:"title"`
		Content   *string `json:"content"`
		Published *bool   `json:"published"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}

	db := database.FromContext(c, h.DB)

	var post models.Post
	if err := db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("post (id: %d) not found", id))
		}
		return err
	}
	if post.OwnerID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("not authorized to modify post %d", id))
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	if err := db.Save(&post).Error; err != nil {
		return err
	}
	post.Owner = user
	if err := countVotes(db, &post); err != nil {
		return err
	}

	h.indexPost(c, &post)
	publish(c, h.Producer, events.TopicPostEvents, fmt.Sprint(post.ID), map[string]interface{}{
		"type":     "post_updated",
		"post_id":  post.ID,
		"owner_id": post.OwnerID,
	})

	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	user := auth.CurrentUser(c)

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	db := database.FromContext(c, h.DB)

	var post models.Post
	if err := db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("post (id: %d) not found", id))
		}
		return err
	}
	if post.OwnerID != user.ID {
		return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("not authorized to delete post %d", id))
	}

	// Votes cascade via the foreign keys; the explicit delete keeps
	// databases without enforced FKs (in-memory test DB) consistent.
	if err := db.Where("post_id = ?", post.ID).Delete(&models.Vote{}).Error; err != nil {
		return err
	}
	if err := db.Delete(&post).Error; err != nil {
		return err
	}

	h.removeFromIndex(c, post.ID)
	publish(c, h.Producer, events.TopicPostEvents, fmt.Sprint(post.ID), map[string]interface{}{
		"type":     "post_deleted",
		"post_id":  post.ID,
		"owner_id": post.OwnerID,
	})

	return c.NoContent(http.StatusNoContent)
}
