package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kgichohi/social_posts/internal/database"
	"github.com/kgichohi/social_posts/internal/events"
	"github.com/kgichohi/social_posts/internal/middleware/auth"
	"github.com/kgichohi/social_posts/internal/models"
)

type VoteHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

// CastVote toggles the like relationship between the current user and a post.
// Direction 1 inserts, direction 0 deletes; repeating a direction is an error
// (409 for a duplicate like, 404 for removing a vote that is not there).
func (h *VoteHandler) CastVote(c echo.Context) error {
	user := auth.CurrentUser(c)

	var req struct {
		PostID  uint `json:"post_id"`
		VoteDir *int `json:"vote_dir"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.PostID == 0 || req.VoteDir == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "post_id and vote_dir are required")
	}
	dir := *req.VoteDir
	if dir != 0 && dir != 1 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "vote_dir must be 0 or 1")
	}

	db := database.FromContext(c, h.DB)

	var post models.Post
	if err := db.First(&post, req.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("post (id: %d) not found", req.PostID))
		}
		return err
	}

	var vote models.Vote
	err := db.Where("post_id = ? AND user_id = ?", req.PostID, user.ID).First(&vote).Error
	switch {
	case err == nil && dir == 1:
		return echo.NewHTTPError(http.StatusConflict,
			fmt.Sprintf("you (%s) have already voted on post %d", user.Name, req.PostID))

	case err == nil:
		if err := db.Delete(&vote).Error; err != nil {
			return err
		}
		publish(c, h.Producer, events.TopicVoteEvents, fmt.Sprint(req.PostID), map[string]interface{}{
			"type":    "vote_removed",
			"post_id": req.PostID,
			"user_id": user.ID,
		})
		return c.JSON(http.StatusOK, echo.Map{"message": "vote deleted."})

	case errors.Is(err, gorm.ErrRecordNotFound) && dir == 0:
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("vote on post %d not found", req.PostID))

	case errors.Is(err, gorm.ErrRecordNotFound):
		vote = models.Vote{PostID: req.PostID, UserID: user.ID}
		if err := db.Create(&vote).Error; err != nil {
			// concurrent like lost the race to the composite key
			return echo.NewHTTPError(http.StatusConflict,
				fmt.Sprintf("you (%s) have already voted on post %d", user.Name, req.PostID))
		}
		publish(c, h.Producer, events.TopicVoteEvents, fmt.Sprint(req.PostID), map[string]interface{}{
			"type":    "vote_cast",
			"post_id": req.PostID,
			"user_id": user.ID,
		})
		return c.JSON(http.StatusCreated, echo.Map{"message": "post liked successfully."})

	default:
		return err
	}
}
