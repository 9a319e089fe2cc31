package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kgichohi/social_posts/internal/es"
	"github.com/kgichohi/social_posts/internal/util"
)

type SearchHandler struct {
	Index *es.PostIndex
}

func (h *SearchHandler) SearchPosts(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	if h.Index == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, posts, err := h.Index.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "posts": posts})
}
