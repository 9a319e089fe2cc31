package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/kgichohi/social_posts/internal/handlers"
	"github.com/kgichohi/social_posts/internal/middleware/auth"
	"github.com/kgichohi/social_posts/internal/token"
)

type Deps struct {
	DB            *gorm.DB
	Tokens        *token.Service
	UserHandler   *handlers.UserHandler
	AuthHandler   *handlers.AuthHandler
	PostHandler   *handlers.PostHandler
	VoteHandler   *handlers.VoteHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, echo.Map{"message": "Hello World"})
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/users", d.UserHandler.Register)
	e.GET("/users/:id", d.UserHandler.GetUser)
	e.POST("/login", d.AuthHandler.Login)

	authed := auth.RequireUser(d.Tokens, d.DB)

	posts := e.Group("/posts", authed)
	posts.GET("/search", d.SearchHandler.SearchPosts)
	posts.GET("", d.PostHandler.ListPosts)
	posts.GET("/:id", d.PostHandler.GetPost)
	posts.POST("", d.PostHandler.CreatePost)
	posts.PATCH("/:id", d.PostHandler.PatchPost)
	posts.DELETE("/:id", d.PostHandler.DeletePost)

	votes := e.Group("/votes", authed)
	votes.POST("", d.VoteHandler.CastVote)
}
