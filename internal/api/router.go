// Package api assembles the fiber app: middleware stack and route table.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	v1 "github.com/reviewhub/reviewhub/internal/api/v1"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/pkg/logger"
	storage "github.com/reviewhub/reviewhub/pkg/redis"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"gorm.io/gorm"
)

// SetupRoutes installs the middleware stack and mounts the v1 API.
func SetupRoutes(app *fiber.App, db *gorm.DB, rclient *storage.RedisClient, log *logger.Logger, email utils.EmailConfig) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(compress.New())
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))
	app.Use(logger.SetupLogger(log))
	app.Use(log.Middleware())

	v1.Setup(db, rclient, log, email)

	api := app.Group("/api/v1", auth.OptionalAuth(auth.Options{
		DB:      db,
		Rclient: rclient,
		Logger:  log,
	}))

	api.Post("/auth/signup", v1.Signup)
	api.Post("/auth/token", v1.Token)
	api.Post("/auth/token/refresh", v1.Refresh)

	users := api.Group("/users")
	users.Get("/", v1.ListUsers)
	users.Post("/", v1.CreateUser)
	// /users/me comes before the username wildcard on purpose.
	users.Get("/me", v1.Me)
	users.Patch("/me", v1.UpdateMe)
	users.Get("/:username", v1.GetUser)
	users.Patch("/:username", v1.UpdateUser)
	users.Delete("/:username", v1.DeleteUser)

	categories := api.Group("/categories")
	categories.Get("/", v1.ListCategories)
	categories.Post("/", v1.CreateCategory)
	categories.Delete("/:slug", v1.DeleteCategory)

	genres := api.Group("/genres")
	genres.Get("/", v1.ListGenres)
	genres.Post("/", v1.CreateGenre)
	genres.Delete("/:slug", v1.DeleteGenre)

	titles := api.Group("/titles")
	titles.Get("/", v1.ListTitles)
	titles.Post("/", v1.CreateTitle)
	titles.Get("/:title_id", v1.GetTitle)
	titles.Patch("/:title_id", v1.UpdateTitle)
	titles.Delete("/:title_id", v1.DeleteTitle)

	reviews := titles.Group("/:title_id/reviews")
	reviews.Get("/", v1.ListReviews)
	reviews.Post("/", v1.CreateReview)
	reviews.Get("/:review_id", v1.GetReview)
	reviews.Patch("/:review_id", v1.UpdateReview)
	reviews.Delete("/:review_id", v1.DeleteReview)

	comments := reviews.Group("/:review_id/comments")
	comments.Get("/", v1.ListComments)
	comments.Post("/", v1.CreateComment)
	comments.Get("/:comment_id", v1.GetComment)
	comments.Patch("/:comment_id", v1.UpdateComment)
	comments.Delete("/:comment_id", v1.DeleteComment)
}
