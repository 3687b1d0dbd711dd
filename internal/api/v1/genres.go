package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"github.com/reviewhub/reviewhub/pkg/utils"
)

// ListGenres pages genres with optional name search and ordering.
func ListGenres(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	limit, offset := utils.PageParams(c)
	genres, count, err := models.GetGenres(ctx, DB, c.Query("search"), c.Query("ordering"), limit, offset)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SendPage(c, count, limit, offset, genres)
}

// CreateGenre adds a genre. Admin only.
func CreateGenre(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite); !d.Allowed() {
		return deny(c, d)
	}

	var genre models.Genre
	if err := utils.StrictBodyParser(c, &genre); err != nil {
		return badBody(c)
	}
	if resp := Validate.Validate(genre); resp != nil {
		return validationFailed(c, resp)
	}

	if err := models.CreateGenre(ctx, DB, &genre); err != nil {
		return utils.HandleError(c, err)
	}
	Log.Info(ctx).WithMeta(utils.Map{"slug": genre.Slug}).Logs("Genre created")
	return c.Status(fiber.StatusCreated).JSON(genre)
}

// DeleteGenre removes a genre by slug; join rows to titles cascade away.
// Admin only.
func DeleteGenre(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite); !d.Allowed() {
		return deny(c, d)
	}

	if err := models.DeleteGenreBySlug(ctx, DB, c.Params("slug")); err != nil {
		return utils.HandleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
