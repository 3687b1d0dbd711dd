package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"github.com/reviewhub/reviewhub/pkg/utils"
)

// ListCategories pages categories with optional name search and ordering.
func ListCategories(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	limit, offset := utils.PageParams(c)
	categories, count, err := models.GetCategories(ctx, DB, c.Query("search"), c.Query("ordering"), limit, offset)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SendPage(c, count, limit, offset, categories)
}

// CreateCategory adds a category; slug is derived from the name when
// omitted. Admin only.
func CreateCategory(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite); !d.Allowed() {
		return deny(c, d)
	}

	var category models.Category
	if err := utils.StrictBodyParser(c, &category); err != nil {
		return badBody(c)
	}
	if resp := Validate.Validate(category); resp != nil {
		return validationFailed(c, resp)
	}

	if err := models.CreateCategory(ctx, DB, &category); err != nil {
		return utils.HandleError(c, err)
	}
	Log.Info(ctx).WithMeta(utils.Map{"slug": category.Slug}).Logs("Category created")
	return c.Status(fiber.StatusCreated).JSON(category)
}

// DeleteCategory removes a category by slug; titles keep existing with a
// nulled category. Admin only.
func DeleteCategory(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite); !d.Allowed() {
		return deny(c, d)
	}

	if err := models.DeleteCategoryBySlug(ctx, DB, c.Params("slug")); err != nil {
		return utils.HandleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
