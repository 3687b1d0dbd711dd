package v1

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"github.com/reviewhub/reviewhub/pkg/utils"
)

// titleCreateRequest is the write view: category and genres by slug.
type titleCreateRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genre       []string `json:"genre"`
}

type titleUpdateRequest struct {
	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Genre       []string `json:"genre"`
}

// ListTitles pages titles filtered by name, year, category slug and
// genre slug, each title carrying its computed rating.
func ListTitles(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	filter := models.TitleFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "year must be an integer"))
		}
		filter.Year = &year
	}

	limit, offset := utils.PageParams(c)
	titles, count, err := models.GetTitles(ctx, DB, filter, limit, offset)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SendPage(c, count, limit, offset, titles)
}

// CreateTitle adds a title, resolving category and genre slugs. Admin only.
func CreateTitle(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite); !d.Allowed() {
		return deny(c, d)
	}

	var req titleCreateRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	if resp := Validate.Validate(req); resp != nil {
		return validationFailed(c, resp)
	}

	title := models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}
	if err := models.CreateTitle(ctx, DB, &title, req.Category, req.Genre); err != nil {
		return utils.HandleError(c, err)
	}

	created, err := models.GetTitleByID(ctx, DB, title.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	Log.Info(ctx).WithMeta(utils.Map{"title": created.Name}).Logs("Title created")
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetTitle fetches one title with nested category, genres and rating.
func GetTitle(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	id, err := pathUUID(c, "title_id", "Title")
	if err != nil {
		return utils.HandleError(c, err)
	}
	title, err := models.GetTitleByID(ctx, DB, id)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(title)
}

// UpdateTitle partially updates a title; absent fields stay untouched,
// a present genre list replaces the whole set. Admin only.
func UpdateTitle(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite); !d.Allowed() {
		return deny(c, d)
	}

	id, err := pathUUID(c, "title_id", "Title")
	if err != nil {
		return utils.HandleError(c, err)
	}
	title, err := models.GetTitleByID(ctx, DB, id)
	if err != nil {
		return utils.HandleError(c, err)
	}

	var req titleUpdateRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if resp := Validate.Validate(title); resp != nil {
		return validationFailed(c, resp)
	}

	if err := models.UpdateTitle(ctx, DB, title, req.Category, req.Genre); err != nil {
		return utils.HandleError(c, err)
	}

	updated, err := models.GetTitleByID(ctx, DB, title.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteTitle removes a title; its reviews and their comments cascade.
// Admin only.
func DeleteTitle(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite); !d.Allowed() {
		return deny(c, d)
	}

	id, err := pathUUID(c, "title_id", "Title")
	if err != nil {
		return utils.HandleError(c, err)
	}
	title, err := models.GetTitleByID(ctx, DB, id)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if err := models.DeleteTitle(ctx, DB, title); err != nil {
		return utils.HandleError(c, err)
	}
	Log.Info(ctx).WithMeta(utils.Map{"title": title.Name}).Logs("Title deleted")
	return c.SendStatus(fiber.StatusNoContent)
}
