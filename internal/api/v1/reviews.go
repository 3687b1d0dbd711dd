package v1

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"github.com/reviewhub/reviewhub/pkg/utils"
)

type reviewCreateRequest struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"required,min=1,max=10"`
}

type reviewUpdateRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// parentTitle resolves the title a nested route hangs off, 404 first.
func parentTitle(ctx context.Context, c *fiber.Ctx) (*models.Title, error) {
	id, err := pathUUID(c, "title_id", "Title")
	if err != nil {
		return nil, err
	}
	return models.GetTitleByID(ctx, DB, id)
}

// ListReviews pages a title's reviews, newest first.
func ListReviews(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	title, err := parentTitle(ctx, c)
	if err != nil {
		return utils.HandleError(c, err)
	}

	limit, offset := utils.PageParams(c)
	reviews, count, err := models.GetReviews(ctx, DB, title.ID, limit, offset)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SendPage(c, count, limit, offset, reviews)
}

// CreateReview posts a review as the authenticated user. One review per
// user per title.
func CreateReview(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AuthenticatedOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite); !d.Allowed() {
		return deny(c, d)
	}

	title, err := parentTitle(ctx, c)
	if err != nil {
		return utils.HandleError(c, err)
	}

	var req reviewCreateRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	if resp := Validate.Validate(req); resp != nil {
		return validationFailed(c, resp)
	}

	user := auth.CurrentUser(c)
	review := models.Review{
		Text:     req.Text,
		Score:    req.Score,
		TitleID:  title.ID,
		AuthorID: user.ID,
	}
	if err := models.CreateReview(ctx, DB, &review); err != nil {
		return utils.HandleError(c, err)
	}
	review.AuthorName = user.Username

	Log.Info(ctx).WithMeta(utils.Map{"title": title.Name, "author": user.Username}).Logs("Review created")
	return c.Status(fiber.StatusCreated).JSON(review)
}

// loadReview resolves the title then the review inside it.
func loadReview(ctx context.Context, c *fiber.Ctx) (*models.Review, error) {
	title, err := parentTitle(ctx, c)
	if err != nil {
		return nil, err
	}
	id, err := pathUUID(c, "review_id", "Review")
	if err != nil {
		return nil, err
	}
	return models.GetReviewByID(ctx, DB, title.ID, id)
}

// GetReview fetches one review scoped to its title.
func GetReview(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	review, err := loadReview(ctx, c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(review)
}

// UpdateReview edits a review's text or score. Author, moderator or admin.
func UpdateReview(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	review, err := loadReview(ctx, c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if d := auth.OwnerModAdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite, review.AuthorID); !d.Allowed() {
		return deny(c, d)
	}

	var req reviewUpdateRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}
	if resp := Validate.Validate(review); resp != nil {
		return validationFailed(c, resp)
	}

	if err := models.UpdateReview(ctx, DB, review); err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(review)
}

// DeleteReview removes a review and cascades its comments. Author,
// moderator or admin.
func DeleteReview(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	review, err := loadReview(ctx, c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if d := auth.OwnerModAdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite, review.AuthorID); !d.Allowed() {
		return deny(c, d)
	}

	if err := models.DeleteReview(ctx, DB, review); err != nil {
		return utils.HandleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
