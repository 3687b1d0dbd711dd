package v1

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"github.com/reviewhub/reviewhub/pkg/utils"
)

type commentCreateRequest struct {
	Text string `json:"text" validate:"required"`
}

type commentUpdateRequest struct {
	Text *string `json:"text"`
}

// parentReview walks the nested path down to the review, 404 at the
// first missing ancestor.
func parentReview(ctx context.Context, c *fiber.Ctx) (*models.Review, error) {
	return loadReview(ctx, c)
}

// ListComments pages a review's comments, newest first.
func ListComments(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	review, err := parentReview(ctx, c)
	if err != nil {
		return utils.HandleError(c, err)
	}

	limit, offset := utils.PageParams(c)
	comments, count, err := models.GetComments(ctx, DB, review.ID, limit, offset)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SendPage(c, count, limit, offset, comments)
}

// CreateComment posts a comment on a review as the authenticated user.
func CreateComment(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AuthenticatedOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite); !d.Allowed() {
		return deny(c, d)
	}

	review, err := parentReview(ctx, c)
	if err != nil {
		return utils.HandleError(c, err)
	}

	var req commentCreateRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	if resp := Validate.Validate(req); resp != nil {
		return validationFailed(c, resp)
	}

	user := auth.CurrentUser(c)
	comment := models.Comment{
		Text:     req.Text,
		ReviewID: review.ID,
		AuthorID: user.ID,
	}
	if err := models.CreateComment(ctx, DB, &comment); err != nil {
		return utils.HandleError(c, err)
	}
	comment.AuthorName = user.Username

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// loadComment resolves title, review, then the comment inside it.
func loadComment(ctx context.Context, c *fiber.Ctx) (*models.Comment, error) {
	review, err := parentReview(ctx, c)
	if err != nil {
		return nil, err
	}
	id, err := pathUUID(c, "comment_id", "Comment")
	if err != nil {
		return nil, err
	}
	return models.GetCommentByID(ctx, DB, review.ID, id)
}

// GetComment fetches one comment scoped to its review.
func GetComment(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	comment, err := loadComment(ctx, c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(comment)
}

// UpdateComment edits a comment's text. Author, moderator or admin.
func UpdateComment(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	comment, err := loadComment(ctx, c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if d := auth.OwnerModAdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite, comment.AuthorID); !d.Allowed() {
		return deny(c, d)
	}

	var req commentUpdateRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	if req.Text != nil {
		comment.Text = *req.Text
	}
	if resp := Validate.Validate(comment); resp != nil {
		return validationFailed(c, resp)
	}

	if err := models.UpdateComment(ctx, DB, comment); err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(comment)
}

// DeleteComment removes a comment. Author, moderator or admin.
func DeleteComment(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	comment, err := loadComment(ctx, c)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if d := auth.OwnerModAdminOrReadOnly(auth.ActorFromCtx(c), auth.VerbWrite, comment.AuthorID); !d.Allowed() {
		return deny(c, d)
	}

	if err := models.DeleteComment(ctx, DB, comment); err != nil {
		return utils.HandleError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
