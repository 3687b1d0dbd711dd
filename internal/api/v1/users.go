package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"github.com/reviewhub/reviewhub/pkg/utils"
)

// userUpdateRequest is the partial-update body; nil fields stay untouched.
type userUpdateRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

func (r *userUpdateRequest) options() []models.UserOption {
	var opts []models.UserOption
	if r.Username != nil {
		opts = append(opts, models.WithUsername(*r.Username))
	}
	if r.Email != nil {
		opts = append(opts, models.WithEmail(*r.Email))
	}
	if r.FirstName != nil {
		opts = append(opts, models.WithFirstName(*r.FirstName))
	}
	if r.LastName != nil {
		opts = append(opts, models.WithLastName(*r.LastName))
	}
	if r.Bio != nil {
		opts = append(opts, models.WithBio(*r.Bio))
	}
	if r.Role != nil {
		opts = append(opts, models.WithRole(*r.Role))
	}
	return opts
}

// ListUsers pages through all accounts. Admin only.
func ListUsers(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOnly(auth.ActorFromCtx(c)); !d.Allowed() {
		return deny(c, d)
	}

	limit, offset := utils.PageParams(c)
	users, count, err := models.GetUsers(ctx, DB, c.Query("search"), limit, offset)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.SendPage(c, count, limit, offset, users)
}

// CreateUser provisions an account directly, bypassing signup. Admin only.
func CreateUser(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOnly(auth.ActorFromCtx(c)); !d.Allowed() {
		return deny(c, d)
	}

	var user models.User
	if err := utils.StrictBodyParser(c, &user); err != nil {
		return badBody(c)
	}
	if user.Role != "" && !models.ValidRole(user.Role) {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid role"))
	}
	if resp := Validate.Validate(user); resp != nil {
		return validationFailed(c, resp)
	}

	if err := models.CreateUser(ctx, DB, &user); err != nil {
		return utils.HandleError(c, err)
	}
	Log.Info(ctx).WithMeta(utils.Map{"username": user.Username}).Logs("User created by admin")
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUser fetches one account by username. Admin only.
func GetUser(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOnly(auth.ActorFromCtx(c)); !d.Allowed() {
		return deny(c, d)
	}

	user, err := models.GetUserBy(ctx, DB, "username = ?", c.Params("username"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// UpdateUser partially updates any account, role included. Admin only.
func UpdateUser(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOnly(auth.ActorFromCtx(c)); !d.Allowed() {
		return deny(c, d)
	}

	user, err := models.GetUserBy(ctx, DB, "username = ?", c.Params("username"))
	if err != nil {
		return utils.HandleError(c, err)
	}

	var req userUpdateRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	if req.Role != nil && !models.ValidRole(*req.Role) {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid role"))
	}

	updated := *user
	for _, opt := range req.options() {
		opt(&updated)
	}
	if resp := Validate.Validate(updated); resp != nil {
		return validationFailed(c, resp)
	}

	if err := models.UpdateUser(ctx, Rclient, DB, &updated); err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}

// DeleteUser removes an account. Admin only.
func DeleteUser(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.AdminOnly(auth.ActorFromCtx(c)); !d.Allowed() {
		return deny(c, d)
	}

	user, err := models.GetUserBy(ctx, DB, "username = ?", c.Params("username"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	if err := models.DeleteUser(ctx, Rclient, DB, user); err != nil {
		return utils.HandleError(c, err)
	}
	Log.Info(ctx).WithMeta(utils.Map{"username": user.Username}).Logs("User deleted")
	return c.SendStatus(fiber.StatusNoContent)
}

// Me returns the authenticated user's own profile.
func Me(c *fiber.Ctx) error {
	if d := auth.SelfOnly(auth.ActorFromCtx(c)); !d.Allowed() {
		return deny(c, d)
	}
	return c.Status(fiber.StatusOK).JSON(auth.CurrentUser(c))
}

// UpdateMe lets a user edit their own profile. The role field is pinned
// to its current value: self-service promotion is not a thing.
func UpdateMe(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)
	if d := auth.SelfOnly(auth.ActorFromCtx(c)); !d.Allowed() {
		return deny(c, d)
	}

	// The middleware user may have been rebuilt from the cache; reload the
	// row so the save sees every column, timestamps included.
	user, err := models.GetUserBy(ctx, DB, "id = ?", auth.CurrentUser(c).ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	var req userUpdateRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	req.Role = nil

	updated := *user
	for _, opt := range req.options() {
		opt(&updated)
	}
	updated.Role = user.Role
	if resp := Validate.Validate(updated); resp != nil {
		return validationFailed(c, resp)
	}

	if err := models.UpdateUser(ctx, Rclient, DB, &updated); err != nil {
		return utils.HandleError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(updated)
}
