package v1

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/logger"
	"github.com/reviewhub/reviewhub/pkg/utils"
)

const (
	confirmCodeTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

func refreshKey(token string) string {
	return "refresh:" + token
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=150,username"`
}

// Signup registers a user (or re-requests a code for an existing one) and
// emails a confirmation code. Repeating the same (username, email) pair
// issues a fresh code instead of failing.
func Signup(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	var req signupRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	if resp := Validate.Validate(req); resp != nil {
		return validationFailed(c, resp)
	}

	user, err := models.GetOrCreateUser(ctx, DB, req.Username, req.Email)
	if err != nil {
		return utils.HandleError(c, err)
	}

	code, err := utils.GenerateConfirmationCode()
	if err != nil {
		return utils.HandleError(c, err)
	}
	hash, err := utils.HashCode(fmt.Sprintf("%08d", code))
	if err != nil {
		return utils.HandleError(c, err)
	}
	if err := Rclient.Set(ctx, models.ConfirmCodeKey(user.Username), hash, confirmCodeTTL).Err(); err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to store confirmation code"))
	}

	// Signup still succeeds on delivery failure; the client keeps the
	// account and can request another code.
	if err := utils.SendConfirmationEmail(ctx, Email, user.Email, user.Username, code, Log); err != nil {
		Log.Warn(ctx).WithMeta(utils.Map{"username": user.Username}).Logs("Signup completed without email delivery")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"email":    user.Email,
		"username": user.Username,
	})
}

type tokenRequest struct {
	Username         string `json:"username" validate:"required,max=150,username"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

// Token exchanges a confirmation code for a JWT access token plus an
// opaque refresh token. Unknown usernames are 404; a known user with a
// wrong, expired or spent code is 400.
func Token(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	var req tokenRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	if resp := Validate.Validate(req); resp != nil {
		return validationFailed(c, resp)
	}

	user, err := models.GetUserBy(ctx, DB, "username = ?", req.Username)
	if err != nil {
		return utils.HandleError(c, err)
	}

	hash, err := Rclient.Get(ctx, models.ConfirmCodeKey(user.Username)).Result()
	if err == redis.Nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid confirmation code"))
	}
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to read confirmation code"))
	}
	if err := utils.CompareCode(hash, req.ConfirmationCode); err != nil {
		return utils.HandleError(c, utils.NewError(utils.ErrBadRequest.Code, "Invalid confirmation code"))
	}

	// Single use: a code that minted a token can never mint another.
	Rclient.Del(ctx, models.ConfirmCodeKey(user.Username))

	accessToken, err := auth.GenerateAccessToken(user.ID.String(), user.Username, user.Role)
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to generate token"))
	}

	refreshToken := auth.GenerateRefreshToken()
	if err := Rclient.Set(ctx, refreshKey(refreshToken), user.ID.String(), refreshTokenTTL).Err(); err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to store refresh token"))
	}

	Log.Info(ctx).WithMeta(utils.Map{"username": user.Username}).Logs("Access token issued")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"username":      user.Username,
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh rotates a refresh token: the old one is spent and a new access
// plus refresh pair comes back.
func Refresh(c *fiber.Ctx) error {
	ctx := logger.SetupRoutesContext(c)

	var req refreshRequest
	if err := utils.StrictBodyParser(c, &req); err != nil {
		return badBody(c)
	}
	if resp := Validate.Validate(req); resp != nil {
		return validationFailed(c, resp)
	}

	userID, err := Rclient.Get(ctx, refreshKey(req.RefreshToken)).Result()
	if err == redis.Nil {
		return utils.HandleError(c, utils.NewError(utils.ErrUnauthorized.Code, "Invalid refresh token"))
	}
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to read refresh token"))
	}

	user, err := models.GetUserBy(ctx, DB, "id = ?", userID)
	if err != nil {
		Rclient.Del(ctx, refreshKey(req.RefreshToken))
		return utils.HandleError(c, utils.NewError(utils.ErrUnauthorized.Code, "Invalid refresh token"))
	}

	Rclient.Del(ctx, refreshKey(req.RefreshToken))

	accessToken, err := auth.GenerateAccessToken(user.ID.String(), user.Username, user.Role)
	if err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to generate token"))
	}
	refreshToken := auth.GenerateRefreshToken()
	if err := Rclient.Set(ctx, refreshKey(refreshToken), user.ID.String(), refreshTokenTTL).Err(); err != nil {
		return utils.HandleError(c, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to store refresh token"))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}
