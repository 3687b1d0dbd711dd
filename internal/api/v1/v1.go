// Package v1 implements the versioned REST surface: auth issuance, user
// administration and the catalog/review/comment resources.
package v1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/reviewhub/reviewhub/internal/auth"
	"github.com/reviewhub/reviewhub/pkg/logger"
	storage "github.com/reviewhub/reviewhub/pkg/redis"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"gorm.io/gorm"
)

var (
	DB       *gorm.DB
	Rclient  *storage.RedisClient
	Log      *logger.Logger
	Validate *utils.Validator
	Email    utils.EmailConfig
)

// Setup wires the package collaborators before routes are registered.
func Setup(db *gorm.DB, rclient *storage.RedisClient, log *logger.Logger, email utils.EmailConfig) {
	DB = db
	Rclient = rclient
	Log = log
	Email = email
	Validate = utils.NewValidator()
}

// deny translates an evaluator denial into the HTTP response.
func deny(c *fiber.Ctx, d auth.Decision) error {
	if d == auth.DenyUnauthenticated {
		return utils.HandleError(c, utils.NewError(utils.ErrUnauthorized.Code,
			"Authentication credentials were not provided"))
	}
	return utils.HandleError(c, utils.NewError(utils.ErrForbidden.Code,
		"You do not have permission to perform this action"))
}

// pathUUID parses a path parameter as a UUID. Malformed ids read as
// lookups of objects that cannot exist, hence 404 rather than 400.
func pathUUID(c *fiber.Ctx, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, utils.NewError(utils.ErrNotFound.Code, resource+" not found")
	}
	return id, nil
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}

func validationFailed(c *fiber.Ctx, resp *utils.ErrorResponse) error {
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}
