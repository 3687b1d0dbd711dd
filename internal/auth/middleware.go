package auth

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/pkg/logger"
	storage "github.com/reviewhub/reviewhub/pkg/redis"
	"gorm.io/gorm"
)

// Options carries the collaborators the auth middleware needs.
type Options struct {
	DB      *gorm.DB
	Rclient *storage.RedisClient
	Logger  *logger.Logger
}

const userCacheTTL = 30 * time.Minute

// OptionalAuth resolves a bearer token into the request actor when one is
// present and valid. It never rejects: permission evaluators downstream
// decide between 401 and 403. Invalid tokens degrade to anonymous.
func OptionalAuth(opt Options) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			return c.Next()
		}

		claims, err := VerifyToken(tokenString)
		if err != nil {
			opt.Logger.Debug(c.Context()).WithMeta(map[string]string{"error": err.Error()}).Logs("Ignoring invalid bearer token")
			return c.Next()
		}

		user, err := loadUser(c, opt, claims.UserID)
		if err != nil {
			opt.Logger.Warn(c.Context()).WithMeta(map[string]string{"user_id": claims.UserID}).Logs("Token user not found")
			return c.Next()
		}

		c.Locals("user", user)
		c.Locals("user_id", user.ID.String())
		return c.Next()
	}
}

// ActorFromCtx derives the permission-evaluator actor for the request.
func ActorFromCtx(c *fiber.Ctx) Actor {
	if user, ok := c.Locals("user").(*models.User); ok && user != nil {
		return ActorForUser(user)
	}
	return Anonymous()
}

// CurrentUser returns the authenticated user, or nil for anonymous.
func CurrentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals("user").(*models.User); ok {
		return user
	}
	return nil
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// cachedUser is the redis representation of a user. The API-facing User
// hides id and is_superuser from JSON, but the cache needs both.
type cachedUser struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Bio         string    `json:"bio"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
}

func toCached(u *models.User) cachedUser {
	return cachedUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Bio:         u.Bio,
		Role:        u.Role,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
	}
}

func (cu cachedUser) toUser() *models.User {
	return &models.User{
		ID:          cu.ID,
		Username:    cu.Username,
		Email:       cu.Email,
		FirstName:   cu.FirstName,
		LastName:    cu.LastName,
		Bio:         cu.Bio,
		Role:        cu.Role,
		IsActive:    cu.IsActive,
		IsSuperuser: cu.IsSuperuser,
	}
}

// loadUser fetches the token's user, going through the redis cache first.
func loadUser(c *fiber.Ctx, opt Options, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	key := models.UserCacheKey(id)
	if cached, err := opt.Rclient.Get(c.Context(), key).Result(); err == nil && cached != "" {
		var cu cachedUser
		if err := json.Unmarshal([]byte(cached), &cu); err == nil && cu.ID != uuid.Nil {
			return cu.toUser(), nil
		}
		opt.Logger.Warn(c.Context()).Logs("Failed to unmarshal cached user")
	}

	user, err := models.GetUserBy(c.Context(), opt.DB, "id = ?", userID)
	if err != nil {
		return nil, err
	}

	if userJSON, err := json.Marshal(toCached(user)); err == nil {
		opt.Rclient.Set(c.Context(), key, userJSON, userCacheTTL)
	}
	return user, nil
}
