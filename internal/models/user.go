package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	storage "github.com/reviewhub/reviewhub/pkg/redis"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"gorm.io/gorm"
)

// Roles form a closed set; every permission decision derives from them.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

func ValidRole(role string) bool {
	return utils.Contains([]string{RoleUser, RoleModerator, RoleAdmin}, role)
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`

	Username    string `gorm:"size:150;not null;unique;check:username_not_me,username <> 'me'" json:"username" validate:"required,max=150,username"`
	Email       string `gorm:"size:254;not null;unique" json:"email" validate:"required,email,max=254"`
	FirstName   string `gorm:"size:150" json:"first_name" validate:"omitempty,max=150"`
	LastName    string `gorm:"size:150" json:"last_name" validate:"omitempty,max=150"`
	Bio         string `gorm:"type:text" json:"bio"`
	Role        string `gorm:"size:60;not null;default:user" json:"role" validate:"omitempty,oneof=user moderator admin"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
	IsSuperuser bool   `gorm:"default:false" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// BeforeSave backs up the DB check constraint; "me" never reaches storage.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Username == "me" {
		return utils.NewError(utils.ErrBadRequest.Code, `Username cannot be "me"`)
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u.IsSuperuser || u.Role == RoleAdmin
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// UserCacheKey is the redis key the auth middleware caches users under.
func UserCacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

// ConfirmCodeKey holds the bcrypt hash of a user's pending confirmation code.
func ConfirmCodeKey(username string) string {
	return "confirm:" + username
}

// GetOrCreateUser implements the idempotent signup lookup: an existing
// (username, email) pair is returned as-is, anything else is created.
// Partial collisions (username taken with another email, or vice versa)
// surface as unique violations for the caller to map.
func GetOrCreateUser(ctx context.Context, db *gorm.DB, username, email string) (*User, error) {
	var u User
	err := db.WithContext(ctx).Where("username = ? AND email = ?", username, email).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to look up user")
	}

	u = User{Username: username, Email: email, Role: RoleUser}
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, utils.NewError(utils.ErrBadRequest.Code, "Username or email already taken", err.Error())
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create user")
	}
	return &u, nil
}

// GetUserBy retrieves a single user matching the condition.
func GetUserBy(ctx context.Context, db *gorm.DB, condition string, args ...interface{}) (*User, error) {
	var u User
	if err := db.WithContext(ctx).Where(condition, args...).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "User not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get user")
	}
	return &u, nil
}

// GetUsers retrieves users with pagination and optional username search.
func GetUsers(ctx context.Context, db *gorm.DB, search string, limit, offset int) ([]User, int64, error) {
	query := db.WithContext(ctx).Model(&User{})
	if search != "" {
		query = query.Where("username LIKE ?", "%"+search+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count users")
	}

	var users []User
	if err := query.Order("username").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get users")
	}
	return users, count, nil
}

// CreateUser persists an admin-created user.
func CreateUser(ctx context.Context, db *gorm.DB, u *User) error {
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if IsUniqueViolation(err) {
			return utils.NewError(utils.ErrBadRequest.Code, "Username or email already taken", err.Error())
		}
		if appErr, ok := err.(*utils.CustomError); ok {
			return appErr
		}
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create user")
	}
	return nil
}

// UpdateUser applies options and saves. Any pending confirmation code is
// invalidated: codes are bound to the user state they were issued against.
func UpdateUser(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, u *User, opts ...UserOption) error {
	for _, opt := range opts {
		opt(u)
	}

	if err := db.WithContext(ctx).Save(u).Error; err != nil {
		if IsUniqueViolation(err) {
			return utils.NewError(utils.ErrBadRequest.Code, "Username or email already taken", err.Error())
		}
		if appErr, ok := err.(*utils.CustomError); ok {
			return appErr
		}
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update user")
	}

	rclient.Del(ctx, UserCacheKey(u.ID))
	rclient.Del(ctx, ConfirmCodeKey(u.Username))
	return nil
}

// DeleteUser removes a user and clears their cache entries.
func DeleteUser(ctx context.Context, rclient *storage.RedisClient, db *gorm.DB, u *User) error {
	if err := db.WithContext(ctx).Delete(u).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete user")
	}
	rclient.Del(ctx, UserCacheKey(u.ID))
	rclient.Del(ctx, ConfirmCodeKey(u.Username))
	return nil
}
