package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"gorm.io/gorm"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Name      string    `gorm:"size:256;not null;unique" json:"name" validate:"required,max=256"`
	Slug      string    `gorm:"size:50;not null;unique" json:"slug" validate:"omitempty,max=50,slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeSave derives the slug from the name when the client omitted one.
func (c *Category) BeforeSave(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = MakeSlug(c.Name)
	}
	return nil
}

// CreateCategory persists a category; name and slug must be unique.
func CreateCategory(ctx context.Context, db *gorm.DB, c *Category) error {
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if IsUniqueViolation(err) {
			return utils.NewError(utils.ErrBadRequest.Code, "Category name or slug already exists", err.Error())
		}
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create category")
	}
	return nil
}

// GetCategories lists categories with substring search and name ordering.
func GetCategories(ctx context.Context, db *gorm.DB, search, ordering string, limit, offset int) ([]Category, int64, error) {
	query := db.WithContext(ctx).Model(&Category{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count categories")
	}

	order := "name"
	if ordering == "-name" {
		order = "name DESC"
	}

	var categories []Category
	if err := query.Order(order).Limit(limit).Offset(offset).Find(&categories).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get categories")
	}
	return categories, count, nil
}

// GetCategoryBySlug looks a category up by its slug, the public key.
func GetCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*Category, error) {
	var c Category
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Category not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get category")
	}
	return &c, nil
}

// DeleteCategoryBySlug removes a category. Titles referencing it keep
// existing with a nulled category (ON DELETE SET NULL).
func DeleteCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) error {
	c, err := GetCategoryBySlug(ctx, db, slug)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(c).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete category")
	}
	return nil
}
