package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"gorm.io/gorm"
)

type Genre struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	Name      string    `gorm:"size:256;not null;unique" json:"name" validate:"required,max=256"`
	Slug      string    `gorm:"size:50;not null;unique" json:"slug" validate:"omitempty,max=50,slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

func (g *Genre) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (g *Genre) BeforeSave(tx *gorm.DB) error {
	if g.Slug == "" {
		g.Slug = MakeSlug(g.Name)
	}
	return nil
}

func CreateGenre(ctx context.Context, db *gorm.DB, g *Genre) error {
	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		if IsUniqueViolation(err) {
			return utils.NewError(utils.ErrBadRequest.Code, "Genre name or slug already exists", err.Error())
		}
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create genre")
	}
	return nil
}

func GetGenres(ctx context.Context, db *gorm.DB, search, ordering string, limit, offset int) ([]Genre, int64, error) {
	query := db.WithContext(ctx).Model(&Genre{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count genres")
	}

	order := "name"
	if ordering == "-name" {
		order = "name DESC"
	}

	var genres []Genre
	if err := query.Order(order).Limit(limit).Offset(offset).Find(&genres).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get genres")
	}
	return genres, count, nil
}

func GetGenreBySlug(ctx context.Context, db *gorm.DB, slug string) (*Genre, error) {
	var g Genre
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Genre not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get genre")
	}
	return &g, nil
}

func DeleteGenreBySlug(ctx context.Context, db *gorm.DB, slug string) error {
	g, err := GetGenreBySlug(ctx, db, slug)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(g).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete genre")
	}
	return nil
}
