package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"gorm.io/gorm"
)

type Title struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"size:256;not null;index" json:"name" validate:"required,max=256"`
	Year        int        `gorm:"not null" json:"year" validate:"min=0"`
	Description string     `gorm:"type:text" json:"description"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"-"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category"`
	Genres   []Genre   `gorm:"many2many:genre_titles;constraint:OnDelete:CASCADE" json:"genre"`

	// Rating is the mean review score, computed on read and never stored.
	// nil when the title has no reviews.
	Rating *float64 `gorm:"-" json:"rating"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

// GenreTitle is the explicit join entity linking titles and genres.
type GenreTitle struct {
	TitleID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	GenreID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (t *Title) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ValidateYear bounds the year between 0 and the current year. The upper
// bound is dynamic, so it lives here instead of a validator tag.
func ValidateYear(year int) error {
	current := time.Now().Year()
	if year < 0 || year > current {
		return utils.NewError(utils.ErrBadRequest.Code,
			fmt.Sprintf("Year must be between 0 and %d", current))
	}
	return nil
}

// TitleFilter mirrors the list endpoint's query params.
type TitleFilter struct {
	Name     string
	Year     *int
	Category string
	Genre    string
}

func applyTitleFilter(query *gorm.DB, f TitleFilter) *gorm.DB {
	if f.Name != "" {
		query = query.Where("titles.name LIKE ?", "%"+f.Name+"%")
	}
	if f.Year != nil {
		query = query.Where("titles.year = ?", *f.Year)
	}
	if f.Category != "" {
		query = query.
			Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", f.Category)
	}
	if f.Genre != "" {
		query = query.
			Joins("JOIN genre_titles ON genre_titles.title_id = titles.id").
			Joins("JOIN genres ON genres.id = genre_titles.genre_id").
			Where("genres.slug = ?", f.Genre)
	}
	return query
}

// resolveTitleRefs turns slug references from the write view into rows.
func resolveTitleRefs(ctx context.Context, db *gorm.DB, categorySlug string, genreSlugs []string) (*Category, []Genre, error) {
	var category *Category
	if categorySlug != "" {
		c, err := GetCategoryBySlug(ctx, db, categorySlug)
		if err != nil {
			return nil, nil, utils.NewError(utils.ErrBadRequest.Code, "Unknown category slug: "+categorySlug)
		}
		category = c
	}

	genres := make([]Genre, 0, len(genreSlugs))
	for _, s := range genreSlugs {
		g, err := GetGenreBySlug(ctx, db, s)
		if err != nil {
			return nil, nil, utils.NewError(utils.ErrBadRequest.Code, "Unknown genre slug: "+s)
		}
		genres = append(genres, *g)
	}
	return category, genres, nil
}

// CreateTitle persists a title from the write view (category/genres by slug).
func CreateTitle(ctx context.Context, db *gorm.DB, t *Title, categorySlug string, genreSlugs []string) error {
	if err := ValidateYear(t.Year); err != nil {
		return err
	}

	category, genres, err := resolveTitleRefs(ctx, db, categorySlug, genreSlugs)
	if err != nil {
		return err
	}
	if category != nil {
		t.CategoryID = &category.ID
		t.Category = category
	}
	t.Genres = genres

	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create title")
	}
	return nil
}

// UpdateTitle applies a partial update; nil slug pointers leave refs alone.
func UpdateTitle(ctx context.Context, db *gorm.DB, t *Title, categorySlug *string, genreSlugs []string) error {
	if err := ValidateYear(t.Year); err != nil {
		return err
	}

	if categorySlug != nil {
		category, _, err := resolveTitleRefs(ctx, db, *categorySlug, nil)
		if err != nil {
			return err
		}
		if category != nil {
			t.CategoryID = &category.ID
			t.Category = category
		} else {
			t.CategoryID = nil
			t.Category = nil
		}
	}

	if err := db.WithContext(ctx).Omit("Genres", "Category").Save(t).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update title")
	}

	if genreSlugs != nil {
		_, genres, err := resolveTitleRefs(ctx, db, "", genreSlugs)
		if err != nil {
			return err
		}
		if err := db.WithContext(ctx).Model(t).Association("Genres").Replace(&genres); err != nil {
			return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update title genres")
		}
		t.Genres = genres
	}
	return nil
}

// GetTitles lists titles with filters, nested category/genres and ratings.
func GetTitles(ctx context.Context, db *gorm.DB, f TitleFilter, limit, offset int) ([]Title, int64, error) {
	query := applyTitleFilter(db.WithContext(ctx).Model(&Title{}), f)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count titles")
	}

	var titles []Title
	err := query.
		Preload("Category").
		Preload("Genres").
		Order("titles.name").
		Limit(limit).
		Offset(offset).
		Find(&titles).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get titles")
	}

	if err := AttachRatings(ctx, db, titles); err != nil {
		return nil, 0, err
	}
	return titles, count, nil
}

// GetTitleByID retrieves one title with nested refs and its rating.
func GetTitleByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Title, error) {
	var t Title
	err := db.WithContext(ctx).
		Preload("Category").
		Preload("Genres").
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Title not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get title")
	}

	rating, err := TitleRating(ctx, db, t.ID)
	if err != nil {
		return nil, err
	}
	t.Rating = rating
	return &t, nil
}

// DeleteTitle removes a title; reviews and their comments cascade.
func DeleteTitle(ctx context.Context, db *gorm.DB, t *Title) error {
	if err := db.WithContext(ctx).Delete(t).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete title")
	}
	return nil
}

// AttachRatings computes mean review scores for a batch in one query.
func AttachRatings(ctx context.Context, db *gorm.DB, titles []Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
	}

	type ratingRow struct {
		TitleID uuid.UUID
		Avg     float64
	}
	var rows []ratingRow
	err := db.WithContext(ctx).
		Model(&Review{}).
		Select("title_id, AVG(score) AS avg").
		Where("title_id IN ?", ids).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to compute ratings")
	}

	byID := make(map[uuid.UUID]float64, len(rows))
	for _, r := range rows {
		byID[r.TitleID] = r.Avg
	}
	for i := range titles {
		if avg, ok := byID[titles[i].ID]; ok {
			titles[i].Rating = &avg
		}
	}
	return nil
}
