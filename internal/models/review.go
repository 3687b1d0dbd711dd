package models

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"gorm.io/gorm"
)

type Review struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text" validate:"required"`
	TitleID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_author_title" json:"-"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_author_title" json:"-"`
	Score    int       `gorm:"not null" json:"score" validate:"required,min=1,max=10"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`

	Title  Title `gorm:"foreignKey:TitleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Author User  `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	// AuthorName is the serialized author reference (username).
	AuthorName string `gorm:"-" json:"author"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CreateReview enforces one review per (author, title). The pre-check
// produces the descriptive conflict message; the unique index catches the
// race when two creates slip past it concurrently.
func CreateReview(ctx context.Context, db *gorm.DB, r *Review) error {
	var existing Review
	err := db.WithContext(ctx).
		Where("title_id = ? AND author_id = ?", r.TitleID, r.AuthorID).
		First(&existing).Error
	if err == nil {
		return utils.NewError(utils.ErrBadRequest.Code, "You have already reviewed this title")
	}
	if err != gorm.ErrRecordNotFound {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to check existing review")
	}

	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if IsUniqueViolation(err) {
			return utils.NewError(utils.ErrBadRequest.Code, "You have already reviewed this title")
		}
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create review")
	}
	return nil
}

// GetReviews lists a title's reviews, newest first.
func GetReviews(ctx context.Context, db *gorm.DB, titleID uuid.UUID, limit, offset int) ([]Review, int64, error) {
	query := db.WithContext(ctx).Model(&Review{}).Where("title_id = ?", titleID)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count reviews")
	}

	var reviews []Review
	err := query.
		Preload("Author").
		Order("pub_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get reviews")
	}

	for i := range reviews {
		reviews[i].AuthorName = reviews[i].Author.Username
	}
	return reviews, count, nil
}

// GetReviewByID retrieves a review scoped to its owning title.
func GetReviewByID(ctx context.Context, db *gorm.DB, titleID, id uuid.UUID) (*Review, error) {
	var r Review
	err := db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND title_id = ?", id, titleID).
		First(&r).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Review not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get review")
	}
	r.AuthorName = r.Author.Username
	return &r, nil
}

// UpdateReview saves edited text/score.
func UpdateReview(ctx context.Context, db *gorm.DB, r *Review) error {
	if err := db.WithContext(ctx).Omit("Author", "Title").Save(r).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update review")
	}
	return nil
}

// DeleteReview removes a review; its comments cascade.
func DeleteReview(ctx context.Context, db *gorm.DB, r *Review) error {
	if err := db.WithContext(ctx).Delete(r).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete review")
	}
	return nil
}

// TitleRating returns the mean score of a title's reviews, nil when none.
func TitleRating(ctx context.Context, db *gorm.DB, titleID uuid.UUID) (*float64, error) {
	var avg sql.NullFloat64
	err := db.WithContext(ctx).
		Model(&Review{}).
		Select("AVG(score)").
		Where("title_id = ?", titleID).
		Scan(&avg).Error
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to compute rating")
	}
	if !avg.Valid {
		return nil, nil
	}
	rating := avg.Float64
	return &rating, nil
}
