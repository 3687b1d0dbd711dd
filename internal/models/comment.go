package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"gorm.io/gorm"
)

type Comment struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text" validate:"required"`
	ReviewID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`

	Review Review `gorm:"foreignKey:ReviewID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Author User   `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	AuthorName string `gorm:"-" json:"author"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func CreateComment(ctx context.Context, db *gorm.DB, c *Comment) error {
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create comment")
	}
	return nil
}

// GetComments lists a review's comments, newest first.
func GetComments(ctx context.Context, db *gorm.DB, reviewID uuid.UUID, limit, offset int) ([]Comment, int64, error) {
	query := db.WithContext(ctx).Model(&Comment{}).Where("review_id = ?", reviewID)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count comments")
	}

	var comments []Comment
	err := query.
		Preload("Author").
		Order("pub_date DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get comments")
	}

	for i := range comments {
		comments[i].AuthorName = comments[i].Author.Username
	}
	return comments, count, nil
}

// GetCommentByID retrieves a comment scoped to its owning review.
func GetCommentByID(ctx context.Context, db *gorm.DB, reviewID, id uuid.UUID) (*Comment, error) {
	var c Comment
	err := db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND review_id = ?", id, reviewID).
		First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Comment not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to get comment")
	}
	c.AuthorName = c.Author.Username
	return &c, nil
}

func UpdateComment(ctx context.Context, db *gorm.DB, c *Comment) error {
	if err := db.WithContext(ctx).Omit("Author", "Review").Save(c).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update comment")
	}
	return nil
}

func DeleteComment(ctx context.Context, db *gorm.DB, c *Comment) error {
	if err := db.WithContext(ctx).Delete(c).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete comment")
	}
	return nil
}
