package db

import (
	"context"

	"github.com/reviewhub/reviewhub/pkg/logger"
	"github.com/reviewhub/reviewhub/pkg/utils"
	"gorm.io/gorm"
)

// DBOptions configures the database after the connection is opened.
// Migration runs as an option so tests can open throwaway databases.
type DBOptions func(*gorm.DB) error

func NewDB(ctx context.Context, dialector gorm.Dialector, opts ...DBOptions) (*gorm.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "DB initialization canceled")
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, utils.NewError(utils.ErrInternalServerError.Code, "Failed to connect to Database").WithCause(err)
	}

	for _, opt := range opts {
		if err := opt(db.WithContext(ctx)); err != nil {
			return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to apply DB Options")
		}
	}

	return db, nil
}

func CloseDB(db *gorm.DB, log *logger.Logger) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to get DB handle for closing")
		return utils.NewError(utils.ErrInternalServerError.Code, "Failed to close database", err.Error())
	}

	if err := sqlDB.Close(); err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Database close failed")
		return utils.NewError(utils.ErrInternalServerError.Code, "Failed to close database", err.Error())
	}
	log.Info(context.Background()).Logs("Database connection closed successfully")
	return nil
}
