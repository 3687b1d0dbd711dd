package db

import (
	glog "gorm.io/gorm/logger"

	"github.com/reviewhub/reviewhub/pkg/logger"
	"gorm.io/gorm"
)

// WithLogger quiets gorm's own logger; request logging happens in pkg/logger.
func WithLogger(log *logger.Logger) DBOptions {
	return func(db *gorm.DB) error {
		db.Logger = glog.Default.LogMode(glog.Silent)
		return nil
	}
}
