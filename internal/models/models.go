// Package models holds the domain entities and their storage helpers.
package models

import (
	"strings"

	"gorm.io/gorm"
)

// All lists every persisted entity for migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Genre{},
		&Title{},
		&GenreTitle{},
		&Review{},
		&Comment{},
	}
}

// Migrate wires the explicit genre/title join entity and runs automigration.
// Passed to db.NewDB as a DB option.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&Title{}, "Genres", &GenreTitle{}); err != nil {
		return err
	}
	return db.AutoMigrate(All()...)
}

// IsUniqueViolation reports whether err comes from a unique constraint.
// The database constraint is the source of truth under concurrent writes;
// application-level pre-checks only exist for better error messages.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "23505")
}
