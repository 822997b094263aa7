package sqlite

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"moviecatalog/postgres"
)

// NewConnection opens the SQLite database at path and brings the movies
// table up to date. Use ":memory:" for a throwaway database.
func NewConnection(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers and each in-memory connection is its own database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&postgres.MovieModel{}); err != nil {
		return nil, fmt.Errorf("migrate movies table: %w", err)
	}

	if logger != nil {
		logger.Info("sqlite database initialized", zap.String("path", path))
	}
	return db, nil
}
