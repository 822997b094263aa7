// Package store opens the movie repository selected by DB_DRIVER.
package store

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"moviecatalog/dynamodb"
	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/postgres"
	"moviecatalog/sqlite"
)

// Open returns the configured repository and a function releasing its
// connections.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (movie.Repository, func() error, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewConnection(PostgresOptions(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgres.NewMovieRepository(db), closer(db), nil

	case config.DriverSQLite:
		db, err := sqlite.NewConnection(cfg.DB.SQLitePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return postgres.NewMovieRepository(db), closer(db), nil

	case config.DriverDynamoDB:
		repo, err := dynamodb.NewMovieStore(ctx, dynamodb.Options{
			Region:       cfg.DynamoDB.Region,
			Endpoint:     cfg.DynamoDB.Endpoint,
			AccessKey:    cfg.DynamoDB.AccessKey,
			SecretKey:    cfg.DynamoDB.SecretKey,
			SessionToken: cfg.DynamoDB.SessionToken,
			MoviesTable:  cfg.DynamoDB.MoviesTable,
		})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
}

func PostgresOptions(cfg *config.Config) postgres.Options {
	return postgres.Options{
		DBName:   cfg.DB.Name,
		DBUser:   cfg.DB.User,
		Password: cfg.DB.Pass,
		Host:     cfg.DB.Host,
		Port:     strconv.Itoa(cfg.DB.Port),
		SSLMode:  cfg.DB.EnableSSL,
	}
}

func closer(db *gorm.DB) func() error {
	return func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
}
