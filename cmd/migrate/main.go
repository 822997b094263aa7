package main

import (
	"flag"
	"os"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"moviecatalog/pkg/config"
	"moviecatalog/pkg/logger"
	"moviecatalog/postgres"
	"moviecatalog/store"
)

func main() {
	var (
		dir   string
		down  bool
		limit int
	)
	flag.StringVar(&dir, "dir", "migrations", "Directory holding the SQL migrations")
	flag.BoolVar(&down, "down", false, "Roll back instead of applying")
	flag.IntVar(&limit, "max", 0, "Maximum number of migrations to run (0 = all)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("cannot load config", zap.Error(err))
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	// SQLite creates its schema on connect and DynamoDB tables are
	// provisioned outside the app.
	if cfg.DB.Driver != config.DriverPostgres {
		log.Info("nothing to migrate", zap.String("driver", cfg.DB.Driver))
		return
	}

	db, err := postgres.NewConnection(store.PostgresOptions(cfg))
	if err != nil {
		log.Fatal("cannot connect to db", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("cannot get db instance", zap.Error(err))
	}
	defer sqlDB.Close()

	direction := migrate.Up
	if down {
		direction = migrate.Down
	}

	total, err := migrate.ExecMax(sqlDB, "postgres", &migrate.FileMigrationSource{Dir: dir}, direction, limit)
	if err != nil {
		log.Fatal("cannot execute migration", zap.Error(err))
	}

	log.Info("applied migrations", zap.Int("total", total), zap.Bool("down", down))
}
