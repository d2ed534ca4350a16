package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-attendance-api/internal/repository"
	"github.com/noah-isme/class-attendance-api/internal/service"
	"github.com/noah-isme/class-attendance-api/pkg/config"
	"github.com/noah-isme/class-attendance-api/pkg/database"
	"github.com/noah-isme/class-attendance-api/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return 1
	}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	dir := fs.String("dir", cfg.Seed.Dir, "directory holding roster *.json files")
	migrate := fs.Bool("migrate", cfg.Database.AutoMigrate, "apply the schema before seeding")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Printf("failed to init logger: %v", err)
		return 1
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Error("failed to open store", zap.Error(err))
		return 1
	}
	defer db.Close()

	ctx := context.Background()
	if *migrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Error("failed to migrate store", zap.Error(err))
			return 1
		}
	}

	rosters := service.NewRosterService(repository.NewRosterRepository(db), nil, validator.New(), logr, cfg.Seed.DefaultSessions)
	created, err := rosters.Seed(ctx, *dir)
	if err != nil {
		logr.Error("seed failed", zap.String("dir", *dir), zap.Int("created", created), zap.Error(err))
		return 1
	}
	logr.Info("seed complete", zap.String("dir", *dir), zap.Int("created", created))
	return 0
}
