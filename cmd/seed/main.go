package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/eldorado-books/bookstore-backend/internal/staff"
	"github.com/eldorado-books/bookstore-backend/pkg/config"
	"github.com/eldorado-books/bookstore-backend/pkg/db"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
	"github.com/eldorado-books/bookstore-backend/pkg/logger"
)

// Seeds the first Manager account so a fresh deployment can log in.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	username := flag.String("username", "admin", "username of the bootstrap manager")
	fullName := flag.String("full-name", "Store Manager", "display name of the bootstrap manager")
	password := flag.String("password", "", "password of the bootstrap manager (required)")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "missing -password")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"username": *username,
	})

	staffRepo := staff.NewRepository(dbClient.DB())
	staffService, err := staff.NewService(staffRepo, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to create staff service", err)
		os.Exit(1)
	}

	managers, err := staffRepo.CountActiveByRole(ctx, enums.StaffRoleManager)
	if err != nil {
		logg.Error(ctx, "failed to count managers", err)
		os.Exit(1)
	}
	if managers > 0 {
		logg.Info(ctx, "manager account already present, nothing to seed")
		return
	}

	account, err := staffService.Create(ctx, staff.CreateAccountInput{
		Username: *username,
		Password: *password,
		FullName: *fullName,
		Role:     enums.StaffRoleManager,
	})
	if err != nil {
		logg.Error(ctx, "failed to seed manager account", err)
		os.Exit(1)
	}

	ctx = logg.WithStaffID(ctx, account.ID.String())
	logg.Info(ctx, "seeded bootstrap manager account")
}
