package main

import (
	"context"
	"fmt"

	"outreach/internal/db"
	"outreach/internal/seed"
	"outreach/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with initial data",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		usersRepo := store.NewUserRepository(pool)
		requestsRepo := store.NewRequestRepository(pool, usersRepo)

		logrus.Info("Seeding volunteers...")
		if err := seed.SeedVolunteers(ctx, usersRepo); err != nil {
			return fmt.Errorf("failed to seed volunteers: %w", err)
		}

		logrus.Info("Seeding requests...")
		if err := seed.SeedRequests(ctx, requestsRepo); err != nil {
			return fmt.Errorf("failed to seed requests: %w", err)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
