package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gravadigital/giftlist-api/internal/config"
	"github.com/gravadigital/giftlist-api/internal/logger"
	"github.com/gravadigital/giftlist-api/internal/storage/migrations"
	"github.com/gravadigital/giftlist-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.Server.LogLevel)
	log := logger.Migration()

	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	seed := flag.Bool("seed", false, "Insert the demo owner and its paid list after migrating")
	unseed := flag.Bool("unseed", false, "Remove the demo data")
	status := flag.Bool("status", false, "List applied migrations and exit")
	flag.Parse()

	log.Info("Starting migration process", "rollback", *rollback, "seed", *seed, "unseed", *unseed)

	db, err := postgres.Connect(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer postgres.Close(db)

	switch {
	case *status:
		ids, err := migrations.Applied(db)
		if err != nil {
			log.Error("Failed to read migration status", "error", err)
			os.Exit(1)
		}
		for _, m := range migrations.GetMigrations() {
			state := "pending"
			for _, id := range ids {
				if id == m.ID {
					state = "applied"
					break
				}
			}
			fmt.Printf("%s  %-8s %s\n", m.ID, state, m.Name)
		}
		return
	case *unseed:
		if err := migrations.Unseed(db); err != nil {
			log.Error("Failed to remove demo data", "error", err)
			os.Exit(1)
		}
		log.Info("Demo data removed")
	case *rollback:
		log.Info("Rolling back migrations...")
		if err := migrations.RollbackMigration(db); err != nil {
			log.Error("Migration rollback failed", "error", err)
			os.Exit(1)
		}
		log.Info("Migration rollback completed successfully")
	default:
		log.Info("Running migrations...")
		if err := migrations.RunMigrations(db); err != nil {
			log.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("Migrations completed successfully")

		if *seed {
			if err := migrations.Seed(db); err != nil {
				log.Error("Failed to seed demo data", "error", err)
				os.Exit(1)
			}
			log.Info("Demo data seeded", "email", migrations.DemoEmail, "list", migrations.DemoListName)
		}
	}

	fmt.Println("Migration process completed!")
}
