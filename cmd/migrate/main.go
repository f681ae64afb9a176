package main

// Run database migrations:
//   go run ./cmd/migrate [up|status|down]

import (
	"context"
	"os"

	"healthdocs-backend/internal/shared/config"
	"healthdocs-backend/internal/shared/storage/db"
	"healthdocs-backend/internal/shared/telemetry"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	databaseURL, err := config.LoadDatabaseURL()
	if err != nil {
		telemetry.Error("migrate.config", map[string]any{"error": err})
		os.Exit(1)
	}
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, databaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	default:
		telemetry.Error("migrate.usage", map[string]any{"command": command, "expected": "up|status|down"})
		sqlDB.Close()
		os.Exit(2)
	}
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err})
		sqlDB.Close()
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
}
