package main

// Run database migrations:
//   go run ./cmd/migrate            # up
//   go run ./cmd/migrate down       # roll back one version
//   go run ./cmd/migrate status

import (
	"context"
	"fmt"
	"os"

	"resolution-backend/internal/shared/config"
	"resolution-backend/internal/shared/storage/db"
	"resolution-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.SetOutput(os.Stdout, false)
	defer telemetry.Sync()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := run(context.Background(), cfg, command); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
}

func run(ctx context.Context, cfg config.Config, command string) error {
	switch command {
	case "up", "down", "status":
	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", command)
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer sqlDB.Close()

	switch command {
	case "down":
		return db.RollbackMigration(ctx, sqlDB)
	case "status":
		return db.MigrationStatus(ctx, sqlDB)
	default:
		return db.RunMigrations(ctx, sqlDB)
	}
}
