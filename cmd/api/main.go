package main

import (
	"os"

	"resolution-backend/internal/bootstrap"
	"resolution-backend/internal/shared/config"
	"resolution-backend/internal/shared/server"
	"resolution-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.SetOutput(os.Stdout, cfg.Env != "production")
	defer telemetry.Sync()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("api.bootstrap_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer app.Close()

	addr := server.Addr(cfg.Port)
	telemetry.Info("api.listening", map[string]any{"addr": addr, "env": cfg.Env})

	if err := app.Router.Run(addr); err != nil {
		telemetry.Error("api.server_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
