package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jobfind/jobfind/internal/logging"
	"github.com/jobfind/jobfind/internal/server"
	"github.com/jobfind/jobfind/internal/server/config"
)

func main() {
	ctx := context.Background()

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("startup: %v", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	app.Run(ctx)
}
