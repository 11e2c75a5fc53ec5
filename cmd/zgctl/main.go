package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/4poc/zgbot/internal/cli"
	"github.com/4poc/zgbot/internal/config"
	"github.com/4poc/zgbot/internal/logging"
	"github.com/4poc/zgbot/internal/registry"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, slog.LevelInfo)

	store, err := registry.OpenSQLite(ctx, cfg.RegistryPath)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}
	defer store.Close()

	app, err := cli.NewApp(ctx, cfg, logger, store)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
