package main

import (
	"embed"
	"log"

	"akara-desktop/internal/bootstrap"
	"akara-desktop/internal/config"
	"akara-desktop/internal/logging"
)

//go:embed all:frontend
var appAssets embed.FS

func main() {
	logger, err := logging.New(config.DebugEnabled())
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	app, err := bootstrap.NewWithAssets(appAssets, logger)
	if err != nil {
		log.Fatalf("bootstrap app: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
