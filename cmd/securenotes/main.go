package main

import (
	"context"
	"log"

	"securenotes/internal/cli"
	"securenotes/internal/config"
	"securenotes/internal/logging"
)

func main() {

	cfg := config.LoadConfig()
	logger := logging.NewDefault(cfg.LogLevel)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())
}
