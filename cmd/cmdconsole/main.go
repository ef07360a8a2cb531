// Package main runs the command engine on the local terminal as a single
// player, for trying commands and scripts without a Telnet client.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/config"
	"github.com/cory-johannsen/cmdengine/internal/engine"
	"github.com/cory-johannsen/cmdengine/internal/frontend/console"
	"github.com/cory-johannsen/cmdengine/internal/observability"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	eng, err := engine.New(cfg, logger)
	if err != nil {
		logger.Fatal("building command engine", zap.Error(err))
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	terminal := console.NewTerminal()
	defer terminal.Close()

	repl := console.New(terminal, os.Stdout, eng.Dispatcher, eng.Sessions, cfg.Console, logger.Named("console"))
	if err := repl.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("console error", zap.Error(err))
	}
}
