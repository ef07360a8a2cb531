// Package main runs the command engine as a multi-player Telnet server.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cmdengine/internal/config"
	"github.com/cory-johannsen/cmdengine/internal/engine"
	"github.com/cory-johannsen/cmdengine/internal/frontend/handlers"
	"github.com/cory-johannsen/cmdengine/internal/frontend/telnet"
	"github.com/cory-johannsen/cmdengine/internal/observability"
	"github.com/cory-johannsen/cmdengine/internal/server"
)

func main() {
	start := time.Now()

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

	logger.Info("starting command server",
		zap.String("name", cfg.Server.Name),
		zap.Int("max_players", cfg.Server.MaxPlayers),
	)

	eng, err := engine.New(cfg, logger)
	if err != nil {
		logger.Fatal("building command engine", zap.Error(err))
	}
	defer eng.Close()

	shell := handlers.NewShell(eng.Dispatcher, eng.Sessions, cfg.Server.Name, logger.Named("shell"))
	acceptor := telnet.NewAcceptor(cfg.Telnet, shell, logger.Named("telnet"))

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("telnet", acceptor)

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
