// Command lifelogd runs the lifelog HTTP service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/lifelog-io/lifelog-go/internal/server"
	"github.com/lifelog-io/lifelog-go/pkg/core"
	"github.com/lifelog-io/lifelog-go/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (defaults to environment variables)")
	flag.Parse()

	var cfg *core.Config
	var err error
	if *configPath != "" {
		cfg, err = core.LoadConfigFromJSON(*configPath)
	} else {
		cfg, err = core.LoadConfigFromEnv()
	}
	if err != nil {
		logging.Default().Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	addr := ":8000"
	apiKey := ""
	logLevel := "info"
	if cfg.Server != nil {
		if cfg.Server.Addr != "" {
			addr = cfg.Server.Addr
		}
		apiKey = cfg.Server.APIKey
		logLevel = cfg.Server.LogLevel
	}

	logger := logging.New(logLevel, os.Stdout)
	logging.SetDefault(logger)

	client, err := core.NewClient(cfg)
	if err != nil {
		logger.Error("failed to initialize client", "err", err)
		os.Exit(1)
	}
	defer func() { _ = client.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(client, addr, apiKey, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
