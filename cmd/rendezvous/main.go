package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"rendezvous/internal/app"
	"rendezvous/internal/config"
	"rendezvous/pkg/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rendezvous: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, cfgErr := config.LoadConfigWithPrecedence(os.Getenv("RENDEZVOUS_CONFIG_FILE"))

	logger, closeLog, err := log.New(&cfg.Log)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer func() { _ = closeLog() }()
	defer log.ReplaceGlobals(logger)()

	if cfgErr != nil {
		logger.Warn("config file ignored, using environment and defaults", zap.Error(cfgErr))
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		return errors.Wrap(err, "create application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}
