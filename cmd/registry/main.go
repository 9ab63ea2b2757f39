package main

import (
	"context"
	"fmt"
	"os"

	"telegram-gateway-bot/internal/cli"
	"telegram-gateway-bot/internal/log"
	"telegram-gateway-bot/internal/pkg/config"
	"telegram-gateway-bot/internal/ports"
	"telegram-gateway-bot/internal/registry"
)

func main() {
	cfg, err := config.LoadStorageConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// Логи в stderr, чтобы не смешивать их с выводом команд.
	logger := log.New(cfg.Logging, os.Stderr)

	root := cli.NewRootCmd(func(ctx context.Context) (ports.UserRegistry, error) {
		return registry.Open(ctx, cfg.Storage, logger)
	})
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
