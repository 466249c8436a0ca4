package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"messageboard/internal/app"
	"messageboard/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "notifier: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := cfg.Log.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier, closeNotifier, err := app.NewNotifier(cfg, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	log.Info("notifier started", "topic", cfg.Queue.Topic, "group", cfg.Queue.GroupID)
	if err := notifier.Start(ctx); err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	log.Info("notifier stopped")
	return nil
}
