package main

import (
	"context"
	"errors"
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
		fmt.Fprintf(os.Stderr, "importer: %v\n", err)
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
	if len(cfg.Importer.Channels) == 0 {
		return errors.New("importer.channels is empty, nothing to import")
	}
	log := cfg.Log.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	if err := app.EnsureImporterUser(ctx, cfg.Importer, store); err != nil {
		return fmt.Errorf("save importer user: %w", err)
	}

	publisher, err := app.NewPublisher(cfg.Queue, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	importer := app.NewImporter(cfg, store, app.NewService(store, publisher, log), log)

	log.Info("importer started", "channels", len(cfg.Importer.Channels), "interval", cfg.Importer.Interval)
	importer.Start(ctx)
	log.Info("importer stopped")
	return nil
}
