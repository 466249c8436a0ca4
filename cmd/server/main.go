package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messageboard/internal/app"
	"messageboard/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
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

	store, err := app.OpenStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	publisher, err := app.NewPublisher(cfg.Queue, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	svc := app.NewService(store, publisher, log)
	server, closeServer, err := app.NewServer(cfg, store, svc, log)
	if err != nil {
		return err
	}
	defer closeServer()

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.Server.Addr, "storage", cfg.Storage.Driver)
		errc <- server.Start(cfg.Server.Addr)
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
