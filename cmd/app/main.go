// Command app runs the web server together with the feed importer and the
// notifier, for single-process deployments.
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

	"golang.org/x/sync/errgroup"

	"messageboard/internal/app"
	"messageboard/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "app: %v\n", err)
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

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server starting", "addr", cfg.Server.Addr)
		if err := server.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if len(cfg.Importer.Channels) > 0 {
		if err := app.EnsureImporterUser(ctx, cfg.Importer, store); err != nil {
			return fmt.Errorf("save importer user: %w", err)
		}
		importer := app.NewImporter(cfg, store, svc, log)
		g.Go(func() error {
			importer.Start(ctx)
			return nil
		})
	} else {
		log.Info("importer disabled, no channels configured")
	}

	if len(cfg.Queue.Brokers) > 0 && cfg.Notifier.TelegramToken != "" {
		notifier, closeNotifier, err := app.NewNotifier(cfg, log)
		if err != nil {
			return err
		}
		defer closeNotifier()
		g.Go(func() error {
			return notifier.Start(ctx)
		})
	} else {
		log.Info("notifier disabled, needs kafka brokers and a telegram token")
	}

	return g.Wait()
}
