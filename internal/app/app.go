// Package app wires configuration into the components the binaries run.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"messageboard/internal/api"
	"messageboard/internal/auth"
	"messageboard/internal/board"
	"messageboard/internal/config"
	"messageboard/internal/domain"
	"messageboard/internal/notifier"
	"messageboard/internal/queue"
	"messageboard/internal/redis"
	"messageboard/internal/scraper"
	"messageboard/internal/storage"
	"messageboard/internal/worker"
)

// Closer releases whatever a constructor opened.
type Closer func() error

func noop() error { return nil }

func OpenStore(ctx context.Context, cfg config.StorageConfig) (*storage.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return storage.NewPostgres(ctx, cfg.DSN)
	case "sqlite":
		return storage.NewSQLite(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op one otherwise.
func NewPublisher(cfg config.QueueConfig, log *slog.Logger) (queue.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		log.Info("no kafka brokers configured, events are discarded")
		return queue.Discard{}, nil
	}

	k, err := queue.NewKafka(cfg.Brokers, cfg.Topic)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return k, nil
}

// NewNotices keeps notices in Redis when it is configured, in memory otherwise.
func NewNotices(cfg config.RedisConfig, log *slog.Logger) (api.Notices, Closer, error) {
	if cfg.Addr == "" {
		log.Info("no redis configured, notices kept in memory")
		return api.NewMemoryNotices(cfg.NoticeTTL), noop, nil
	}

	rdb, err := redis.New(cfg.Addr, cfg.NoticeTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return rdb, rdb.Close, nil
}

func NewService(store *storage.Store, publisher queue.Publisher, log *slog.Logger) *board.Service {
	return board.NewService(store, publisher, log.With("component", "board"))
}

// NewServer builds the web server and everything it needs besides the store.
func NewServer(cfg *config.Config, store *storage.Store, svc *board.Service, log *slog.Logger) (*api.Server, Closer, error) {
	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer)
	if err != nil {
		return nil, nil, err
	}

	notices, closeNotices, err := NewNotices(cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}

	srv, err := api.NewServer(svc, store, tokens, notices, cfg.Auth, log.With("component", "api"))
	if err != nil {
		_ = closeNotices()
		return nil, nil, err
	}
	return srv, closeNotices, nil
}

func NewImporter(cfg *config.Config, store *storage.Store, svc *board.Service, log *slog.Logger) *worker.Importer {
	return worker.NewImporter(
		scraper.NewYouTube(cfg.Importer.FeedURL),
		svc,
		store,
		cfg.Importer,
		log.With("component", "importer"),
	)
}

// EnsureImporterUser records the importer's display name so imported
// messages show who posted them.
func EnsureImporterUser(ctx context.Context, cfg config.ImporterConfig, users storage.UserDirectory) error {
	return users.SaveUser(ctx, domain.User{ID: cfg.AuthorID, Name: cfg.Author})
}

func NewNotifier(cfg *config.Config, log *slog.Logger) (*worker.Notifier, Closer, error) {
	if len(cfg.Queue.Brokers) == 0 {
		return nil, nil, fmt.Errorf("queue.brokers is required for the notifier")
	}
	if cfg.Notifier.TelegramToken == "" || len(cfg.Notifier.TelegramChatIDs) == 0 {
		return nil, nil, fmt.Errorf("notifier.telegram_token and notifier.telegram_chat_ids are required")
	}

	consumer, err := queue.NewKafkaConsumer(cfg.Queue.Brokers, cfg.Queue.GroupID, cfg.Queue.Topic, log.With("component", "consumer"))
	if err != nil {
		return nil, nil, fmt.Errorf("kafka consumer: %w", err)
	}

	tg := notifier.NewTelegram(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatIDs)
	return worker.NewNotifier(consumer, tg, cfg.Server.BaseURL, log.With("component", "notifier")), consumer.Close, nil
}
