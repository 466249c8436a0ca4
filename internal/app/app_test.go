package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"messageboard/internal/api"
	"messageboard/internal/config"
	"messageboard/internal/queue"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenStore(t *testing.T) {
	t.Run("should open sqlite", func(t *testing.T) {
		store, err := OpenStore(context.Background(), config.StorageConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(t.TempDir(), "board.db"),
		})
		require.NoError(t, err)
		require.NoError(t, store.Close())
	})

	t.Run("should reject unknown drivers", func(t *testing.T) {
		_, err := OpenStore(context.Background(), config.StorageConfig{Driver: "mysql", DSN: "x"})
		require.ErrorContains(t, err, "mysql")
	})
}

func TestFallbacksWithoutInfrastructure(t *testing.T) {
	req := require.New(t)
	log := discardLogger()

	publisher, err := NewPublisher(config.QueueConfig{}, log)
	req.NoError(err)
	req.IsType(queue.Discard{}, publisher)

	notices, closeNotices, err := NewNotices(config.RedisConfig{NoticeTTL: time.Minute}, log)
	req.NoError(err)
	req.IsType(&api.MemoryNotices{}, notices)
	req.NoError(closeNotices())

	_, _, err = NewNotifier(&config.Config{}, log)
	req.ErrorContains(err, "queue.brokers")
}

func TestEnsureImporterUser(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store, err := OpenStore(ctx, config.StorageConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "board.db")})
	req.NoError(err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.ImporterConfig{AuthorID: 1000, Author: "Feed importer"}
	req.NoError(EnsureImporterUser(ctx, cfg, store))

	user, err := store.GetUser(ctx, 1000)
	req.NoError(err)
	req.Equal("Feed importer", user.Name)
}

func TestNewServerRejectsShortSecret(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{Secret: strings.Repeat("s", 8)}}
	_, _, err := NewServer(cfg, nil, nil, discardLogger())
	require.Error(t, err)
}
