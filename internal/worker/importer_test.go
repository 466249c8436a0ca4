package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"messageboard/internal/board"
	"messageboard/internal/config"
	"messageboard/internal/domain"
	"messageboard/internal/mocks"
	"messageboard/internal/scraper"
)

type fakeScraper struct {
	entries map[string][]scraper.Entry
	err     error
}

func (f *fakeScraper) Scrape(_ context.Context, channel string) ([]scraper.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[channel], nil
}

type recordingPoster struct {
	actors []domain.User
	inputs []board.Input
	err    error
}

func (p *recordingPoster) Create(_ context.Context, actor domain.User, in board.Input) (domain.Message, error) {
	if p.err != nil {
		return domain.Message{}, p.err
	}
	p.actors = append(p.actors, actor)
	p.inputs = append(p.inputs, in)
	return domain.Message{ID: int64(len(p.inputs)), Title: in.Title}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func importerConfig(channels ...string) config.ImporterConfig {
	return config.ImporterConfig{
		Channels: channels,
		Interval: time.Minute,
		AuthorID: 7,
		Author:   "Feed importer",
	}
}

func TestImporter(t *testing.T) {
	t.Run("should post new videos as the importer user", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockMessageRepository(ctrl)

		src := &fakeScraper{entries: map[string][]scraper.Entry{
			"UC1": {
				{Title: "First", Link: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Description: "about it"},
				{Title: "Second", Link: "https://www.youtube.com/watch?v=aaaaaaaaaaa"},
			},
		}}
		poster := &recordingPoster{}

		repo.EXPECT().ExistsByYouTubeURL(gomock.Any(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ").Return(false, nil)
		repo.EXPECT().ExistsByYouTubeURL(gomock.Any(), "https://www.youtube.com/watch?v=aaaaaaaaaaa").Return(true, nil)

		w := NewImporter(src, poster, repo, importerConfig("UC1"), discardLogger())
		req.Equal(1, w.importAll(context.Background()))

		req.Len(poster.inputs, 1)
		req.Equal(domain.User{ID: 7, Name: "Feed importer"}, poster.actors[0])
		req.Equal(board.Input{
			Title:      "First",
			Content:    "about it",
			YouTubeURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		}, poster.inputs[0])
	})

	t.Run("should not look up a link twice", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockMessageRepository(ctrl)

		src := &fakeScraper{entries: map[string][]scraper.Entry{
			"UC1": {{Title: "Only", Link: "https://youtu.be/dQw4w9WgXcQ"}},
		}}
		poster := &recordingPoster{}

		repo.EXPECT().ExistsByYouTubeURL(gomock.Any(), gomock.Any()).Return(false, nil).Times(1)

		w := NewImporter(src, poster, repo, importerConfig("UC1"), discardLogger())
		req.Equal(1, w.importAll(context.Background()))
		req.Equal(0, w.importAll(context.Background()))
		req.Len(poster.inputs, 1)
		req.Equal("Only", poster.inputs[0].Content)
	})

	t.Run("should truncate long titles", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockMessageRepository(ctrl)

		long := strings.Repeat("é", 300)
		src := &fakeScraper{entries: map[string][]scraper.Entry{
			"UC1": {{Title: long, Link: "https://youtu.be/dQw4w9WgXcQ", Description: "d"}},
		}}
		poster := &recordingPoster{}
		repo.EXPECT().ExistsByYouTubeURL(gomock.Any(), gomock.Any()).Return(false, nil)

		w := NewImporter(src, poster, repo, importerConfig("UC1"), discardLogger())
		w.importAll(context.Background())

		title := []rune(poster.inputs[0].Title)
		req.Len(title, 255)
		req.True(strings.HasSuffix(poster.inputs[0].Title, "..."))
	})

	t.Run("should keep going when a channel fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockMessageRepository(ctrl)

		src := &fakeScraper{err: errors.New("feed down")}
		poster := &recordingPoster{}

		w := NewImporter(src, poster, repo, importerConfig("UC1", "UC2"), discardLogger())
		require.Equal(t, 0, w.importAll(context.Background()))
		require.Empty(t, poster.inputs)
	})

	t.Run("should not retry entries that fail validation", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockMessageRepository(ctrl)

		src := &fakeScraper{entries: map[string][]scraper.Entry{
			"UC1": {{Title: "Bad", Link: "not a url"}},
		}}
		poster := &recordingPoster{err: &domain.ValidationError{Fields: map[string]string{
			"youtube_url": "The youtube url field must be a valid URL.",
		}}}
		repo.EXPECT().ExistsByYouTubeURL(gomock.Any(), "not a url").Return(false, nil).Times(1)

		w := NewImporter(src, poster, repo, importerConfig("UC1"), discardLogger())
		req.Equal(0, w.importAll(context.Background()))
		req.Equal(0, w.importAll(context.Background()))
	})

	t.Run("should retry entries after a storage error", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockMessageRepository(ctrl)

		src := &fakeScraper{entries: map[string][]scraper.Entry{
			"UC1": {{Title: "Later", Link: "https://youtu.be/dQw4w9WgXcQ"}},
		}}
		poster := &recordingPoster{}
		gomock.InOrder(
			repo.EXPECT().ExistsByYouTubeURL(gomock.Any(), gomock.Any()).Return(false, errors.New("db locked")),
			repo.EXPECT().ExistsByYouTubeURL(gomock.Any(), gomock.Any()).Return(false, nil),
		)

		w := NewImporter(src, poster, repo, importerConfig("UC1"), discardLogger())
		req.Equal(0, w.importAll(context.Background()))
		req.Equal(1, w.importAll(context.Background()))
	})
}

func TestImporterStartStopsWithContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMessageRepository(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewImporter(&fakeScraper{}, &recordingPoster{}, repo, importerConfig("UC1"), discardLogger())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("importer did not stop")
	}
}
