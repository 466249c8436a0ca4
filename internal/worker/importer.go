package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"messageboard/internal/board"
	"messageboard/internal/config"
	"messageboard/internal/domain"
	"messageboard/internal/scraper"
)

// Poster creates messages on behalf of a user; *board.Service satisfies it.
type Poster interface {
	Create(ctx context.Context, actor domain.User, in board.Input) (domain.Message, error)
}

// Seen reports whether a video link has already been posted.
type Seen interface {
	ExistsByYouTubeURL(ctx context.Context, url string) (bool, error)
}

// Importer posts the videos announced by YouTube channel feeds as messages.
type Importer struct {
	scraper  scraper.Scraper
	poster   Poster
	store    Seen
	author   domain.User
	channels []string
	interval time.Duration
	seen     map[string]bool
	log      *slog.Logger
}

func NewImporter(s scraper.Scraper, p Poster, store Seen, cfg config.ImporterConfig, log *slog.Logger) *Importer {
	return &Importer{
		scraper:  s,
		poster:   p,
		store:    store,
		author:   domain.User{ID: cfg.AuthorID, Name: cfg.Author},
		channels: cfg.Channels,
		interval: cfg.Interval,
		seen:     make(map[string]bool),
		log:      log,
	}
}

func (w *Importer) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.importAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.importAll(ctx)
		}
	}
}

func (w *Importer) importAll(ctx context.Context) int {
	total := 0
	for _, channel := range w.channels {
		entries, err := w.scraper.Scrape(ctx, channel)
		if err != nil {
			w.log.Error("scrape channel", "channel", channel, "error", err)
			continue
		}

		newCount, dupCount := 0, 0
		for _, entry := range entries {
			posted, err := w.importEntry(ctx, entry)
			if err != nil {
				w.log.Error("import entry", "channel", channel, "link", entry.Link, "error", err)
				continue
			}
			if !posted {
				dupCount++
				continue
			}
			newCount++
		}

		w.log.Info("channel imported", "channel", channel, "new", newCount, "duplicates", dupCount, "seen_total", len(w.seen))
		total += newCount
	}
	return total
}

func (w *Importer) importEntry(ctx context.Context, entry scraper.Entry) (bool, error) {
	if w.seen[entry.Link] {
		return false, nil
	}

	exists, err := w.store.ExistsByYouTubeURL(ctx, entry.Link)
	if err != nil {
		return false, err
	}
	if exists {
		w.seen[entry.Link] = true
		return false, nil
	}

	content := entry.Description
	if content == "" {
		content = entry.Title
	}

	msg, err := w.poster.Create(ctx, w.author, board.Input{
		Title:      truncate(entry.Title, 255),
		Content:    content,
		YouTubeURL: entry.Link,
	})
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		// Never going to pass; don't retry it every tick.
		w.seen[entry.Link] = true
		return false, err
	}
	if err != nil {
		return false, err
	}

	w.seen[entry.Link] = true
	w.log.Debug("posted video", "message_id", msg.ID, "title", truncate(msg.Title, 60))
	return true, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
