package scraper

import (
	"context"
	"time"
)

// Entry is one video announced by a channel feed.
type Entry struct {
	ID          string
	Channel     string
	Title       string
	Link        string
	Description string
	Published   time.Time
}

type Scraper interface {
	Scrape(ctx context.Context, channel string) ([]Entry, error)
}
