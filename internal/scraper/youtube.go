package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

// YouTube reads the public Atom feed YouTube publishes for every channel.
type YouTube struct {
	feedURL string
	client  *http.Client
	parser  *gofeed.Parser
}

func NewYouTube(feedURL string) *YouTube {
	return &YouTube{
		feedURL: feedURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		parser:  gofeed.NewParser(),
	}
}

func (y *YouTube) Scrape(ctx context.Context, channel string) ([]Entry, error) {
	u, err := url.Parse(y.feedURL)
	if err != nil {
		return nil, fmt.Errorf("feed url: %w", err)
	}
	q := u.Query()
	q.Set("channel_id", channel)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/atom+xml, application/xml, text/xml, */*")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s: HTTP %d", channel, resp.StatusCode)
	}

	feed, err := y.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", channel, err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}

		published := time.Now().UTC()
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}

		description := mediaDescription(item.Extensions)
		if description == "" {
			description = strings.TrimSpace(item.Description)
		}

		entries = append(entries, Entry{
			ID:          item.GUID,
			Channel:     channel,
			Title:       strings.TrimSpace(item.Title),
			Link:        item.Link,
			Description: description,
			Published:   published,
		})
	}

	return entries, nil
}

// mediaDescription digs the video description out of <media:group>.
func mediaDescription(exts ext.Extensions) string {
	for _, group := range exts["media"]["group"] {
		for _, d := range group.Children["description"] {
			if v := strings.TrimSpace(d.Value); v != "" {
				return v
			}
		}
	}
	return ""
}
