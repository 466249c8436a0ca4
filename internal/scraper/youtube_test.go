package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const channelFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015" xmlns:media="http://search.yahoo.com/mrss/" xmlns="http://www.w3.org/2005/Atom">
 <id>yt:channel:UC123</id>
 <title>Test Channel</title>
 <entry>
  <id>yt:video:dQw4w9WgXcQ</id>
  <yt:videoId>dQw4w9WgXcQ</yt:videoId>
  <title>Never Gonna Give You Up</title>
  <link rel="alternate" href="https://www.youtube.com/watch?v=dQw4w9WgXcQ"/>
  <published>2009-10-25T06:57:33+00:00</published>
  <media:group>
   <media:title>Never Gonna Give You Up</media:title>
   <media:description>The official video.</media:description>
  </media:group>
 </entry>
 <entry>
  <id>yt:video:aaaaaaaaaaa</id>
  <title>  Second upload </title>
  <link rel="alternate" href="https://www.youtube.com/watch?v=aaaaaaaaaaa"/>
  <published>2024-01-02T03:04:05+00:00</published>
 </entry>
</feed>`

func TestYouTubeScrape(t *testing.T) {
	req := require.New(t)

	var gotChannel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotChannel = r.URL.Query().Get("channel_id")
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(channelFeed))
	}))
	defer srv.Close()

	entries, err := NewYouTube(srv.URL).Scrape(context.Background(), "UC123")
	req.NoError(err)
	req.Equal("UC123", gotChannel)
	req.Len(entries, 2)

	first := entries[0]
	req.Equal("yt:video:dQw4w9WgXcQ", first.ID)
	req.Equal("UC123", first.Channel)
	req.Equal("Never Gonna Give You Up", first.Title)
	req.Equal("https://www.youtube.com/watch?v=dQw4w9WgXcQ", first.Link)
	req.Equal("The official video.", first.Description)
	req.True(first.Published.Equal(time.Date(2009, time.October, 25, 6, 57, 33, 0, time.UTC)))

	req.Equal("Second upload", entries[1].Title)
	req.Empty(entries[1].Description)
}

func TestYouTubeScrapeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewYouTube(srv.URL).Scrape(context.Background(), "UCmissing")
	require.ErrorContains(t, err, "HTTP 404")
}

func TestYouTubeScrapeKeepsFeedQuery(t *testing.T) {
	req := require.New(t)

	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(channelFeed))
	}))
	defer srv.Close()

	entries, err := NewYouTube(srv.URL+"/feeds/videos.xml?hl=en").Scrape(context.Background(), "UC 1&2")
	req.NoError(err)
	req.Len(entries, 2)
	req.Equal("en", query.Get("hl"))
	req.Equal("UC 1&2", query.Get("channel_id"))
}

func TestYouTubeScrapeBadFeedURL(t *testing.T) {
	_, err := NewYouTube("http://bad host/%zz").Scrape(context.Background(), "UC1")
	require.ErrorContains(t, err, "feed url")
}
