package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"messageboard/internal/domain"
)

func TestTelegramNotifySendsToEveryChat(t *testing.T) {
	req := require.New(t)

	var (
		mu       sync.Mutex
		paths    []string
		payloads []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		paths = append(paths, r.URL.Path)
		payloads = append(payloads, body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram("bot-token", []string{"100", "200"})
	tg.apiURL = srv.URL

	err := tg.Notify(context.Background(), Notification{
		Event: domain.Event{
			Type:       domain.EventCreated,
			MessageID:  5,
			Title:      "Tom & Jerry <3",
			AuthorName: "Alice",
		},
		Link:    "https://board.example.com/messages/5",
		VideoID: "dQw4w9WgXcQ",
	})
	req.NoError(err)

	req.Equal([]string{"/botbot-token/sendMessage", "/botbot-token/sendMessage"}, paths)
	req.Len(payloads, 2)
	req.Equal("100", payloads[0]["chat_id"])
	req.Equal("200", payloads[1]["chat_id"])
	req.Equal("HTML", payloads[0]["parse_mode"])

	text, _ := payloads[0]["text"].(string)
	req.Contains(text, "Tom &amp; Jerry &lt;3")
	req.Contains(text, "Posted by Alice")
	req.Contains(text, "https://board.example.com/messages/5")
	req.Contains(text, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
}

func TestTelegramNotifyReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tg := NewTelegram("bad", []string{"100"})
	tg.apiURL = srv.URL

	err := tg.Notify(context.Background(), Notification{Event: domain.Event{Title: "x"}})
	require.ErrorContains(t, err, "telegram error: 401")
}

func TestFormatMessageWithoutAuthorOrVideo(t *testing.T) {
	text := formatMessage(Notification{Event: domain.Event{Title: "Plain"}, Link: "http://x/messages/1"})
	require.Contains(t, text, "Posted by Unknown")
	require.NotContains(t, text, "youtube.com")
}
