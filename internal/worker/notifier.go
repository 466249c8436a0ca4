package worker

import (
	"context"
	"log/slog"
	"strconv"

	"messageboard/internal/domain"
	"messageboard/internal/notifier"
	"messageboard/internal/queue"
	"messageboard/internal/youtube"
)

// Notifier announces newly posted messages.
type Notifier struct {
	consumer queue.Consumer
	notifier notifier.Notifier
	baseURL  string
	log      *slog.Logger
}

func NewNotifier(c queue.Consumer, n notifier.Notifier, baseURL string, log *slog.Logger) *Notifier {
	return &Notifier{
		consumer: c,
		notifier: n,
		baseURL:  baseURL,
		log:      log,
	}
}

func (w *Notifier) Start(ctx context.Context) error {
	return w.consumer.Consume(ctx, w.handleEvent)
}

func (w *Notifier) handleEvent(ctx context.Context, evt domain.Event) error {
	if evt.Type != domain.EventCreated {
		return nil
	}

	w.log.Info("received", "type", evt.Type, "message_id", evt.MessageID, "title", truncate(evt.Title, 60))

	videoID, _ := youtube.VideoID(evt.YouTubeURL)
	return w.notifier.Notify(ctx, notifier.Notification{
		Event:   evt,
		Link:    w.baseURL + "/messages/" + strconv.FormatInt(evt.MessageID, 10),
		VideoID: videoID,
	})
}
