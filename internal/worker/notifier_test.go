package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"messageboard/internal/domain"
	"messageboard/internal/mocks"
	"messageboard/internal/notifier"
)

type recordingNotifier struct {
	sent []notifier.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notifier.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func TestNotifier(t *testing.T) {
	created := domain.Event{
		ID:         "evt-1",
		Type:       domain.EventCreated,
		MessageID:  42,
		AuthorID:   1,
		AuthorName: "Alice",
		Title:      "Watch this",
		YouTubeURL: "https://youtu.be/dQw4w9WgXcQ",
	}

	t.Run("should announce created messages with a link and video id", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		consumer := mocks.NewMockConsumer(ctrl)
		out := &recordingNotifier{}

		consumer.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, handler func(context.Context, domain.Event) error) error {
				return handler(ctx, created)
			})

		w := NewNotifier(consumer, out, "https://board.example.com", discardLogger())
		req.NoError(w.Start(context.Background()))

		req.Equal([]notifier.Notification{{
			Event:   created,
			Link:    "https://board.example.com/messages/42",
			VideoID: "dQw4w9WgXcQ",
		}}, out.sent)
	})

	t.Run("should ignore updates and deletions", func(t *testing.T) {
		out := &recordingNotifier{}
		w := NewNotifier(nil, out, "https://board.example.com", discardLogger())

		for _, typ := range []domain.EventType{domain.EventUpdated, domain.EventDeleted} {
			evt := created
			evt.Type = typ
			require.NoError(t, w.handleEvent(context.Background(), evt))
		}
		require.Empty(t, out.sent)
	})

	t.Run("should leave the video id empty without a video", func(t *testing.T) {
		out := &recordingNotifier{}
		w := NewNotifier(nil, out, "http://localhost:8080", discardLogger())

		evt := created
		evt.YouTubeURL = ""
		require.NoError(t, w.handleEvent(context.Background(), evt))
		require.Len(t, out.sent, 1)
		require.Empty(t, out.sent[0].VideoID)
	})

	t.Run("should return delivery failures", func(t *testing.T) {
		boom := errors.New("telegram down")
		w := NewNotifier(nil, &recordingNotifier{err: boom}, "http://localhost:8080", discardLogger())

		require.ErrorIs(t, w.handleEvent(context.Background(), created), boom)
	})
}
