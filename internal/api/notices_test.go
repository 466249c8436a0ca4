package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryNotices(t *testing.T) {
	ctx := context.Background()

	t.Run("should pop a notice once", func(t *testing.T) {
		req := require.New(t)
		n := NewMemoryNotices(time.Minute)

		req.NoError(n.Push(ctx, 1, "first"))
		req.NoError(n.Push(ctx, 1, noticeCreated))

		text, err := n.Pop(ctx, 1)
		req.NoError(err)
		req.Equal(noticeCreated, text)

		text, err = n.Pop(ctx, 1)
		req.NoError(err)
		req.Empty(text)
	})

	t.Run("should keep notices per user", func(t *testing.T) {
		req := require.New(t)
		n := NewMemoryNotices(time.Minute)

		req.NoError(n.Push(ctx, 1, "for one"))

		text, err := n.Pop(ctx, 2)
		req.NoError(err)
		req.Empty(text)

		text, err = n.Pop(ctx, 1)
		req.NoError(err)
		req.Equal("for one", text)
	})

	t.Run("should drop expired notices", func(t *testing.T) {
		req := require.New(t)
		now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
		n := NewMemoryNotices(time.Minute)
		n.now = func() time.Time { return now }

		req.NoError(n.Push(ctx, 1, "stale"))
		now = now.Add(2 * time.Minute)

		text, err := n.Pop(ctx, 1)
		req.NoError(err)
		req.Empty(text)
	})
}
