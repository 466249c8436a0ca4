package queue

//go:generate go run go.uber.org/mock/mockgen -source=queue.go -destination=../mocks/mock_queue.go -package=mocks

import (
	"context"

	"messageboard/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, evt domain.Event) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, handler func(ctx context.Context, evt domain.Event) error) error
	Close() error
}

// Discard is the Publisher used when no broker is configured.
type Discard struct{}

func (Discard) Publish(context.Context, domain.Event) error { return nil }
func (Discard) Close() error                                  { return nil }
