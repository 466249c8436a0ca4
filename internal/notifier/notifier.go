package notifier

import (
	"context"

	"messageboard/internal/domain"
)

type Notification struct {
	Event   domain.Event
	Link    string
	VideoID string
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
