package storage

//go:generate go run go.uber.org/mock/mockgen -source=storage.go -destination=../mocks/mock_storage.go -package=mocks

import (
	"context"

	"messageboard/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, authorID int64, fields domain.Fields) (domain.Message, error)
	Get(ctx context.Context, id int64) (domain.Message, error)
	List(ctx context.Context, page, pageSize int) (domain.Page, error)
	Update(ctx context.Context, id int64, fields domain.Fields) (domain.Message, error)
	Delete(ctx context.Context, id int64) error
	ExistsByYouTubeURL(ctx context.Context, url string) (bool, error)
}

// UserDirectory mirrors the accounts owned by the authentication service so
// that messages can be listed with their author's display name.
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	SaveUser(ctx context.Context, user domain.User) error
}
