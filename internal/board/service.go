// Package board orchestrates the message operations: it validates input,
// checks ownership and calls the store. The acting user is always passed in
// explicitly; rendering and notices are left to the HTTP layer.
package board

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"messageboard/internal/domain"
	"messageboard/internal/policy"
	"messageboard/internal/queue"
	"messageboard/internal/storage"
)

const PageSize = 10

type Detail struct {
	Message   domain.Message
	CanModify bool
}

type Listing struct {
	Items      []Detail
	Page       int
	TotalPages int
	Total      int
}

type Service struct {
	repo      storage.MessageRepository
	publisher queue.Publisher
	log       *slog.Logger
}

func NewService(repo storage.MessageRepository, publisher queue.Publisher, log *slog.Logger) *Service {
	if publisher == nil {
		publisher = queue.Discard{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, publisher: publisher, log: log}
}

func (s *Service) List(ctx context.Context, actor domain.User, page int) (Listing, error) {
	if page < 1 {
		page = 1
	}

	result, err := s.repo.List(ctx, page, PageSize)
	if err != nil {
		return Listing{}, err
	}

	return Listing{
		Items: lo.Map(result.Items, func(m domain.Message, _ int) Detail {
			return Detail{Message: m, CanModify: policy.CanModify(actor, m)}
		}),
		Page:       result.Page,
		TotalPages: result.TotalPages(),
		Total:      result.Total,
	}, nil
}

func (s *Service) Get(ctx context.Context, actor domain.User, id int64) (Detail, error) {
	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Message: msg, CanModify: policy.CanModify(actor, msg)}, nil
}

func (s *Service) Create(ctx context.Context, actor domain.User, in Input) (domain.Message, error) {
	fields, err := in.Validate()
	if err != nil {
		return domain.Message{}, err
	}

	msg, err := s.repo.Create(ctx, actor.ID, fields)
	if err != nil {
		return domain.Message{}, err
	}

	s.publish(ctx, domain.EventCreated, actor, msg)
	return msg, nil
}

// Edit loads a message for its edit form. Only the author gets it.
func (s *Service) Edit(ctx context.Context, actor domain.User, id int64) (Detail, error) {
	msg, err := s.authorized(ctx, actor, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Message: msg, CanModify: true}, nil
}

func (s *Service) Update(ctx context.Context, actor domain.User, id int64, in Input) (domain.Message, error) {
	if _, err := s.authorized(ctx, actor, id); err != nil {
		return domain.Message{}, err
	}

	fields, err := in.Validate()
	if err != nil {
		return domain.Message{}, err
	}

	msg, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return domain.Message{}, err
	}

	s.publish(ctx, domain.EventUpdated, actor, msg)
	return msg, nil
}

func (s *Service) Delete(ctx context.Context, actor domain.User, id int64) error {
	msg, err := s.authorized(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, domain.EventDeleted, actor, msg)
	return nil
}

func (s *Service) authorized(ctx context.Context, actor domain.User, id int64) (domain.Message, error) {
	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	if err := policy.Authorize(actor, msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// publish reports a committed change. The write already happened, so a
// broker failure is logged and not returned.
func (s *Service) publish(ctx context.Context, typ domain.EventType, actor domain.User, msg domain.Message) {
	evt := domain.Event{
		ID:         uuid.NewString(),
		Type:       typ,
		MessageID:  msg.ID,
		AuthorID:   msg.AuthorID,
		AuthorName: lo.Ternary(msg.AuthorName != "", msg.AuthorName, actor.Name),
		Title:      msg.Title,
		YouTubeURL: msg.YouTubeURL,
		At:         time.Now().UTC(),
	}

	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.Warn("publish event failed", "type", typ, "message_id", msg.ID, "error", err)
	}
}
