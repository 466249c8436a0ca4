package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"messageboard/internal/board"
	"messageboard/internal/domain"
	"messageboard/internal/youtube"
)

func (s *Server) index(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/messages")
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) list(c echo.Context) error {
	listing, err := s.board.List(c.Request().Context(), currentUser(c), pageParam(c))
	if err != nil {
		return err
	}
	return s.render(c, http.StatusOK, "index", newListView(s.layout(c), listing))
}

func (s *Server) createForm(c echo.Context) error {
	return s.render(c, http.StatusOK, "create", formView{
		layoutView: s.layout(c),
		Action:     "/messages",
	})
}

func (s *Server) create(c echo.Context) error {
	ctx := c.Request().Context()
	actor := currentUser(c)

	in, err := bindInput(c)
	if err != nil {
		return err
	}

	s.remember(c, actor)
	msg, err := s.board.Create(ctx, actor, in)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return s.render(c, http.StatusUnprocessableEntity, "create", formView{
			layoutView: s.layout(c),
			Action:     "/messages",
			Input:      in,
			Errors:     verr.Fields,
		})
	}
	if err != nil {
		return err
	}

	s.notify(c, actor, noticeCreated)
	return c.Redirect(http.StatusSeeOther, messagePath(msg.ID))
}

func (s *Server) show(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	detail, err := s.board.Get(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return err
	}
	return s.render(c, http.StatusOK, "show", detailView{layoutView: s.layout(c), Detail: detail})
}

func (s *Server) editForm(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	detail, err := s.board.Edit(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return err
	}

	msg := detail.Message
	return s.render(c, http.StatusOK, "edit", formView{
		layoutView: s.layout(c),
		Action:     messagePath(msg.ID),
		Method:     http.MethodPut,
		Input:      board.Input{Title: msg.Title, Content: msg.Content, YouTubeURL: msg.YouTubeURL},
		Message:    msg,
	})
}

func (s *Server) update(c echo.Context) error {
	ctx := c.Request().Context()
	actor := currentUser(c)

	id, err := idParam(c)
	if err != nil {
		return err
	}
	in, err := bindInput(c)
	if err != nil {
		return err
	}

	msg, err := s.board.Update(ctx, actor, id, in)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return s.render(c, http.StatusUnprocessableEntity, "edit", formView{
			layoutView: s.layout(c),
			Action:     messagePath(id),
			Method:     http.MethodPut,
			Input:      in,
			Errors:     verr.Fields,
			Message:    domain.Message{ID: id},
		})
	}
	if err != nil {
		return err
	}

	s.remember(c, actor)
	s.notify(c, actor, noticeUpdated)
	return c.Redirect(http.StatusSeeOther, messagePath(msg.ID))
}

func (s *Server) destroy(c echo.Context) error {
	actor := currentUser(c)

	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := s.board.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}

	s.notify(c, actor, noticeDeleted)
	return c.Redirect(http.StatusSeeOther, "/messages")
}

type messageJSON struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	YouTubeURL string    `json:"youtube_url,omitempty"`
	VideoID    string    `json:"video_id,omitempty"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CanModify  bool      `json:"can_modify"`
}

type listJSON struct {
	Items      []messageJSON `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
}

func toJSON(d board.Detail) messageJSON {
	m := d.Message
	videoID, _ := youtube.VideoID(m.YouTubeURL)
	return messageJSON{
		ID:         m.ID,
		Title:      m.Title,
		Content:    m.Content,
		YouTubeURL: m.YouTubeURL,
		VideoID:    videoID,
		AuthorID:   m.AuthorID,
		AuthorName: authorOf(m),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		CanModify:  d.CanModify,
	}
}

func (s *Server) apiList(c echo.Context) error {
	listing, err := s.board.List(c.Request().Context(), currentUser(c), pageParam(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listJSON{
		Items: lo.Map(listing.Items, func(d board.Detail, _ int) messageJSON {
			return toJSON(d)
		}),
		Page:       listing.Page,
		TotalPages: listing.TotalPages,
		Total:      listing.Total,
	})
}

func (s *Server) apiShow(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}

	detail, err := s.board.Get(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJSON(detail))
}

func bindInput(c echo.Context) (board.Input, error) {
	var in board.Input
	err := echo.FormFieldBinder(c).
		String("title", &in.Title).
		String("content", &in.Content).
		String("youtube_url", &in.YouTubeURL).
		BindError()
	return in, err
}

// idParam treats a malformed id like a missing message.
func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func messagePath(id int64) string {
	return "/messages/" + strconv.FormatInt(id, 10)
}
