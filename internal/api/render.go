package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"messageboard/internal/domain"
)

// layout collects the data every page shows. It consumes the user's pending
// notice.
func (s *Server) layout(c echo.Context) layoutView {
	v := layoutView{User: currentUser(c)}
	if token, ok := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string); ok {
		v.CSRF = token
	}
	if v.User.ID == 0 {
		return v
	}

	text, err := s.notices.Pop(c.Request().Context(), v.User.ID)
	if err != nil {
		s.log.Warn("pop notice", "user_id", v.User.ID, "error", err)
	}
	v.Notice = text
	return v
}

func (s *Server) render(c echo.Context, status int, name string, data any) error {
	body, err := s.views.render(name, data)
	if err != nil {
		return err
	}
	return c.HTMLBlob(status, body)
}

func (s *Server) notify(c echo.Context, actor domain.User, text string) {
	if err := s.notices.Push(c.Request().Context(), actor.ID, text); err != nil {
		s.log.Warn("push notice", "user_id", actor.ID, "error", err)
	}
}

// remember records the actor's display name so listings can show it.
func (s *Server) remember(c echo.Context, actor domain.User) {
	if actor.Name == "" {
		return
	}
	if err := s.users.SaveUser(c.Request().Context(), actor); err != nil {
		s.log.Warn("save user", "user_id", actor.ID, "error", err)
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, text := http.StatusInternalServerError, "Something went wrong."
	var herr *echo.HTTPError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status, text = http.StatusNotFound, "Message not found."
	case errors.Is(err, domain.ErrForbidden):
		status, text = http.StatusForbidden, "This action is unauthorized."
	case errors.As(err, &herr):
		status, text = herr.Code, http.StatusText(herr.Code)
	default:
		s.log.Error("unhandled error", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
	}

	var werr error
	switch {
	case c.Request().Method == http.MethodHead:
		werr = c.NoContent(status)
	case isAPI(c):
		werr = c.JSON(status, map[string]string{"error": text})
	default:
		werr = s.render(c, status, "error", errorView{
			layoutView: layoutView{User: currentUser(c)},
			Status:     status,
			Text:       text,
		})
	}
	if werr != nil {
		s.log.Error("write error response", "error", werr)
	}
}
