package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"messageboard/internal/domain"
)

const userKey = "user"

var errNoSession = errors.New("no session token")

// requireUser resolves the session token into the current user. Browsers
// without one are sent to the login page; API clients get a 401.
func (s *Server) requireUser(api bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := s.authenticate(c)
			if err != nil {
				if !errors.Is(err, errNoSession) {
					s.log.Debug("rejected session", "path", c.Request().URL.Path, "error", err)
				}
				if api {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
				}
				return c.Redirect(http.StatusSeeOther, s.loginURL(c))
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

func (s *Server) authenticate(c echo.Context) (domain.User, error) {
	raw := ""
	if cookie, err := c.Cookie(s.auth.Cookie); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			raw = strings.TrimSpace(token)
		}
	}
	if raw == "" {
		return domain.User{}, errNoSession
	}
	return s.tokens.Parse(raw)
}

func (s *Server) loginURL(c echo.Context) string {
	sep := "?"
	if strings.Contains(s.auth.LoginURL, "?") {
		sep = "&"
	}
	return s.auth.LoginURL + sep + "next=" + url.QueryEscape(c.Request().URL.RequestURI())
}

func currentUser(c echo.Context) domain.User {
	user, _ := c.Get(userKey).(domain.User)
	return user
}

func isAPI(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if user := currentUser(c); user.ID != 0 {
				attrs = append(attrs, slog.Int64("user_id", user.ID))
			}

			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			s.log.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

