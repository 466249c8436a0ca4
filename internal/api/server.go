package api

import (
	"context"
	"embed"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"messageboard/internal/auth"
	"messageboard/internal/board"
	"messageboard/internal/config"
	"messageboard/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	echo    *echo.Echo
	board   *board.Service
	users   storage.UserDirectory
	tokens  *auth.Tokens
	notices Notices
	views   *views
	auth    config.AuthConfig
	log     *slog.Logger
}

func NewServer(svc *board.Service, users storage.UserDirectory, tokens *auth.Tokens, notices Notices, cfg config.AuthConfig, log *slog.Logger) (*Server, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		board:   svc,
		users:   users,
		tokens:  tokens,
		notices: notices,
		views:   v,
		auth:    cfg,
		log:     log,
	}

	e.HTTPErrorHandler = s.handleError

	// HTML forms can only POST; _method carries PUT, PATCH or DELETE.
	e.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: middleware.MethodFromForm("_method"),
	}))
	e.Use(s.requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		Skipper:        isAPI,
		TokenLookup:    "form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}))

	s.routes()

	return s, nil
}

func (s *Server) routes() {
	s.echo.GET("/", s.index)
	s.echo.GET("/health", s.health)

	web := s.echo.Group("/messages", s.requireUser(false))
	web.GET("", s.list)
	web.GET("/create", s.createForm)
	web.POST("", s.create)
	web.GET("/:id", s.show)
	web.GET("/:id/edit", s.editForm)
	web.PUT("/:id", s.update)
	web.PATCH("/:id", s.update)
	web.DELETE("/:id", s.destroy)

	api := s.echo.Group("/api", s.requireUser(true))
	api.GET("/messages", s.apiList)
	api.GET("/messages/:id", s.apiShow)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
