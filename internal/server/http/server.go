package internalhttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/harborlight/crm-calendar/internal/app"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Host string
	Port int
}

type Server struct {
	srv  *http.Server
	addr string
}

func NewServer(config Config, application *app.App) *Server {
	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))

	r := chi.NewRouter()
	r.Use(loggingMiddleware)

	h := &handler{app: application}
	r.Route("/api/calendar", func(r chi.Router) {
		r.Get("/events", h.events)
		r.Post("/events", h.createEvent)
		r.Get("/grid/allday", h.allDayGrid)
		r.Get("/grid/timed", h.timedGrid)
		r.Post("/sync", h.sync)
	})

	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: r},
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start(_ context.Context) error {
	log.Printf("starting http server on %s", s.addr)
	err := s.srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
