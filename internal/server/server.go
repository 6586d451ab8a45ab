// Package server exposes the hub over HTTP: one WebSocket upgrade
// endpoint per channel family, the stats endpoint, and the
// observability surface.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/tmachado/fleetline/internal/config"
	"github.com/tmachado/fleetline/internal/domain"
	"github.com/tmachado/fleetline/internal/hub"
	"github.com/tmachado/fleetline/internal/push"
)

// identityResolver converts a bearer credential into a caller identity.
type identityResolver interface {
	Resolve(token string) domain.Identity
}

// dbPinger is the minimal readiness-check view of the data store.
type dbPinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	registry  *hub.Registry
	mux       *hub.Mux
	resolver  identityResolver
	events    *push.Events
	limits    *ConnectionLimits
	db        dbPinger
	redis     *goredis.Client
	startTime time.Time
}

func NewServer(cfg *config.Config, registry *hub.Registry, mux *hub.Mux, resolver identityResolver, events *push.Events, db dbPinger, redis *goredis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:     e,
		config:   cfg,
		registry: registry,
		mux:      mux,
		resolver: resolver,
		events:   events,
		limits: NewConnectionLimits(
			cfg.MaxConnections,
			cfg.MaxConnectionsPerIP,
			cfg.ConnectionRate,
			cfg.ConnectionBurst,
		),
		db:        db,
		redis:     redis,
		startTime: time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

// Handler exposes the routed handler for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
