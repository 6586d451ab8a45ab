package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/tmachado/fleetline/internal/logging"
	"github.com/tmachado/fleetline/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboards and driver apps connect cross-origin
	},
}

// handleChannel serves a static channel ("dashboard", "alerts", ...).
func (s *Server) handleChannel(channel string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return s.serveWebSocket(c, channel)
	}
}

// handleEntityChannel serves a parameterized channel family
// ("vehicles/:id" and friends).
func (s *Server) handleEntityChannel(family string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if id == "" {
			return c.String(http.StatusBadRequest, "missing entity id")
		}
		return s.serveWebSocket(c, family+"/"+id)
	}
}

func (s *Server) serveWebSocket(c echo.Context, channel string) error {
	ip := c.RealIP()

	ok, reason := s.limits.Acquire(ip)
	if !ok {
		metrics.HubConnectionsRejected.WithLabelValues(string(reason)).Inc()
		logging.WithChannel(channel).Warn("Rejecting connection", "ip", ip, "reason", reason)
		return c.String(http.StatusTooManyRequests, "connection limit reached")
	}
	defer s.limits.Release(ip)

	// Absence of a valid credential degrades to anonymous, never rejects.
	identity := s.resolver.Resolve(bearerToken(c))

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "channel", channel, "error", err)
		return nil
	}

	// Blocks until disconnect; the mux unregisters and releases the
	// transport on every exit path.
	s.mux.Accept(conn, channel, identity)
	return nil
}

// bearerToken extracts the credential from the Authorization header or,
// for browser clients that cannot set headers on WebSocket upgrades,
// the token query parameter.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return c.QueryParam("token")
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.registry.Stats())
}
