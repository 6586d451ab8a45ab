package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/stats", s.handleStats)

	// Static channels
	s.echo.GET("/ws/dashboard", s.handleChannel("dashboard"))
	s.echo.GET("/ws/alerts", s.handleChannel("alerts"))
	s.echo.GET("/ws/analytics", s.handleChannel("analytics"))

	// Parameterized per-entity channels
	s.echo.GET("/ws/vehicles/:id", s.handleEntityChannel("vehicles"))
	s.echo.GET("/ws/orders/:id", s.handleEntityChannel("orders"))
	s.echo.GET("/ws/dispatches/:id", s.handleEntityChannel("dispatches"))
	s.echo.GET("/ws/drivers/:id", s.handleEntityChannel("drivers"))

	// Event ingestion from backend producers
	s.echo.POST("/api/events/dispatch", s.handleDispatchEvent)
	s.echo.POST("/api/events/order", s.handleOrderEvent)
	s.echo.POST("/api/events/vehicle-location", s.handleVehicleLocationEvent)
	s.echo.POST("/api/events/alert", s.handleAlertEvent)
}
