package server

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tmachado/fleetline/internal/domain"
)

// Event-driven pushes arrive from the platform's backend services
// (dispatch optimizer, order state machine, GPS ingestion, alerting).
// The hub does not interpret the data payloads; it fans them out.

type dispatchEventRequest struct {
	DispatchID string          `json:"dispatch_id"`
	DriverID   string          `json:"driver_id,omitempty"`
	Data       json.RawMessage `json:"data"`
}

func (s *Server) handleDispatchEvent(c echo.Context) error {
	var req dispatchEventRequest
	if err := c.Bind(&req); err != nil || req.DispatchID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "dispatch_id is required"})
	}

	s.events.DispatchUpdated(c.Request().Context(), req.DispatchID, req.Data, domain.Identity(req.DriverID))
	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}

type orderEventRequest struct {
	OrderID string          `json:"order_id"`
	Data    json.RawMessage `json:"data"`
}

func (s *Server) handleOrderEvent(c echo.Context) error {
	var req orderEventRequest
	if err := c.Bind(&req); err != nil || req.OrderID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "order_id is required"})
	}

	s.events.OrderUpdated(c.Request().Context(), req.OrderID, req.Data)
	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}

type vehicleLocationRequest struct {
	VehicleID string          `json:"vehicle_id"`
	Data      json.RawMessage `json:"data"`
}

func (s *Server) handleVehicleLocationEvent(c echo.Context) error {
	var req vehicleLocationRequest
	if err := c.Bind(&req); err != nil || req.VehicleID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "vehicle_id is required"})
	}

	s.events.VehicleMoved(c.Request().Context(), req.VehicleID, req.Data)
	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}

type alertEventRequest struct {
	Severity string          `json:"severity"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func (s *Server) handleAlertEvent(c echo.Context) error {
	var req alertEventRequest
	if err := c.Bind(&req); err != nil || req.Severity == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "severity and message are required"})
	}

	alertID := s.events.AlertRaised(c.Request().Context(), req.Severity, req.Message, req.Data)
	return c.JSON(http.StatusAccepted, map[string]string{"status": "accepted", "alert_id": alertID})
}
