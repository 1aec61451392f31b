// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/feed"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/store"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/validation"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/view"
)

// Handler carries the dependencies for all HTTP handlers.
type Handler struct {
	hub     *feed.Hub
	store   *store.Store
	started time.Time
}

// NewHandler creates a handler bound to the hub and store.
func NewHandler(hub *feed.Hub, st *store.Store) *Handler {
	return &Handler{
		hub:     hub,
		store:   st,
		started: time.Now(),
	}
}

// APIResponse is the envelope for all REST responses.
type APIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *APIError   `json:"error,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, &APIResponse{
		Status: "error",
		Error:  &APIError{Code: code, Message: message},
	})
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "ok",
		Data:   map[string]string{"state": "alive"},
	})
}

// HealthReady reports readiness to serve feed traffic.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "ok",
		Data:   map[string]string{"state": "ready"},
	})
}

// Health reports overall service health with basic stats.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "ok",
		Data: map[string]interface{}{
			"uptime_seconds": int(time.Since(h.started).Seconds()),
			"clients":        h.hub.ClientCount(),
			"aircraft":       h.store.Len(),
		},
	})
}

// Stats returns feed statistics for the dashboard footer.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "ok",
		Data: map[string]interface{}{
			"clients":  h.hub.ClientCount(),
			"aircraft": h.store.Len(),
		},
	})
}

// flightsRequest holds the validated query parameters for Flights.
type flightsRequest struct {
	Filter string  `validate:"omitempty,flightfilter"`
	West   float64 `validate:"longitude"`
	South  float64 `validate:"latitude"`
	East   float64 `validate:"longitude"`
	North  float64 `validate:"latitude"`
}

// Flights returns the current fleet snapshot, optionally narrowed by a
// category filter and a bounding box (west, south, east, north).
func (h *Handler) Flights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	req := flightsRequest{
		Filter: q.Get("filter"),
		West:   -180,
		South:  -90,
		East:   180,
		North:  90,
	}
	hasBounds := q.Has("west") || q.Has("south") || q.Has("east") || q.Has("north")
	if hasBounds {
		var err error
		if req.West, err = parseCoord(q.Get("west"), req.West); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "west must be a number")
			return
		}
		if req.South, err = parseCoord(q.Get("south"), req.South); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "south must be a number")
			return
		}
		if req.East, err = parseCoord(q.Get("east"), req.East); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "east must be a number")
			return
		}
		if req.North, err = parseCoord(q.Get("north"), req.North); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "north must be a number")
			return
		}
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error())
		return
	}

	snapshot := h.store.Snapshot()

	if hasBounds {
		bounds := models.ViewportBounds{
			West:  req.West,
			South: req.South,
			East:  req.East,
			North: req.North,
		}
		snapshot = view.Visible(snapshot, bounds)
	}

	if f := models.FilterType(req.Filter); req.Filter != "" && f != models.FilterAll {
		kept := snapshot[:0]
		for _, e := range snapshot {
			if e.Category == f {
				kept = append(kept, e)
			}
		}
		snapshot = kept
	}

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "ok",
		Data: map[string]interface{}{
			"count":   len(snapshot),
			"flights": snapshot,
		},
	})
}

func parseCoord(s string, fallback float64) (float64, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(s, 64)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from configurable origins; CORS middleware
	// already vets the HTTP side, so the upgrade accepts all origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocket upgrades the connection and hands it to the feed hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("websocket connection rejected: hub not initialized")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "feed service unavailable")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade error")
		return
	}

	client := feed.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}
