// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package feed implements the server side of the live flight feed: a
// websocket hub that fans flight batches out to connected dashboard clients,
// honoring each client's subscription filter and shedding load with
// connectionStatus throttle notices when producers outpace the configured
// broadcast rate.
package feed

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/metrics"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/wire"
)

// HubConfig tunes broadcast behavior. A zero BroadcastRate disables
// throttling entirely.
type HubConfig struct {
	// BroadcastRate is the sustained batch broadcasts per second allowed
	// before the hub starts shedding updates.
	BroadcastRate float64

	// BroadcastBurst is the burst size for the rate limiter.
	BroadcastBurst int
}

// Hub maintains the set of active clients and broadcasts flight batches to
// them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan wire.Envelope
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	limiter *rate.Limiter

	// throttled tracks whether the last broadcast attempt was shed, so
	// status notices are emitted only on transitions.
	throttled bool
}

// NewHub creates a hub. Clients register through the Register channel once
// their websocket handshake completes.
func NewHub(cfg HubConfig) *Hub {
	h := &Hub{
		broadcast:  make(chan wire.Envelope, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
	if cfg.BroadcastRate > 0 {
		burst := cfg.BroadcastBurst
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(cfg.BroadcastRate), burst)
	}
	return h
}

// Run starts the hub with context support for graceful shutdown. Designed
// for suture supervision: on cancellation all clients are closed and
// ctx.Err() is returned so the supervisor sees a clean stop.
//
// DETERMINISM: priority-based selection keeps behavior predictable when
// multiple channels are ready: shutdown first, then client lifecycle, then
// broadcasts. Client state is always consistent before a batch fans out.
func (h *Hub) Run(ctx context.Context) error {
	for {
		// Priority 1: shutdown (non-blocking check).
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: client lifecycle (non-blocking check).
		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		// Priority 3: block for any event.
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.FeedClientsConnected.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("feed client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.FeedClientsConnected.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("feed client disconnected")
}

// BroadcastFlights fans a full-sync batch out to all clients. Full syncs
// bypass the rate limiter: a client that misses one cannot recover from
// increments alone.
func (h *Hub) BroadcastFlights(batch models.Batch) {
	h.enqueue(wire.FlightsMessage(batch))
	metrics.FeedBatchesBroadcast.WithLabelValues(wire.TypeFlights).Inc()
}

// BroadcastUpdate fans an incremental batch out to all clients, subject to
// the broadcast rate limit. Shed updates are safe to drop because the next
// update or full sync supersedes them; clients are told via a throttle
// notice so they can degrade trust in data freshness.
func (h *Hub) BroadcastUpdate(batch models.Batch) {
	if h.limiter != nil && !h.limiter.Allow() {
		h.setThrottled(true)
		return
	}
	h.setThrottled(false)
	h.enqueue(wire.FlightUpdateMessage(batch))
	metrics.FeedBatchesBroadcast.WithLabelValues(wire.TypeFlightUpdate).Inc()
}

func (h *Hub) setThrottled(on bool) {
	h.mu.Lock()
	changed := h.throttled != on
	h.throttled = on
	h.mu.Unlock()
	if !changed {
		return
	}
	if on {
		metrics.FeedThrottleEvents.Inc()
		logging.Warn().Msg("broadcast rate exceeded, shedding updates")
		h.enqueue(wire.ConnectionStatus(wire.StatusThrottled, "update rate exceeded, some updates dropped"))
		return
	}
	h.enqueue(wire.ConnectionStatus(wire.StatusOK, ""))
}

func (h *Hub) enqueue(msg wire.Envelope) {
	select {
	case h.broadcast <- msg:
	default:
		metrics.FeedBroadcastDrops.Inc()
		logging.Warn().Str("type", msg.Type).Msg("broadcast channel full, dropping message")
	}
}

// broadcastToClients sends a message to all connected clients.
// DETERMINISM: clients are sorted by their monotonic ID so delivery order is
// reproducible across runs.
func (h *Hub) broadcastToClients(msg wire.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		out, deliver := client.tailor(msg)
		if !deliver {
			continue
		}
		select {
		case client.send <- out:
		default:
			// Send buffer full: the client cannot keep up, drop it.
			metrics.FeedBroadcastDrops.Inc()
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.FeedClientsConnected.Set(float64(len(h.clients)))
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	metrics.FeedClientsConnected.Set(0)
	logging.Info().
		Str("component", "feed-hub").
		Int("clients_closed", len(clients)).
		AnErr("reason", ctx.Err()).
		Msg("feed hub stopped")
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
