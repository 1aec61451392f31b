// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package feed

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/wire"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

// clientIDCounter generates unique, monotonically increasing IDs for
// clients.
// DETERMINISM: broadcast order sorts on these IDs, eliminating
// non-deterministic map iteration order.
var clientIDCounter atomic.Uint64

// Client is a middleman between one websocket connection and the hub. Each
// client carries its own subscription filter, applied when batches fan out.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan wire.Envelope

	mu     sync.RWMutex
	filter models.FilterType
}

// NewClient creates a client for an upgraded connection. New clients start
// subscribed to all traffic until their first setFilter.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		hub:    hub,
		conn:   conn,
		send:   make(chan wire.Envelope, 256),
		filter: models.FilterAll,
	}
}

// Filter returns the client's current subscription filter.
func (c *Client) Filter() models.FilterType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *Client) setFilter(f models.FilterType) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
}

// tailor applies the client's subscription filter to an outgoing message.
// Full syncs always deliver, even when the filter empties them: the client
// needs the empty batch to clear state from a previous filter. Emptied
// increments are skipped.
func (c *Client) tailor(msg wire.Envelope) (wire.Envelope, bool) {
	if !msg.IsBatch() {
		return msg, true
	}

	filtered := filterBatch(msg.Batch(), c.Filter())
	out := msg
	switch msg.Type {
	case wire.TypeFlights:
		out.Flights = filtered
		out.Data = nil
		return out, true
	default: // flightUpdate
		if len(filtered) == 0 {
			return out, false
		}
		out.Data = filtered
		out.Flights = nil
		return out, true
	}
}

// filterBatch keeps the entities matching the subscription filter.
func filterBatch(batch models.Batch, f models.FilterType) models.Batch {
	if f == models.FilterAll {
		return batch
	}
	out := make(models.Batch, 0, len(batch))
	for _, e := range batch {
		if e.Category == f {
			out = append(out, e)
		}
	}
	return out
}

// readPump pumps messages from the websocket connection to the hub.
// Malformed payloads are logged and dropped without closing the connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}

		// Application-level liveness probe resets the read deadline too.
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}

		msg, err := wire.Decode(data)
		if err != nil {
			logging.Warn().Err(err).Uint64("client_id", c.id).Msg("dropping malformed client message")
			continue
		}

		switch msg.Type {
		case wire.TypePing:
			select {
			case c.send <- wire.Pong():
			default:
			}

		case wire.TypeSetFilter:
			if !msg.Filter.Valid() {
				logging.Warn().Str("filter", string(msg.Filter)).Uint64("client_id", c.id).Msg("rejecting unknown filter")
				select {
				case c.send <- wire.ServerError("unknown filter: " + string(msg.Filter)):
				default:
				}
				continue
			}
			c.setFilter(msg.Filter)
			logging.Debug().Str("filter", string(msg.Filter)).Uint64("client_id", c.id).Msg("client filter updated")

		default:
			logging.Warn().Str("type", msg.Type).Uint64("client_id", c.id).Msg("dropping unexpected client message")
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := wire.Encode(msg)
			if err != nil {
				logging.Error().Err(err).Msg("failed to encode outgoing message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Error().Err(err).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
