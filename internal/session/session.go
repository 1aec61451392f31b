// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package session maintains exactly one logical websocket connection to the
// live-flight feed, surfacing a typed event stream and a connectivity flag.
//
// The transport is a small explicit state machine
// (connecting -> open -> closing -> closed) owned by a session object
// constructed per logical connection; nothing here is process-global, so
// independent sessions (including tests) never share reconnect bookkeeping.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/metrics"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/wire"
)

const (
	defaultDialTimeout       = 10 * time.Second
	defaultHeartbeatInterval = 30 * time.Second
	defaultBaseDelay         = 3 * time.Second
	defaultMaxDelay          = 30 * time.Second
	defaultMaxAttempts       = 10

	writeWait      = 10 * time.Second
	maxMessageSize = 512 * 1024 // 512 KB
)

// ErrRetryBudgetExhausted is returned by Run after the session has failed
// MaxAttempts consecutive connection attempts. The caller decides whether
// and when to start a fresh cycle; the session itself stops.
var ErrRetryBudgetExhausted = errors.New("session: retry budget exhausted")

// Config tunes one transport session.
type Config struct {
	// URL is the websocket endpoint of the feed server.
	URL string

	// Filter is the initial subscription filter, sent on every open.
	Filter models.FilterType

	// DialTimeout bounds connection establishment. Default 10s.
	DialTimeout time.Duration

	// HeartbeatInterval is the fixed ping cadence while open. Default 30s.
	HeartbeatInterval time.Duration

	// BaseDelay and MaxDelay shape the reconnect backoff ladder.
	// Defaults 3s and 30s.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// MaxAttempts is the per-session retry budget. Default 10.
	MaxAttempts int
}

func (c *Config) applyDefaults() {
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.Filter == "" {
		c.Filter = models.FilterAll
	}
}

// Session owns one logical connection and its reconnect cycle.
type Session struct {
	cfg    Config
	events chan Event

	mu      sync.Mutex
	state   State
	filter  models.FilterType
	attempt int
	conn    *websocket.Conn
	writeMu sync.Mutex // serializes heartbeat and filter writes
}

// New creates a session. Run must be called for anything to happen.
func New(cfg Config) *Session {
	cfg.applyDefaults()
	return &Session{
		cfg:    cfg,
		events: make(chan Event, 256),
		state:  StateClosed,
		filter: cfg.Filter,
	}
}

// Events returns the session's event stream, consumed by one dispatcher.
// Events from a single connection are delivered in receipt order.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns the current transport state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connected reports whether the transport is open.
func (s *Session) Connected() bool {
	return s.State() == StateOpen
}

// SetFilter records the desired subscription filter. While open it is sent
// immediately; otherwise it is applied as part of the next open's handshake.
// The send is never suppressed for an unchanged value, so a reconnect always
// restores server-side state.
func (s *Session) SetFilter(f models.FilterType) error {
	if !f.Valid() {
		return errors.New("session: invalid filter type")
	}

	s.mu.Lock()
	s.filter = f
	conn := s.conn
	open := s.state == StateOpen
	s.mu.Unlock()

	if open && conn != nil {
		return s.send(conn, wire.SetFilter(f))
	}
	return nil
}

// send writes one envelope with a write deadline. Safe for concurrent use.
func (s *Session) send(conn *websocket.Conn, e wire.Envelope) error {
	data, err := wire.Encode(e)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Run drives the connect/read/reconnect cycle until the context is canceled
// or the retry budget is exhausted. It is the session's single goroutine
// entry point; all timers it starts are stopped before it returns, so
// nothing fires after teardown.
func (s *Session) Run(ctx context.Context) error {
	defer func() {
		s.setState(StateClosed)
		close(s.events)
	}()

	for {
		s.setState(StateConnecting)
		conn, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if budgetErr := s.recordFailure(ctx, err); budgetErr != nil {
				return budgetErr
			}
			continue
		}

		err = s.serveConn(ctx, conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if budgetErr := s.recordFailure(ctx, err); budgetErr != nil {
			return budgetErr
		}
	}
}

// dial opens the transport with the connection-establishment timeout. A
// timeout is the same failure path as a dial error or close.
func (s *Session) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: s.cfg.DialTimeout}
	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, s.cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// serveConn runs one open connection: resets the failure counters, emits
// the connected event, replays the subscription filter, and pumps messages
// until close. The heartbeat ticker and read loop are fully torn down
// before serveConn returns, so a stale connection can never double-deliver.
func (s *Session) serveConn(ctx context.Context, conn *websocket.Conn) error {
	s.mu.Lock()
	s.attempt = 0
	s.conn = conn
	s.state = StateOpen
	filter := s.filter
	s.mu.Unlock()

	metrics.SessionConnects.Inc()
	logging.Info().Str("url", s.cfg.URL).Msg("feed connected")
	s.emit(ctx, Event{Kind: KindConnected})

	// Re-send the subscription filter so server-side state matches client
	// intent after every reconnect.
	if err := s.send(conn, wire.SetFilter(filter)); err != nil {
		s.teardownConn(conn)
		return err
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.heartbeat(conn, done)
	}()
	// Closing the socket is the only way to unblock a pending read when the
	// context is canceled.
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	err := s.readLoop(ctx, conn)

	s.setState(StateClosing)
	close(done)
	s.teardownConn(conn)
	wg.Wait()
	return err
}

// heartbeat sends a liveness probe at the fixed interval until done closes.
func (s *Session) heartbeat(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := s.send(conn, wire.Ping()); err != nil {
				logging.Warn().Err(err).Msg("heartbeat send failed")
				return
			}
		}
	}
}

// readLoop decodes incoming messages in receipt order. Malformed payloads
// are logged and dropped; they never close the session.
func (s *Session) readLoop(ctx context.Context, conn *websocket.Conn) error {
	conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		e, err := wire.Decode(data)
		if err != nil {
			metrics.SessionMalformedMessages.Inc()
			logging.Warn().Err(err).Msg("dropping undecodable feed message")
			continue
		}

		switch e.Type {
		case wire.TypePong:
			// Heartbeat acknowledgement; liveness only.
		case wire.TypeConnectionStatus:
			s.emit(ctx, Event{Kind: KindStatus, Status: e.Status, Message: e.Message})
		case wire.TypeError:
			s.emit(ctx, Event{Kind: KindServerError, Message: e.Message})
		case wire.TypeFlights, wire.TypeFlightUpdate:
			s.emit(ctx, Event{Kind: KindBatch, Batch: e.Batch()})
		default:
			// Server-bound types arriving here are dropped silently.
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// recordFailure increments the attempt counter, emits the appropriate event,
// and sleeps the backoff delay. Returns ErrRetryBudgetExhausted once the
// budget is spent, nil when the caller should retry.
func (s *Session) recordFailure(ctx context.Context, cause error) error {
	s.mu.Lock()
	s.attempt++
	attempt := s.attempt
	s.mu.Unlock()
	s.setState(StateClosed)

	if attempt >= s.cfg.MaxAttempts {
		metrics.SessionTerminalFailures.Inc()
		logging.Error().Err(cause).Int("attempts", attempt).Msg("feed retry budget exhausted")
		s.emit(ctx, Event{Kind: KindTerminal, Err: ErrRetryBudgetExhausted})
		return ErrRetryBudgetExhausted
	}

	delay := Backoff(attempt, s.cfg.BaseDelay, s.cfg.MaxDelay)
	metrics.SessionReconnectAttempts.Inc()
	logging.Warn().
		Err(cause).
		Int("attempt", attempt).
		Dur("retry_in", delay).
		Msg("feed disconnected, will reconnect")
	s.emit(ctx, Event{Kind: KindDisconnected, Err: cause})

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// teardownConn drops the connection reference and closes the socket.
func (s *Session) teardownConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
	_ = conn.Close()
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// emit delivers an event unless the consumer has gone away with the context.
func (s *Session) emit(ctx context.Context, e Event) {
	select {
	case s.events <- e:
	case <-ctx.Done():
	}
}
