// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

// Package pipeline wires the transport session, flight state store, viewport
// tracker, visibility filter, and clustering engine into one dispatcher
// loop.
//
// All session events, settle events, and cluster clicks funnel through a
// single goroutine, which gives the ordering guarantees the view layer
// relies on: batches merge in receipt order, and every settle runs the
// visibility filter then the clustering engine synchronously before the
// next event is processed.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/cluster"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/metrics"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/session"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/store"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/view"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/wire"
)

// Frame is one recomputation cycle's output for the view composition layer:
// the visible individual entities, the cluster list, and the detail level.
type Frame struct {
	Visible  []models.AircraftState
	Clusters []cluster.Cluster
	Detail   view.DetailLevel
	Bounds   models.ViewportBounds
	Zoom     int
}

// Status is the connectivity state surfaced to the UI layer.
type Status struct {
	// Connected is the transport's liveness flag. It also drops on a
	// server throttle notice to reflect degraded trust in data freshness,
	// without the transport closing.
	Connected bool

	// Degraded is set while the server signals throttling.
	Degraded bool

	// Terminal is set once the session's retry budget is exhausted; the
	// only recovery is an external restart.
	Terminal bool

	Message string
}

// Coordinator owns the client-side synchronization pipeline.
type Coordinator struct {
	sess    *session.Session
	store   *store.Store
	tracker *view.Tracker

	settleCh chan view.Viewport

	mu     sync.Mutex
	frame  Frame
	status Status

	onFrame  func(Frame)
	onStatus func(Status)
}

// New creates a coordinator around an unstarted session and an empty store.
// onFrame is invoked synchronously after every recomputation cycle; onStatus
// after every connectivity change. Either may be nil.
func New(sess *session.Session, st *store.Store, onFrame func(Frame), onStatus func(Status)) *Coordinator {
	c := &Coordinator{
		sess:     sess,
		store:    st,
		settleCh: make(chan view.Viewport, 16),
		onFrame:  onFrame,
		onStatus: onStatus,
	}
	c.tracker = view.NewTracker(func(vp view.Viewport) {
		// Settle events queue for the dispatcher; the channel is buffered
		// so a map gesture never blocks on a recompute in progress.
		c.settleCh <- vp
	})
	return c
}

// Tracker returns the viewport tracker; the map layer reports settle events
// through it.
func (c *Coordinator) Tracker() *view.Tracker {
	return c.tracker
}

// Frame returns the most recently published frame.
func (c *Coordinator) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Status returns the current connectivity status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SetFilter forwards a subscription filter change to the session.
func (c *Coordinator) SetFilter(f models.FilterType) error {
	return c.sess.SetFilter(f)
}

// HandleClusterClick resolves a cluster click at the current zoom. A
// fit-bounds result settles the tracker on the padded region, which
// re-triggers the full recomputation pipeline; the other actions leave the
// viewport untouched.
func (c *Coordinator) HandleClusterClick(cl cluster.Cluster) cluster.ClickResult {
	vp := c.tracker.Current()
	res := cluster.Click(cl, vp.Zoom)
	if res.Action == cluster.ActionFitBounds {
		c.tracker.Settle(res.Fit, vp.Zoom)
	}
	return res
}

// Run is the dispatcher loop. It consumes the session's event stream and
// settle events until the context is canceled or the session terminates.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case vp := <-c.settleCh:
			c.recompute(vp)

		case e, ok := <-c.sess.Events():
			if !ok {
				// Session torn down; nothing more will arrive.
				return nil
			}
			c.handleSessionEvent(e)
		}
	}
}

func (c *Coordinator) handleSessionEvent(e session.Event) {
	switch e.Kind {
	case session.KindConnected:
		c.updateStatus(func(s *Status) {
			s.Connected = true
			s.Degraded = false
			s.Message = ""
		})

	case session.KindDisconnected:
		c.updateStatus(func(s *Status) {
			s.Connected = false
		})

	case session.KindTerminal:
		c.updateStatus(func(s *Status) {
			s.Connected = false
			s.Terminal = true
			s.Message = "live feed unavailable, refresh to retry"
		})

	case session.KindStatus:
		throttled := e.Status == wire.StatusThrottled
		c.updateStatus(func(s *Status) {
			s.Degraded = throttled
			s.Connected = !throttled && s.Connected
			s.Message = e.Message
		})

	case session.KindServerError:
		logging.Warn().Str("message", e.Message).Msg("feed reported an error")

	case session.KindBatch:
		if c.store.Merge(e.Batch) > 0 {
			// Dataset change: rerun view reduction against the current
			// viewport.
			c.recompute(c.tracker.Current())
		}
	}
}

func (c *Coordinator) updateStatus(mutate func(*Status)) {
	c.mu.Lock()
	mutate(&c.status)
	st := c.status
	c.mu.Unlock()

	if c.onStatus != nil {
		c.onStatus(st)
	}
}

// recompute runs the visibility filter then the clustering engine for one
// cycle and publishes the resulting frame, replacing the prior cycle's
// output entirely.
func (c *Coordinator) recompute(vp view.Viewport) {
	start := time.Now()

	visible := view.Visible(c.store.Snapshot(), vp.Bounds)
	clusters := cluster.Compute(visible, vp.Zoom)

	frame := Frame{
		Visible:  visible,
		Clusters: clusters,
		Detail:   vp.Detail,
		Bounds:   vp.Bounds,
		Zoom:     vp.Zoom,
	}

	c.mu.Lock()
	c.frame = frame
	c.mu.Unlock()

	metrics.RecordRecompute(len(clusters), time.Since(start))
	if c.onFrame != nil {
		c.onFrame(frame)
	}
}
