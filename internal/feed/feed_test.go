// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package feed

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/logging"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/models"
	"github.com/brandonrollinsAL/AeroTracker-sub001/internal/wire"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

// setupHub starts a hub under a test-scoped context.
func setupHub(t *testing.T, cfg HubConfig) *Hub {
	t.Helper()
	hub := NewHub(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	return hub
}

// testClient builds a hub-only client without a socket.
func testClient(hub *Hub, f models.FilterType) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		hub:    hub,
		send:   make(chan wire.Envelope, 256),
		filter: f,
	}
}

func registerClient(hub *Hub, c *Client) {
	hub.Register <- c
	time.Sleep(20 * time.Millisecond)
}

func at(lat, lng float64) models.Position {
	return models.Position{Latitude: &lat, Longitude: &lng}
}

func recv(t *testing.T, c *Client) wire.Envelope {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered to client")
		return wire.Envelope{}
	}
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := setupHub(t, HubConfig{})
	c1 := testClient(hub, models.FilterAll)
	c2 := testClient(hub, models.FilterAll)
	registerClient(hub, c1)
	registerClient(hub, c2)

	hub.BroadcastFlights(models.Batch{
		{ID: "A1", Category: models.FilterCommercial, Position: at(10, 10)},
	})

	for _, c := range []*Client{c1, c2} {
		msg := recv(t, c)
		if msg.Type != wire.TypeFlights || len(msg.Flights) != 1 {
			t.Errorf("client got %+v, want one-flight full sync", msg)
		}
	}
}

func TestHubRespectsClientFilters(t *testing.T) {
	hub := setupHub(t, HubConfig{})
	cargoOnly := testClient(hub, models.FilterCargo)
	everything := testClient(hub, models.FilterAll)
	registerClient(hub, cargoOnly)
	registerClient(hub, everything)

	hub.BroadcastUpdate(models.Batch{
		{ID: "A1", Category: models.FilterCommercial, Position: at(10, 10)},
		{ID: "C1", Category: models.FilterCargo, Position: at(20, 20)},
	})

	msg := recv(t, cargoOnly)
	if len(msg.Data) != 1 || msg.Data[0].ID != "C1" {
		t.Errorf("cargo client got %+v, want only C1", msg.Data)
	}

	msg = recv(t, everything)
	if len(msg.Data) != 2 {
		t.Errorf("unfiltered client got %d entities, want 2", len(msg.Data))
	}
}

func TestHubSkipsEmptiedIncrements(t *testing.T) {
	hub := setupHub(t, HubConfig{})
	cargoOnly := testClient(hub, models.FilterCargo)
	registerClient(hub, cargoOnly)

	// Nothing matches the filter; the increment must not reach the client.
	hub.BroadcastUpdate(models.Batch{
		{ID: "A1", Category: models.FilterCommercial, Position: at(10, 10)},
	})
	// A full sync always delivers, even emptied, so stale state clears.
	hub.BroadcastFlights(models.Batch{
		{ID: "A2", Category: models.FilterPrivate, Position: at(11, 11)},
	})

	msg := recv(t, cargoOnly)
	if msg.Type != wire.TypeFlights {
		t.Fatalf("first delivery = %q, want the full sync (increment skipped)", msg.Type)
	}
	if len(msg.Flights) != 0 {
		t.Errorf("filtered full sync carried %d entities, want 0", len(msg.Flights))
	}
}

func TestHubThrottleNoticesOnTransitions(t *testing.T) {
	// One update per hour with burst 1: the second update must be shed.
	hub := setupHub(t, HubConfig{BroadcastRate: 1.0 / 3600, BroadcastBurst: 1})
	c := testClient(hub, models.FilterAll)
	registerClient(hub, c)

	batch := models.Batch{{ID: "A1", Category: models.FilterCargo, Position: at(10, 10)}}
	hub.BroadcastUpdate(batch)
	hub.BroadcastUpdate(batch)

	first := recv(t, c)
	if first.Type != wire.TypeFlightUpdate {
		t.Fatalf("first message = %q, want flightUpdate", first.Type)
	}
	notice := recv(t, c)
	if notice.Type != wire.TypeConnectionStatus || notice.Status != wire.StatusThrottled {
		t.Fatalf("second message = %+v, want throttled connectionStatus", notice)
	}

	// A third shed update is silent: the transition already fired.
	hub.BroadcastUpdate(batch)
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message while throttled: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := setupHub(t, HubConfig{})
	c := testClient(hub, models.FilterAll)
	registerClient(hub, c)

	if hub.ClientCount() != 1 {
		t.Fatalf("client count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister <- c
	time.Sleep(20 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d after unregister, want 0", hub.ClientCount())
	}
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("send channel should be closed, got a message")
		}
	default:
		t.Error("send channel should be closed and drained")
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub := NewHub(HubConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)

	c := testClient(hub, models.FilterAll)
	registerClient(hub, c)

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop after cancel")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d after shutdown, want 0", hub.ClientCount())
	}
}

func TestTailorLeavesControlMessagesUntouched(t *testing.T) {
	c := testClient(nil, models.FilterCargo)
	msg, deliver := c.tailor(wire.ConnectionStatus(wire.StatusOK, ""))
	if !deliver || msg.Type != wire.TypeConnectionStatus {
		t.Errorf("tailor(%q) = (%+v, %v), want unmodified delivery", wire.TypeConnectionStatus, msg, deliver)
	}
}

func TestIngestPublishesFullSyncThenIncrements(t *testing.T) {
	hub := setupHub(t, HubConfig{})
	c := testClient(hub, models.FilterAll)
	registerClient(hub, c)

	in := NewIngest(IngestConfig{
		Aircraft:         8,
		UpdateInterval:   20 * time.Millisecond,
		FullSyncInterval: time.Hour,
		Seed:             42,
	}, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = in.Run(ctx) }()

	first := recv(t, c)
	if first.Type != wire.TypeFlights || len(first.Flights) != 8 {
		t.Fatalf("first message = %+v, want full sync of 8", first)
	}
	for _, e := range first.Flights {
		if _, _, ok := e.Position.Resolve(); !ok {
			t.Errorf("entity %s has unresolvable position", e.ID)
		}
	}

	second := recv(t, c)
	if second.Type != wire.TypeFlightUpdate || len(second.Data) == 0 {
		t.Fatalf("second message = %+v, want non-empty increment", second)
	}
}

func TestFilterBatch(t *testing.T) {
	batch := models.Batch{
		{ID: "A1", Category: models.FilterCommercial},
		{ID: "B1", Category: models.FilterPrivate},
		{ID: "C1", Category: models.FilterCargo},
	}

	tests := []struct {
		filter models.FilterType
		want   []string
	}{
		{models.FilterAll, []string{"A1", "B1", "C1"}},
		{models.FilterCommercial, []string{"A1"}},
		{models.FilterPrivate, []string{"B1"}},
		{models.FilterCargo, []string{"C1"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			got := filterBatch(batch, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("filterBatch kept %d entities, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("entity %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}
