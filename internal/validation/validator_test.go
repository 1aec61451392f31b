// AeroTracker - Real-Time Flight Tracking and Airspace Visualization
// Copyright 2026 Brandon Rollins (brandonrollinsAL)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/brandonrollinsAL/AeroTracker-sub001

package validation

import (
	"strings"
	"testing"
)

type subscribeRequest struct {
	Filter string `validate:"required,flightfilter"`
	Zoom   int    `validate:"zoomlevel"`
}

func TestValidateStructPasses(t *testing.T) {
	req := subscribeRequest{Filter: "cargo", Zoom: 10}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("ValidateStruct = %v, want nil", err)
	}
}

func TestFlightFilterValidator(t *testing.T) {
	tests := []struct {
		filter string
		ok     bool
	}{
		{"all", true},
		{"commercial", true},
		{"private", true},
		{"cargo", true},
		{"military", false},
		{"", false},
		{"ALL", false},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			err := ValidateStruct(&subscribeRequest{Filter: tt.filter, Zoom: 5})
			if (err == nil) != tt.ok {
				t.Errorf("filter %q: err = %v, want ok=%v", tt.filter, err, tt.ok)
			}
		})
	}
}

func TestZoomLevelValidator(t *testing.T) {
	tests := []struct {
		zoom int
		ok   bool
	}{
		{0, true},
		{10, true},
		{22, true},
		{-1, false},
		{23, false},
	}

	for _, tt := range tests {
		err := ValidateStruct(&subscribeRequest{Filter: "all", Zoom: tt.zoom})
		if (err == nil) != tt.ok {
			t.Errorf("zoom %d: err = %v, want ok=%v", tt.zoom, err, tt.ok)
		}
	}
}

func TestValidationErrorDetail(t *testing.T) {
	err := ValidateStruct(&subscribeRequest{Filter: "drone", Zoom: 99})
	if err == nil {
		t.Fatal("want validation failure")
	}

	if len(err.Errors()) != 2 {
		t.Fatalf("got %d field errors, want 2", len(err.Errors()))
	}
	first := err.Errors()[0]
	if first.Field() != "Filter" || first.Tag() != "flightfilter" {
		t.Errorf("first error = (%s, %s), want (Filter, flightfilter)", first.Field(), first.Tag())
	}
	if !strings.Contains(err.Error(), "Zoom") {
		t.Errorf("combined message %q should mention the Zoom field", err.Error())
	}
}

func TestGetValidatorIsSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator should return the same instance")
	}
}
