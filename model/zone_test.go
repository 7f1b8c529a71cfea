package model

import (
	"errors"
	"testing"

	"github.com/fleetgrid/zone-occupancy/geom"
)

func TestNewZone(t *testing.T) {
	bounds := unitSquare(t)

	z, err := NewZone("stz-1", ZoneTypeSingleTruck, bounds)
	if err != nil {
		t.Fatalf("NewZone: %v", err)
	}
	if z.ID() != "stz-1" || z.Type() != ZoneTypeSingleTruck {
		t.Fatalf("got id=%q type=%q", z.ID(), z.Type())
	}
	if z.Bounds().Empty() {
		t.Fatal("bounds should not be empty")
	}
}

func TestNewZone_Validation(t *testing.T) {
	bounds := unitSquare(t)

	if _, err := NewZone("", ZoneTypeSingleTruck, bounds); err == nil {
		t.Error("expected error for empty id")
	}
	if _, err := NewZone("z1", "", bounds); err == nil {
		t.Error("expected error for empty zone type")
	}
	if _, err := NewZone("z1", ZoneTypeAutonomousOperating, geom.Polygon{}); !errors.Is(err, geom.ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry for empty bounds, got %v", err)
	}
}
