package model

import (
	"fmt"

	"github.com/fleetgrid/zone-occupancy/geom"
)

// ZoneType identifies the operating rule a zone enforces.
type ZoneType string

const (
	// ZoneTypeAutonomousOperating marks the region where autonomous
	// operation is permitted at all.
	ZoneTypeAutonomousOperating ZoneType = "autonomousOperatingZone"
	// ZoneTypeSingleTruck marks a region that only one truck may occupy
	// at a time.
	ZoneTypeSingleTruck ZoneType = "singleTruckZone"
)

// Zone is a named, typed planar region. It is created once from external
// geographic data and never mutated afterwards.
type Zone struct {
	id       string
	zoneType ZoneType
	bounds   geom.Polygon
}

// NewZone wraps a polygon as a typed zone.
func NewZone(id string, zoneType ZoneType, bounds geom.Polygon) (*Zone, error) {
	if id == "" {
		return nil, fmt.Errorf("zone: empty id")
	}
	if zoneType == "" {
		return nil, fmt.Errorf("zone %q: empty zone type", id)
	}
	if bounds.Empty() {
		return nil, fmt.Errorf("zone %q: %w: empty bounds", id, geom.ErrInvalidGeometry)
	}
	return &Zone{id: id, zoneType: zoneType, bounds: bounds}, nil
}

// ID returns the zone's stable identifier.
func (z *Zone) ID() string { return z.id }

// Type returns the zone-type label.
func (z *Zone) Type() ZoneType { return z.zoneType }

// Bounds returns the zone's boundary polygon.
func (z *Zone) Bounds() geom.Polygon { return z.bounds }
