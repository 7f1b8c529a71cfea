// Package core answers the spatial-safety questions for a fleet: zone
// containment, zone intersection, shared-occupancy conflict, and buffered
// proximity under stale positions. The rule functions are pure compositions
// of the geometry kernel over Zone/Vehicle values; Service adds world-state
// snapshots and instrumentation on top.
package core

import (
	"time"

	"github.com/fleetgrid/zone-occupancy/geom"
	"github.com/fleetgrid/zone-occupancy/model"
)

// VehicleContainedInZone reports whether the vehicle's footprint lies
// entirely within or on the boundary of the zone. Zone and vehicle must be
// non-nil.
func VehicleContainedInZone(zone *model.Zone, v *model.Vehicle) bool {
	return geom.Contains(zone.Bounds(), v.Footprint())
}

// VehicleIntersectsZone reports whether any part of the vehicle's footprint
// intersects the zone, boundary touching included.
func VehicleIntersectsZone(zone *model.Zone, v *model.Vehicle) bool {
	return geom.Intersects(zone.Bounds(), v.Footprint())
}

// VehicleIntersectsOccupiedZone reports whether target intersects a zone
// that at least one other vehicle also intersects. "Other" is decided by
// identity (same pointer or same vehicle ID), not by footprint value:
// target is skipped wherever it appears in vehicles, so a vehicle is never
// its own co-occupant, while a distinct vehicle with an identical footprint
// still counts. The ID comparison keeps the exclusion correct across
// snapshot copies of the same vehicle.
func VehicleIntersectsOccupiedZone(zone *model.Zone, target *model.Vehicle, vehicles []*model.Vehicle) bool {
	if !VehicleIntersectsZone(zone, target) {
		return false
	}
	for _, other := range vehicles {
		if other == nil || other == target || other.ID() == target.ID() {
			continue
		}
		if VehicleIntersectsZone(zone, other) {
			return true
		}
	}
	return false
}

// AnyBufferedFootprintsIntersect buffers every vehicle's footprint by its
// own stored update age times rate (metres per second) and reports whether
// any two distinct vehicles' buffered footprints intersect. The check is
// boundary-inclusive and pairwise over the whole set; fleets are tens of
// vehicles, so O(n²) is fine.
func AnyBufferedFootprintsIntersect(vehicles []*model.Vehicle, rate float64) (bool, error) {
	return anyBufferedIntersect(vehicles, func(v *model.Vehicle) (geom.Polygon, error) {
		return v.BufferedFootprint(rate)
	})
}

// AnyBufferedFootprintsIntersectAt is AnyBufferedFootprintsIntersect with
// ages derived as of now for vehicles tracked by timestamp.
func AnyBufferedFootprintsIntersectAt(vehicles []*model.Vehicle, now time.Time, rate float64) (bool, error) {
	return anyBufferedIntersect(vehicles, func(v *model.Vehicle) (geom.Polygon, error) {
		return v.BufferedFootprintAt(now, rate)
	})
}

func anyBufferedIntersect(vehicles []*model.Vehicle, buffered func(*model.Vehicle) (geom.Polygon, error)) (bool, error) {
	bounds := make([]geom.Polygon, 0, len(vehicles))
	for _, v := range vehicles {
		if v == nil {
			continue
		}
		b, err := buffered(v)
		if err != nil {
			return false, err
		}
		bounds = append(bounds, b)
	}

	for i := 0; i < len(bounds); i++ {
		for j := i + 1; j < len(bounds); j++ {
			if geom.Intersects(bounds[i], bounds[j]) {
				return true, nil
			}
		}
	}
	return false, nil
}
