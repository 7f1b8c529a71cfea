package model

import (
	"fmt"
	"math"
	"time"

	"github.com/fleetgrid/zone-occupancy/geom"
)

// DefaultBufferRateMPerS is the reference outward expansion rate of a
// vehicle's positional uncertainty during comms loss. It is a default for
// callers, never baked into the geometry kernel.
const DefaultBufferRateMPerS = 3.0

// Vehicle is a tracked asset with a polygonal footprint in absolute world
// coordinates. The footprint never moves on its own; what changes is how
// stale the last confirmed position is, which callers record either as a
// raw age in seconds (deterministic, used by tests and replay tooling) or
// as a last-update timestamp (production use, age derived at query time).
type Vehicle struct {
	id        string
	footprint geom.Polygon

	// updateAge is the seconds since the last confirmed position update.
	// Zero means fresh.
	updateAge float64

	// lastSeen, when non-zero, takes precedence over updateAge and lets
	// age be derived from a clock instead of drifting between setter
	// calls and the actual query instant.
	lastSeen time.Time
}

// NewVehicle constructs a vehicle with a fresh position (age zero).
func NewVehicle(id string, footprint geom.Polygon) (*Vehicle, error) {
	if id == "" {
		return nil, fmt.Errorf("vehicle: empty id")
	}
	if footprint.Empty() {
		return nil, fmt.Errorf("vehicle %q: %w: empty footprint", id, geom.ErrInvalidGeometry)
	}
	if footprint.HasHoles() {
		return nil, fmt.Errorf("vehicle %q: %w: footprint must not have holes", id, geom.ErrInvalidGeometry)
	}
	return &Vehicle{id: id, footprint: footprint}, nil
}

// ID returns the vehicle's stable identifier.
func (v *Vehicle) ID() string { return v.id }

// Footprint returns the stored footprint polygon. Update age never affects
// the unbuffered footprint.
func (v *Vehicle) Footprint() geom.Polygon { return v.footprint }

// UpdateAge returns the recorded seconds since the last position update.
func (v *Vehicle) UpdateAge() float64 { return v.updateAge }

// SetUpdateAge records the comms-loss duration directly. Negative or NaN
// ages are rejected without mutating the vehicle. Setting a raw age clears
// any previously recorded timestamp.
func (v *Vehicle) SetUpdateAge(age float64) error {
	if math.IsNaN(age) || age < 0 {
		return fmt.Errorf("vehicle %q: %w: update age must be non-negative, got %v", v.id, geom.ErrInvalidArgument, age)
	}
	v.updateAge = age
	v.lastSeen = time.Time{}
	return nil
}

// MarkUpdated records a confirmed position update at instant t. Subsequent
// UpdateAgeAt calls derive the age from t.
func (v *Vehicle) MarkUpdated(t time.Time) {
	v.lastSeen = t
	v.updateAge = 0
}

// UpdateAgeAt returns the age in seconds as of now: derived from the last
// confirmed update when one was recorded with MarkUpdated, otherwise the
// raw stored age. A clock that appears to run backwards yields zero.
func (v *Vehicle) UpdateAgeAt(now time.Time) float64 {
	if v.lastSeen.IsZero() {
		return v.updateAge
	}
	age := now.Sub(v.lastSeen).Seconds()
	if age < 0 {
		return 0
	}
	return age
}

// BufferedFootprint expands the footprint outward by the stored age times
// rate (metres per second). It is side-effect-free and computed fresh on
// every call, since age can change between queries.
func (v *Vehicle) BufferedFootprint(rate float64) (geom.Polygon, error) {
	return v.bufferedAt(v.updateAge, rate)
}

// BufferedFootprintAt is BufferedFootprint with the age derived as of now
// (see UpdateAgeAt).
func (v *Vehicle) BufferedFootprintAt(now time.Time, rate float64) (geom.Polygon, error) {
	return v.bufferedAt(v.UpdateAgeAt(now), rate)
}

func (v *Vehicle) bufferedAt(age, rate float64) (geom.Polygon, error) {
	if math.IsNaN(rate) || rate < 0 {
		return geom.Polygon{}, fmt.Errorf("vehicle %q: %w: buffer rate must be non-negative, got %v", v.id, geom.ErrInvalidArgument, rate)
	}
	dist := age * rate
	if dist == 0 {
		return v.footprint, nil
	}
	buffered, err := geom.BufferOutward(v.footprint, dist)
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("vehicle %q: %w", v.id, err)
	}
	return buffered, nil
}

// Clone returns an independent copy, used for snapshot reads so an
// in-flight age update never leaks into a running query.
func (v *Vehicle) Clone() *Vehicle {
	cp := *v
	return &cp
}
