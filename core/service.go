package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fleetgrid/zone-occupancy/clock"
	"github.com/fleetgrid/zone-occupancy/fleet"
	"github.com/fleetgrid/zone-occupancy/internal/logging"
	"github.com/fleetgrid/zone-occupancy/internal/observability"
	"github.com/fleetgrid/zone-occupancy/model"
)

var (
	ErrZoneNotFound    = errors.New("zone not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
)

// Service answers the occupancy queries against a fleet store. Every query
// runs over a consistent snapshot of the vehicle set, so a concurrent age
// update never produces a result mixing pre- and post-update geometry for
// the same vehicle.
type Service struct {
	store   *fleet.Store
	clk     clock.Clock
	log     logging.Logger
	metrics *observability.QueryCollector
	tracer  trace.Tracer

	// bufferRate is the outward expansion rate (m/s) applied per second
	// of comms loss when checking buffered proximity.
	bufferRate float64
}

// Option customises a Service.
type Option func(*Service)

// WithLogger routes query logging to l.
func WithLogger(l logging.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics records query counts and latencies on c.
func WithMetrics(c *observability.QueryCollector) Option {
	return func(s *Service) { s.metrics = c }
}

// WithClock supplies the time source for timestamp-derived update ages.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clk = c }
}

// WithBufferRate overrides the comms-loss expansion rate in metres per second.
func WithBufferRate(rate float64) Option {
	return func(s *Service) { s.bufferRate = rate }
}

// NewService wires a query service over the given store.
func NewService(store *fleet.Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		clk:        clock.System(),
		log:        logging.Noop(),
		tracer:     otel.Tracer("zone-occupancy/core"),
		bufferRate: model.DefaultBufferRateMPerS,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BufferRate returns the configured comms-loss expansion rate.
func (s *Service) BufferRate() float64 { return s.bufferRate }

// ContainedInZone reports whether the vehicle's footprint lies entirely
// within or on the boundary of the zone.
func (s *Service) ContainedInZone(ctx context.Context, zoneID, vehicleID string) (bool, error) {
	return s.zoneVehicleQuery(ctx, "contained_in_zone", zoneID, vehicleID, VehicleContainedInZone)
}

// IntersectsZone reports whether any part of the vehicle's footprint
// intersects the zone.
func (s *Service) IntersectsZone(ctx context.Context, zoneID, vehicleID string) (bool, error) {
	return s.zoneVehicleQuery(ctx, "intersects_zone", zoneID, vehicleID, VehicleIntersectsZone)
}

// IntersectsOccupiedZone reports whether the vehicle intersects the zone
// while at least one other vehicle in the fleet also intersects it.
func (s *Service) IntersectsOccupiedZone(ctx context.Context, zoneID, vehicleID string) (bool, error) {
	ctx, span := s.startSpan(ctx, "intersects_occupied_zone", zoneID, vehicleID)
	defer span.End()
	start := time.Now()

	zone := s.store.Zone(zoneID)
	if zone == nil {
		return false, fmt.Errorf("zone %q: %w", zoneID, ErrZoneNotFound)
	}
	vehicles := s.store.SnapshotVehicles()
	target := vehicleByID(vehicles, vehicleID)
	if target == nil {
		return false, fmt.Errorf("vehicle %q: %w", vehicleID, ErrVehicleNotFound)
	}

	result := VehicleIntersectsOccupiedZone(zone, target, vehicles)
	s.finishQuery(ctx, "intersects_occupied_zone", zoneID, vehicleID, result, start)
	return result, nil
}

// AnyBuffersIntersect buffers every vehicle by its own current update age
// and the configured rate, and reports whether any two vehicles' buffered
// footprints intersect.
func (s *Service) AnyBuffersIntersect(ctx context.Context) (bool, error) {
	ctx, span := s.startSpan(ctx, "any_buffers_intersect", "", "")
	defer span.End()
	start := time.Now()

	vehicles := s.store.SnapshotVehicles()
	result, err := AnyBufferedFootprintsIntersectAt(vehicles, s.clk.Now(), s.bufferRate)
	if err != nil {
		return false, err
	}
	s.finishQuery(ctx, "any_buffers_intersect", "", "", result, start)
	return result, nil
}

// ZonesIntersectingVehicle returns the zones the vehicle's unbuffered
// footprint currently intersects, sorted by zone ID.
func (s *Service) ZonesIntersectingVehicle(ctx context.Context, vehicleID string) ([]*model.Zone, error) {
	ctx, span := s.startSpan(ctx, "zones_intersecting_vehicle", "", vehicleID)
	defer span.End()
	start := time.Now()

	v := s.store.Vehicle(vehicleID)
	if v == nil {
		return nil, fmt.Errorf("vehicle %q: %w", vehicleID, ErrVehicleNotFound)
	}
	zones := s.store.ZonesIntersecting(v.Footprint())
	s.finishQuery(ctx, "zones_intersecting_vehicle", "", vehicleID, len(zones) > 0, start)
	return zones, nil
}

func (s *Service) zoneVehicleQuery(
	ctx context.Context,
	query, zoneID, vehicleID string,
	predicate func(*model.Zone, *model.Vehicle) bool,
) (bool, error) {
	ctx, span := s.startSpan(ctx, query, zoneID, vehicleID)
	defer span.End()
	start := time.Now()

	zone := s.store.Zone(zoneID)
	if zone == nil {
		return false, fmt.Errorf("zone %q: %w", zoneID, ErrZoneNotFound)
	}
	vehicle := s.store.Vehicle(vehicleID)
	if vehicle == nil {
		return false, fmt.Errorf("vehicle %q: %w", vehicleID, ErrVehicleNotFound)
	}

	result := predicate(zone, vehicle)
	s.finishQuery(ctx, query, zoneID, vehicleID, result, start)
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, query, zoneID, vehicleID string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("occupancy.query", query)}
	if zoneID != "" {
		attrs = append(attrs, attribute.String("occupancy.zone_id", zoneID))
	}
	if vehicleID != "" {
		attrs = append(attrs, attribute.String("occupancy.vehicle_id", vehicleID))
	}
	return s.tracer.Start(ctx, "occupancy."+query, trace.WithAttributes(attrs...))
}

func (s *Service) finishQuery(ctx context.Context, query, zoneID, vehicleID string, result bool, start time.Time) {
	s.metrics.ObserveQuery(query, result, time.Since(start).Seconds())
	fields := []logging.Field{
		logging.String("query", query),
		logging.Bool("result", result),
	}
	if zoneID != "" {
		fields = append(fields, logging.String("zone_id", zoneID))
	}
	if vehicleID != "" {
		fields = append(fields, logging.String("vehicle_id", vehicleID))
	}
	s.log.Debug(ctx, "occupancy query answered", fields...)
}

func vehicleByID(vehicles []*model.Vehicle, id string) *model.Vehicle {
	for _, v := range vehicles {
		if v != nil && v.ID() == id {
			return v
		}
	}
	return nil
}
