// Package fleet holds the world-state container: every zone and vehicle the
// occupancy queries reason about. The store is explicitly owned and passed
// into query code (there is no process-wide registry), and reads hand out
// snapshots so an in-flight age update never mixes pre- and post-update
// geometry inside a single query.
package fleet

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dhconnelly/rtreego"

	"github.com/fleetgrid/zone-occupancy/geom"
	"github.com/fleetgrid/zone-occupancy/model"
)

var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrNotFound    = errors.New("not found")
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventZoneAdded EventType = iota
	EventVehicleAdded
	EventVehicleAgeUpdated
	EventVehicleSeen
)

// Event is emitted to subscribers when the fleet state changes.
type Event struct {
	Type      EventType
	ZoneID    string
	VehicleID string
	UpdateAge float64
}

// Store is an in-memory, thread-safe registry of zones and vehicles. Zones
// additionally sit in an R-tree so candidate lookups by footprint stay cheap
// as zone counts grow.
type Store struct {
	mu sync.RWMutex

	zones     map[string]*model.Zone
	vehicles  map[string]*model.Vehicle
	zoneIndex *rtreego.Rtree

	subs []func(Event)
}

// NewStore constructs an empty fleet store.
func NewStore() *Store {
	return &Store{
		zones:     make(map[string]*model.Zone),
		vehicles:  make(map[string]*model.Vehicle),
		zoneIndex: rtreego.NewTree(2, 4, 8),
	}
}

// AddZone registers a zone. Zone IDs must be unique.
func (s *Store) AddZone(z *model.Zone) error {
	if z == nil {
		return fmt.Errorf("fleet: nil zone")
	}

	s.mu.Lock()
	if _, exists := s.zones[z.ID()]; exists {
		s.mu.Unlock()
		return fmt.Errorf("fleet: zone %q: %w", z.ID(), ErrDuplicateID)
	}
	s.zones[z.ID()] = z
	s.zoneIndex.Insert(&zoneEntry{zone: z, rect: boundsRect(z.Bounds())})
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs, Event{Type: EventZoneAdded, ZoneID: z.ID()})
	return nil
}

// AddVehicle registers a vehicle. Vehicle IDs must be unique.
func (s *Store) AddVehicle(v *model.Vehicle) error {
	if v == nil {
		return fmt.Errorf("fleet: nil vehicle")
	}

	s.mu.Lock()
	if _, exists := s.vehicles[v.ID()]; exists {
		s.mu.Unlock()
		return fmt.Errorf("fleet: vehicle %q: %w", v.ID(), ErrDuplicateID)
	}
	s.vehicles[v.ID()] = v
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs, Event{Type: EventVehicleAdded, VehicleID: v.ID()})
	return nil
}

// Zone returns the zone with the given ID, or nil if not registered.
func (s *Store) Zone(id string) *model.Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zones[id]
}

// Vehicle returns a snapshot copy of the vehicle with the given ID, or nil.
func (s *Store) Vehicle(id string) *model.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v := s.vehicles[id]; v != nil {
		return v.Clone()
	}
	return nil
}

// ListZones returns all zones sorted by ID. Zones are immutable, so the
// pointers themselves are safe to share.
func (s *Store) ListZones() []*model.Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z)
	}
	sortZones(out)
	return out
}

// ZonesByType returns the zones carrying the given type label, sorted by ID.
func (s *Store) ZonesByType(t model.ZoneType) []*model.Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Zone
	for _, z := range s.zones {
		if z.Type() == t {
			out = append(out, z)
		}
	}
	sortZones(out)
	return out
}

// SnapshotVehicles returns independent copies of every vehicle, sorted by
// ID. Queries run against a snapshot, never against live registry entries.
func (s *Store) SnapshotVehicles() []*model.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// SetVehicleUpdateAge records a comms-loss duration for a vehicle and
// notifies subscribers. The vehicle is untouched when validation fails.
func (s *Store) SetVehicleUpdateAge(id string, age float64) error {
	s.mu.Lock()
	v, ok := s.vehicles[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("fleet: vehicle %q: %w", id, ErrNotFound)
	}
	if err := v.SetUpdateAge(age); err != nil {
		s.mu.Unlock()
		return err
	}
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs, Event{Type: EventVehicleAgeUpdated, VehicleID: id, UpdateAge: age})
	return nil
}

// MarkVehicleUpdated records a confirmed position update instant for a
// vehicle, switching it to timestamp-derived age.
func (s *Store) MarkVehicleUpdated(id string, t time.Time) error {
	s.mu.Lock()
	v, ok := s.vehicles[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("fleet: vehicle %q: %w", id, ErrNotFound)
	}
	v.MarkUpdated(t)
	subs := s.snapshotSubsLocked()
	s.mu.Unlock()

	notify(subs, Event{Type: EventVehicleSeen, VehicleID: id})
	return nil
}

// ZonesIntersecting returns the zones whose boundary polygon shares at
// least one point with p, sorted by ID. The R-tree narrows the candidates;
// the exact boundary-inclusive test makes the final call.
func (s *Store) ZonesIntersecting(p geom.Polygon) []*model.Zone {
	if p.Empty() {
		return nil
	}

	s.mu.RLock()
	hits := s.zoneIndex.SearchIntersect(boundsRect(p))
	s.mu.RUnlock()

	var out []*model.Zone
	for _, h := range hits {
		entry, ok := h.(*zoneEntry)
		if !ok {
			continue
		}
		if geom.Intersects(entry.zone.Bounds(), p) {
			out = append(out, entry.zone)
		}
	}
	sortZones(out)
	return out
}

// Counts returns the number of registered zones and vehicles.
func (s *Store) Counts() (zones, vehicles int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.zones), len(s.vehicles)
}

// Subscribe registers a callback for store events and returns an
// unsubscribe function. Callbacks run outside the store lock.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
	idx := len(s.subs) - 1

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < 0 || idx >= len(s.subs) {
			return
		}
		s.subs = append(s.subs[:idx], s.subs[idx+1:]...)
		idx = -1
	}
}

func (s *Store) snapshotSubsLocked() []func(Event) {
	return append([]func(Event){}, s.subs...)
}

func notify(subs []func(Event), ev Event) {
	for _, sub := range subs {
		sub(ev)
	}
}

func sortZones(zs []*model.Zone) {
	sort.Slice(zs, func(i, j int) bool { return zs[i].ID() < zs[j].ID() })
}

// zoneEntry adapts a zone to the R-tree's Spatial interface.
type zoneEntry struct {
	zone *model.Zone
	rect rtreego.Rect
}

func (e *zoneEntry) Bounds() rtreego.Rect { return e.rect }

func boundsRect(p geom.Polygon) rtreego.Rect {
	min, max := p.Bound()
	lengths := []float64{max.X - min.X, max.Y - min.Y}
	// rtreego requires strictly positive extents.
	for i := range lengths {
		if lengths[i] <= 0 {
			lengths[i] = 1e-9
		}
	}
	rect, err := rtreego.NewRect(rtreego.Point{min.X, min.Y}, lengths)
	if err != nil {
		// Bounds come from validated polygons; a failure here is a bug.
		panic(fmt.Sprintf("fleet: bounding rect for polygon: %v", err))
	}
	return rect
}
