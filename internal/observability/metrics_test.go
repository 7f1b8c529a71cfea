package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fleetgrid/zone-occupancy/fleet"
	"github.com/fleetgrid/zone-occupancy/geom"
	"github.com/fleetgrid/zone-occupancy/model"
)

func TestQueryCollector_ObserveQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewQueryCollector(reg)
	if err != nil {
		t.Fatalf("NewQueryCollector: %v", err)
	}

	c.ObserveQuery("contained_in_zone", true, 0.0003)
	c.ObserveQuery("contained_in_zone", true, 0.0004)
	c.ObserveQuery("contained_in_zone", false, 0.0002)

	if got := testutil.ToFloat64(c.Queries.WithLabelValues("contained_in_zone", "true")); got != 2 {
		t.Errorf("true counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Queries.WithLabelValues("contained_in_zone", "false")); got != 1 {
		t.Errorf("false counter = %v, want 1", got)
	}
}

func TestQueryCollector_NilIsInert(t *testing.T) {
	var c *QueryCollector
	c.ObserveQuery("any", true, 0.001)
	unsubscribe := c.TrackFleet(nil)
	unsubscribe()
}

func TestQueryCollector_RegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewQueryCollector(reg)
	if err != nil {
		t.Fatalf("first NewQueryCollector: %v", err)
	}
	b, err := NewQueryCollector(reg)
	if err != nil {
		t.Fatalf("second NewQueryCollector: %v", err)
	}

	a.ObserveQuery("intersects_zone", true, 0.001)
	b.ObserveQuery("intersects_zone", true, 0.001)
	if got := testutil.ToFloat64(a.Queries.WithLabelValues("intersects_zone", "true")); got != 2 {
		t.Fatalf("counter = %v, want 2 (both collectors must share the registration)", got)
	}
}

func TestQueryCollector_TrackFleet(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewQueryCollector(reg)
	if err != nil {
		t.Fatalf("NewQueryCollector: %v", err)
	}

	store := fleet.NewStore()
	unsubscribe := c.TrackFleet(store)
	defer unsubscribe()

	if got := testutil.ToFloat64(c.FleetVehicles); got != 0 {
		t.Fatalf("fleet_vehicles = %v, want 0", got)
	}

	fp, err := geom.NewPolygon([]geom.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	})
	if err != nil {
		t.Fatalf("NewPolygon: %v", err)
	}
	v, err := model.NewVehicle("v1", fp)
	if err != nil {
		t.Fatalf("NewVehicle: %v", err)
	}
	if err := store.AddVehicle(v); err != nil {
		t.Fatalf("AddVehicle: %v", err)
	}

	z, err := model.NewZone("z1", model.ZoneTypeSingleTruck, fp)
	if err != nil {
		t.Fatalf("NewZone: %v", err)
	}
	if err := store.AddZone(z); err != nil {
		t.Fatalf("AddZone: %v", err)
	}

	if got := testutil.ToFloat64(c.FleetVehicles); got != 1 {
		t.Errorf("fleet_vehicles = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.FleetZones); got != 1 {
		t.Errorf("fleet_zones = %v, want 1", got)
	}
}
