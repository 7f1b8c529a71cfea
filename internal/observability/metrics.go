package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetgrid/zone-occupancy/fleet"
)

// QueryCollector bundles the Prometheus metrics for the occupancy query
// surface and the fleet gauges derived from store events.
type QueryCollector struct {
	gatherer prometheus.Gatherer

	Queries        *prometheus.CounterVec
	QueryDurations *prometheus.HistogramVec

	FleetZones    prometheus.Gauge
	FleetVehicles prometheus.Gauge
}

// NewQueryCollector registers the occupancy metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewQueryCollector(reg prometheus.Registerer) (*QueryCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "occupancy_queries_total",
		Help: "Total occupancy queries answered, labeled by query kind and boolean result.",
	}, []string{"query", "result"})
	queries, err := registerCounterVec(reg, queries, "occupancy_queries_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "occupancy_query_duration_seconds",
		Help:    "Occupancy query latency in seconds.",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	}, []string{"query"})
	durations, err = registerHistogramVec(reg, durations, "occupancy_query_duration_seconds")
	if err != nil {
		return nil, err
	}

	zones, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_zones",
		Help: "Current number of zones in the fleet store.",
	}), "fleet_zones")
	if err != nil {
		return nil, err
	}
	vehicles, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_vehicles",
		Help: "Current number of vehicles in the fleet store.",
	}), "fleet_vehicles")
	if err != nil {
		return nil, err
	}

	return &QueryCollector{
		gatherer:       gatherer,
		Queries:        queries,
		QueryDurations: durations,
		FleetZones:     zones,
		FleetVehicles:  vehicles,
	}, nil
}

// ObserveQuery records one answered query.
func (c *QueryCollector) ObserveQuery(query string, result bool, seconds float64) {
	if c == nil {
		return
	}
	if c.Queries != nil {
		c.Queries.WithLabelValues(query, fmt.Sprintf("%t", result)).Inc()
	}
	if c.QueryDurations != nil {
		c.QueryDurations.WithLabelValues(query).Observe(seconds)
	}
}

// TrackFleet keeps the fleet gauges in sync with the store by subscribing
// to its events. It returns the unsubscribe function.
func (c *QueryCollector) TrackFleet(store *fleet.Store) (unsubscribe func()) {
	if c == nil || store == nil {
		return func() {}
	}
	update := func(fleet.Event) {
		zones, vehicles := store.Counts()
		if c.FleetZones != nil {
			c.FleetZones.Set(float64(zones))
		}
		if c.FleetVehicles != nil {
			c.FleetVehicles.Set(float64(vehicles))
		}
	}
	update(fleet.Event{})
	return store.Subscribe(update)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *QueryCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
