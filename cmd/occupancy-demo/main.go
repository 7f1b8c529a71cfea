// Command occupancy-demo reproduces the reference fleet scenario: two zones
// loaded from GeoJSON, three hardcoded vehicles, and the four occupancy
// questions, including the buffered-proximity re-check after one vehicle
// loses comms.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/fleetgrid/zone-occupancy/core"
	"github.com/fleetgrid/zone-occupancy/fleet"
	"github.com/fleetgrid/zone-occupancy/geom"
	"github.com/fleetgrid/zone-occupancy/internal/config"
	"github.com/fleetgrid/zone-occupancy/internal/logging"
	"github.com/fleetgrid/zone-occupancy/internal/observability"
	"github.com/fleetgrid/zone-occupancy/model"
)

func main() {
	configPath := flag.String("config", "configs/occupancy.yml", "path to the YAML configuration")
	commsLoss := flag.Duration("comms-loss", 5*time.Second, "comms-loss duration applied to vehicle 2 before the final check")
	hold := flag.Bool("hold", false, "keep the process alive after the demo (to scrape /metrics)")
	flag.Parse()

	// Optional .env for LOG_LEVEL / tracing toggles; absence is fine.
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	store := fleet.NewStore()

	var collector *observability.QueryCollector
	if cfg.Metrics.Enabled {
		collector, err = observability.NewQueryCollector(nil)
		if err != nil {
			log.Error(ctx, "metrics init failed", logging.Err(err))
			os.Exit(1)
		}
		defer collector.TrackFleet(store)()

		go func() {
			log.Info(ctx, "serving metrics", logging.String("addr", cfg.Metrics.Addr))
			if err := http.ListenAndServe(cfg.Metrics.Addr, collector.Handler()); err != nil {
				log.Error(ctx, "metrics server stopped", logging.Err(err))
			}
		}()
	}

	// Zones come from the external geographic-data file.
	scenario, err := core.LoadZonesFromFile(cfg.Occupancy.ZoneFile, log)
	if err != nil {
		log.Error(ctx, "failed to load zones", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "loaded zones",
		logging.Int("zones", len(scenario.Zones)),
		logging.Int("skipped", scenario.Skipped))
	for _, z := range scenario.Zones {
		if err := store.AddZone(z); err != nil {
			log.Error(ctx, "failed to register zone", logging.Err(err))
			os.Exit(1)
		}
	}

	// Reference vehicle footprints, already positioned in world metres.
	vehicleIDs := []string{"vehicle-1", "vehicle-2", "vehicle-3"}
	footprints := [][]geom.Point{
		{{X: 1, Y: 4}, {X: 3, Y: 6}, {X: 5, Y: 4}, {X: 3, Y: 2}},
		{{X: -2, Y: -2}, {X: -6, Y: -2}, {X: -6, Y: -4}, {X: -2, Y: -4}},
		{{X: -3, Y: 9}, {X: -3, Y: 11}, {X: -5, Y: 11}, {X: -5, Y: 9}},
	}
	for i, id := range vehicleIDs {
		fp, err := geom.NewPolygon(footprints[i])
		if err != nil {
			log.Error(ctx, "bad footprint", logging.String("vehicle_id", id), logging.Err(err))
			os.Exit(1)
		}
		v, err := model.NewVehicle(id, fp)
		if err != nil {
			log.Error(ctx, "bad vehicle", logging.String("vehicle_id", id), logging.Err(err))
			os.Exit(1)
		}
		if err := store.AddVehicle(v); err != nil {
			log.Error(ctx, "failed to register vehicle", logging.Err(err))
			os.Exit(1)
		}
	}

	svc := core.NewService(store,
		core.WithLogger(log),
		core.WithMetrics(collector),
		core.WithBufferRate(cfg.Occupancy.BufferRateMPerS),
	)

	aoz := firstZoneOfType(store, model.ZoneTypeAutonomousOperating)
	stz := firstZoneOfType(store, model.ZoneTypeSingleTruck)
	if aoz == nil || stz == nil {
		log.Error(ctx, "zone file must provide an autonomous operating zone and a single truck zone")
		os.Exit(1)
	}

	fmt.Println("Is the vehicle contained in the autonomous operating zone?")
	for _, id := range vehicleIDs {
		contained := mustQuery(ctx, log, func() (bool, error) { return svc.ContainedInZone(ctx, aoz.ID(), id) })
		fmt.Printf("  %s contained in %s: %t\n", id, aoz.ID(), contained)
	}

	fmt.Println("\nIs any part of the vehicle intersecting the single truck zone?")
	for _, id := range vehicleIDs {
		intersects := mustQuery(ctx, log, func() (bool, error) { return svc.IntersectsZone(ctx, stz.ID(), id) })
		fmt.Printf("  %s intersecting %s: %t\n", id, stz.ID(), intersects)
	}

	fmt.Println("\nIs the vehicle intersecting the single truck zone while another vehicle occupies it?")
	for _, id := range vehicleIDs {
		conflicted := mustQuery(ctx, log, func() (bool, error) { return svc.IntersectsOccupiedZone(ctx, stz.ID(), id) })
		fmt.Printf("  %s in occupied %s: %t\n", id, stz.ID(), conflicted)
	}

	fmt.Printf("\nIf %s has been missing for %s, are any vehicle buffers intersecting?\n", vehicleIDs[1], *commsLoss)
	before := mustQuery(ctx, log, func() (bool, error) { return svc.AnyBuffersIntersect(ctx) })
	if err := store.SetVehicleUpdateAge(vehicleIDs[1], commsLoss.Seconds()); err != nil {
		log.Error(ctx, "failed to set update age", logging.Err(err))
		os.Exit(1)
	}
	after := mustQuery(ctx, log, func() (bool, error) { return svc.AnyBuffersIntersect(ctx) })
	fmt.Printf("  buffers intersect without comms loss: %t\n", before)
	fmt.Printf("  buffers intersect after %s comms loss of %s: %t\n", *commsLoss, vehicleIDs[1], after)

	if *hold {
		log.Info(ctx, "holding for metrics scrape; interrupt to exit")
		select {}
	}
}

func firstZoneOfType(store *fleet.Store, t model.ZoneType) *model.Zone {
	zones := store.ZonesByType(t)
	if len(zones) == 0 {
		return nil
	}
	return zones[0]
}

func mustQuery(ctx context.Context, log logging.Logger, query func() (bool, error)) bool {
	result, err := query()
	if err != nil {
		log.Error(ctx, "query failed", logging.Err(err))
		os.Exit(1)
	}
	return result
}
