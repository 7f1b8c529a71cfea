// Command zonecheck validates GeoJSON zone files and prints a one-line
// summary per zone, so hand-edited zone definitions can be linted before a
// fleet picks them up.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fleetgrid/zone-occupancy/core"
	"github.com/fleetgrid/zone-occupancy/internal/logging"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <zones.geojson> [...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logging.NewFromEnv()
	failed := false

	for _, path := range flag.Args() {
		scenario, err := core.LoadZonesFromFile(path, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}

		fmt.Printf("%s: %d zone(s), %d feature(s) skipped\n", path, len(scenario.Zones), scenario.Skipped)
		for _, z := range scenario.Zones {
			bounds := z.Bounds()
			fmt.Printf("  %-24s %-28s vertices=%d holes=%d area=%.1f m²\n",
				z.ID(), z.Type(), len(bounds.Exterior()), len(bounds.Holes()), bounds.Area())
		}
		if scenario.Skipped > 0 {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}
