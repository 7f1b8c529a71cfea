package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/fleetgrid/zone-occupancy/geom"
	"github.com/fleetgrid/zone-occupancy/internal/logging"
	"github.com/fleetgrid/zone-occupancy/model"
)

// ZoneScenario summarises a zone-loading pass. Skipped counts features that
// were present but unusable (wrong geometry type, missing zoneType, invalid
// ring); those are logged and dropped rather than failing the whole file,
// since zone files are often hand-maintained.
type ZoneScenario struct {
	Zones   []*model.Zone
	Skipped int
}

// LoadZones reads a GeoJSON FeatureCollection from r and extracts one Zone
// per Polygon feature carrying a "zoneType" property. Unreadable or
// undecodable input is an error; individually bad features are skipped with
// a warning. Features without an "id" member get a generated one.
func LoadZones(r io.Reader, log logging.Logger) (*ZoneScenario, error) {
	if log == nil {
		log = logging.Noop()
	}
	ctx := context.Background()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("load zones: read: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("load zones: decode: %w", err)
	}

	result := &ZoneScenario{}
	if len(fc.Features) == 0 {
		log.Warn(ctx, "zone file contains no features")
		return result, nil
	}

	for i, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok {
			log.Warn(ctx, "skipping feature: geometry is not a Polygon",
				logging.Int("feature", i))
			result.Skipped++
			continue
		}

		zoneType := f.Properties.MustString("zoneType", "")
		if zoneType == "" {
			log.Warn(ctx, "skipping feature: missing zoneType property",
				logging.Int("feature", i))
			result.Skipped++
			continue
		}

		bounds, err := polygonFromOrb(poly)
		if err != nil {
			log.Warn(ctx, "skipping feature: invalid polygon",
				logging.Int("feature", i), logging.Err(err))
			result.Skipped++
			continue
		}

		zone, err := model.NewZone(featureID(f), model.ZoneType(zoneType), bounds)
		if err != nil {
			log.Warn(ctx, "skipping feature",
				logging.Int("feature", i), logging.Err(err))
			result.Skipped++
			continue
		}

		result.Zones = append(result.Zones, zone)
		log.Debug(ctx, "loaded zone",
			logging.String("zone_id", zone.ID()),
			logging.String("zone_type", string(zone.Type())))
	}

	return result, nil
}

// LoadZonesFromFile is LoadZones over a file path.
func LoadZonesFromFile(path string, log logging.Logger) (*ZoneScenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	defer f.Close()
	return LoadZones(f, log)
}

func featureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("zone-%v", id)
	}
	return uuid.NewString()
}

// polygonFromOrb converts a GeoJSON polygon (shell ring plus optional hole
// rings, closing vertices repeated) into the kernel representation.
func polygonFromOrb(p orb.Polygon) (geom.Polygon, error) {
	if len(p) == 0 {
		return geom.Polygon{}, fmt.Errorf("%w: polygon has no rings", geom.ErrInvalidGeometry)
	}
	shell := ringFromOrb(p[0])
	var holes [][]geom.Point
	for _, hole := range p[1:] {
		holes = append(holes, ringFromOrb(hole))
	}
	return geom.NewPolygonWithHoles(shell, holes)
}

func ringFromOrb(ring orb.Ring) []geom.Point {
	out := make([]geom.Point, len(ring))
	for i, pt := range ring {
		out[i] = geom.Point{X: pt.X(), Y: pt.Y()}
	}
	return out
}
