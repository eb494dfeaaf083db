// Package region resolves geographic coordinates to a municipality name
// using a boundary shapefile. The engine only consumes the resulting region
// string; a coordinate outside every polygon (or outside the valid lat/lon
// range) simply resolves to not-found and the caller's fallback applies.
package region

import (
	"fmt"
	"math"

	shp "github.com/jonas-p/go-shp"
	"go.uber.org/zap"
)

// feature is one polygon (possibly multi-part) from the boundary shapefile
// together with its region name and bounding box for quick rejection.
type feature struct {
	Name   string
	Parts  [][][2]float64 // each part is a closed ring of [lat, lon] points
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Index holds the loaded boundary polygons.
type Index struct {
	features []feature
	logger   *zap.Logger
}

// Load reads the shapefile at path and builds a lookup index. nameField is
// the DBF attribute holding the region name.
func Load(path, nameField string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile %s: %w", path, err)
	}
	defer r.Close()

	fields := r.Fields()
	nameIdx := -1
	for i, f := range fields {
		if f.String() == nameField {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("shapefile %s has no attribute field %q", path, nameField)
	}

	index := &Index{logger: logger}
	for r.Next() {
		idx, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			// Skip non-polygon geometries
			continue
		}

		numParts := len(poly.Parts)
		parts := make([][][2]float64, numParts)

		minLat, minLon := math.MaxFloat64, math.MaxFloat64
		maxLat, maxLon := -math.MaxFloat64, -math.MaxFloat64

		for partIdx := 0; partIdx < numParts; partIdx++ {
			start := poly.Parts[partIdx]
			end := int32(len(poly.Points))
			if partIdx+1 < numParts {
				end = poly.Parts[partIdx+1]
			}
			ring := make([][2]float64, int(end-start))
			j := 0
			for i := start; i < end; i++ {
				pt := poly.Points[i]
				ring[j] = [2]float64{pt.Y, pt.X} // lat, lon
				if pt.Y < minLat {
					minLat = pt.Y
				}
				if pt.Y > maxLat {
					maxLat = pt.Y
				}
				if pt.X < minLon {
					minLon = pt.X
				}
				if pt.X > maxLon {
					maxLon = pt.X
				}
				j++
			}
			parts[partIdx] = ring
		}

		index.features = append(index.features, feature{
			Name:   r.ReadAttribute(idx, nameIdx),
			Parts:  parts,
			MinLat: minLat,
			MinLon: minLon,
			MaxLat: maxLat,
			MaxLon: maxLon,
		})
	}

	logger.Debug(fmt.Sprintf("loaded %d boundary polygons from %s", len(index.features), path),
		zap.String("op", "region.Load"),
	)
	return index, nil
}

// Lookup returns the name of the first region whose boundary contains the
// given coordinates. The second return value is false when no region
// matches or the coordinates are outside the valid range.
func (x *Index) Lookup(lat, lon float64) (string, bool) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return "", false
	}
	for _, f := range x.features {
		if lat < f.MinLat || lat > f.MaxLat || lon < f.MinLon || lon > f.MaxLon {
			continue // quick bbox reject
		}
		for _, ring := range f.Parts {
			if pointInPolygon(lat, lon, ring) {
				return f.Name, true
			}
		}
	}
	return "", false
}

// pointInPolygon implements the ray-casting algorithm for testing whether a
// point is inside a polygon ring.
func pointInPolygon(lat, lon float64, ring [][2]float64) bool {
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		yi, xi := ring[i][0], ring[i][1]
		yj, xj := ring[j][0], ring[j][1]
		intersect := ((yi > lat) != (yj > lat)) && (lon < (xj-xi)*(lat-yi)/(yj-yi)+xi)
		if intersect {
			inside = !inside
		}
		j = i
	}
	return inside
}
