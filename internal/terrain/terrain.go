// Package terrain defines the TerrainOracle collaborator boundary (§1
// Non-goals: "terrain profile computation (an abstract TerrainOracle is
// assumed)"). The DCT pipeline calls through this interface to apply the
// §4.3.2 terrain floor; no implementation of actual terrain lookup lives
// in this module.
package terrain

import "github.com/vfrnav/adr/pkg/geo"

// Oracle answers "what's the highest terrain elevation, in feet, along the
// straight line between a and b" queries. Each DCT pipeline worker holds
// its own Oracle handle (§5 "each worker uses its own terrain oracle
// connection").
type Oracle interface {
	// ElevationFt returns the maximum terrain elevation in feet along the
	// geodesic between a and b, or an error if the oracle can't answer
	// (e.g. its backing data doesn't cover the requested area).
	ElevationFt(a, b geo.Point) (int32, error)
}

// Floor computes the §4.3.2 terrain floor altitude: elevation plus a
// clearance of 1000ft, or 2000ft when elevation exceeds 5000ft, rounded up
// to the next published flight level (1000ft increment) since a DCT floor
// must name a filable level.
func Floor(elevationFt int32) int32 {
	clearance := int32(1000)
	if elevationFt > 5000 {
		clearance = 2000
	}
	raw := elevationFt + clearance
	return ((raw + 999) / 1000) * 1000
}

// NullOracle always reports zero elevation; useful as a default when no
// terrain collaborator endpoint is configured, and in tests.
type NullOracle struct{}

func (NullOracle) ElevationFt(a, b geo.Point) (int32, error) { return 0, nil }
