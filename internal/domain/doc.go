// Package domain models hazard observations and the route safety scoring
// rules applied to them.
//
// # Coordinates
//
// Coordinates are WGS-84 degrees. Latitude must lie in [-90, 90] and
// longitude in [-180, 180]; [Coordinate.Validate] enforces this for
// caller-supplied input. Geometry helpers such as [Distance] assume valid
// input and do not re-check it.
//
// # Route synthesis
//
// Routes are geometric approximations, not street-graph paths. Three
// variants are produced for every request, each sampled at 11 points
// (t = i/10 for i in 0..10):
//
//	fast:     straight interpolation from start to end
//	safe:     lon += 0.008 * sin(i*pi/5)
//	balanced: lon -= 0.005 * cos(i*pi/5)
//
// Offsets apply to interior samples only; every variant starts exactly at
// start and ends exactly at end. Offset longitudes that cross the
// antimeridian are wrapped back into [-180, 180]. Nothing guarantees a
// synthesized path is traversable.
//
// # Scoring
//
// A hazard is "near" a path vertex when the haversine distance is below the
// corridor radius (0.3 km). Every (vertex, hazard) pair inside the corridor
// counts once, so a hazard close to several vertices is counted several
// times. Penalties per counted hazard are variant specific:
//
//	fast: 15   balanced: 10   safe: 5
//
// and the score is max(0, 100 - penalty*count). Risk labels:
//
//	score > 70        Low
//	40 < score <= 70  Medium
//	score <= 40       High
//
// # Presentation order
//
// [Rank] always orders routes safe, balanced, fast. The order does not depend
// on the computed scores.
package domain
