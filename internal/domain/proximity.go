package domain

import "math"

// CorridorRadiusKm is the distance within which a hazard counts against a
// path vertex.
const CorridorRadiusKm = 0.3

// CountNearby counts (vertex, hazard) pairs closer than radiusKm. A hazard
// near several vertices is counted once per vertex.
func CountNearby(path []Coordinate, hazards []Hazard, radiusKm float64) int {
	count := 0
	for _, p := range path {
		for _, h := range hazards {
			if Distance(p, h.Location) < radiusKm {
				count++
			}
		}
	}
	return count
}

// HazardIndex buckets hazards into a lat/lon grid so that CountNearby-style
// queries only run the haversine check against hazards in neighbouring cells.
// Counts are identical to the nested scan.
type HazardIndex struct {
	hazards  []Hazard
	cellDeg  float64
	radiusKm float64
	cells    map[cellKey][]int
}

type cellKey struct {
	lat, lon int
}

// kmPerDegreeLat is the length of one degree of latitude on the haversine
// sphere.
const kmPerDegreeLat = EarthRadiusKm * math.Pi / 180

// NewHazardIndex builds a grid index for queries with the given radius.
func NewHazardIndex(hazards []Hazard, radiusKm float64) *HazardIndex {
	// One cell spans at least the radius in latitude, plus a margin so that
	// float rounding at cell edges never drops a candidate.
	cellDeg := radiusKm / kmPerDegreeLat * 1.01
	idx := &HazardIndex{
		hazards:  hazards,
		cellDeg:  cellDeg,
		radiusKm: radiusKm,
		cells:    make(map[cellKey][]int, len(hazards)),
	}
	for i, h := range hazards {
		k := idx.key(h.Location.Lat, h.Location.Lon)
		idx.cells[k] = append(idx.cells[k], i)
	}
	return idx
}

// Len returns the number of indexed hazards.
func (idx *HazardIndex) Len() int { return len(idx.hazards) }

// CountNearby returns the same count as the package-level CountNearby for
// the indexed hazards and radius.
func (idx *HazardIndex) CountNearby(path []Coordinate) int {
	count := 0
	for _, p := range path {
		count += idx.countAround(p)
	}
	return count
}

func (idx *HazardIndex) countAround(p Coordinate) int {
	if idx.radiusKm <= 0 {
		return 0
	}
	center := idx.key(p.Lat, p.Lon)

	// Longitude degrees shrink with latitude; widen the lon search span so it
	// still covers the radius. Near the poles and the antimeridian the grid
	// does not wrap, so fall back to the full scan.
	cosLat := math.Cos(toRad(math.Min(math.Abs(p.Lat)+idx.cellDeg, 90)))
	if cosLat < 0.01 {
		return CountNearby([]Coordinate{p}, idx.hazards, idx.radiusKm)
	}
	lonSpan := int(math.Ceil(1/cosLat)) + 1
	if math.Abs(p.Lon)+float64(lonSpan+1)*idx.cellDeg >= 180 {
		return CountNearby([]Coordinate{p}, idx.hazards, idx.radiusKm)
	}

	count := 0
	for dLat := -1; dLat <= 1; dLat++ {
		for dLon := -lonSpan; dLon <= lonSpan; dLon++ {
			for _, i := range idx.cells[cellKey{lat: center.lat + dLat, lon: center.lon + dLon}] {
				if Distance(p, idx.hazards[i].Location) < idx.radiusKm {
					count++
				}
			}
		}
	}
	return count
}

func (idx *HazardIndex) key(lat, lon float64) cellKey {
	return cellKey{
		lat: int(math.Floor(lat / idx.cellDeg)),
		lon: int(math.Floor(lon / idx.cellDeg)),
	}
}
