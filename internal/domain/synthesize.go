package domain

import "math"

const (
	safeAmplitude     = 0.008
	balancedAmplitude = 0.005
)

// Synthesize builds one path per variant. Each path has PathPoints samples.
// Lateral offsets apply to interior samples only, so the first sample is
// always start and the last is always end.
func Synthesize(start, end Coordinate) map[Variant][]Coordinate {
	return map[Variant][]Coordinate{
		VariantFast:     shapePath(start, end, func(int) float64 { return 0 }),
		VariantSafe:     shapePath(start, end, safeOffset),
		VariantBalanced: shapePath(start, end, balancedOffset),
	}
}

// CollapsedPath returns a path whose samples all sit on p. It is used when
// start and end coincide.
func CollapsedPath(p Coordinate) []Coordinate {
	path := make([]Coordinate, PathPoints)
	for i := range path {
		path[i] = p
	}
	return path
}

func shapePath(start, end Coordinate, lonOffset func(i int) float64) []Coordinate {
	dLat := end.Lat - start.Lat
	dLon := end.Lon - start.Lon
	last := PathPoints - 1

	path := make([]Coordinate, PathPoints)
	path[0] = start
	path[last] = end
	for i := 1; i < last; i++ {
		t := float64(i) / float64(last)
		path[i] = Coordinate{
			Lat: start.Lat + dLat*t,
			Lon: wrapLongitude(start.Lon + dLon*t + lonOffset(i)),
		}
	}
	return path
}

// wrapLongitude folds lon back into [-180, 180].
func wrapLongitude(lon float64) float64 {
	switch {
	case lon > 180:
		return lon - 360
	case lon < -180:
		return lon + 360
	}
	return lon
}

func safeOffset(i int) float64 {
	return safeAmplitude * math.Sin(float64(i)*math.Pi/5)
}

func balancedOffset(i int) float64 {
	return -balancedAmplitude * math.Cos(float64(i)*math.Pi/5)
}
