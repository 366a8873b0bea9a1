package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCoordinate is returned when caller-supplied input is not a valid
// latitude/longitude pair.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// DefaultStart is used when the caller supplies no start point.
var DefaultStart = Coordinate{Lat: 40.7128, Lon: -74.0060}

// freeTextOffset is added to the start point when the destination is free text
// rather than coordinates.
const freeTextOffset = 0.02

// Coordinate is a WGS-84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

// Validate reports ErrInvalidCoordinate when the latitude or longitude is out
// of range or not a finite number.
func (c Coordinate) Validate() error {
	if !(c.Lat >= -90 && c.Lat <= 90) {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, c.Lat)
	}
	if !(c.Lon >= -180 && c.Lon <= 180) {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// ParseCoordinate parses "lat, lng" text. The second return value is false
// when the text is not a pair of numbers at all; a parsed pair that is out of
// range yields ErrInvalidCoordinate.
func ParseCoordinate(s string) (Coordinate, bool, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, false, nil
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, false, nil
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, false, nil
	}
	c := Coordinate{Lat: lat, Lon: lon}
	if err := c.Validate(); err != nil {
		return Coordinate{}, true, err
	}
	return c, true, nil
}

// ResolveEndpoints applies the text input policy used by the route form:
//
//   - an empty start falls back to DefaultStart
//   - a non-empty start must parse as coordinates
//   - an end that parses as coordinates is used as given
//   - any other non-empty end is treated as a place name and replaced by a
//     point offset from the start by (0.02, 0.02)
//
// Out-of-range coordinates are rejected with ErrInvalidCoordinate.
func ResolveEndpoints(startText, endText string) (Coordinate, Coordinate, error) {
	start := DefaultStart
	if strings.TrimSpace(startText) != "" {
		c, ok, err := ParseCoordinate(startText)
		if err != nil {
			return Coordinate{}, Coordinate{}, fmt.Errorf("start: %w", err)
		}
		if !ok {
			return Coordinate{}, Coordinate{}, fmt.Errorf("start: %w: %q is not \"lat, lng\"", ErrInvalidCoordinate, startText)
		}
		start = c
	}

	if strings.TrimSpace(endText) == "" {
		return Coordinate{}, Coordinate{}, fmt.Errorf("end: %w: destination is required", ErrInvalidCoordinate)
	}
	end, ok, err := ParseCoordinate(endText)
	if err != nil {
		return Coordinate{}, Coordinate{}, fmt.Errorf("end: %w", err)
	}
	if !ok {
		end = Coordinate{Lat: start.Lat + freeTextOffset, Lon: start.Lon + freeTextOffset}
		if err := end.Validate(); err != nil {
			return Coordinate{}, Coordinate{}, fmt.Errorf("end: %w", err)
		}
	}
	return start, end, nil
}
