package domain

import (
	"context"
	"log/slog"
	"strings"
)

// MaxPlaceResults caps the number of places a search returns.
const MaxPlaceResults = 3

// Place is a named location returned by place search.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Location returns the place as a Coordinate.
func (p Place) Location() Coordinate {
	return Coordinate{Lat: p.Lat, Lon: p.Lng}
}

// PlaceSearcher looks up places matching free text.
type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]Place, error)
}

// gazetteer is the built-in landmark table, keyed by lowercase name.
var gazetteer = []struct {
	key string
	loc Coordinate
}{
	{"central park", Coordinate{Lat: 40.7850, Lon: -73.9680}},
	{"times square", Coordinate{Lat: 40.7580, Lon: -73.9855}},
	{"soho", Coordinate{Lat: 40.7230, Lon: -74.0030}},
}

// LookupLandmarks returns built-in landmarks whose name contains query,
// case-insensitively. An empty query matches every landmark.
func LookupLandmarks(query string) []Place {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Place
	for _, g := range gazetteer {
		if !strings.Contains(g.key, q) {
			continue
		}
		out = append(out, Place{Name: titleCase(g.key), Lat: g.loc.Lat, Lng: g.loc.Lon})
		if len(out) == MaxPlaceResults {
			break
		}
	}
	return out
}

// SearchPlaces answers a place query from the built-in landmarks first and
// tops the list up from remote when it is configured. Remote failures
// degrade to the landmark results.
func SearchPlaces(ctx context.Context, query string, remote PlaceSearcher, logger *slog.Logger) []Place {
	results := LookupLandmarks(query)
	if remote == nil || len(results) >= MaxPlaceResults || strings.TrimSpace(query) == "" {
		return results
	}

	found, err := remote.Search(ctx, query)
	if err != nil {
		logger.Warn("place search failed", "query", query, "error", err)
		return results
	}

	seen := make(map[string]bool, len(results))
	for _, p := range results {
		seen[strings.ToLower(p.Name)] = true
	}
	for _, p := range found {
		if len(results) == MaxPlaceResults {
			break
		}
		if seen[strings.ToLower(p.Name)] {
			continue
		}
		seen[strings.ToLower(p.Name)] = true
		results = append(results, p)
	}
	return results
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
