// Command genhazards writes a deterministic synthetic hazard fixture in the
// hazard source wire format. The fixture can be served to the scoring
// service as HAZARD_SOURCE_URL or loaded by tests.
//
// Usage:
//
//	go run ./cmd/genhazards \
//	  -start "40.7128, -74.0060" \
//	  -end "40.7580, -73.9855" \
//	  -seed 42 \
//	  -out data/mock/hazards.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/saferoute-scoring-service/internal/adapter/hazardapi"
	"github.com/couchcryptid/saferoute-scoring-service/internal/catalog"
	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	startText := flag.String("start", domain.DefaultStart.String(), "route start as \"lat, lng\"")
	endText := flag.String("end", "", "route end as \"lat, lng\"")
	seed := flag.Uint64("seed", 1, "generator seed (0 picks a random seed)")
	out := flag.String("out", "", "output path for the hazard fixture")
	flag.Parse()

	if *endText == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -end, -out")
	}

	start, err := parseFlagCoordinate("start", *startText)
	if err != nil {
		return err
	}
	end, err := parseFlagCoordinate("end", *endText)
	if err != nil {
		return err
	}

	hazards := catalog.NewGenerator(*seed).Generate(start, end)
	if err := writeJSON(*out, hazardapi.NewResponse(hazards)); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d hazards to %s", len(hazards), *out)

	printStats(start, end, hazards)
	return nil
}

func parseFlagCoordinate(name, text string) (domain.Coordinate, error) {
	c, ok, err := domain.ParseCoordinate(text)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("-%s: %w", name, err)
	}
	if !ok {
		return domain.Coordinate{}, fmt.Errorf("-%s: %q is not \"lat, lng\"", name, text)
	}
	return c, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// printStats reports the per-category breakdown and how each route variant
// would score against the generated hazards.
func printStats(start, end domain.Coordinate, hazards []domain.Hazard) {
	counts := map[domain.Category]int{}
	for _, h := range hazards {
		counts[h.Category]++
	}
	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)

	fmt.Println()
	fmt.Println("Hazards by category:")
	for _, c := range categories {
		fmt.Printf("  %-12s %d\n", c, counts[domain.Category(c)])
	}

	fmt.Println()
	fmt.Println("Route scores against this fixture:")
	for _, r := range domain.Rank(domain.ScoreRoutes(start, end, hazards)) {
		fmt.Printf("  %-9s %5.1f km %4d min  hazards=%d score=%d risk=%s\n",
			r.Variant, r.DistanceKm, r.TimeMin, r.HazardCount, r.SafetyScore, r.Risk)
	}
}
