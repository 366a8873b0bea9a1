// Command validate checks a saved POST /api/routes response for internal
// consistency: rank order, path shape, scoring, labels, and travel
// estimates. Every route is recomputed from its path and the hazards in the
// response and compared field by field.
//
// Usage:
//
//	curl -s -X POST localhost:8080/api/routes \
//	  -d '{"start":"40.7128, -74.0060","end":"40.7580, -73.9855"}' > routes.json
//	go run ./cmd/validate -routes routes.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/saferoute-scoring-service/internal/adapter/hazardapi"
	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/google/go-cmp/cmp"
)

// routeSetFile is the saved /api/routes response.
type routeSetFile struct {
	Success      bool                   `json:"success"`
	HazardSource string                 `json:"hazard_source"`
	Start        domain.Coordinate      `json:"start"`
	End          domain.Coordinate      `json:"end"`
	Hazards      []hazardapi.WireHazard `json:"hazards"`
	Routes       []domain.Route         `json:"routes"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	routesPath := flag.String("routes", "", "path to a saved /api/routes JSON response")
	flag.Parse()

	if *routesPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*routesPath))
}

func run(path string) int {
	fmt.Println("=== Route Set Validation ===")
	fmt.Println()

	set, err := loadRouteSet(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load route set: %v\n", err)
		return 1
	}

	hazards, hazardPhase := convertHazards(set.Hazards)
	phases := []*phase{
		validateEnvelope(set),
		hazardPhase,
		validateRanking(set.Routes),
		validatePaths(set),
		validateScoring(set, hazards),
	}

	return report(phases, set)
}

func report(phases []*phase, set routeSetFile) int {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-34s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Routes: %d, hazards: %d, hazard source: %s\n", len(set.Routes), len(set.Hazards), set.HazardSource)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadRouteSet(path string) (routeSetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return routeSetFile{}, err
	}
	var set routeSetFile
	if err := json.Unmarshal(data, &set); err != nil {
		return routeSetFile{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return set, nil
}

// ── Phases ──

func validateEnvelope(set routeSetFile) *phase {
	p := &phase{name: "Envelope"}
	if !set.Success {
		p.errorf("success is false")
	}
	switch set.HazardSource {
	case "live", "cache", "synthetic":
	default:
		p.errorf("hazard_source %q is not live, cache, or synthetic", set.HazardSource)
	}
	if err := set.Start.Validate(); err != nil {
		p.errorf("start: %v", err)
	}
	if err := set.End.Validate(); err != nil {
		p.errorf("end: %v", err)
	}
	return p
}

func convertHazards(wire []hazardapi.WireHazard) ([]domain.Hazard, *phase) {
	p := &phase{name: "Hazard records"}
	hazards := make([]domain.Hazard, 0, len(wire))
	for i, w := range wire {
		h, err := hazardapi.FromWire(w)
		if err != nil {
			p.errorf("hazards[%d]: %v", i, err)
			continue
		}
		if string(h.Category) != w.Type {
			p.errorf("hazards[%d]: unknown type %q", i, w.Type)
		}
		hazards = append(hazards, h)
	}
	return hazards, p
}

func validateRanking(routes []domain.Route) *phase {
	p := &phase{name: "Rank order (safe, balanced, fast)"}
	want := []domain.Variant{domain.VariantSafe, domain.VariantBalanced, domain.VariantFast}
	if len(routes) != len(want) {
		p.errorf("got %d routes, want %d", len(routes), len(want))
		return p
	}
	for i, r := range routes {
		if r.Variant != want[i] {
			p.errorf("routes[%d] is %q, want %q", i, r.Variant, want[i])
		}
		if r.ID != r.Variant.ID() {
			p.errorf("routes[%d] %s has id %d, want %d", i, r.Variant, r.ID, r.Variant.ID())
		}
	}
	return p
}

func validatePaths(set routeSetFile) *phase {
	p := &phase{name: "Path shape"}
	for _, r := range set.Routes {
		if len(r.Path) != domain.PathPoints {
			p.errorf("%s: %d path points, want %d", r.Variant, len(r.Path), domain.PathPoints)
			continue
		}
		if r.Path[0] != set.Start {
			p.errorf("%s: first point %v is not the start %v", r.Variant, r.Path[0], set.Start)
		}
		if r.Path[len(r.Path)-1] != set.End {
			p.errorf("%s: last point %v is not the end %v", r.Variant, r.Path[len(r.Path)-1], set.End)
		}
		for i, pt := range r.Path {
			if err := pt.Validate(); err != nil {
				p.errorf("%s: path[%d]: %v", r.Variant, i, err)
			}
		}
	}
	return p
}

// validateScoring rebuilds every route from its path and the response's
// hazards, then diffs it against what the service returned. A zero-length
// request scores every route as hazard-free.
func validateScoring(set routeSetFile, hazards []domain.Hazard) *phase {
	p := &phase{name: "Scoring, labels, estimates"}
	collapsed := set.Start == set.End
	for _, r := range set.Routes {
		if r.SafetyScore < 0 || r.SafetyScore > 100 {
			p.errorf("%s: score %d outside [0, 100]", r.Variant, r.SafetyScore)
		}
		count := 0
		if !collapsed {
			count = domain.CountNearby(r.Path, hazards, domain.CorridorRadiusKm)
		}
		want := domain.NewRoute(r.Variant, r.Path, count)
		if diff := cmp.Diff(want, r); diff != "" {
			p.errorf("%s: mismatch (-recomputed +returned):\n%s", r.Variant, diff)
		}
	}
	return p
}
