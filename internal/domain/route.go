package domain

import (
	"errors"
	"math"
)

// ErrRouteNotFound is returned when a route id is not part of the most recent
// route set.
var ErrRouteNotFound = errors.New("route not found")

// PathPoints is the number of samples in every synthesized path.
const PathPoints = 11

// minutesPerKm converts a rounded distance into an estimated traversal time.
const minutesPerKm = 12

// Variant identifies one of the three route shaping strategies.
type Variant string

const (
	VariantFast     Variant = "fast"
	VariantSafe     Variant = "safe"
	VariantBalanced Variant = "balanced"
)

// Risk is the coarse label derived from a safety score.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// variantInfo holds the fixed presentation attributes of a variant.
type variantInfo struct {
	id          int
	name        string
	description string
	color       string
	penalty     int
}

var variants = map[Variant]variantInfo{
	VariantFast: {
		id:          1,
		name:        "FAST ROUTE",
		description: "Quickest path - may have hazards",
		color:       "#ef4444",
		penalty:     15,
	},
	VariantSafe: {
		id:          2,
		name:        "SAFE ROUTE",
		description: "Safest path - recommended",
		color:       "#10b981",
		penalty:     5,
	},
	VariantBalanced: {
		id:          3,
		name:        "BALANCED ROUTE",
		description: "Good balance of speed and safety",
		color:       "#3b82f6",
		penalty:     10,
	},
}

// Variants returns the variants in synthesis order (ids 1, 2, 3).
func Variants() []Variant {
	return []Variant{VariantFast, VariantSafe, VariantBalanced}
}

// ID returns the stable route id for the variant.
func (v Variant) ID() int { return variants[v].id }

// Color returns the fixed display color for the variant.
func (v Variant) Color() string { return variants[v].color }

// Penalty returns the score deduction per counted hazard.
func (v Variant) Penalty() int { return variants[v].penalty }

// Route is one scored candidate route. Values are built once per request and
// not modified afterwards.
type Route struct {
	ID          int          `json:"id"`
	Variant     Variant      `json:"variant"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Path        []Coordinate `json:"path"`
	DistanceKm  float64      `json:"distance_km"`
	TimeMin     int          `json:"time_min"`
	HazardCount int          `json:"hazard_count"`
	SafetyScore int          `json:"safety_score"`
	Risk        Risk         `json:"risk_label"`
	Meter       string       `json:"meter"`
	Color       string       `json:"color"`
}

// NewRoute assembles a scored route from a path and its hazard count.
func NewRoute(v Variant, path []Coordinate, hazardCount int) Route {
	info := variants[v]
	distance := roundTenth(PathLength(path))
	score, risk := Evaluate(hazardCount, v)
	return Route{
		ID:          info.id,
		Variant:     v,
		Name:        info.name,
		Description: info.description,
		Path:        path,
		DistanceKm:  distance,
		TimeMin:     int(math.Round(distance * minutesPerKm)),
		HazardCount: hazardCount,
		SafetyScore: score,
		Risk:        risk,
		Meter:       MeterBand(score),
		Color:       info.color,
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
