package domain

import "time"

// RouteSetScored records the outcome of one route computation for downstream
// consumers.
type RouteSetScored struct {
	ID           string         `json:"id"`
	Start        Coordinate     `json:"start"`
	End          Coordinate     `json:"end"`
	HazardSource string         `json:"hazard_source"` // "live", "cache", "synthetic"
	HazardsSeen  int            `json:"hazards_in_snapshot"`
	Routes       []RouteOutcome `json:"routes"`
	ComputedAt   time.Time      `json:"computed_at"`
}

// RouteOutcome is the scored summary of one route, without its path.
type RouteOutcome struct {
	ID          int     `json:"id"`
	Variant     Variant `json:"variant"`
	DistanceKm  float64 `json:"distance_km"`
	TimeMin     int     `json:"time_min"`
	HazardCount int     `json:"hazard_count"`
	SafetyScore int     `json:"safety_score"`
	Risk        Risk    `json:"risk_label"`
}

// NewRouteSetScored summarizes a ranked route set as an event.
func NewRouteSetScored(id string, start, end Coordinate, hazardSource string, hazardsSeen int, routes []Route, at time.Time) RouteSetScored {
	outcomes := make([]RouteOutcome, len(routes))
	for i, r := range routes {
		outcomes[i] = RouteOutcome{
			ID:          r.ID,
			Variant:     r.Variant,
			DistanceKm:  r.DistanceKm,
			TimeMin:     r.TimeMin,
			HazardCount: r.HazardCount,
			SafetyScore: r.SafetyScore,
			Risk:        r.Risk,
		}
	}
	return RouteSetScored{
		ID:           id,
		Start:        start,
		End:          end,
		HazardSource: hazardSource,
		HazardsSeen:  hazardsSeen,
		Routes:       outcomes,
		ComputedAt:   at.UTC(),
	}
}

// OutputEvent is the serialized form destined for the event topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
