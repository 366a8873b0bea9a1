package hazardapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
)

// Response is the hazard source wire envelope, shared by the client, the
// service's own /api/hazards endpoint, and generated fixtures.
type Response struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Hazards []WireHazard `json:"hazards"`
}

// WireHazard is one hazard in the flat lat/lng wire layout.
type WireHazard struct {
	ID                hazardID   `json:"id"`
	Lat               float64    `json:"lat"`
	Lng               float64    `json:"lng"`
	Type              string     `json:"type"`
	Description       string     `json:"description"`
	Verified          bool       `json:"verified"`
	VerificationCount int        `json:"verification_count"`
	TimeAgo           string     `json:"time_ago"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

// NewResponse wraps hazards in a successful envelope.
func NewResponse(hazards []domain.Hazard) Response {
	out := make([]WireHazard, len(hazards))
	for i, h := range hazards {
		out[i] = ToWire(h)
	}
	return Response{Success: true, Count: len(out), Hazards: out}
}

// ToWire converts a domain hazard to its wire layout.
func ToWire(h domain.Hazard) WireHazard {
	w := WireHazard{
		ID:                hazardID(h.ID),
		Lat:               h.Location.Lat,
		Lng:               h.Location.Lon,
		Type:              string(h.Category),
		Description:       h.Description,
		Verified:          h.Verified,
		VerificationCount: h.VerificationCount,
		TimeAgo:           h.TimeAgo,
	}
	if !h.ReportedAt.IsZero() {
		at := h.ReportedAt
		w.CreatedAt = &at
	}
	return w
}

// FromWire converts a wire record to a domain hazard. Out-of-range
// coordinates yield domain.ErrInvalidCoordinate; unknown categories are kept
// as "other" and negative verification counts clamp to zero.
func FromWire(h WireHazard) (domain.Hazard, error) {
	loc := domain.Coordinate{Lat: h.Lat, Lon: h.Lng}
	if err := loc.Validate(); err != nil {
		return domain.Hazard{}, fmt.Errorf("hazard %s: %w", h.ID, err)
	}
	category, err := domain.ParseCategory(h.Type)
	if err != nil {
		category = domain.CategoryOther
	}
	hz := domain.Hazard{
		ID:                h.ID.String(),
		Location:          loc,
		Category:          category,
		Description:       h.Description,
		Verified:          h.Verified,
		VerificationCount: max(h.VerificationCount, 0),
		TimeAgo:           h.TimeAgo,
	}
	if h.CreatedAt != nil {
		hz.ReportedAt = *h.CreatedAt
	}
	return hz, nil
}

// hazardID accepts both numeric and string ids.
type hazardID string

func (id *hazardID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = hazardID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("hazard id: %w", err)
	}
	*id = hazardID(n.String())
	return nil
}

func (id hazardID) String() string { return string(id) }
