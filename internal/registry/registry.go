// Package registry keeps user-submitted hazard reports in memory and serves
// them as a hazard source.
package registry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/catalog"
	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

const maxDurationHours = uint(math.MaxInt64 / int64(time.Hour))

// ErrHazardNotFound is returned when a hazard id is unknown.
var ErrHazardNotFound = errors.New("hazard not found")

const (
	verifiedThreshold    = 3
	maxDescriptionLength = 200
	statsWindow          = 48 * time.Hour
	anonymousUser        = "anonymous"
)

// ReportInput is a new hazard report as submitted by a user.
type ReportInput struct {
	Type        string  `json:"type"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Description string  `json:"description"`
	UserID      string  `json:"user_id"`
}

// Stats summarizes the registry contents.
type Stats struct {
	ActiveHazards   int `json:"active_hazards"`
	TotalReports    int `json:"total_reports"`
	VerifiedHazards int `json:"verified_hazards"`
}

type report struct {
	id                int
	location          domain.Coordinate
	category          domain.Category
	description       string
	userID            string
	verificationCount int
	verified          bool
	createdAt         time.Time
}

// Registry is a concurrency-safe in-memory hazard store. It implements
// catalog.Source.
type Registry struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	nextID  int
	reports map[int]*report
}

var _ catalog.Source = (*Registry)(nil)

// New creates an empty Registry using clock for report timestamps.
func New(clock clockwork.Clock) *Registry {
	return &Registry{
		clock:   clock,
		nextID:  1,
		reports: make(map[int]*report),
	}
}

// Report validates and stores a new hazard report.
func (r *Registry) Report(_ context.Context, in ReportInput) (domain.Hazard, error) {
	category, err := domain.ParseCategory(in.Type)
	if err != nil {
		return domain.Hazard{}, fmt.Errorf("report hazard: %w", err)
	}
	loc := domain.Coordinate{Lat: in.Lat, Lon: in.Lng}
	if err := loc.Validate(); err != nil {
		return domain.Hazard{}, fmt.Errorf("report hazard: %w", err)
	}

	desc := strings.TrimSpace(in.Description)
	if len([]rune(desc)) > maxDescriptionLength {
		desc = string([]rune(desc)[:maxDescriptionLength])
	}
	user := strings.TrimSpace(in.UserID)
	if user == "" {
		user = anonymousUser
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rep := &report{
		id:          r.nextID,
		location:    loc,
		category:    category,
		description: desc,
		userID:      user,
		createdAt:   r.clock.Now().UTC(),
	}
	r.reports[rep.id] = rep
	r.nextID++

	return r.toHazard(rep), nil
}

// Verify records one more confirmation of a hazard. Three confirmations mark
// it verified.
func (r *Registry) Verify(_ context.Context, id string) (domain.Hazard, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return domain.Hazard{}, fmt.Errorf("verify hazard %q: %w", id, ErrHazardNotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.reports[n]
	if !ok {
		return domain.Hazard{}, fmt.Errorf("verify hazard %q: %w", id, ErrHazardNotFound)
	}
	rep.verificationCount++
	if rep.verificationCount >= verifiedThreshold {
		rep.verified = true
	}
	return r.toHazard(rep), nil
}

// List returns hazards reported within the last hours, newest first. A
// window too long to express as a time.Duration has no cutoff.
func (r *Registry) List(_ context.Context, hours uint) []domain.Hazard {
	var cutoff time.Time
	if hours <= maxDurationHours {
		cutoff = r.clock.Now().Add(-time.Duration(hours) * time.Hour)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	recent := make([]*report, 0, len(r.reports))
	for _, rep := range r.reports {
		if rep.createdAt.After(cutoff) {
			recent = append(recent, rep)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		if recent[i].createdAt.Equal(recent[j].createdAt) {
			return recent[i].id > recent[j].id
		}
		return recent[i].createdAt.After(recent[j].createdAt)
	})

	hazards := make([]domain.Hazard, len(recent))
	for i, rep := range recent {
		hazards[i] = r.toHazard(rep)
	}
	return hazards
}

// Hazards implements catalog.Source. The registry is always reachable, so
// Success is always true; an empty window yields an empty list.
func (r *Registry) Hazards(ctx context.Context, hours uint) (catalog.Result, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Result{}, err
	}
	return catalog.Result{Success: true, Hazards: r.List(ctx, hours)}, nil
}

// Stats counts active (last 48h), total, and verified reports.
func (r *Registry) Stats(_ context.Context) Stats {
	cutoff := r.clock.Now().Add(-statsWindow)

	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{TotalReports: len(r.reports)}
	for _, rep := range r.reports {
		if rep.createdAt.After(cutoff) {
			s.ActiveHazards++
		}
		if rep.verified {
			s.VerifiedHazards++
		}
	}
	return s
}

func (r *Registry) toHazard(rep *report) domain.Hazard {
	return domain.Hazard{
		ID:                strconv.Itoa(rep.id),
		Location:          rep.location,
		Category:          rep.category,
		Description:       rep.description,
		Verified:          rep.verified,
		VerificationCount: rep.verificationCount,
		TimeAgo:           domain.TimeAgo(rep.createdAt, r.clock.Now()),
		ReportedAt:        rep.createdAt,
	}
}
