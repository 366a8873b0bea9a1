package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/couchcryptid/saferoute-scoring-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// State is the route selection state of a session.
type State string

const (
	StateNoRouteComputed State = "no_route_computed"
	StateRoutesReady     State = "routes_ready"
	StateRouteSelected   State = "route_selected"
)

// Session holds the most recent route set of one browsing session and the
// route currently selected in it. A new computation replaces the set and
// clears the selection.
type Session struct {
	id     string
	engine *Engine
	clock  clockwork.Clock

	mu       sync.Mutex
	state    State
	routes   RouteSet
	selected int
	lastUsed time.Time
}

// View is a point-in-time copy of a session.
type View struct {
	ID              string
	State           State
	Routes          RouteSet
	SelectedRouteID int // 0 when nothing is selected
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Compute runs the engine and makes the result the session's route set.
// On error the session is left unchanged.
func (s *Session) Compute(ctx context.Context, start, end domain.Coordinate) (RouteSet, error) {
	set, err := s.engine.ComputeRoutes(ctx, start, end)
	if err != nil {
		return RouteSet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes = set
	s.selected = 0
	s.state = StateRoutesReady
	s.lastUsed = s.clock.Now()
	return set, nil
}

// Select marks a route of the current set as active. It fails with
// ErrRouteNotFound, leaving the session unchanged, when the id is not part
// of the most recent set.
func (s *Session) Select(routeID int) (domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.clock.Now()

	if s.state == StateNoRouteComputed {
		return domain.Route{}, fmt.Errorf("select route %d: %w", routeID, domain.ErrRouteNotFound)
	}
	r, ok := s.routes.Route(routeID)
	if !ok {
		return domain.Route{}, fmt.Errorf("select route %d: %w", routeID, domain.ErrRouteNotFound)
	}
	s.selected = routeID
	s.state = StateRouteSelected
	return r, nil
}

// View returns a copy of the session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:              s.id,
		State:           s.state,
		Routes:          s.routes,
		SelectedRouteID: s.selected,
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Sessions is an in-memory set of sessions keyed by id.
type Sessions struct {
	engine  *Engine
	clock   clockwork.Clock
	idleTTL time.Duration
	metrics *observability.Metrics

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions creates an empty session set. Sessions idle for longer than
// idleTTL are removed by Sweep.
func NewSessions(engine *Engine, clock clockwork.Clock, idleTTL time.Duration, metrics *observability.Metrics) *Sessions {
	return &Sessions{
		engine:   engine,
		clock:    clock,
		idleTTL:  idleTTL,
		metrics:  metrics,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session in StateNoRouteComputed.
func (ss *Sessions) Create() *Session {
	s := &Session{
		id:       uuid.NewString(),
		engine:   ss.engine,
		clock:    ss.clock,
		state:    StateNoRouteComputed,
		lastUsed: ss.clock.Now(),
	}

	ss.mu.Lock()
	ss.sessions[s.id] = s
	n := len(ss.sessions)
	ss.mu.Unlock()

	ss.metrics.SessionsActive.Set(float64(n))
	return s
}

// Get returns the session with the given id.
func (ss *Sessions) Get(id string) (*Session, error) {
	ss.mu.RLock()
	s, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Sweep removes sessions idle for longer than the idle TTL and returns how
// many were removed.
func (ss *Sessions) Sweep() int {
	cutoff := ss.clock.Now().Add(-ss.idleTTL)

	ss.mu.Lock()
	removed := 0
	for id, s := range ss.sessions {
		if s.idleSince().Before(cutoff) {
			delete(ss.sessions, id)
			removed++
		}
	}
	n := len(ss.sessions)
	ss.mu.Unlock()

	ss.metrics.SessionsActive.Set(float64(n))
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (ss *Sessions) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := ss.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			ss.Sweep()
		}
	}
}
