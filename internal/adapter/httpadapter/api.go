package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/saferoute-scoring-service/internal/adapter/hazardapi"
	"github.com/couchcryptid/saferoute-scoring-service/internal/catalog"
	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/couchcryptid/saferoute-scoring-service/internal/engine"
	"github.com/couchcryptid/saferoute-scoring-service/internal/registry"
)

// maxRequestBytes caps JSON request bodies.
const maxRequestBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// RouteComputer computes a ranked route set between two points.
type RouteComputer interface {
	ComputeRoutes(ctx context.Context, start, end domain.Coordinate) (engine.RouteSet, error)
}

// HazardRegistry stores user hazard reports.
type HazardRegistry interface {
	Report(ctx context.Context, in registry.ReportInput) (domain.Hazard, error)
	Verify(ctx context.Context, id string) (domain.Hazard, error)
	List(ctx context.Context, hours uint) []domain.Hazard
	Stats(ctx context.Context) registry.Stats
}

// SessionStore creates and looks up route selection sessions.
type SessionStore interface {
	Create() *engine.Session
	Get(id string) (*engine.Session, error)
}

// API serves the JSON endpoints under /api.
type API struct {
	routes   RouteComputer
	sessions SessionStore
	registry HazardRegistry
	places   domain.PlaceSearcher
	hours    uint
	logger   *slog.Logger
}

// NewAPI wires the JSON handlers. places may be nil, in which case search
// answers from the built-in landmarks only. hours is the default hazard
// window for GET /api/hazards.
func NewAPI(routes RouteComputer, sessions SessionStore, reg HazardRegistry, places domain.PlaceSearcher, hours uint, logger *slog.Logger) *API {
	return &API{
		routes:   routes,
		sessions: sessions,
		registry: reg,
		places:   places,
		hours:    hours,
		logger:   logger,
	}
}

func (a *API) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleIndex)
	mux.HandleFunc("GET /api/hazards", a.handleListHazards)
	mux.HandleFunc("POST /api/report", a.handleReport)
	mux.HandleFunc("POST /api/verify/{id}", a.handleVerify)
	mux.HandleFunc("GET /api/stats", a.handleStats)
	mux.HandleFunc("GET /api/search", a.handleSearch)
	mux.HandleFunc("GET /api/categories", a.handleCategories)
	mux.HandleFunc("POST /api/routes", a.handleComputeRoutes)
	mux.HandleFunc("POST /api/sessions", a.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", a.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/routes", a.handleSessionRoutes)
	mux.HandleFunc("POST /api/sessions/{id}/select/{routeID}", a.handleSelectRoute)
}

func (a *API) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":   "SafeRoute API",
		"status": "running",
		"endpoints": []string{
			"/api/hazards", "/api/report", "/api/verify/{id}", "/api/stats",
			"/api/search", "/api/categories", "/api/routes", "/api/sessions",
		},
	})
}

// --- hazards ---

func (a *API) handleListHazards(w http.ResponseWriter, r *http.Request) {
	hours := a.hours
	if s := r.URL.Query().Get("hours"); s != "" {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil || n == 0 || n > domain.MaxWindowHours {
			a.writeError(w, fmt.Errorf("%w: hours must be an integer between 1 and %d", errBadRequest, domain.MaxWindowHours))
			return
		}
		hours = uint(n)
	}
	writeJSON(w, http.StatusOK, hazardapi.NewResponse(a.registry.List(r.Context(), hours)))
}

func (a *API) handleReport(w http.ResponseWriter, r *http.Request) {
	var in registry.ReportInput
	if err := decodeJSON(r, &in); err != nil {
		a.writeError(w, err)
		return
	}
	h, err := a.registry.Report(r.Context(), in)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.logger.Info("hazard reported", "hazard_id", h.ID, "type", h.Category)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "hazard": hazardapi.ToWire(h)})
}

func (a *API) handleVerify(w http.ResponseWriter, r *http.Request) {
	if _, err := a.registry.Verify(r.Context(), r.PathValue("id")); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Success: true})
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": a.registry.Stats(r.Context())})
}

func (a *API) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "categories": domain.Categories()})
}

// --- search ---

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	results := domain.SearchPlaces(r.Context(), r.URL.Query().Get("q"), a.places, a.logger)
	if results == nil {
		results = []domain.Place{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": results})
}

// --- routes ---

type routeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type routeSetBody struct {
	HazardSource catalog.Origin         `json:"hazard_source"`
	Start        domain.Coordinate      `json:"start"`
	End          domain.Coordinate      `json:"end"`
	Hazards      []hazardapi.WireHazard `json:"hazards"`
	Routes       []domain.Route         `json:"routes"`
}

func newRouteSetBody(set engine.RouteSet) routeSetBody {
	hazards := make([]hazardapi.WireHazard, len(set.Hazards))
	for i, h := range set.Hazards {
		hazards[i] = hazardapi.ToWire(h)
	}
	return routeSetBody{
		HazardSource: set.HazardSource,
		Start:        set.Start,
		End:          set.End,
		Hazards:      hazards,
		Routes:       set.Routes,
	}
}

type routeSetResponse struct {
	Success bool `json:"success"`
	routeSetBody
}

func (a *API) readEndpoints(r *http.Request) (domain.Coordinate, domain.Coordinate, error) {
	var req routeRequest
	if err := decodeJSON(r, &req); err != nil {
		return domain.Coordinate{}, domain.Coordinate{}, err
	}
	return domain.ResolveEndpoints(req.Start, req.End)
}

func (a *API) handleComputeRoutes(w http.ResponseWriter, r *http.Request) {
	start, end, err := a.readEndpoints(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	set, err := a.routes.ComputeRoutes(r.Context(), start, end)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routeSetResponse{Success: true, routeSetBody: newRouteSetBody(set)})
}

// --- sessions ---

type sessionResponse struct {
	Success         bool          `json:"success"`
	SessionID       string        `json:"session_id"`
	State           engine.State  `json:"state"`
	SelectedRouteID int           `json:"selected_route_id,omitempty"`
	Routes          *routeSetBody `json:"route_set,omitempty"`
}

func newSessionResponse(v engine.View) sessionResponse {
	resp := sessionResponse{
		Success:         true,
		SessionID:       v.ID,
		State:           v.State,
		SelectedRouteID: v.SelectedRouteID,
	}
	if v.State != engine.StateNoRouteComputed {
		body := newRouteSetBody(v.Routes)
		resp.Routes = &body
	}
	return resp
}

func (a *API) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	s := a.sessions.Create()
	writeJSON(w, http.StatusCreated, newSessionResponse(s.View()))
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.sessions.Get(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(s.View()))
}

func (a *API) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	s, err := a.sessions.Get(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	start, end, err := a.readEndpoints(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if _, err := s.Compute(r.Context(), start, end); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(s.View()))
}

func (a *API) handleSelectRoute(w http.ResponseWriter, r *http.Request) {
	s, err := a.sessions.Get(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	routeID, err := strconv.Atoi(r.PathValue("routeID"))
	if err != nil {
		a.writeError(w, fmt.Errorf("route %q: %w", r.PathValue("routeID"), domain.ErrRouteNotFound))
		return
	}
	if _, err := s.Select(routeID); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(s.View()))
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode request body: %v", errBadRequest, err)
	}
	return nil
}
