// Package hazardapi is a client for the external hazard reporting API.
package hazardapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/catalog"
	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client implements catalog.Source against GET {base}/hazards?hours=N.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

var _ catalog.Source = (*Client)(nil)

// NewClient creates a hazard API client. The timeout bounds each request in
// addition to any deadline on the caller's context.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Hazards fetches hazards reported within the last hours.
func (c *Client) Hazards(ctx context.Context, hours uint) (catalog.Result, error) {
	params := url.Values{"hours": {strconv.FormatUint(uint64(hours), 10)}}
	fullURL := c.baseURL + "/hazards?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return catalog.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return catalog.Result{}, fmt.Errorf("hazards request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return catalog.Result{}, fmt.Errorf("hazard API error: status %d: %s", resp.StatusCode, body)
	}

	var apiResp Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&apiResp); err != nil {
		return catalog.Result{}, fmt.Errorf("decode response: %w", err)
	}

	hazards := make([]domain.Hazard, 0, len(apiResp.Hazards))
	for _, h := range apiResp.Hazards {
		hazard, ok := c.toHazard(h)
		if !ok {
			continue
		}
		hazards = append(hazards, hazard)
	}
	return catalog.Result{Success: apiResp.Success, Hazards: hazards}, nil
}

// toHazard converts one wire record, logging records that are dropped.
func (c *Client) toHazard(h WireHazard) (domain.Hazard, bool) {
	hz, err := FromWire(h)
	if err != nil {
		c.logger.Warn("skipping hazard with invalid location", "hazard_id", h.ID.String(), "error", err)
		return domain.Hazard{}, false
	}
	if string(hz.Category) != h.Type {
		c.logger.Debug("unknown hazard category, treating as other", "hazard_id", h.ID.String(), "type", h.Type)
	}
	return hz, true
}
