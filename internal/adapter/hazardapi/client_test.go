package hazardapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serveJSON(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/hazards", r.URL.Path)
		assert.Equal(t, "48", r.URL.Query().Get("hours"))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(body))
	}))
}

func TestClient_Hazards_Success(t *testing.T) {
	srv := serveJSON(t, `{
		"success": true,
		"count": 2,
		"hazards": [
			{"id": 7, "lat": 40.72, "lng": -73.99, "type": "dark_street", "description": "No lights",
			 "verified": false, "verification_count": 1, "time_ago": "3h ago"},
			{"id": "abc", "lat": 40.73, "lng": -73.98, "type": "animal", "description": "",
			 "verified": true, "verification_count": 4, "time_ago": "Just now"}
		]
	}`)
	defer srv.Close()

	c := NewClient(srv.URL+"/api/", 5*time.Second, discardLogger())
	res, err := c.Hazards(context.Background(), 48)
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.Len(t, res.Hazards, 2)
	assert.Equal(t, domain.Hazard{
		ID:                "7",
		Location:          domain.Coordinate{Lat: 40.72, Lon: -73.99},
		Category:          domain.CategoryDarkStreet,
		Description:       "No lights",
		VerificationCount: 1,
		TimeAgo:           "3h ago",
	}, res.Hazards[0])
	assert.Equal(t, "abc", res.Hazards[1].ID)
	assert.True(t, res.Hazards[1].Verified)
	assert.False(t, res.Hazards[1].Synthetic)
}

func TestClient_Hazards_Unsuccessful(t *testing.T) {
	srv := serveJSON(t, `{"success": false, "hazards": []}`)
	defer srv.Close()

	c := NewClient(srv.URL+"/api", 5*time.Second, discardLogger())
	res, err := c.Hazards(context.Background(), 48)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Hazards)
}

func TestClient_Hazards_NormalizesRecords(t *testing.T) {
	srv := serveJSON(t, `{"success": true, "hazards": [
		{"id": 1, "lat": 95, "lng": 0, "type": "unsafe"},
		{"id": 2, "lat": 40.7, "lng": -74, "type": "pothole", "verification_count": -2}
	]}`)
	defer srv.Close()

	c := NewClient(srv.URL+"/api", 5*time.Second, discardLogger())
	res, err := c.Hazards(context.Background(), 48)
	require.NoError(t, err)

	require.Len(t, res.Hazards, 1)
	assert.Equal(t, "2", res.Hazards[0].ID)
	assert.Equal(t, domain.CategoryOther, res.Hazards[0].Category)
	assert.Zero(t, res.Hazards[0].VerificationCount)
}

func TestClient_Hazards_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"db locked"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	_, err := c.Hazards(context.Background(), 48)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_Hazards_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"success": tru`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	_, err := c.Hazards(context.Background(), 48)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Hazards_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond, discardLogger())
	_, err := c.Hazards(context.Background(), 48)
	require.Error(t, err)
}
