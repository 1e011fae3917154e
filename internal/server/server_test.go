package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/NissesSenap/gridplane/internal/plane"
	"github.com/NissesSenap/gridplane/internal/storage"
)

func setupTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	if opts.Graph.Width == 0 {
		opts.Graph = plane.DefaultConfig()
	}
	if opts.EventsPerSecond == 0 {
		opts.EventsPerSecond = 1000
		opts.Burst = 1000
	}
	srv := New(opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func do(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func createPlane(t *testing.T, ts *httptest.Server, body any) string {
	resp, out := do(t, http.MethodPost, ts.URL+"/api/planes", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, out)
	return out["id"].(string)
}

func TestHealth(t *testing.T) {
	_, ts := setupTestServer(t, Options{})

	resp, out := do(t, http.MethodGet, ts.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", out["status"])
}

func TestIndex(t *testing.T) {
	_, ts := setupTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestCreate_Defaults(t *testing.T) {
	_, ts := setupTestServer(t, Options{})

	resp, out := do(t, http.MethodPost, ts.URL+"/api/planes", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, out["id"])
	assert.Empty(t, out["points"])

	cfg := out["config"].(map[string]any)
	assert.Equal(t, 500.0, cfg["width"])
}

func TestCreate_InvalidOverrides(t *testing.T) {
	_, ts := setupTestServer(t, Options{})

	resp, out := do(t, http.MethodPost, ts.URL+"/api/planes", map[string]any{
		"config": map[string]any{"vLines": 0},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out["error"], "line counts")
}

func TestCreate_FromPreset(t *testing.T) {
	store, err := storage.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := plane.DefaultConfig()
	cfg.Title = "From preset"
	require.NoError(t, store.SavePreset(context.Background(), &storage.Preset{Name: "lines", Config: cfg}))

	_, ts := setupTestServer(t, Options{Store: store})

	resp, out := do(t, http.MethodPost, ts.URL+"/api/planes", map[string]any{
		"preset": "lines",
		"config": map[string]any{"pointRules": map[string]any{"maximumPoints": 3}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	got := out["config"].(map[string]any)
	assert.Equal(t, "From preset", got["title"])
	assert.Equal(t, 3.0, got["pointRules"].(map[string]any)["maximumPoints"])

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/planes", map[string]any{"preset": "nope"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClick_PlacesUntilFull(t *testing.T) {
	_, ts := setupTestServer(t, Options{})
	id := createPlane(t, ts, nil)
	url := ts.URL + "/api/planes/" + id + "/click"

	resp, out := do(t, http.MethodPost, url, map[string]float64{"x": 250, "y": 250})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["accepted"])
	assert.Equal(t, map[string]any{"x": 250.0, "y": 250.0}, out["point"])

	// clicks in the margin are ignored
	_, out = do(t, http.MethodPost, url, map[string]float64{"x": 0, "y": 0})
	assert.Equal(t, false, out["accepted"])
	assert.Len(t, out["points"], 1)

	_, out = do(t, http.MethodPost, url, map[string]float64{"x": 300, "y": 100})
	assert.Equal(t, true, out["accepted"])
	assert.Equal(t, true, out["full"])

	_, out = do(t, http.MethodPost, url, map[string]float64{"x": 200, "y": 200})
	assert.Equal(t, false, out["accepted"])
	assert.Len(t, out["points"], 2)
}

func TestClick_MissingCoordinates(t *testing.T) {
	_, ts := setupTestServer(t, Options{})
	id := createPlane(t, ts, nil)

	resp, out := do(t, http.MethodPost, ts.URL+"/api/planes/"+id+"/click", map[string]float64{"x": 250})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out["error"], "x and y")
}

func TestDrag(t *testing.T) {
	_, ts := setupTestServer(t, Options{})
	id := createPlane(t, ts, nil)
	base := ts.URL + "/api/planes/" + id

	_, out := do(t, http.MethodPost, base+"/click", map[string]float64{"x": 250, "y": 250})
	require.Equal(t, true, out["accepted"])

	_, out = do(t, http.MethodPost, base+"/points/0/drag", map[string]float64{"x": 251, "y": 269})
	assert.Equal(t, true, out["accepted"])
	pt := out["point"].(map[string]any)
	assert.InDelta(t, 250.0, pt["x"], 1e-9)
	assert.InDelta(t, 40+420*12.0/22.0, pt["y"], 1e-9)

	_, out = do(t, http.MethodPost, base+"/points/3/drag", map[string]float64{"x": 250, "y": 250})
	assert.Equal(t, false, out["accepted"])

	resp, _ := do(t, http.MethodPost, base+"/points/abc/drag", map[string]float64{"x": 250, "y": 250})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResetAndDelete(t *testing.T) {
	srv, ts := setupTestServer(t, Options{})
	id := createPlane(t, ts, nil)
	base := ts.URL + "/api/planes/" + id

	do(t, http.MethodPost, base+"/click", map[string]float64{"x": 250, "y": 250})

	_, out := do(t, http.MethodPost, base+"/reset", nil)
	assert.Equal(t, true, out["accepted"])
	assert.Empty(t, out["points"])

	resp, _ := do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, srv.sessions.Len())

	resp, _ = do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSVG(t *testing.T) {
	_, ts := setupTestServer(t, Options{})
	id := createPlane(t, ts, nil)
	do(t, http.MethodPost, ts.URL+"/api/planes/"+id+"/click", map[string]float64{"x": 250, "y": 250})

	resp, err := http.Get(ts.URL + "/api/planes/" + id + "/svg")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, buf.String(), `class="point"`)

	resp2, _ := do(t, http.MethodGet, ts.URL+"/api/planes/unknown/svg", nil)
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestMaxSessions(t *testing.T) {
	_, ts := setupTestServer(t, Options{MaxSessions: 1})
	createPlane(t, ts, nil)

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/planes", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestEventRateLimit(t *testing.T) {
	_, ts := setupTestServer(t, Options{EventsPerSecond: 0.001, Burst: 1})
	id := createPlane(t, ts, nil)
	url := ts.URL + "/api/planes/" + id + "/click"

	resp, _ := do(t, http.MethodPost, url, map[string]float64{"x": 250, "y": 250})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, url, map[string]float64{"x": 250, "y": 250})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestEventRateLimit_PerSession(t *testing.T) {
	_, ts := setupTestServer(t, Options{EventsPerSecond: 0.001, Burst: 1})
	busy := createPlane(t, ts, nil)
	other := createPlane(t, ts, nil)
	click := map[string]float64{"x": 250, "y": 250}

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/planes/"+busy+"/click", click)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, ts.URL+"/api/planes/"+busy+"/click", click)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, out := do(t, http.MethodPost, ts.URL+"/api/planes/"+other+"/click", click)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, out["accepted"])
}

func TestEventRateLimit_UnknownSession(t *testing.T) {
	_, ts := setupTestServer(t, Options{})

	resp, _ := do(t, http.MethodPost, ts.URL+"/api/planes/missing/click", map[string]float64{"x": 250, "y": 250})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreate_RejectsMarkupInStyle(t *testing.T) {
	_, ts := setupTestServer(t, Options{})

	resp, out := do(t, http.MethodPost, ts.URL+"/api/planes", map[string]any{
		"config": map[string]any{"outerLineColor": `red" onload="alert(1)`},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out["error"], "outer line color")
}

func TestSessions_ConcurrentEvents(t *testing.T) {
	sessions := NewSessions(0, rate.Inf, 1)
	rules := plane.PointRules{MaximumPoints: 3}
	p, err := plane.New((&plane.Overrides{PointRules: &rules}).Merge(plane.DefaultConfig()))
	require.NoError(t, err)
	id, err := sessions.Create(p)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sessions.With(id, func(p *plane.Plane) error {
				p.PlacePoint(250, 250)
				return nil
			})
		}()
	}
	wg.Wait()

	err = sessions.With(id, func(p *plane.Plane) error {
		assert.Equal(t, 3, p.Len())
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, sessions.With("missing", nil), ErrSessionNotFound)
	assert.ErrorIs(t, sessions.Delete("missing"), ErrSessionNotFound)
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	srv := New(Options{Addr: "127.0.0.1:0", Graph: plane.DefaultConfig(), EventsPerSecond: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}
