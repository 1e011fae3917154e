package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/NissesSenap/gridplane/internal/plane"
	"github.com/NissesSenap/gridplane/internal/render"
	"github.com/NissesSenap/gridplane/internal/storage"
)

//go:embed index.html
var indexHTML embed.FS

// Options configures a Server
type Options struct {
	Addr            string
	Graph           plane.Config // base config new planes are merged onto
	Store           storage.Store
	MaxSessions     int
	EventsPerSecond float64
	Burst           int
	ShutdownTimeout time.Duration
}

// Server hosts coordinate planes over HTTP. Browsers forward clicks and
// drags; every accepted event returns the new plane state.
type Server struct {
	opts     Options
	sessions *Sessions
	server   *http.Server
}

// New creates a server; call Start to serve
func New(opts Options) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		opts:     opts,
		sessions: NewSessions(opts.MaxSessions, rate.Limit(opts.EventsPerSecond), opts.Burst),
	}
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/planes", s.handleCreate)
	mux.HandleFunc("GET /api/planes/{id}", s.handleState)
	mux.HandleFunc("DELETE /api/planes/{id}", s.handleDelete)
	mux.HandleFunc("GET /api/planes/{id}/svg", s.handleSVG)
	mux.Handle("POST /api/planes/{id}/click", s.limited(s.handleClick))
	mux.Handle("POST /api/planes/{id}/points/{index}/drag", s.limited(s.handleDrag))
	mux.Handle("POST /api/planes/{id}/reset", s.limited(s.handleReset))

	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on %s", s.opts.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return s.server.Close()
	}
	return nil
}

// limited rejects events beyond the session's rate with 429
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := s.sessions.Allow(r.PathValue("id")); err != nil {
			writeSessionError(w, err)
			return
		}
		h(w, r)
	})
}

type createRequest struct {
	Preset string           `json:"preset"`
	Config *plane.Overrides `json:"config"`
}

type position struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type stateResponse struct {
	ID        string        `json:"id"`
	Config    plane.Config  `json:"config"`
	Points    []plane.Point `json:"points"`
	Satisfied bool          `json:"satisfied"`
	Full      bool          `json:"full"`
}

type eventResponse struct {
	Accepted bool         `json:"accepted"`
	Point    *plane.Point `json:"point,omitempty"`
	stateResponse
}

func state(id string, p *plane.Plane) stateResponse {
	return stateResponse{
		ID:        id,
		Config:    p.Config(),
		Points:    p.Points(),
		Satisfied: p.Satisfied(),
		Full:      p.Full(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := indexHTML.ReadFile("index.html")
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	// an empty body asks for the default plane
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	base := s.opts.Graph
	if req.Preset != "" {
		if s.opts.Store == nil {
			writeJSONError(w, http.StatusBadRequest, "no preset storage configured")
			return
		}
		preset, err := s.opts.Store.GetPreset(r.Context(), req.Preset)
		if errors.Is(err, storage.ErrPresetNotFound) {
			writeJSONError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("load preset: %v", err))
			return
		}
		base = preset.Config
	}

	p, err := plane.New(req.Config.Merge(base))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.sessions.Create(p)
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, state(id, p))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var resp stateResponse
	err := s.sessions.With(id, func(p *plane.Plane) error {
		resp = state(id, p)
		return nil
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.PathValue("id")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	err := s.sessions.With(r.PathValue("id"), func(p *plane.Plane) error {
		return render.Render(w, p)
	})
	if errors.Is(err, ErrSessionNotFound) {
		writeSessionError(w, err)
		return
	}
	if err != nil {
		log.Printf("Failed to render plane %s: %v", r.PathValue("id"), err)
	}
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	x, y, ok := decodePosition(w, r)
	if !ok {
		return
	}
	s.event(w, r.PathValue("id"), func(p *plane.Plane) (plane.Point, bool) {
		return p.PlacePoint(x, y)
	})
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "point index must be an integer")
		return
	}
	x, y, ok := decodePosition(w, r)
	if !ok {
		return
	}
	s.event(w, r.PathValue("id"), func(p *plane.Plane) (plane.Point, bool) {
		return p.MovePoint(index, x, y)
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.event(w, r.PathValue("id"), func(p *plane.Plane) (plane.Point, bool) {
		p.Reset()
		return plane.Point{}, true
	})
}

// event applies fn to a session's plane. Rejected events are a normal
// outcome and still answer 200 with accepted=false.
func (s *Server) event(w http.ResponseWriter, id string, fn func(p *plane.Plane) (plane.Point, bool)) {
	var resp eventResponse
	err := s.sessions.With(id, func(p *plane.Plane) error {
		pt, accepted := fn(p)
		resp.Accepted = accepted
		if accepted && p.Len() > 0 {
			resp.Point = &pt
		}
		resp.stateResponse = state(id, p)
		return nil
	})
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodePosition(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	var pos position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return 0, 0, false
	}
	if pos.X == nil || pos.Y == nil {
		writeJSONError(w, http.StatusBadRequest, "both x and y are required")
		return 0, 0, false
	}
	return *pos.X, *pos.Y, true
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, ErrRateLimited):
		writeJSONError(w, http.StatusTooManyRequests, err.Error())
		return
	}
	writeJSONError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
