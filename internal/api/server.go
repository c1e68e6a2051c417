// Package api provides the HTTP API for observing a run and browsing the
// run archive. GET endpoints are public and read-only.
// POST /api/v1/speed requires a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/warzone/internal/agents"
	"github.com/talgya/warzone/internal/engine"
	"github.com/talgya/warzone/internal/persistence"
)

// Server serves the live simulation and the archive over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Mu       *sync.RWMutex  // guards Sim; the tick loop holds the write lock
	Eng      *engine.Engine // nil for headless runs
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	archiveLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/report", s.handleReport)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/grid", s.handleGrid)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Archive endpoints.
	mux.HandleFunc("/api/v1/runs", RateLimitMiddleware(archiveLimiter, s.handleRuns))
	mux.HandleFunc("/api/v1/runs/", RateLimitMiddleware(archiveLimiter, s.handleRunDetail))

	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "archive", s.DB != nil, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no WARZONE_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// view runs fn with the simulation read-locked.
func (s *Server) view(fn func(sim *engine.Simulation)) {
	if s.Mu != nil {
		s.Mu.RLock()
		defer s.Mu.RUnlock()
	}
	fn(s.Sim)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.view(func(sim *engine.Simulation) {
		status = map[string]any{
			"tick":          sim.Tick(),
			"running":       sim.Running(),
			"seed":          sim.Seed(),
			"width":         sim.Width(),
			"height":        sim.Height(),
			"live":          sim.LiveCounts(),
			"initial":       sim.InitialCounts(),
			"crowded_areas": sim.CrowdedAreas(),
		}
	})
	if s.Eng != nil {
		status["speed"] = s.Eng.CurrentSpeed()
	}
	writeJSON(w, status)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var (
		rep engine.Report
		ok  bool
	)
	s.view(func(sim *engine.Simulation) { rep, ok = sim.Report() })
	if !ok {
		http.Error(w, "run still in progress", http.StatusNotFound)
		return
	}
	writeJSON(w, rep)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	from := uint64(0)
	if f := r.URL.Query().Get("from"); f != "" {
		if v, err := strconv.ParseUint(f, 10, 64); err == nil {
			from = v
		}
	}

	var history []engine.Sample
	s.view(func(sim *engine.Simulation) { history = sim.History() })

	out := []engine.Sample{}
	for _, h := range history {
		if h.Tick >= from {
			out = append(out, h)
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	var resp struct {
		Width  int               `json:"width"`
		Height int               `json:"height"`
		Tick   uint64            `json:"tick"`
		Cells  []engine.CellView `json:"cells"`
	}
	s.view(func(sim *engine.Simulation) {
		resp.Width, resp.Height, resp.Tick = sim.Width(), sim.Height(), sim.Tick()
		resp.Cells = sim.Snapshot()
	})
	if resp.Cells == nil {
		resp.Cells = []engine.CellView{}
	}
	writeJSON(w, resp)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	kinds := agents.Populations[:]
	if k := r.URL.Query().Get("kind"); k != "" {
		kind, ok := agents.ParseKind(k)
		if !ok {
			http.Error(w, "unknown kind", http.StatusBadRequest)
			return
		}
		kinds = []agents.Kind{kind}
	}

	out := []agents.Agent{}
	s.view(func(sim *engine.Simulation) {
		for _, k := range kinds {
			out = append(out, sim.Agents(k)...)
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	var events []engine.Event
	s.view(func(sim *engine.Simulation) { events = sim.Events() })

	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	out := append([]engine.Event{}, events[start:]...)
	writeJSON(w, out)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	runs, err := s.DB.RecentRuns(limit)
	if err != nil {
		slog.Error("runs query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []persistence.Run{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	run, err := s.DB.LoadRun(id)
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("run query failed", "run", id, "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{"run": run}
	if rep, ok, err := run.Report(); err != nil {
		slog.Warn("archived report unreadable", "run", id, "error", err)
	} else if ok {
		resp["report"] = rep
	}
	if samples, err := s.DB.Samples(id); err == nil {
		resp["history"] = samples
	}
	if events, err := s.DB.RecentEvents(id, 50); err == nil {
		resp["events"] = events
	}
	writeJSON(w, resp)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "no paced engine", http.StatusConflict)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.CurrentSpeed()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
