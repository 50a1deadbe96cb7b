// Package server exposes the solver over HTTP: a /solve endpoint that
// loads an instance and runs the LNS/AGES pipeline to completion, a
// /reoptimize endpoint that re-runs dynamic.Reoptimize against a prior
// run's snapshot, and a /metrics endpoint for Prometheus scraping. It
// keeps server/server.go's CORS-header-and-JSON-marshal handler shape and
// http.HandleFunc registration style, adapted from streaming a bus
// simulation over SSE to running and caching PDPTW solves.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/pikasonix/pdptw/ages"
	"github.com/pikasonix/pdptw/dynamic"
	"github.com/pikasonix/pdptw/instanceio"
	"github.com/pikasonix/pdptw/lns"
	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/presets"
	"github.com/pikasonix/pdptw/solution"
)

var (
	iterationsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pdptw_last_run_iterations",
		Help: "Iterations requested for the most recently completed solve or reoptimize run",
	})
	bestObjectiveGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pdptw_best_objective",
		Help: "Objective value of the best solution found by the most recent run",
	})
	vehiclesUsedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pdptw_vehicles_used",
		Help: "Number of vehicles with a non-empty route in the most recent run",
	})
	unassignedCountGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pdptw_unassigned_count",
		Help: "Number of requests left in the bank by the most recent run",
	})
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pdptw_http_requests_total",
		Help: "Total HTTP requests served, by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
)

func init() {
	prometheus.MustRegister(iterationsGauge, bestObjectiveGauge, vehiclesUsedGauge, unassignedCountGauge, requestsTotal)
}

// run is a completed or re-optimized solve kept around so /reoptimize can
// be called against it without re-solving from scratch.
type run struct {
	instance *model.Instance
	desc     solution.Description
}

// Options configures the server instance.
type Options struct {
	Addr string
}

// Server holds every run this process has produced, keyed by run id, plus
// the machinery to coalesce duplicate concurrent /solve calls for the same
// instance+preset.
type Server struct {
	Opt Options

	mu    sync.RWMutex
	runs  map[string]*run
	group singleflight.Group
}

// New builds a Server ready to have Serve called on it.
func New(opt Options) *Server {
	return &Server{Opt: opt, runs: make(map[string]*run)}
}

// Serve registers HTTP handlers and blocks serving on Opt.Addr.
func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/solve", s.handleSolve)
	mux.HandleFunc("/reoptimize", s.handleReoptimize)
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("server: listening on %s", s.Opt.Addr)
	return http.ListenAndServe(s.Opt.Addr, mux)
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, v any) {
	j, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Write(j)
}

// solveRequest is the /solve POST body.
type solveRequest struct {
	InstancePath string `json:"instance_path"`
	Preset       string `json:"preset"`
	Seed         int64  `json:"seed"`
}

// solveResponse is the /solve JSON reply: a run id the caller can later
// hand to /reoptimize, plus the solution summary.
type solveResponse struct {
	RunID            string  `json:"run_id"`
	Format           string  `json:"format"`
	Objective        float64 `json:"objective"`
	VehiclesUsed     int     `json:"vehicles_used"`
	UnassignedCount  int     `json:"unassigned_count"`
	Routes           [][]int `json:"routes"`
	UnassignedPickup []int   `json:"unassigned_pickups"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.InstancePath == "" {
		http.Error(w, "instance_path required", http.StatusBadRequest)
		return
	}

	sfKey := fmt.Sprintf("%s:%s:%d", req.InstancePath, req.Preset, req.Seed)
	result, err, _ := s.group.Do(sfKey, func() (any, error) {
		return s.solve(req)
	})
	if err != nil {
		requestsTotal.WithLabelValues("/solve", "error").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	requestsTotal.WithLabelValues("/solve", "ok").Inc()
	writeJSON(w, result)
}

func (s *Server) solve(req solveRequest) (solveResponse, error) {
	instance, format, err := instanceio.LoadAuto(req.InstancePath)
	if err != nil {
		return solveResponse{}, fmt.Errorf("loading instance: %w", err)
	}
	profile, err := presets.Lookup(req.Preset)
	if err != nil {
		return solveResponse{}, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = 1
	}
	rng := rand.New(rand.NewSource(seed))

	sol := solution.New(instance, false, numeric.FromInt(100000))
	for _, p := range instance.IterPickups() {
		sol.AddToBank(p)
	}

	controller := lns.NewStandardController(profile.AcceptT0, profile.AcceptTFinal, profile.RunArgs.Iterations, rng)
	best := controller.Run(sol, profile.RunArgs)

	if profile.RunAGES {
		search := &ages.Search{Params: ages.DefaultParameters(), Rng: rng}
		for v := 0; v < instance.NumVehicles(); v++ {
			search.TryDropVehicle(best, v)
		}
	}

	runID := uuid.New().String()
	desc := best.Describe()

	s.mu.Lock()
	s.runs[runID] = &run{instance: instance, desc: desc}
	s.mu.Unlock()

	vehiclesUsed := 0
	for _, route := range desc.Routes {
		if len(route) > 0 {
			vehiclesUsed++
		}
	}

	iterationsGauge.Set(float64(profile.RunArgs.Iterations))
	bestObjectiveGauge.Set(best.Objective().Value())
	vehiclesUsedGauge.Set(float64(vehiclesUsed))
	unassignedCountGauge.Set(float64(len(desc.Bank)))

	return solveResponse{
		RunID:            runID,
		Format:           format,
		Objective:        best.Objective().Value(),
		VehiclesUsed:     vehiclesUsed,
		UnassignedCount:  len(desc.Bank),
		Routes:           desc.Routes,
		UnassignedPickup: desc.Bank,
	}, nil
}

// reoptimizeRequest is the /reoptimize POST body: a prior run id plus the
// live fleet state and newly arrived requests dynamic.Reoptimize needs.
type reoptimizeRequest struct {
	RunID         string                   `json:"run_id"`
	VehicleStates []dynamic.VehicleState   `json:"vehicle_states"`
	NewRequests   []dynamic.NewRequestSpec `json:"new_requests"`
	Config        dynamic.ReoptimizeConfig `json:"config"`
	TimeLimitSecs int                      `json:"time_limit_seconds"`
	Iterations    int                      `json:"iterations"`
	Seed          int64                    `json:"seed"`
}

type reoptimizeResponse struct {
	RunID      string              `json:"run_id"`
	Routes     [][]int             `json:"routes"`
	Bank       []int               `json:"bank"`
	Violations []dynamic.Violation `json:"violations"`
	TotalCost  float64             `json:"total_cost"`
}

func (s *Server) handleReoptimize(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req reoptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	prior, ok := s.runs[req.RunID]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown run_id", http.StatusNotFound)
		return
	}

	seed := req.Seed
	if seed == 0 {
		seed = 1
	}
	rng := rand.New(rand.NewSource(seed))
	args := lns.RunArgs{Iterations: req.Iterations, TimeLimit: time.Duration(req.TimeLimitSecs) * time.Second}

	result, err := dynamic.Reoptimize(r.Context(), prior.instance, prior.desc, req.VehicleStates, req.NewRequests, req.Config, args, rng)
	if err != nil {
		requestsTotal.WithLabelValues("/reoptimize", "error").Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	requestsTotal.WithLabelValues("/reoptimize", "ok").Inc()

	s.mu.Lock()
	s.runs[result.RunID] = &run{instance: prior.instance, desc: result.Solution}
	s.mu.Unlock()

	iterationsGauge.Set(float64(args.Iterations))
	unassignedCountGauge.Set(float64(len(result.Solution.Bank)))
	bestObjectiveGauge.Set(result.TotalCost.Value())

	writeJSON(w, reoptimizeResponse{
		RunID:      result.RunID,
		Routes:     result.Solution.Routes,
		Bank:       result.Solution.Bank,
		Violations: result.Violations,
		TotalCost:  result.TotalCost.Value(),
	})
}
