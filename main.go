// Command pdptw solves a Pickup-and-Delivery Problem with Time Windows
// instance with Adaptive Large Neighbourhood Search plus Adaptive Guided
// Ejection Search, and can also run a single dynamic re-optimization pass
// against a live fleet snapshot. Flag parsing follows the teacher's
// declarative block-of-flag.Xxx(...) style; loading an instance or a
// dynamic input file is fatal the way the teacher treats route/fleet load
// failures, while search itself never panics and always returns its
// best-so-far solution.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pikasonix/pdptw/accept"
	"github.com/pikasonix/pdptw/ages"
	"github.com/pikasonix/pdptw/dynamic"
	"github.com/pikasonix/pdptw/instanceio"
	"github.com/pikasonix/pdptw/lns"
	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/presets"
	"github.com/pikasonix/pdptw/repair"
	"github.com/pikasonix/pdptw/server"
	"github.com/pikasonix/pdptw/sintef"
	"github.com/pikasonix/pdptw/solution"
)

func main() {
	seed := flag.Int64("seed", 1, "random seed for the search")
	instancePath := flag.String("instance", "", "path to the instance file (required unless -serve)")
	flag.StringVar(instancePath, "i", "", "shorthand for -instance")
	format := flag.String("format", "auto", "instance format: auto, lilim, sartori, or nyc")
	flag.StringVar(format, "f", "auto", "shorthand for -format")
	outputDir := flag.String("output-dir", "solutions", "directory solution files are written to when -solution is not set")
	flag.StringVar(outputDir, "o", "solutions", "shorthand for -output-dir")
	solutionPath := flag.String("solution", "", "explicit output path for the solution file")
	flag.StringVar(solutionPath, "s", "", "shorthand for -solution")
	solutionDirectory := flag.String("solution-directory", "", "write the solution file into this directory using the default naming convention (conflicts with -solution)")
	maxVehicles := flag.Int("max-vehicles", 0, "cap the number of vehicles read from a Sartori-Buriol instance header (0 = no cap)")
	authors := flag.String("authors", "", "authors field recorded in the solution file header")
	reference := flag.String("reference", "", "reference field recorded in the solution file header")

	preset := flag.String("preset", presets.Default, "named parameter bundle: fast, balanced, or thorough")
	iterations := flag.Int("iterations", 0, "LNS iteration budget (0 = use the preset's)")
	maxNonImproving := flag.Int("max-non-improving", 0, "stop early after this many non-improving iterations (0 = use the preset's)")
	timeLimit := flag.Duration("time-limit", 0, "wall-clock budget, e.g. 30s (0 = use the preset's)")
	minDestroy := flag.Float64("min-destroy", 0, "fraction of requests a destroy operator removes at minimum (0 = use the preset's)")
	maxDestroy := flag.Float64("max-destroy", 0, "fraction of requests a destroy operator removes at maximum (0 = use the preset's)")
	minDestroyCount := flag.Int("min-destroy-count", 0, "absolute request count overriding -min-destroy (>0 to take effect)")
	maxDestroyCount := flag.Int("max-destroy-count", 0, "absolute request count overriding -max-destroy (>0 to take effect)")
	acceptanceName := flag.String("acceptance", "rtr", "acceptance criterion: sa, rtr, or greedy")
	construction := flag.String("construction", "sequential", "initial construction heuristic: sequential, regret, or binpacking")
	kEjection := flag.Bool("k-ejection", true, "run the AGES vehicle-minimization pass after LNS")
	perturbation := flag.Bool("perturbation", true, "keep AGES's perturbation mode set (false clears it; the AGES pass has no perturbation phase, so its search is the same either way)")
	searchAssertions := flag.Bool("search-assertions", false, "recompute and cross-check REF aggregates from scratch on the LNS result before the AGES pass (slow, diagnostic only)")

	dynamicMode := flag.Bool("dynamic", false, "run a single dynamic re-optimization pass instead of a static solve")
	vehicleStatesPath := flag.String("vehicle-states", "", "path to vehicle_states.json (required with -dynamic)")
	newRequestsPath := flag.String("new-requests", "", "path to new_requests.json (required with -dynamic)")
	latePenalty := flag.Float64("late-penalty", 1.0, "soft time-window lateness penalty per minute, dynamic mode only; passed on in the re-optimization config, which does not apply it (lateness enters the objective at weight 1)")
	unassignedPenalty := flag.Float64("unassigned-penalty", 10000, "objective penalty per unassigned request")
	lockCommitted := flag.Bool("lock-committed", true, "freeze every node already assigned to a vehicle, dynamic mode only")
	lockTimeThreshold := flag.Float64("lock-time-threshold", 0, "also freeze nodes scheduled within this many minutes of now (0 = disabled), dynamic mode only")

	printForTuning := flag.Bool("print-for-tuning", false, "print a single irace-style tuning line instead of the normal summary")
	printSummaryToStdout := flag.Bool("print-summary-to-stdout", false, "print the human-readable solution summary to stdout in addition to the log")

	serve := flag.Bool("serve", false, "run the HTTP server instead of a one-shot solve")
	addr := flag.String("addr", ":8080", "listen address when -serve is set")
	flag.Parse()

	if *serve {
		s := server.New(server.Options{Addr: *addr})
		log.Fatal(s.Serve())
	}

	if *instancePath == "" {
		log.Fatalf("pdptw: -instance is required (or pass -serve to run the HTTP server)")
	}
	if *solutionPath != "" && *solutionDirectory != "" {
		log.Fatalf("pdptw: -solution and -solution-directory are mutually exclusive")
	}

	profile, err := presets.Lookup(*preset)
	if err != nil {
		log.Fatalf("pdptw: %v", err)
	}
	applyOverrides(&profile, *iterations, *maxNonImproving, *timeLimit, *minDestroy, *maxDestroy)

	instance, _, err := loadInstance(*instancePath, *format, *maxVehicles)
	if err != nil {
		log.Fatalf("pdptw: loading instance: %v", err)
	}
	if *minDestroyCount > 0 {
		profile.RunArgs.DestroyMinFrac = countToFraction(*minDestroyCount, instance.NumRequests)
	}
	if *maxDestroyCount > 0 {
		profile.RunArgs.DestroyMaxFrac = countToFraction(*maxDestroyCount, instance.NumRequests)
	}

	rng := rand.New(rand.NewSource(*seed))
	started := time.Now()

	if *dynamicMode {
		runDynamic(instance, rng, *vehicleStatesPath, *newRequestsPath, *latePenalty, *unassignedPenalty, *lockCommitted, *lockTimeThreshold, profile.RunArgs)
		return
	}

	sol := buildInitialSolution(instance, *construction, numeric.FromFloat64(*unassignedPenalty), rng)
	sol.AssertionsEnabled = *searchAssertions

	controller := lns.NewStandardController(profile.AcceptT0, profile.AcceptTFinal, profile.RunArgs.Iterations, rng)
	controller.Acceptance = buildAcceptance(*acceptanceName, profile)

	best := controller.Run(sol, profile.RunArgs)
	if err := best.CheckInvariants(); err != nil {
		log.Fatalf("pdptw: search-assertions: %v", err)
	}

	if *kEjection {
		params := ages.DefaultParameters()
		if !*perturbation {
			params.Perturbation = nil
		}
		search := &ages.Search{Params: params, Rng: rng}
		for v := 0; v < instance.NumVehicles(); v++ {
			search.TryDropVehicle(best, v)
		}
	}

	elapsed := time.Since(started)
	vehiclesUsed, unassignedCount := routeStats(best)

	if *printForTuning {
		fmt.Printf("%01d%04d%010d %d\n", unassignedCount, vehiclesUsed, int64(best.Objective().Value()), int(elapsed.Seconds()))
		return
	}

	outPath := *solutionPath
	if outPath == "" {
		dir := *solutionDirectory
		if dir == "" {
			dir = *outputDir
		}
		outPath = sintef.DefaultPath(dir, instance.Name, unassignedCount, vehiclesUsed, best.Objective(), *seed)
	}
	if err := writeSolution(outPath, best, instance, *authors, *reference); err != nil {
		log.Fatalf("pdptw: writing solution: %v", err)
	}
	log.Printf("pdptw: solution written to %s (%s elapsed)", outPath, elapsed.Round(time.Millisecond))

	if *printSummaryToStdout {
		fmt.Println(sintef.Summary(best.Describe(), instance, best.Objective()))
	}
}

// applyOverrides fills in zero-valued CLI flags from the chosen preset,
// the way data.TimePeriodMultiplier's caller layers explicit overrides on
// top of a canned baseline.
func applyOverrides(p *presets.Profile, iterations, maxNonImproving int, timeLimit time.Duration, minDestroy, maxDestroy float64) {
	if iterations > 0 {
		p.RunArgs.Iterations = iterations
	}
	if maxNonImproving > 0 {
		p.RunArgs.MaxNonImproving = maxNonImproving
	}
	if timeLimit > 0 {
		p.RunArgs.TimeLimit = timeLimit
	}
	if minDestroy > 0 {
		p.RunArgs.DestroyMinFrac = minDestroy
	}
	if maxDestroy > 0 {
		p.RunArgs.DestroyMaxFrac = maxDestroy
	}
}

// countToFraction converts an absolute destroy-count override into the
// fraction lns.Controller actually consumes (spec.md §6's
// --min/max-destroy-count flags override the fraction flags when positive).
func countToFraction(count, numRequests int) float64 {
	if numRequests <= 0 {
		return 0
	}
	return float64(count) / float64(numRequests)
}

// buildAcceptance maps the --acceptance flag onto a concrete
// accept.Criterion, seeded from the chosen preset's temperature band.
// "greedy" maps to accept.Strict, matching spec.md §6's three-way enum
// under the name the rest of this codebase already uses for
// accept-only-improvements.
func buildAcceptance(name string, profile presets.Profile) accept.Criterion {
	switch name {
	case "sa":
		return &accept.ExponentialSA{T0: profile.AcceptT0, TFinal: profile.AcceptTFinal, N: profile.RunArgs.Iterations}
	case "greedy":
		return accept.Strict{}
	case "rtr", "":
		return &accept.LinearRTR{T0: profile.AcceptT0, TFinal: profile.AcceptTFinal, N: profile.RunArgs.Iterations}
	default:
		log.Printf("pdptw: warning: unknown -acceptance %q, falling back to rtr", name)
		return &accept.LinearRTR{T0: profile.AcceptT0, TFinal: profile.AcceptTFinal, N: profile.RunArgs.Iterations}
	}
}

func loadInstance(path, format string, maxVehicles int) (*model.Instance, string, error) {
	switch format {
	case "auto":
		return instanceio.LoadAuto(path)
	case "lilim":
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		in, err := instanceio.LoadLiLim(f)
		return in, "lilim", err
	case "sartori":
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		var capPtr *int
		if maxVehicles > 0 {
			capPtr = &maxVehicles
		}
		in, err := instanceio.LoadSartoriBuriol(f, capPtr)
		return in, "sartori", err
	case "nyc":
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		in, err := instanceio.LoadNYCJSON(f)
		return in, "nyc", err
	default:
		return nil, "", fmt.Errorf("unknown format %q (want auto, lilim, sartori, or nyc)", format)
	}
}

// buildInitialSolution constructs an all-banked solution and runs the
// requested construction heuristic once before the LNS loop takes over.
// "binpacking" has no implementation here: spec.md's Non-goals exclude the
// recombiner/matcher internals a bin-packing-based construction would
// need, so it falls back to sequential with a warning rather than
// silently behaving like a different flag value.
func buildInitialSolution(instance *model.Instance, construction string, unassignedPenalty numeric.Num, rng *rand.Rand) *solution.Solution {
	sol := solution.New(instance, false, unassignedPenalty)

	switch construction {
	case "regret":
		repair.RegretK{K: 3}.Apply(sol, rng)
	case "binpacking":
		log.Printf("pdptw: warning: -construction=binpacking is not implemented (no recombiner/matcher backend in scope), falling back to sequential")
		repair.Sequential{}.Apply(sol, rng)
	case "sequential", "":
		repair.Sequential{}.Apply(sol, rng)
	default:
		log.Printf("pdptw: warning: unknown -construction %q, falling back to sequential", construction)
		repair.Sequential{}.Apply(sol, rng)
	}
	return sol
}

func routeStats(sol *solution.Solution) (vehiclesUsed, unassignedCount int) {
	desc := sol.Describe()
	for _, r := range desc.Routes {
		if len(r) > 0 {
			vehiclesUsed++
		}
	}
	return vehiclesUsed, len(desc.Bank)
}

func writeSolution(path string, sol *solution.Solution, instance *model.Instance, authors, reference string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	meta := sintef.Meta{InstanceName: instance.Name, Authors: authors, Reference: reference, Date: time.Now().Format("2006-01-02")}
	return sintef.Write(f, sol.Describe(), instance, meta)
}

// jsonVehicleState/jsonNewRequest mirror spec.md §6's on-disk field names
// for vehicle_states.json/new_requests.json, decoded here and converted
// into dynamic.VehicleState/dynamic.NewRequestSpec the way
// model.LoadFleetFromReader decodes a raw JSON shape before building
// domain structs from it.
type jsonVehicleState struct {
	VehicleID           int        `json:"vehicle_id"`
	CurrentPosition     [2]float64 `json:"current_position"`
	CurrentTime         float64    `json:"current_time"`
	CurrentLoad         int        `json:"current_load"`
	InTransitDeliveries []int      `json:"in_transit_deliveries"`
	CommittedRequests   []int      `json:"committed_requests"`
}

type jsonNewRequest struct {
	RequestID           int        `json:"request_id"`
	OriginalOrderID     int        `json:"original_order_id"`
	PickupCoords        [2]float64 `json:"pickup_coords"`
	DeliveryCoords      [2]float64 `json:"delivery_coords"`
	PickupTW            [2]float64 `json:"pickup_tw"`
	DeliveryTW          [2]float64 `json:"delivery_tw"`
	Demand              int        `json:"demand"`
	PickupServiceTime   float64    `json:"pickup_service_time"`
	DeliveryServiceTime float64    `json:"delivery_service_time"`
}

func loadVehicleStates(ctx context.Context, path string) ([]dynamic.VehicleState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	var raw []jsonVehicleState
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	states := make([]dynamic.VehicleState, 0, len(raw))
	for _, r := range raw {
		states = append(states, dynamic.VehicleState{
			VehicleID:           r.VehicleID,
			CurrentPosition:     r.CurrentPosition,
			CurrentTime:         numeric.FromFloat64(r.CurrentTime),
			CurrentLoad:         r.CurrentLoad,
			InTransitDeliveries: r.InTransitDeliveries,
			CommittedRequests:   r.CommittedRequests,
		})
	}
	return states, nil
}

func loadNewRequests(ctx context.Context, path string) ([]dynamic.NewRequestSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	var raw []jsonNewRequest
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	reqs := make([]dynamic.NewRequestSpec, 0, len(raw))
	for _, r := range raw {
		reqs = append(reqs, dynamic.NewRequestSpec{
			RequestID:           r.RequestID,
			OriginalOrderID:     r.OriginalOrderID,
			PickupCoords:        r.PickupCoords,
			DeliveryCoords:      r.DeliveryCoords,
			PickupTW:            [2]numeric.Num{numeric.FromFloat64(r.PickupTW[0]), numeric.FromFloat64(r.PickupTW[1])},
			DeliveryTW:          [2]numeric.Num{numeric.FromFloat64(r.DeliveryTW[0]), numeric.FromFloat64(r.DeliveryTW[1])},
			Demand:              r.Demand,
			PickupServiceTime:   numeric.FromFloat64(r.PickupServiceTime),
			DeliveryServiceTime: numeric.FromFloat64(r.DeliveryServiceTime),
		})
	}
	return reqs, nil
}

// dynamicRoute/dynamicViolation/dynamicResult shape the stdout JSON exactly
// as spec.md §6's DynamicResultJson.
type dynamicRoute struct {
	VehicleID int   `json:"vehicle_id"`
	Nodes     []int `json:"nodes"`
	OrderIDs  []int `json:"order_ids"`
}

type dynamicViolation struct {
	NodeID          int    `json:"node_id"`
	RequestID       int    `json:"request_id"`
	OriginalOrderID int    `json:"original_order_id"`
	ViolationType   string `json:"violation_type"`
	Details         string `json:"details"`
}

type dynamicResult struct {
	Routes            []dynamicRoute     `json:"routes"`
	Violations        []dynamicViolation `json:"violations"`
	VehiclesUsed      int                `json:"vehicles_used"`
	UnassignedCount   int                `json:"unassigned_count"`
	TotalCost         float64            `json:"total_cost"`
	ComputationTimeMS int64              `json:"computation_time_ms"`
}

func runDynamic(instance *model.Instance, rng *rand.Rand, vehicleStatesPath, newRequestsPath string, latePenalty, unassignedPenalty float64, lockCommitted bool, lockTimeThreshold float64, args lns.RunArgs) {
	if vehicleStatesPath == "" || newRequestsPath == "" {
		log.Fatalf("pdptw: -dynamic requires both -vehicle-states and -new-requests")
	}
	started := time.Now()

	ctx := context.Background()
	states, newRequests, err := dynamic.LoadReoptimizeInputs(ctx,
		func(ctx context.Context) ([]dynamic.VehicleState, error) { return loadVehicleStates(ctx, vehicleStatesPath) },
		func(ctx context.Context) ([]dynamic.NewRequestSpec, error) { return loadNewRequests(ctx, newRequestsPath) },
	)
	if err != nil {
		log.Fatalf("pdptw: %v", err)
	}

	cfg := dynamic.ReoptimizeConfig{
		LatePenaltyPerMinute: numeric.FromFloat64(latePenalty),
		UnassignedPenalty:    numeric.FromFloat64(unassignedPenalty),
		LockCommitted:        lockCommitted,
	}
	if lockTimeThreshold > 0 {
		t := numeric.FromFloat64(lockTimeThreshold)
		cfg.LockTimeThreshold = &t
	}

	emptyCurrent := solution.Description{Routes: make([][]int, instance.NumVehicles())}
	result, err := dynamic.Reoptimize(ctx, instance, emptyCurrent, states, newRequests, cfg, args, rng)
	if err != nil {
		log.Fatalf("pdptw: reoptimize: %v", err)
	}

	out := dynamicResult{ComputationTimeMS: time.Since(started).Milliseconds(), TotalCost: result.TotalCost.Value()}
	requestIDOf := func(nodeID int) (int, int) {
		if !instance.IsRequest(nodeID) {
			return -1, -1
		}
		r := instance.RequestIDOf(nodeID)
		if r < 0 || r >= len(newRequests) {
			return r, -1
		}
		return r, newRequests[r].OriginalOrderID
	}

	for v, nodes := range result.Solution.Routes {
		if len(nodes) == 0 {
			continue
		}
		orderIDs := make([]int, len(nodes))
		for i, n := range nodes {
			_, orderIDs[i] = requestIDOf(n)
		}
		out.Routes = append(out.Routes, dynamicRoute{VehicleID: v, Nodes: nodes, OrderIDs: orderIDs})
		out.VehiclesUsed++
	}
	out.UnassignedCount = len(result.Solution.Bank)

	for _, v := range result.Violations {
		switch v.Kind {
		case dynamic.LateArrival:
			reqID, orderID := requestIDOf(v.NodeID)
			out.Violations = append(out.Violations, dynamicViolation{
				NodeID: v.NodeID, RequestID: reqID, OriginalOrderID: orderID,
				ViolationType: "late_arrival",
				Details:       fmt.Sprintf("expected %s, actual %s, late by %s", v.Expected, v.Actual, v.LateBy),
			})
		case dynamic.Unassigned:
			reqID, orderID := requestIDOf(v.NodeID)
			out.Violations = append(out.Violations, dynamicViolation{
				NodeID: v.NodeID, RequestID: reqID, OriginalOrderID: orderID,
				ViolationType: "unassigned",
				Details:       unassignedReasonString(v.Reason),
			})
		}
	}

	j, err := json.Marshal(out)
	if err != nil {
		log.Fatalf("pdptw: marshal dynamic result: %v", err)
	}
	os.Stdout.Write(j)
	os.Stdout.WriteString("\n")
	log.Printf("pdptw: dynamic re-optimization[%s] done in %s, %s vehicles used, %s unassigned",
		result.RunID, time.Since(started).Round(time.Millisecond), humanize.Comma(int64(out.VehiclesUsed)), humanize.Comma(int64(out.UnassignedCount)))
}

func unassignedReasonString(r dynamic.UnassignedReason) string {
	switch r {
	case dynamic.CapacityExceeded:
		return "capacity_exceeded"
	case dynamic.TimeWindowMissed:
		return "time_window_missed"
	case dynamic.NoFeasibleRoute:
		return "no_feasible_route"
	default:
		return "other"
	}
}
