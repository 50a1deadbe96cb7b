// Package dynamic wraps the LNS/AGES solver for re-optimization against a
// rolling fleet state: vehicles already underway, deliveries already
// picked up, and newly arrived requests to admit, as described in
// spec.md §4.L.
package dynamic

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pikasonix/pdptw/ages"
	"github.com/pikasonix/pdptw/lns"
	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/solution"
	"github.com/pikasonix/pdptw/travel"
)

// maxReoptimizeTime and maxReoptimizeIterations cap every Reoptimize call
// regardless of what the caller's RunArgs asked for, mirroring
// solver/dynamic.rs's args.get_time_limit().min(60)/.min(10000) (spec.md §6).
const (
	maxReoptimizeTime       = 60 * time.Second
	maxReoptimizeIterations = 10000
)

// ReoptimizeConfig tunes what gets locked and how unassigned requests are
// penalized during a re-optimization run. Reoptimize does not read
// LatePenaltyPerMinute: lateness enters the objective at weight 1 per time
// unit.
type ReoptimizeConfig struct {
	LatePenaltyPerMinute numeric.Num
	UnassignedPenalty    numeric.Num
	LockCommitted        bool
	LockTimeThreshold    *numeric.Num
}

// VehicleState is the live state of one vehicle at the moment
// re-optimization is requested.
type VehicleState struct {
	VehicleID           int
	CurrentPosition     [2]float64
	CurrentTime         numeric.Num
	CurrentLoad         int
	InTransitDeliveries []int // delivery node ids already picked up, not yet dropped off
	CommittedRequests   []int // pickup node ids already assigned to this vehicle
}

// NewRequestSpec is a request that arrived after the initial solve and
// needs to be woven into the live plan.
type NewRequestSpec struct {
	RequestID                              int
	OriginalOrderID                        int
	PickupCoords, DeliveryCoords           [2]float64
	PickupTW, DeliveryTW                   [2]numeric.Num
	Demand                                 int
	PickupServiceTime, DeliveryServiceTime numeric.Num
}

// UnassignedReason explains why Reoptimize could not place a request.
type UnassignedReason int

const (
	CapacityExceeded UnassignedReason = iota
	TimeWindowMissed
	NoFeasibleRoute
	Other
)

// Violation is either a late arrival on an existing stop or a request that
// ended up unassigned.
type Violation struct {
	Kind      ViolationKind
	NodeID    int
	Expected  numeric.Num
	Actual    numeric.Num
	LateBy    numeric.Num
	Reason    UnassignedReason
}

// ViolationKind tags which fields of Violation are populated.
type ViolationKind int

const (
	LateArrival ViolationKind = iota
	Unassigned
)

// Result is what Reoptimize hands back: the new plan plus anything that
// went wrong while producing it.
type Result struct {
	RunID      string
	Solution   solution.Description
	Violations []Violation
	TotalCost  numeric.Num
}

// LoadReoptimizeInputs loads vehicle-states and new-requests JSON files
// concurrently via errgroup, grounded on stadam23-Eve-flipper's parallel
// config-load pattern.
func LoadReoptimizeInputs(ctx context.Context, loadStates func(context.Context) ([]VehicleState, error), loadRequests func(context.Context) ([]NewRequestSpec, error)) ([]VehicleState, []NewRequestSpec, error) {
	var states []VehicleState
	var requests []NewRequestSpec

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := loadStates(gctx)
		states = s
		return err
	})
	g.Go(func() error {
		r, err := loadRequests(gctx)
		requests = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("dynamic: loading reoptimize inputs: %w", err)
	}
	return states, requests, nil
}

// Reoptimize builds a virtual-start/ghost-pickup extended instance from
// base + states + newRequests, locks the nodes the config says to lock,
// runs AGES + LNS with soft time windows and a reduced budget, and reports
// the resulting plan plus any violations.
func Reoptimize(ctx context.Context, base *model.Instance, current solution.Description, states []VehicleState, newRequests []NewRequestSpec, cfg ReoptimizeConfig, args lns.RunArgs, rng *rand.Rand) (Result, error) {
	runID := uuid.New().String()
	log.Printf("reoptimize[%s]: starting, %d vehicles, %d new requests", runID, len(states), len(newRequests))

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("reoptimize[%s]: %w", runID, err)
	}

	ext, adjustedCurrent, locked := extendInstance(base, current, states, newRequests, cfg)

	sol := solution.FromDescription(ext.instance, adjustedCurrent, true, cfg.UnassignedPenalty)
	for _, id := range locked {
		sol.LockNode(id)
	}
	if cfg.LockTimeThreshold != nil {
		lockNearTerm(sol, states, *cfg.LockTimeThreshold)
	}
	for _, p := range ext.newPickupIDs {
		sol.AddToBank(p)
	}

	args.TimeLimit = clampDuration(args.TimeLimit, maxReoptimizeTime)
	if args.Iterations <= 0 || args.Iterations > maxReoptimizeIterations {
		args.Iterations = maxReoptimizeIterations
	}

	controller := lns.NewStandardController(numeric.FromFloat64(0.05), numeric.Zero, args.Iterations, rng)
	if args.DestroyMinFrac == 0 {
		args.DestroyMinFrac = 0.1
	}
	if args.DestroyMaxFrac == 0 {
		args.DestroyMaxFrac = 0.3
	}

	best := controller.Run(sol, args)

	search := &ages.Search{Params: ages.DefaultParameters(), Rng: rng}
	for v := 0; v < ext.instance.NumVehicles(); v++ {
		search.TryDropVehicle(best, v)
	}

	violations := collectViolations(best)
	log.Printf("reoptimize[%s]: done, objective=%v, %d violations", runID, best.Objective(), len(violations))

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("reoptimize[%s]: %w", runID, err)
	}
	return Result{RunID: runID, Solution: best.Describe(), Violations: violations, TotalCost: best.Objective()}, nil
}

// lockNearTerm freezes every node a vehicle is due to reach within
// threshold of its reported current time, so destroy operators cannot
// pull apart a stop the driver is already approaching.
func lockNearTerm(sol *solution.Solution, states []VehicleState, threshold numeric.Num) {
	for _, vs := range states {
		cutoff := vs.CurrentTime.Add(threshold)
		for _, n := range sol.Routes.IterRoute(vs.VehicleID) {
			if sol.Routes.Forward[n].EarliestStart <= cutoff {
				sol.LockNode(n)
			}
		}
	}
}

func clampDuration(d, max time.Duration) time.Duration {
	if d <= 0 || d > max {
		return max
	}
	return d
}

type extended struct {
	instance     *model.Instance
	newPickupIDs []int
}

// extendInstance builds the virtual-start-node + ghost-pickup extended
// instance described in spec.md §4.L steps 1-3, and returns current's
// routes adjusted so every in-transit delivery is preceded by its ghost
// pickup instead of its (already visited) real one. Kept simple relative
// to a full incremental id-reuse scheme: it rebuilds a fresh Instance each
// call (Reoptimize calls are infrequent relative to LNS iterations, so
// this cost is dwarfed by the search itself).
func extendInstance(base *model.Instance, current solution.Description, states []VehicleState, newRequests []NewRequestSpec, cfg ReoptimizeConfig) (extended, solution.Description, []int) {
	coordOf := func(id int) (float64, float64, bool) {
		if id < 0 || id >= len(base.Nodes) {
			return 0, 0, false
		}
		n := base.Nodes[id]
		return n.X, n.Y, true
	}
	dyn := travel.NewDynamic(base.Matrix, coordOf, 1.0)

	b := model.NewBuilder(base.Name + "-reopt")
	for _, v := range base.Vehicles {
		b.AddVehicle(v.Capacity, v.ShiftLength, v.DepotX, v.DepotY)
	}
	for r := 0; r < base.NumRequests; r++ {
		b.AddRequest(*base.Node(base.PickupIDOfRequest(r)), *base.Node(base.DeliveryIDOfRequest(r)))
	}

	for _, nr := range newRequests {
		pickup := model.Node{
			Type:    model.Pickup,
			X:       nr.PickupCoords[0],
			Y:       nr.PickupCoords[1],
			Demand:  nr.Demand,
			Ready:   nr.PickupTW[0],
			Due:     nr.PickupTW[1],
			Service: nr.PickupServiceTime,
		}
		delivery := model.Node{
			Type:    model.Delivery,
			X:       nr.DeliveryCoords[0],
			Y:       nr.DeliveryCoords[1],
			Demand:  -nr.Demand,
			Ready:   nr.DeliveryTW[0],
			Due:     nr.DeliveryTW[1],
			Service: nr.DeliveryServiceTime,
		}
		b.AddRequest(pickup, delivery)
	}

	instance := b.Build(dyn)

	newPickupIDs := make([]int, 0, len(newRequests))
	for i := range newRequests {
		newPickupIDs = append(newPickupIDs, instance.PickupIDOfRequest(base.NumRequests+i))
	}

	adjusted := solution.Description{Bank: append([]int(nil), current.Bank...), Routes: make([][]int, len(instance.Vehicles))}
	for v, route := range current.Routes {
		adjusted.Routes[v] = append([]int(nil), route...)
	}

	var locked []int
	nextGhostID := len(instance.Nodes)
	for _, vs := range states {
		if len(vs.CommittedRequests) > 0 || len(vs.InTransitDeliveries) > 0 {
			virtualID := nextGhostID
			nextGhostID++
			dyn.AddVirtualNode(virtualID, vs.CurrentPosition[0], vs.CurrentPosition[1])
		}
		if cfg.LockCommitted {
			for _, p := range vs.CommittedRequests {
				locked = append(locked, p, instance.DeliveryOf(p))
			}
		}
		for _, d := range vs.InTransitDeliveries {
			p := instance.PickupOf(d)
			origDemand := -instance.Node(d).Demand
			ghostID := nextGhostID
			nextGhostID++
			instance.Nodes = append(instance.Nodes, model.Node{
				ID:      ghostID,
				Type:    model.Ghost,
				X:       vs.CurrentPosition[0],
				Y:       vs.CurrentPosition[1],
				Demand:  origDemand,
				Ready:   vs.CurrentTime,
				Due:     vs.CurrentTime,
				Service: numeric.Zero,
			})
			dyn.AddVirtualNode(ghostID, vs.CurrentPosition[0], vs.CurrentPosition[1])
			adjusted.Routes[vs.VehicleID] = spliceGhost(adjusted.Routes[vs.VehicleID], p, d, ghostID)
			locked = append(locked, ghostID, d)
		}
	}

	return extended{instance: instance, newPickupIDs: newPickupIDs}, adjusted, locked
}

// spliceGhost removes pickupID from route (already visited, no longer a
// real stop) and inserts ghostID immediately before deliveryID, so the
// rebuilt route drives straight from the vehicle's current position to
// the drop-off instead of back through the original pickup location.
func spliceGhost(route []int, pickupID, deliveryID, ghostID int) []int {
	out := make([]int, 0, len(route)+1)
	for _, n := range route {
		if n == pickupID {
			continue
		}
		if n == deliveryID {
			out = append(out, ghostID)
		}
		out = append(out, n)
	}
	return out
}

// collectViolations scans every non-empty route for late arrivals (soft-TW
// mode leaves Lateness/ViolationCount populated on the Forward aggregate)
// and reports every still-banked request as Unassigned.
func collectViolations(sol *solution.Solution) []Violation {
	var out []Violation
	for v, vehicle := range sol.Instance.Vehicles {
		if sol.IsEmptyRoute(v) {
			continue
		}
		end := sol.Routes.Forward[vehicle.EndDepotID()]
		if end.ViolationCount > 0 {
			out = append(out, Violation{Kind: LateArrival, NodeID: vehicle.EndDepotID(), LateBy: end.Lateness})
		}
	}
	for _, e := range sol.Bank {
		out = append(out, Violation{Kind: Unassigned, NodeID: e.PickupID, Reason: NoFeasibleRoute})
	}
	return out
}
