// Package lns implements the Adaptive Large Neighbourhood Search outer
// loop: repeatedly destroy a fraction of the current solution and repair
// it, keeping the candidate if the acceptance criterion approves, and
// tracking the best solution seen.
package lns

import (
	"math/rand"
	"time"

	"github.com/pikasonix/pdptw/accept"
	"github.com/pikasonix/pdptw/destroy"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/repair"
	"github.com/pikasonix/pdptw/solution"
)

// RunArgs bounds one Controller.Run call.
type RunArgs struct {
	Iterations      int
	TimeLimit       time.Duration
	DestroyMinFrac  float64
	DestroyMaxFrac  float64
	MaxNonImproving int
	LocalSearchProb float64
}

// Controller owns the pools of destroy/repair operators an LNS run
// chooses from, plus the acceptance criterion driving the accept/reject
// decision each iteration.
type Controller struct {
	Destroy    []destroy.Operator
	Repair     []repair.Operator
	Acceptance accept.Criterion
	Rng        *rand.Rand

	// LocalSearch, when non-nil, is applied to a candidate with probability
	// args.LocalSearchProb each iteration, and always applied to a newly
	// found best solution (spec.md §4.J's applyBackwardSearch hook).
	LocalSearch func(sol *solution.Solution)
}

// Run executes the destroy/repair/accept loop described in spec.md §4.J,
// returning the best solution found.
func (c *Controller) Run(initial *solution.Solution, args RunArgs) *solution.Solution {
	current := initial
	best := initial.Clone()

	destroyMin := destroyCount(initial, args.DestroyMinFrac)
	destroyMax := destroyCount(initial, args.DestroyMaxFrac)
	if destroyMax < destroyMin {
		destroyMax = destroyMin
	}

	deadline := time.Time{}
	if args.TimeLimit > 0 {
		deadline = time.Now().Add(args.TimeLimit)
	}

	lastImprovement := 0
	for i := 0; i < args.Iterations; i++ {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		k := destroyMin
		if destroyMax > destroyMin {
			k += c.Rng.Intn(destroyMax - destroyMin + 1)
		}

		candidate := current.Clone()
		c.pickDestroy().Apply(candidate, k, c.Rng)
		c.pickRepair().Apply(candidate, c.Rng)
		if c.LocalSearch != nil && args.LocalSearchProb > 0 && c.Rng.Float64() < args.LocalSearchProb {
			c.LocalSearch(candidate)
		}

		c.Acceptance.Update(i)
		if c.Acceptance.Accept(current.Objective(), candidate.Objective(), best.Objective()) {
			current = candidate
			if candidate.Objective() < best.Objective() {
				best = candidate.Clone()
				if c.LocalSearch != nil {
					c.LocalSearch(best)
				}
				lastImprovement = i
			}
		} else if args.MaxNonImproving > 0 && i-lastImprovement > args.MaxNonImproving {
			break
		}
	}
	return best
}

// NewStandardController wires the destroy/repair operator pools every
// solve and reoptimize call in this codebase shares: random and worst
// removal, greedy-with-blinks and regret-3 repair, under a linear
// record-to-record-travel acceptance schedule. Callers that need a
// different operator mix build a Controller literal directly instead.
func NewStandardController(acceptT0, acceptTFinal numeric.Num, iterations int, rng *rand.Rand) *Controller {
	return &Controller{
		Destroy: []destroy.Operator{
			destroy.RandomRemoval{},
			destroy.WorstRemoval{Alpha: 0.1},
		},
		Repair: []repair.Operator{
			repair.GreedyWithBlinks{BlinkRate: 0.1, UseEmptyRoute: true},
			repair.RegretK{K: 3},
		},
		Acceptance: &accept.LinearRTR{T0: acceptT0, TFinal: acceptTFinal, N: iterations},
		Rng:        rng,
	}
}

func (c *Controller) pickDestroy() destroy.Operator {
	return c.Destroy[c.Rng.Intn(len(c.Destroy))]
}

func (c *Controller) pickRepair() repair.Operator {
	return c.Repair[c.Rng.Intn(len(c.Repair))]
}

// destroyCount turns a fraction of total requests into a request count,
// floored then clamped to at least 1 whenever there is at least one
// request to remove (Open Question (a), see DESIGN.md).
func destroyCount(sol *solution.Solution, frac float64) int {
	n := int(frac * float64(sol.Instance.NumRequests))
	if n < 1 && sol.Instance.NumRequests > 0 {
		n = 1
	}
	if n > sol.Instance.NumRequests {
		n = sol.Instance.NumRequests
	}
	return n
}
