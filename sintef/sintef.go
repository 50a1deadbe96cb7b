// Package sintef reads and writes PDPTW solution files in the plain-text
// route-list format used across the SINTEF/Sartori-Buriol benchmark
// archives: a descriptive header block followed by one "Route k :"
// line per vehicle, listing the original (file-native) node ids the
// route visits in order. It plays the role sim/report.go's WriteCSVReport
// plays for the teacher — a header-then-rows writer paired with a
// timestamped/parameterized output path convention — adapted from a CSV
// bus report to a solution-file format for requests and routes.
package sintef

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/solution"
)

// Meta carries the descriptive header fields written above a solution
// file's route list. Authors/Reference are free-form attribution, the
// way the original Rust solution-file header records who produced the
// run and where the instance came from.
type Meta struct {
	InstanceName string
	Authors      string
	Date         string
	Reference    string
}

// Parsed is a solution file decoded back into original node ids (one per
// visited pickup/delivery, depots omitted), plus the header fields and
// the summary line's reported objective.
type Parsed struct {
	Meta      Meta
	Routes    [][]int
	Objective numeric.Num
}

// Write renders desc as a SINTEF-style solution file: a header block,
// then one "Route k : id id id" line per non-empty vehicle route (ids
// are each node's model.Node.OriginalID, not its internal instance id),
// then a summary line reporting vehicles used, unassigned requests and
// total cost — mirroring sim/report.go WriteCSVReport's
// header-then-rows-then-summary-row shape.
func Write(w io.Writer, desc solution.Description, instance *model.Instance, meta Meta) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Instance name : %s\n", nonEmpty(meta.InstanceName, instance.Name))
	fmt.Fprintf(bw, "Authors       : %s\n", nonEmpty(meta.Authors, "unknown"))
	fmt.Fprintf(bw, "Date          : %s\n", nonEmpty(meta.Date, "unknown"))
	fmt.Fprintf(bw, "Reference     : %s\n", nonEmpty(meta.Reference, "unknown"))
	fmt.Fprintln(bw, "Solution")
	fmt.Fprintln(bw)

	vehiclesUsed := 0
	totalCost := numeric.Zero
	for v, nodeIDs := range desc.Routes {
		if len(nodeIDs) == 0 {
			continue
		}
		vehiclesUsed++
		totalCost = totalCost.Add(routeDistance(instance, v, nodeIDs))

		ids := make([]string, len(nodeIDs))
		for i, id := range nodeIDs {
			ids[i] = strconv.Itoa(instance.Node(id).OriginalID)
		}
		fmt.Fprintf(bw, "Route %d : %s\n", v+1, strings.Join(ids, " "))
	}

	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Vehicles  : %d\n", vehiclesUsed)
	fmt.Fprintf(bw, "Unassigned: %d\n", len(desc.Bank))
	fmt.Fprintf(bw, "Cost      : %s\n", totalCost)

	return bw.Flush()
}

// Summary renders a one-line human-readable recap of a written solution,
// for console/log output alongside the file — grounded on sim/report.go's
// PrintConsoleReport, with github.com/dustin/go-humanize formatting the
// counts the way the teacher's console report formats distances.
func Summary(desc solution.Description, instance *model.Instance, totalCost numeric.Num) string {
	vehiclesUsed := 0
	for _, r := range desc.Routes {
		if len(r) > 0 {
			vehiclesUsed++
		}
	}
	return fmt.Sprintf("%s: %s vehicles used, %s requests unassigned, cost %s",
		instance.Name,
		humanize.Comma(int64(vehiclesUsed)),
		humanize.Comma(int64(len(desc.Bank))),
		totalCost)
}

// routeDistance sums the travel distance of a single vehicle's route,
// including the legs to and from its depot.
func routeDistance(instance *model.Instance, vehicleID int, nodeIDs []int) numeric.Num {
	veh := instance.Vehicles[vehicleID]
	total := numeric.Zero
	prev := veh.StartDepotID()
	for _, id := range nodeIDs {
		total = total.Add(instance.Distance(prev, id))
		prev = id
	}
	total = total.Add(instance.Distance(prev, veh.EndDepotID()))
	return total
}

func nonEmpty(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// DefaultPath builds the filename convention carried over from the
// original Rust solver: "<instance>.<unassigned>_<vehicles>_<cost>.<seed>.sol",
// so a directory of output files sorts and filters by quality without
// opening each one.
func DefaultPath(dir, instanceName string, unassigned, vehiclesUsed int, cost numeric.Num, seed int64) string {
	name := fmt.Sprintf("%s.%d_%d_%d.%d.sol", instanceName, unassigned, vehiclesUsed, int64(cost.Value()), seed)
	return filepath.Join(dir, name)
}

// Read parses a solution file written by Write (or one following the
// same SINTEF-style header-then-routes grammar) back into original node
// ids per route.
func Read(r io.Reader) (Parsed, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var parsed Parsed
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "Instance name"):
			parsed.Meta.InstanceName = afterColon(line)
		case strings.HasPrefix(line, "Authors"):
			parsed.Meta.Authors = afterColon(line)
		case strings.HasPrefix(line, "Date"):
			parsed.Meta.Date = afterColon(line)
		case strings.HasPrefix(line, "Reference"):
			parsed.Meta.Reference = afterColon(line)
		case strings.HasPrefix(line, "Route"):
			route, err := parseRouteLine(line)
			if err != nil {
				return Parsed{}, fmt.Errorf("sintef: %w", err)
			}
			parsed.Routes = append(parsed.Routes, route)
		case strings.HasPrefix(line, "Cost"):
			v, err := strconv.ParseFloat(strings.TrimSpace(afterColon(line)), 64)
			if err != nil {
				return Parsed{}, fmt.Errorf("sintef: parsing cost %q: %w", line, err)
			}
			parsed.Objective = numeric.FromFloat64(v)
		}
	}
	if err := scanner.Err(); err != nil {
		return Parsed{}, fmt.Errorf("sintef: scanning solution: %w", err)
	}
	return parsed, nil
}

func afterColon(line string) string {
	i := strings.Index(line, ":")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(line[i+1:])
}

func parseRouteLine(line string) ([]int, error) {
	i := strings.Index(line, ":")
	if i < 0 {
		return nil, fmt.Errorf("route line %q: missing ':'", line)
	}
	fields := strings.Fields(line[i+1:])
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("route line %q: node id %q: %w", line, f, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ToDescription resolves a Parsed solution's original node ids back to
// internal instance node ids, rebuilding the solution.Description
// FromDescription can hand to solution.New — mirroring the Rust
// create_solution_from_sintef's original-id-to-node lookup, keyed here
// on model.Node.OriginalID instead of a linear scan's "oid" field.
func ToDescription(parsed Parsed, instance *model.Instance) (solution.Description, error) {
	byOriginalID := make(map[int]int, len(instance.Nodes))
	for _, n := range instance.Nodes {
		if n.IsRequestNode() {
			byOriginalID[n.OriginalID] = n.ID
		}
	}

	desc := solution.Description{Routes: make([][]int, instance.NumVehicles())}
	for v, route := range parsed.Routes {
		if v >= instance.NumVehicles() {
			return solution.Description{}, fmt.Errorf("sintef: route %d exceeds fleet size %d", v+1, instance.NumVehicles())
		}
		nodeIDs := make([]int, len(route))
		for i, oid := range route {
			id, ok := byOriginalID[oid]
			if !ok {
				return solution.Description{}, fmt.Errorf("sintef: route %d: no request node with original id %d", v+1, oid)
			}
			nodeIDs[i] = id
		}
		desc.Routes[v] = nodeIDs
	}

	assigned := make(map[int]bool)
	for _, route := range desc.Routes {
		for _, id := range route {
			assigned[id] = true
		}
	}
	for r := 0; r < instance.NumRequests; r++ {
		p := instance.PickupIDOfRequest(r)
		if !assigned[p] {
			desc.Bank = append(desc.Bank, p)
		}
	}
	return desc, nil
}
