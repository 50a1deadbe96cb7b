// Package instanceio reads PDPTW instances from the plain-text Li&Lim and
// Sartori-Buriol benchmark formats, and from a custom NYC-style JSON
// format, building a *model.Instance the way model.LoadRouteFromReader
// decodes-then-builds a *model.Route.
package instanceio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pikasonix/pdptw/model"
	"github.com/pikasonix/pdptw/numeric"
	"github.com/pikasonix/pdptw/travel"
)

// LoadError wraps any failure to parse or assemble an instance, so callers
// (main.go) can tell a malformed input file from a downstream solver error.
type LoadError struct {
	Format string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("instanceio: loading %s instance: %v", e.Format, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// tabularRow is one data line of the Li&Lim / Sartori-Buriol node table:
// id x y demand ready due service pickupSibling deliverySibling. A nonzero
// deliverySibling marks the row as a pickup (pointing at its delivery's
// id); a nonzero pickupSibling marks it as a delivery (pointing back at
// its pickup's id). Both are zero only for the depot.
type tabularRow struct {
	id                             int
	x, y                           float64
	demand                         int
	ready, due, service            float64
	pickupSibling, deliverySibling int
}

// tabularHeader is the single header line shared by both formats:
// vehicle count, capacity, and a speed factor historically left at 1 in
// the public Li&Lim/Sartori-Buriol instance files.
type tabularHeader struct {
	vehicles int
	capacity int
	speed    float64
}

func parseTabularHeader(line string) (tabularHeader, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return tabularHeader{}, fmt.Errorf("header line %q: want at least 2 fields (vehicles, capacity)", line)
	}
	vehicles, err := strconv.Atoi(fields[0])
	if err != nil {
		return tabularHeader{}, fmt.Errorf("header vehicle count %q: %w", fields[0], err)
	}
	capacity, err := strconv.Atoi(fields[1])
	if err != nil {
		return tabularHeader{}, fmt.Errorf("header capacity %q: %w", fields[1], err)
	}
	speed := 1.0
	if len(fields) >= 3 {
		if v, err := strconv.ParseFloat(fields[2], 64); err == nil && v > 0 {
			speed = v
		}
	}
	return tabularHeader{vehicles: vehicles, capacity: capacity, speed: speed}, nil
}

func parseTabularRow(line string) (tabularRow, error) {
	fields := strings.Fields(line)
	if len(fields) < 9 {
		return tabularRow{}, fmt.Errorf("node line %q: want 9 fields, got %d", line, len(fields))
	}
	ints := make([]int, 0, 9)
	floats := make([]float64, 0, 9)
	for i, f := range fields[:9] {
		switch i {
		case 1, 2, 4, 5, 6:
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return tabularRow{}, fmt.Errorf("node line %q: field %d: %w", line, i, err)
			}
			floats = append(floats, v)
		default:
			v, err := strconv.Atoi(f)
			if err != nil {
				return tabularRow{}, fmt.Errorf("node line %q: field %d: %w", line, i, err)
			}
			ints = append(ints, v)
		}
	}
	return tabularRow{
		id:              ints[0],
		x:               floats[0],
		y:               floats[1],
		demand:          ints[1],
		ready:           floats[2],
		due:             floats[3],
		service:         floats[4],
		pickupSibling:   ints[2],
		deliverySibling: ints[3],
	}, nil
}

// readTabular parses the shared header+node-table grammar, returning the
// header and every data row in file order (row 0 is the depot).
func readTabular(r io.Reader) (tabularHeader, []tabularRow, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header tabularHeader
	haveHeader := false
	var rows []tabularRow
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !haveHeader {
			h, err := parseTabularHeader(line)
			if err != nil {
				return tabularHeader{}, nil, err
			}
			header, haveHeader = h, true
			continue
		}
		row, err := parseTabularRow(line)
		if err != nil {
			return tabularHeader{}, nil, err
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return tabularHeader{}, nil, fmt.Errorf("scanning instance: %w", err)
	}
	if !haveHeader {
		return tabularHeader{}, nil, fmt.Errorf("empty input: no header line")
	}
	if len(rows) == 0 {
		return tabularHeader{}, nil, fmt.Errorf("no node rows after header")
	}
	return header, rows, nil
}

// buildFromTabular assembles a model.Instance from a parsed header+rows,
// capping the fleet at maxVehicles when non-nil (Sartori-Buriol instances
// are sized far larger than any realistic fleet, so callers commonly want
// to solve with fewer vehicles than the file declares).
func buildFromTabular(name string, header tabularHeader, rows []tabularRow, maxVehicles *int) (*model.Instance, error) {
	depot := rows[0]
	if depot.pickupSibling != 0 || depot.deliverySibling != 0 {
		return nil, fmt.Errorf("row 0 (depot) must have no pickup/delivery sibling, got %+v", depot)
	}

	byID := make(map[int]tabularRow, len(rows))
	for _, row := range rows {
		byID[row.id] = row
	}

	numVehicles := header.vehicles
	if maxVehicles != nil && *maxVehicles < numVehicles {
		numVehicles = *maxVehicles
	}
	if numVehicles < 1 {
		return nil, fmt.Errorf("instance requires at least 1 vehicle, got %d", numVehicles)
	}

	b := model.NewBuilder(name)
	shiftLength := numeric.FromFloat64(depot.due)
	for i := 0; i < numVehicles; i++ {
		b.AddVehicle(header.capacity, shiftLength, depot.x, depot.y)
	}

	coords := make([][2]float64, 0, 2*numVehicles+2*len(rows))
	for i := 0; i < numVehicles; i++ {
		coords = append(coords, [2]float64{depot.x, depot.y}, [2]float64{depot.x, depot.y})
	}

	for _, row := range rows {
		if row.id == depot.id || row.pickupSibling != 0 {
			continue // depot, or a delivery row visited from its pickup below
		}
		if row.deliverySibling == 0 {
			return nil, fmt.Errorf("row %d is neither depot, pickup, nor delivery (siblings both zero)", row.id)
		}
		delivery, ok := byID[row.deliverySibling]
		if !ok {
			return nil, fmt.Errorf("pickup %d references missing delivery %d", row.id, row.deliverySibling)
		}
		pickupNode := model.Node{
			OriginalID: row.id,
			Type:       model.Pickup,
			X:          row.x,
			Y:          row.y,
			Demand:     row.demand,
			Ready:      numeric.FromFloat64(row.ready),
			Due:        numeric.FromFloat64(row.due),
			Service:    numeric.FromFloat64(row.service),
		}
		deliveryNode := model.Node{
			OriginalID: delivery.id,
			Type:       model.Delivery,
			X:          delivery.x,
			Y:          delivery.y,
			Demand:     delivery.demand,
			Ready:      numeric.FromFloat64(delivery.ready),
			Due:        numeric.FromFloat64(delivery.due),
			Service:    numeric.FromFloat64(delivery.service),
		}
		b.AddRequest(pickupNode, deliveryNode)
		coords = append(coords, [2]float64{row.x, row.y}, [2]float64{delivery.x, delivery.y})
	}

	instance := b.Build(travel.NewDenseFromCoords(coords))
	if err := instance.Validate(); err != nil {
		return nil, fmt.Errorf("built instance failed validation: %w", err)
	}
	return instance, nil
}
