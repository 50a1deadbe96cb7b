// Command recompute_distances rewrites an NYC-format PDPTW instance
// file's travel_matrix field from its nodes' x/y coordinates, for when a
// node has been added or moved by hand and the matrix needs to be
// regenerated to match (instanceio.LoadNYCJSON does not detect a stale
// matrix, it just builds an instance with wrong distances). Coordinates
// are taken as Euclidean plane units, matching travel.NewDenseFromCoords's
// convention for every other instance format in this codebase; pass
// -haversine to instead treat x/y as lon/lat degrees.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
)

type node struct {
	GID     int     `json:"gid"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Demand  int     `json:"demand"`
	Ready   float64 `json:"ready"`
	Due     float64 `json:"due"`
	Service float64 `json:"service"`
	Type    string  `json:"type"`
}

type vehicle struct {
	Capacity    int     `json:"capacity"`
	ShiftLength float64 `json:"shift_length"`
	DepotX      float64 `json:"depot_x"`
	DepotY      float64 `json:"depot_y"`
}

type instanceFile struct {
	Name         string      `json:"name"`
	Vehicles     []vehicle   `json:"vehicles"`
	Nodes        []node      `json:"nodes"`
	TravelMatrix [][]float64 `json:"travel_matrix"`
}

// haversine distance in km, for instances whose x/y are lon/lat degrees.
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0088 // mean Earth radius km
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

func euclidean(x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	return math.Sqrt(dx*dx + dy*dy)
}

func main() {
	useHaversine := flag.Bool("haversine", false, "treat node x/y as lon/lat degrees and compute great-circle distance in km instead of Euclidean")
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Println("usage: recompute_distances [-haversine] <nyc-instance.json>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var in instanceFile
	if err := json.Unmarshal(b, &in); err != nil {
		panic(err)
	}

	dist := euclidean
	if *useHaversine {
		dist = haversine
	}

	n := len(in.Nodes)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			if i == j {
				continue
			}
			matrix[i][j] = math.Round(dist(in.Nodes[i].Y, in.Nodes[i].X, in.Nodes[j].Y, in.Nodes[j].X)*1000) / 1000
		}
	}
	in.TravelMatrix = matrix

	out, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		panic(err)
	}
	fmt.Printf("recomputed %dx%d travel_matrix for %s\n", n, n, path)
}
