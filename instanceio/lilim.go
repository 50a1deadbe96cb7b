package instanceio

import (
	"io"

	"github.com/pikasonix/pdptw/model"
)

// LoadLiLim parses the classic Li & Lim PDPTW benchmark format: a header
// line of "<vehicles> <capacity> <speed>" followed by one node line per
// stop (depot first), each "id x y demand ready due service pickupId
// deliveryId" with exactly one of the last two columns nonzero (zero for
// the depot). Grounded on model.LoadRouteFromReader's decode-then-build
// shape, adapted to a line-oriented grammar instead of JSON.
func LoadLiLim(r io.Reader) (*model.Instance, error) {
	header, rows, err := readTabular(r)
	if err != nil {
		return nil, &LoadError{Format: "Li&Lim", Err: err}
	}
	instance, err := buildFromTabular("lilim", header, rows, nil)
	if err != nil {
		return nil, &LoadError{Format: "Li&Lim", Err: err}
	}
	return instance, nil
}
