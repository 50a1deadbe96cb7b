package instanceio

import (
	"io"

	"github.com/pikasonix/pdptw/model"
)

// LoadSartoriBuriol parses the Sartori-Buriol PDPTW benchmark format.
// These instances reuse the Li&Lim node-table grammar (same 9-column
// layout) but are generated at much larger scale with a correspondingly
// larger declared fleet, so maxVehicles lets the caller cap how many of
// the declared vehicles are actually built (nil keeps the file's count).
// No original_source reader for this format was available to ground the
// exact header dialect against; this assumes the same header/row grammar
// as Li&Lim, which is the shared grammar the Sartori-Buriol generator
// paper describes reusing (see DESIGN.md).
func LoadSartoriBuriol(r io.Reader, maxVehicles *int) (*model.Instance, error) {
	header, rows, err := readTabular(r)
	if err != nil {
		return nil, &LoadError{Format: "Sartori-Buriol", Err: err}
	}
	instance, err := buildFromTabular("sartori-buriol", header, rows, maxVehicles)
	if err != nil {
		return nil, &LoadError{Format: "Sartori-Buriol", Err: err}
	}
	return instance, nil
}
