// Package presets bundles the LNS/AGES knobs CLI users tune by hand into
// named profiles, the way data.TimePeriodMultiplier turns one small
// integer key into several derived numbers instead of asking the caller
// to supply every multiplier individually.
package presets

import (
	"fmt"
	"time"

	"github.com/pikasonix/pdptw/lns"
	"github.com/pikasonix/pdptw/numeric"
)

// Profile bundles one named combination of search parameters: how long
// and how hard the LNS loop runs, how much of the solution a destroy
// operator may remove per iteration, and whether the AGES vehicle-count
// minimization pass runs afterward.
type Profile struct {
	Name string

	RunArgs lns.RunArgs

	AcceptT0     numeric.Num
	AcceptTFinal numeric.Num

	RunAGES bool
}

// Profiles holds the built-in fast/balanced/thorough presets, keyed by
// name for `--preset` flag lookup.
var Profiles = map[string]Profile{
	"fast": {
		Name: "fast",
		RunArgs: lns.RunArgs{
			Iterations:      2000,
			TimeLimit:       5 * time.Second,
			DestroyMinFrac:  0.05,
			DestroyMaxFrac:  0.15,
			MaxNonImproving: 200,
			LocalSearchProb: 0,
		},
		AcceptT0:     numeric.FromFloat64(0.02),
		AcceptTFinal: numeric.Zero,
		RunAGES:      false,
	},
	"balanced": {
		Name: "balanced",
		RunArgs: lns.RunArgs{
			Iterations:      10000,
			TimeLimit:       30 * time.Second,
			DestroyMinFrac:  0.1,
			DestroyMaxFrac:  0.3,
			MaxNonImproving: 1000,
			LocalSearchProb: 0.1,
		},
		AcceptT0:     numeric.FromFloat64(0.05),
		AcceptTFinal: numeric.Zero,
		RunAGES:      true,
	},
	"thorough": {
		Name: "thorough",
		RunArgs: lns.RunArgs{
			Iterations:      50000,
			TimeLimit:       2 * time.Minute,
			DestroyMinFrac:  0.1,
			DestroyMaxFrac:  0.4,
			MaxNonImproving: 5000,
			LocalSearchProb: 0.25,
		},
		AcceptT0:     numeric.FromFloat64(0.08),
		AcceptTFinal: numeric.Zero,
		RunAGES:      true,
	},
}

// Default is the preset used when the caller passes no --preset flag.
const Default = "balanced"

// Lookup resolves a preset name, falling back to Default on an empty
// string and erroring on an unrecognized one so a CLI typo fails loudly
// instead of silently running with unexpected parameters.
func Lookup(name string) (Profile, error) {
	if name == "" {
		name = Default
	}
	p, ok := Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("presets: unknown preset %q (want one of fast, balanced, thorough)", name)
	}
	return p, nil
}
