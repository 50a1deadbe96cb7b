package instanceio

import (
	"fmt"
	"os"

	"github.com/pikasonix/pdptw/model"
)

// LoadAuto opens path and tries Li&Lim first, falling back to
// Sartori-Buriol if that fails, mirroring io::load_instance_with_format's
// "auto" branch in the original solver. Returns which format matched.
func LoadAuto(path string) (*model.Instance, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", &LoadError{Format: "auto", Err: err}
	}
	defer f.Close()

	instance, liLimErr := LoadLiLim(f)
	if liLimErr == nil {
		return instance, "lilim", nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nil, "", &LoadError{Format: "auto", Err: fmt.Errorf("rewinding %s: %w", path, err)}
	}
	instance, sartoriErr := LoadSartoriBuriol(f, nil)
	if sartoriErr == nil {
		return instance, "sartori-buriol", nil
	}

	return nil, "", &LoadError{Format: "auto", Err: fmt.Errorf("neither Li&Lim (%v) nor Sartori-Buriol (%v) parsed %s", liLimErr, sartoriErr, path)}
}
