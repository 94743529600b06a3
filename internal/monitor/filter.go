package monitor

import (
	"strings"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Filter is the device-class heuristic: a case-insensitive substring match on
// the port name. It is known to be imprecise (a port called "USB Hub Control"
// matches "usb"); the behaviour is kept because existing setups rely on it.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter lower-cases the patterns of f once so Match does not have to.
func NewFilter(f contracts.DeviceFilter) Filter {
	return Filter{include: lowerAll(f.Include), exclude: lowerAll(f.Exclude)}
}

// Match reports whether name belongs to the target device class. An empty
// include list accepts every name that is not excluded.
func (f Filter) Match(name string) bool {
	lname := strings.ToLower(name)
	for _, pat := range f.exclude {
		if strings.Contains(lname, pat) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, pat := range f.include {
		if strings.Contains(lname, pat) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
