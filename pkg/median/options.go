package median

import (
	"fmt"
	"strings"
)

// Mode selects how clips are combined
type Mode int

const (
	Median Mode = iota
	TemporalMedian
	MedianBlend
)

var modeNames = [...]string{
	Median:         "Median",
	TemporalMedian: "TemporalMedian",
	MedianBlend:    "MedianBlend",
}

// String returns the filter name used as the prefix of configuration errors
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode accepts a mode name in any case
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("unknown filter mode %q (want median, temporalmedian or medianblend)", s)
}

// Limits on the options
const (
	MaxClips  = 25
	MinClips  = 3
	MaxRadius = 12
	MinRadius = 1
)

// Options are the job parameters
type Options struct {
	Mode Mode

	// Low and High are the trim counts of MedianBlend. Median checks them
	// against the clip count but derives its own, TemporalMedian derives
	// them from Radius.
	Low  int
	High int

	// Radius is the half-width of the TemporalMedian window
	Radius int

	// Sync is the half-width of the alignment search; 0 disables it.
	// TemporalMedian ignores it.
	Sync int

	// Samples is the similarity sample budget; 0 reads every pixel
	Samples int

	// Planes lists the planes to process; empty means all of them.
	// Unlisted planes are copied from the reference frame.
	Planes []int

	// Debug attaches diagnostic properties to every output frame
	Debug bool
}

// DefaultOptions returns the defaults for mode
func DefaultOptions(mode Mode) Options {
	return Options{
		Mode:    mode,
		Low:     1,
		High:    1,
		Radius:  1,
		Sync:    0,
		Samples: 4096,
	}
}
