package median

import (
	"fmt"
)

// ConfigError reports an invalid job setup
type ConfigError struct {
	Mode Mode
	Msg  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Mode, e.Msg)
}

func newConfigError(mode Mode, msg string) error {
	return &ConfigError{Mode: mode, Msg: msg}
}

// FrameError reports a failure to obtain an input frame while computing
// output frame N
type FrameError struct {
	Mode Mode

	// N is the output frame being computed
	N int

	// Clip is the position of the failing input clip
	Clip int

	// Index is the requested input frame, or -1 when the failure happened
	// inside the alignment search
	Index int

	Err error
}

func (e *FrameError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: output frame %d: clip %d: %v", e.Mode, e.N, e.Clip+1, e.Err)
	}
	return fmt.Sprintf("%s: output frame %d: clip %d frame %d: %v", e.Mode, e.N, e.Clip+1, e.Index, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
