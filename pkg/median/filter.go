package median

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"framemedian/internal/logging"
	"framemedian/internal/models"
	"framemedian/pkg/align"
	"framemedian/pkg/clip"
	"framemedian/pkg/kernel"
)

// Filter is a validated job. All fields are fixed by New and only read by
// Process, so concurrent calls for different frames share no mutable state.
type Filter struct {
	id     string
	mode   Mode
	clips  []clip.Clip
	info   models.VideoInfo
	logger *slog.Logger

	// process flags planes that run the kernel; the others are copied
	process [3]bool

	radius  int
	low     int
	high    int
	sync    int
	samples int
	debug   bool

	depth int
	blend int

	kernel       kernel.Kernel
	synchronizer *align.Synchronizer
}

// New validates opts against clips and builds a filter. The filter takes
// ownership of clips: on success Close releases them, on failure New has
// already closed every one of them.
//
// TemporalMedian takes exactly one clip; the other modes take 3 to 25.
func New(clips []clip.Clip, opts Options, logger *slog.Logger) (*Filter, error) {
	f, err := newFilter(clips, opts)
	if err != nil {
		closeAll(clips)
		return nil, err
	}

	f.id = uuid.NewString()
	f.logger = logging.OrNop(logger).With("component", "median", "job", f.id, "filter", f.mode.String())
	f.logger.Debug("filter configured",
		"clips", len(f.clips),
		"depth", f.depth,
		"low", f.low,
		"high", f.high,
		"blend", f.blend,
		"sync", f.sync,
		"samples", f.samples,
		"kernel", f.kernel.String(),
		"format", f.info.Format.Name,
		"width", f.info.Width,
		"height", f.info.Height,
		"frames", f.info.NumFrames,
	)
	return f, nil
}

func newFilter(clips []clip.Clip, opts Options) (*Filter, error) {
	mode := opts.Mode
	if mode < Median || mode > MedianBlend {
		return nil, newConfigError(mode, "unknown filter mode.")
	}

	f := &Filter{
		mode:    mode,
		radius:  opts.Radius,
		low:     opts.Low,
		high:    opts.High,
		sync:    opts.Sync,
		samples: opts.Samples,
		debug:   opts.Debug,
	}

	if f.radius < MinRadius || f.radius > MaxRadius {
		return nil, newConfigError(mode, "radius must be between 1 and 12.")
	}
	if f.sync < 0 {
		return nil, newConfigError(mode, "sync must not be negative.")
	}
	if f.samples < 0 {
		return nil, newConfigError(mode, "samples must not be negative.")
	}

	numClips := len(clips)
	if mode == TemporalMedian {
		if numClips != 1 {
			return nil, newConfigError(mode, "exactly one clip is required.")
		}
		f.sync = 0
	} else {
		if f.low < 0 || f.low >= numClips || f.high < 0 || f.high >= numClips {
			return nil, newConfigError(mode, "low and high must be at least 0 and less than the number of clips.")
		}
		if f.low+f.high >= numClips {
			return nil, newConfigError(mode, "low + high must be less than the number of clips.")
		}
		if numClips < MinClips || numClips > MaxClips {
			return nil, newConfigError(mode, "The number of clips must be between 3 and 25.")
		}
		if mode == Median && numClips%2 == 0 {
			return nil, newConfigError(mode, "Need an odd number of clips.")
		}
	}
	for _, c := range clips {
		if c == nil {
			return nil, newConfigError(mode, "clip must not be nil.")
		}
	}
	f.clips = clips

	f.info = clips[0].Info()
	if !supportedFormat(f.info) {
		return nil, newConfigError(mode, "clips must be 8..16 bit integer or 32 bit float, with constant format and dimensions.")
	}
	for _, c := range clips[1:] {
		other := c.Info()
		if other.Width != f.info.Width || other.Height != f.info.Height || other.Format != f.info.Format {
			return nil, newConfigError(mode, "clips must all have the same format and dimensions.")
		}
	}

	numPlanes := f.info.Format.NumPlanes
	for i := range f.process {
		f.process[i] = len(opts.Planes) == 0
	}
	for _, plane := range opts.Planes {
		if plane < 0 || plane >= numPlanes {
			return nil, newConfigError(mode, "plane index out of range.")
		}
		if f.process[plane] {
			return nil, newConfigError(mode, "plane specified twice.")
		}
		f.process[plane] = true
	}

	switch mode {
	case TemporalMedian:
		f.low, f.high = f.radius, f.radius
		f.depth = 2*f.radius + 1
	case Median:
		f.low, f.high = (numClips-1)/2, (numClips-1)/2
		f.depth = numClips
	default:
		f.depth = numClips
	}
	f.blend = f.depth - f.low - f.high

	k, err := kernel.Select(kernel.Params{Depth: f.depth, Low: f.low, High: f.high}, f.info.Format)
	if err != nil {
		return nil, newConfigError(mode, err.Error())
	}
	f.kernel = k

	if f.sync > 0 {
		f.synchronizer = &align.Synchronizer{Radius: f.sync, Samples: f.samples}
	}
	return f, nil
}

func supportedFormat(vi models.VideoInfo) bool {
	if vi.Width == 0 || vi.Height == 0 || vi.Format.NumPlanes == 0 {
		return false
	}
	if vi.Format.NumPlanes > 3 {
		return false
	}
	switch vi.Format.SampleType {
	case models.Integer:
		return vi.Format.BitsPerSample >= 8 && vi.Format.BitsPerSample <= 16
	case models.Float:
		return vi.Format.BitsPerSample == 32
	}
	return false
}

func closeAll(clips []clip.Clip) error {
	var errs []error
	for _, c := range clips {
		if c == nil {
			continue
		}
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Close releases the clips owned by the filter
func (f *Filter) Close() error {
	return closeAll(f.clips)
}

// ID returns the job identifier attached to log records
func (f *Filter) ID() string {
	return f.id
}

// Mode returns the filter mode
func (f *Filter) Mode() Mode {
	return f.mode
}

// Info describes the output clip; it matches the first input clip
func (f *Filter) Info() models.VideoInfo {
	return f.info
}

// Depth returns the number of frames contributing to each output pixel
func (f *Filter) Depth() int {
	return f.depth
}

// Trim returns the low and high trim counts in effect
func (f *Filter) Trim() (low, high int) {
	return f.low, f.high
}

// Kernel returns the selected plane kernel
func (f *Filter) Kernel() kernel.Kernel {
	return f.kernel
}

// Synced reports whether secondary clips are realigned per frame
func (f *Filter) Synced() bool {
	return f.synchronizer != nil
}

// Processed reports whether plane p runs the kernel
func (f *Filter) Processed(p int) bool {
	return p >= 0 && p < len(f.process) && f.process[p]
}
