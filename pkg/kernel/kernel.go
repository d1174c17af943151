package kernel

import (
	"fmt"

	"framemedian/internal/models"
)

// MaxDepth is the largest number of planes a kernel accepts
const MaxDepth = 25

// Params are the order statistic parameters of a job
type Params struct {
	// Depth is the number of contributing planes
	Depth int

	// Low and High are the number of smallest and largest values dropped
	Low  int
	High int
}

// Blend returns the number of values averaged after trimming
func (p Params) Blend() int {
	return p.Depth - p.Low - p.High
}

// Validate checks the parameters against the kernel limits
func (p Params) Validate() error {
	if p.Depth < 1 || p.Depth > MaxDepth {
		return fmt.Errorf("depth %d out of range 1..%d", p.Depth, MaxDepth)
	}
	if p.Low < 0 || p.High < 0 {
		return fmt.Errorf("trim counts must not be negative (low %d, high %d)", p.Low, p.High)
	}
	if p.Blend() < 1 {
		return fmt.Errorf("low %d + high %d leaves nothing to blend at depth %d", p.Low, p.High, p.Depth)
	}
	return nil
}

type pixelKind int

const (
	kindU8 pixelKind = iota
	kindU16
	kindF32
	numKinds
)

func (k pixelKind) String() string {
	switch k {
	case kindU8:
		return "uint8"
	case kindU16:
		return "uint16"
	case kindF32:
		return "float32"
	}
	return "unknown"
}

// kindOf maps a format to its in-memory sample type
func kindOf(f models.Format) (pixelKind, error) {
	switch {
	case f.SampleType == models.Integer && f.BitsPerSample == 8:
		return kindU8, nil
	case f.SampleType == models.Integer && f.BitsPerSample > 8 && f.BitsPerSample <= 16:
		return kindU16, nil
	case f.SampleType == models.Float && f.BitsPerSample == 32:
		return kindF32, nil
	}
	return 0, fmt.Errorf("unsupported format %s: %d bit %s", f.Name, f.BitsPerSample, f.SampleType)
}

type planeFunc func(srcs []*models.Plane, dst *models.Plane, p Params)

// Kernel processes planes with the path chosen by Select
type Kernel struct {
	params    Params
	kind      pixelKind
	optimized bool
	process   planeFunc
}

// Optimizable reports whether p is an exact median a sorting network can serve
func Optimizable(p Params) bool {
	return p.Blend() == 1 && p.Low == p.High && p.Depth <= MaxOptimized && p.Depth%2 == 1 && p.Depth >= 3
}

// Select resolves the kernel for p and format f
func Select(p Params, f models.Format) (Kernel, error) {
	if err := p.Validate(); err != nil {
		return Kernel{}, err
	}
	kind, err := kindOf(f)
	if err != nil {
		return Kernel{}, err
	}

	k := Kernel{params: p, kind: kind}
	if Optimizable(p) {
		k.optimized = true
		k.process = optimizedTable[kind][p.Depth/2-1]
	} else {
		k.process = genericTable[kind]
	}
	return k, nil
}

// Params returns the parameters the kernel was selected for
func (k Kernel) Params() Params {
	return k.params
}

// Optimized reports whether the kernel uses a sorting network
func (k Kernel) Optimized() bool {
	return k.optimized
}

// String describes the selected path
func (k Kernel) String() string {
	if k.optimized {
		return fmt.Sprintf("network median%d/%s", k.params.Depth, k.kind)
	}
	return fmt.Sprintf("generic depth=%d low=%d high=%d/%s", k.params.Depth, k.params.Low, k.params.High, k.kind)
}

// Process writes the order statistic of srcs into dst. srcs must hold at
// least Depth planes shaped like dst.
func (k Kernel) Process(srcs []*models.Plane, dst *models.Plane) {
	k.process(srcs, dst, k.params)
}
