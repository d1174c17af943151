package models

import (
	"fmt"
	"maps"
)

// SampleType distinguishes integer from floating point samples
type SampleType int

const (
	Integer SampleType = iota
	Float
)

// String returns the lower-case name of the sample type
func (s SampleType) String() string {
	switch s {
	case Integer:
		return "integer"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("SampleType(%d)", int(s))
	}
}

// Format describes the pixel layout shared by every frame of a clip.
// Formats are compared by value.
type Format struct {
	// Name is a human readable label such as "Gray8" or "RGB48"
	Name string

	// SampleType is Integer or Float
	SampleType SampleType

	// BitsPerSample is 8..16 for integer formats and 32 for float
	BitsPerSample int

	// NumPlanes is 1 for gray formats and 3 for colour formats
	NumPlanes int

	// SubSamplingW and SubSamplingH are log2 chroma subsampling shifts
	// applied to planes 1 and 2
	SubSamplingW int
	SubSamplingH int
}

// Common formats
var (
	Gray8     = Format{Name: "Gray8", SampleType: Integer, BitsPerSample: 8, NumPlanes: 1}
	Gray16    = Format{Name: "Gray16", SampleType: Integer, BitsPerSample: 16, NumPlanes: 1}
	GrayS     = Format{Name: "GrayS", SampleType: Float, BitsPerSample: 32, NumPlanes: 1}
	RGB24     = Format{Name: "RGB24", SampleType: Integer, BitsPerSample: 8, NumPlanes: 3}
	RGB48     = Format{Name: "RGB48", SampleType: Integer, BitsPerSample: 16, NumPlanes: 3}
	RGBS      = Format{Name: "RGBS", SampleType: Float, BitsPerSample: 32, NumPlanes: 3}
	YUV420P8  = Format{Name: "YUV420P8", SampleType: Integer, BitsPerSample: 8, NumPlanes: 3, SubSamplingW: 1, SubSamplingH: 1}
	YUV420P10 = Format{Name: "YUV420P10", SampleType: Integer, BitsPerSample: 10, NumPlanes: 3, SubSamplingW: 1, SubSamplingH: 1}
)

// PlaneSize returns the dimensions of plane p for a frame of the given size
func (f Format) PlaneSize(p, width, height int) (int, int) {
	if p == 0 {
		return width, height
	}
	return width >> f.SubSamplingW, height >> f.SubSamplingH
}

// VideoInfo describes a clip
type VideoInfo struct {
	// Format is the pixel format; the zero Format means the clip has no constant format
	Format Format

	// Width and Height are zero when the clip has variable dimensions
	Width  int
	Height int

	// NumFrames is the length of the clip
	NumFrames int
}

// Plane is one channel of a frame. Exactly one of the backing slices is set,
// chosen by the frame format: U8 for 8-bit, U16 for 9..16-bit and F32 for float.
type Plane struct {
	Width  int
	Height int

	// Stride is the distance between rows, in samples
	Stride int

	U8  []uint8
	U16 []uint16
	F32 []float32
}

// NewPlane allocates a zeroed plane for the given format
func NewPlane(f Format, width, height int) *Plane {
	p := &Plane{Width: width, Height: height, Stride: width}
	n := width * height
	switch {
	case f.SampleType == Float:
		p.F32 = make([]float32, n)
	case f.BitsPerSample > 8:
		p.U16 = make([]uint16, n)
	default:
		p.U8 = make([]uint8, n)
	}
	return p
}

// Clone returns a deep copy of the plane
func (p *Plane) Clone() *Plane {
	c := &Plane{Width: p.Width, Height: p.Height, Stride: p.Stride}
	if p.U8 != nil {
		c.U8 = append([]uint8(nil), p.U8...)
	}
	if p.U16 != nil {
		c.U16 = append([]uint16(nil), p.U16...)
	}
	if p.F32 != nil {
		c.F32 = append([]float32(nil), p.F32...)
	}
	return c
}

// Sample is the set of in-memory sample types
type Sample interface {
	uint8 | uint16 | float32
}

// Samples returns the backing slice of p typed as T. It returns nil when the
// plane does not store T samples.
func Samples[T Sample](p *Plane) []T {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return any(p.U8).([]T)
	case uint16:
		return any(p.U16).([]T)
	case float32:
		return any(p.F32).([]T)
	}
	return nil
}

// Frame is a set of planes plus a property map
type Frame struct {
	Format Format
	Width  int
	Height int
	Planes []*Plane

	// Props carries frame metadata such as diagnostic values
	Props map[string]any
}

// NewFrame allocates a frame with zeroed planes
func NewFrame(f Format, width, height int) *Frame {
	fr := &Frame{
		Format: f,
		Width:  width,
		Height: height,
		Planes: make([]*Plane, f.NumPlanes),
		Props:  make(map[string]any),
	}
	for p := range fr.Planes {
		w, h := f.PlaneSize(p, width, height)
		fr.Planes[p] = NewPlane(f, w, h)
	}
	return fr
}

// NewFrameFrom allocates a frame shaped like src. Planes whose copy flag is
// set are duplicated from src, the others are left zeroed. Properties are
// copied from src.
func NewFrameFrom(src *Frame, copyPlane []bool) *Frame {
	fr := &Frame{
		Format: src.Format,
		Width:  src.Width,
		Height: src.Height,
		Planes: make([]*Plane, len(src.Planes)),
		Props:  maps.Clone(src.Props),
	}
	if fr.Props == nil {
		fr.Props = make(map[string]any)
	}
	for p, plane := range src.Planes {
		if p < len(copyPlane) && copyPlane[p] {
			fr.Planes[p] = plane.Clone()
			continue
		}
		fr.Planes[p] = NewPlane(src.Format, plane.Width, plane.Height)
	}
	return fr
}
