// Package similarity scores how closely two frames match by sampling their
// first plane.
package similarity

import (
	"framemedian/internal/models"
)

// Func scores a pair of frames; higher is more similar
type Func func(a, b *models.Frame, samples int) float64

// Compare returns 100 minus the mean absolute difference of the sampled
// pixels of the first plane, expressed as a percentage of the sample range.
// Identical planes score 100. Both frames must share format and geometry.
//
// samples is the approximate number of pixels to read. Values below 1 or
// above the plane area select every pixel. Otherwise every row is read with a
// column step of area/samples, restarting at column 0 on each row.
func Compare(a, b *models.Frame, samples int) float64 {
	pa, pb := a.Planes[0], b.Planes[0]
	switch {
	case a.Format.SampleType == models.Float:
		return compareFloat(pa.F32, pb.F32, pa.Width, pa.Height, pa.Stride, samples)
	case a.Format.BitsPerSample > 8:
		return compareInt(pa.U16, pb.U16, pa.Width, pa.Height, pa.Stride, samples, a.Format.BitsPerSample)
	default:
		return compareInt(pa.U8, pb.U8, pa.Width, pa.Height, pa.Stride, samples, a.Format.BitsPerSample)
	}
}

// Step returns the column step used for a plane of the given size
func Step(width, height, samples int) int {
	length := width * height
	if samples < 1 || samples > length {
		samples = length
	}
	return length / samples
}

func compareInt[T uint8 | uint16](a, b []T, width, height, stride, samples, bits int) float64 {
	step := Step(width, height, samples)

	var sum int64
	points := 0
	for y := 0; y < height; y++ {
		ra := a[y*stride : y*stride+width]
		rb := b[y*stride : y*stride+width]
		for x := 0; x < width; x += step {
			d := int64(ra[x]) - int64(rb[x])
			if d < 0 {
				d = -d
			}
			sum += d
			points++
		}
	}

	pixelMax := float64(int64(1)<<bits - 1)
	return 100.0 - (100.0*float64(sum))/(pixelMax*float64(points))
}

func compareFloat(a, b []float32, width, height, stride, samples int) float64 {
	step := Step(width, height, samples)

	// float32 running sum, as other hosts compute it
	var sum float32
	points := 0
	for y := 0; y < height; y++ {
		ra := a[y*stride : y*stride+width]
		rb := b[y*stride : y*stride+width]
		for x := 0; x < width; x += step {
			d := ra[x] - rb[x]
			if d < 0 {
				d = -d
			}
			sum += d
			points++
		}
	}

	return 100.0 - (100.0*float64(sum))/float64(points)
}
