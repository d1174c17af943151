package kernel

import (
	"framemedian/internal/models"
)

// insertionSort sorts a short slice in place
func insertionSort[T models.Sample](data []T) {
	for i := 1; i < len(data); i++ {
		key := data[i]
		j := i - 1
		for j >= 0 && data[j] > key {
			data[j+1] = data[j]
			j--
		}
		data[j+1] = key
	}
}

// gather loads the rows of every source plane for row y
func gather[T models.Sample](rows *[MaxDepth][]T, srcs []*models.Plane, y, width int) {
	for i, p := range srcs {
		rows[i] = models.Samples[T](p)[y*p.Stride : y*p.Stride+width]
	}
}

// trimmedInt averages values[low:low+blend] with integer truncation
func trimmedInt[T uint8 | uint16](srcs []*models.Plane, dst *models.Plane, p Params) {
	depth, low, blend := p.Depth, p.Low, p.Blend()
	sortNeeded := blend != depth

	var rows [MaxDepth][]T
	var values [MaxDepth]T

	out := models.Samples[T](dst)
	for y := 0; y < dst.Height; y++ {
		gather(&rows, srcs[:depth], y, dst.Width)
		row := out[y*dst.Stride : y*dst.Stride+dst.Width]
		for x := range row {
			for i := 0; i < depth; i++ {
				values[i] = rows[i][x]
			}
			if sortNeeded {
				insertionSort(values[:depth])
			}
			var sum int64
			for _, v := range values[low : low+blend] {
				sum += int64(v)
			}
			row[x] = T(sum / int64(blend))
		}
	}
}

// trimmedFloat averages values[low:low+blend]
func trimmedFloat(srcs []*models.Plane, dst *models.Plane, p Params) {
	depth, low, blend := p.Depth, p.Low, p.Blend()
	sortNeeded := blend != depth

	var rows [MaxDepth][]float32
	var values [MaxDepth]float32

	for y := 0; y < dst.Height; y++ {
		gather(&rows, srcs[:depth], y, dst.Width)
		row := dst.F32[y*dst.Stride : y*dst.Stride+dst.Width]
		for x := range row {
			for i := 0; i < depth; i++ {
				values[i] = rows[i][x]
			}
			if sortNeeded {
				insertionSort(values[:depth])
			}
			var sum float64
			for _, v := range values[low : low+blend] {
				sum += float64(v)
			}
			row[x] = float32(sum / float64(blend))
		}
	}
}

// genericTable is indexed by pixel kind
var genericTable = [numKinds]planeFunc{
	kindU8:  trimmedInt[uint8],
	kindU16: trimmedInt[uint16],
	kindF32: trimmedFloat,
}
