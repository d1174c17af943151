package kernel

import (
	"framemedian/internal/models"
)

// MaxOptimized is the largest depth served by a sorting network
const MaxOptimized = 9

// network returns the median of the first depth lanes of v. It may reorder v.
type network[T models.Sample] func(v *[MaxOptimized]T) T

// sort2 is the single compare-and-swap primitive of every network. Equal
// values are never exchanged.
func sort2[T models.Sample](a, b *T) {
	if *b < *a {
		*a, *b = *b, *a
	}
}

func minOf[T models.Sample](a, b T) T {
	if b < a {
		return b
	}
	return a
}

func maxOf[T models.Sample](a, b T) T {
	if a < b {
		return b
	}
	return a
}

func median3[T models.Sample](v *[MaxOptimized]T) T {
	return maxOf(minOf(v[0], v[1]), minOf(maxOf(v[0], v[1]), v[2]))
}

func median5[T models.Sample](v *[MaxOptimized]T) T {
	sort2(&v[0], &v[1])
	sort2(&v[3], &v[4])
	sort2(&v[0], &v[3])
	sort2(&v[1], &v[4])
	sort2(&v[1], &v[2])
	sort2(&v[2], &v[3])
	sort2(&v[1], &v[2])
	return v[2]
}

func median7[T models.Sample](v *[MaxOptimized]T) T {
	sort2(&v[0], &v[5])
	sort2(&v[0], &v[3])
	sort2(&v[1], &v[6])
	sort2(&v[2], &v[4])
	sort2(&v[0], &v[1])
	sort2(&v[3], &v[5])
	sort2(&v[2], &v[6])
	sort2(&v[2], &v[3])
	sort2(&v[3], &v[6])
	sort2(&v[4], &v[5])
	sort2(&v[1], &v[4])
	sort2(&v[1], &v[3])
	sort2(&v[3], &v[4])
	return v[3]
}

func median9[T models.Sample](v *[MaxOptimized]T) T {
	sort2(&v[1], &v[2])
	sort2(&v[4], &v[5])
	sort2(&v[7], &v[8])
	sort2(&v[0], &v[1])
	sort2(&v[3], &v[4])
	sort2(&v[6], &v[7])
	sort2(&v[1], &v[2])
	sort2(&v[4], &v[5])
	sort2(&v[7], &v[8])
	sort2(&v[0], &v[3])
	sort2(&v[5], &v[8])
	sort2(&v[4], &v[7])
	sort2(&v[3], &v[6])
	sort2(&v[1], &v[4])
	sort2(&v[2], &v[5])
	sort2(&v[4], &v[7])
	sort2(&v[4], &v[2])
	sort2(&v[6], &v[4])
	sort2(&v[4], &v[2])
	return v[4]
}

// networkFor returns the network for depth, or nil when there is none
func networkFor[T models.Sample](depth int) network[T] {
	switch depth {
	case 3:
		return median3[T]
	case 5:
		return median5[T]
	case 7:
		return median7[T]
	case 9:
		return median9[T]
	}
	return nil
}

// networkPlane builds a plane function around net
func networkPlane[T models.Sample](net network[T], depth int) planeFunc {
	return func(srcs []*models.Plane, dst *models.Plane, _ Params) {
		var rows [MaxOptimized][]T
		var v [MaxOptimized]T

		out := models.Samples[T](dst)
		for y := 0; y < dst.Height; y++ {
			for i := 0; i < depth; i++ {
				p := srcs[i]
				rows[i] = models.Samples[T](p)[y*p.Stride : y*p.Stride+dst.Width]
			}
			row := out[y*dst.Stride : y*dst.Stride+dst.Width]
			for x := range row {
				for i := 0; i < depth; i++ {
					v[i] = rows[i][x]
				}
				row[x] = net(&v)
			}
		}
	}
}

func networkRow[T models.Sample]() [4]planeFunc {
	return [4]planeFunc{
		networkPlane(networkFor[T](3), 3),
		networkPlane(networkFor[T](5), 5),
		networkPlane(networkFor[T](7), 7),
		networkPlane(networkFor[T](9), 9),
	}
}

// optimizedTable is indexed by pixel kind, then by depth/2-1
var optimizedTable = [numKinds][4]planeFunc{
	kindU8:  networkRow[uint8](),
	kindU16: networkRow[uint16](),
	kindF32: networkRow[float32](),
}
