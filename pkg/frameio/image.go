// Package frameio moves frames between models.Frame and image files. Image
// sequence directories are exposed as clips that decode frames on demand.
package frameio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"framemedian/internal/models"
)

// FromImage converts a decoded image to a frame. Gray images keep one plane,
// 16-bit colour images become RGB48 and everything else becomes RGB24.
func FromImage(img image.Image) *models.Frame {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		f := models.NewFrame(models.Gray8, width, height)
		plane := f.Planes[0]
		for y := 0; y < height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+width]
			copy(plane.U8[y*plane.Stride:], row)
		}
		return f

	case *image.Gray16:
		f := models.NewFrame(models.Gray16, width, height)
		plane := f.Planes[0]
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				i := y*src.Stride + x*2
				plane.U16[y*plane.Stride+x] = uint16(src.Pix[i])<<8 | uint16(src.Pix[i+1])
			}
		}
		return f

	case *image.RGBA64, *image.NRGBA64:
		f := models.NewFrame(models.RGB48, width, height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				i := y*f.Planes[0].Stride + x
				f.Planes[0].U16[i] = uint16(r)
				f.Planes[1].U16[i] = uint16(g)
				f.Planes[2].U16[i] = uint16(b)
			}
		}
		return f
	}

	f := models.NewFrame(models.RGB24, width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*f.Planes[0].Stride + x
			f.Planes[0].U8[i] = uint8(r >> 8)
			f.Planes[1].U8[i] = uint8(g >> 8)
			f.Planes[2].U8[i] = uint8(b >> 8)
		}
	}
	return f
}

// ToImage converts a frame to an image. Integer formats deeper than 8 bits
// and float formats are scaled to 16 bits. Subsampled formats are rejected.
func ToImage(f *models.Frame) (image.Image, error) {
	format := f.Format
	if format.SubSamplingW != 0 || format.SubSamplingH != 0 {
		return nil, fmt.Errorf("cannot convert subsampled format %s to an image", format.Name)
	}
	rect := image.Rect(0, 0, f.Width, f.Height)

	switch format.NumPlanes {
	case 1:
		if format.SampleType == models.Integer && format.BitsPerSample == 8 {
			img := image.NewGray(rect)
			plane := f.Planes[0]
			for y := 0; y < f.Height; y++ {
				copy(img.Pix[y*img.Stride:y*img.Stride+f.Width], plane.U8[y*plane.Stride:])
			}
			return img, nil
		}
		img := image.NewGray16(rect)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: sample16(f, 0, x, y)})
			}
		}
		return img, nil

	case 3:
		if format.SampleType == models.Integer && format.BitsPerSample == 8 {
			img := image.NewRGBA(rect)
			for y := 0; y < f.Height; y++ {
				for x := 0; x < f.Width; x++ {
					i := y*f.Planes[0].Stride + x
					img.SetRGBA(x, y, color.RGBA{R: f.Planes[0].U8[i], G: f.Planes[1].U8[i], B: f.Planes[2].U8[i], A: 0xff})
				}
			}
			return img, nil
		}
		img := image.NewRGBA64(rect)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetRGBA64(x, y, color.RGBA64{R: sample16(f, 0, x, y), G: sample16(f, 1, x, y), B: sample16(f, 2, x, y), A: 0xffff})
			}
		}
		return img, nil
	}
	return nil, fmt.Errorf("cannot convert %d-plane format %s to an image", format.NumPlanes, format.Name)
}

// sample16 reads one sample of plane p scaled to the full 16-bit range
func sample16(f *models.Frame, p, x, y int) uint16 {
	plane := f.Planes[p]
	i := y*plane.Stride + x
	switch {
	case plane.F32 != nil:
		v := plane.F32[i]
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 0xffff
		}
		return uint16(v*0xffff + 0.5)
	case plane.U16 != nil:
		maxValue := uint32(1)<<f.Format.BitsPerSample - 1
		return uint16(uint32(plane.U16[i]) * 0xffff / maxValue)
	default:
		return uint16(plane.U8[i]) * 0x101
	}
}

// FrameName returns the file name used for output frame n
func FrameName(n int) string {
	return fmt.Sprintf("frame_%06d.png", n)
}

// SaveFrame writes f as a PNG file
func SaveFrame(f *models.Frame, path string) error {
	img, err := ToImage(f)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("error encoding %s: %w", path, err)
	}
	return file.Close()
}

// SaveNumbered writes f into dir under the name of frame n and returns the path
func SaveNumbered(dir string, n int, f *models.Frame) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FrameName(n))
	if err := SaveFrame(f, path); err != nil {
		return "", err
	}
	return path, nil
}

// ReadFrame decodes a single PNG or JPEG file
func ReadFrame(path string) (*models.Frame, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return FromImage(img), nil
}
