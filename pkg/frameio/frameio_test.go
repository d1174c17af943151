package frameio

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framemedian/internal/models"
	"framemedian/pkg/clip"
)

// writeGray writes a uniform gray PNG of the given value
func writeGray(t *testing.T, path string, w, h int, value uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	writePNG(t, path, img)
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
}

func TestExtractNumber(t *testing.T) {
	testCases := []struct {
		filename string
		expected int
	}{
		{"frame_1.png", 1},
		{"frame_023.png", 23},
		{"img456.jpg", 456},
		{"not_a_number.png", 0},
		{"cam2_000017.png", 2000017},
	}

	for _, tc := range testCases {
		result := extractNumber(tc.filename)
		if result != tc.expected {
			t.Errorf("extractNumber(%s): expected %d, got %d", tc.filename, tc.expected, result)
		}
	}
}

func TestFromImageFormats(t *testing.T) {
	rect := image.Rect(0, 0, 3, 2)

	gray := image.NewGray(rect)
	gray.SetGray(2, 1, color.Gray{Y: 200})
	f := FromImage(gray)
	assert.Equal(t, models.Gray8, f.Format)
	assert.Equal(t, uint8(200), f.Planes[0].U8[1*f.Planes[0].Stride+2])

	gray16 := image.NewGray16(rect)
	gray16.SetGray16(1, 0, color.Gray16{Y: 0xabcd})
	f = FromImage(gray16)
	assert.Equal(t, models.Gray16, f.Format)
	assert.Equal(t, uint16(0xabcd), f.Planes[0].U16[1])

	rgba64 := image.NewRGBA64(rect)
	rgba64.SetRGBA64(0, 1, color.RGBA64{R: 0x1234, G: 0x5678, B: 0x9abc, A: 0xffff})
	f = FromImage(rgba64)
	assert.Equal(t, models.RGB48, f.Format)
	i := f.Planes[0].Stride
	assert.Equal(t, []uint16{0x1234, 0x5678, 0x9abc}, []uint16{f.Planes[0].U16[i], f.Planes[1].U16[i], f.Planes[2].U16[i]})

	rgba := image.NewRGBA(rect)
	rgba.SetRGBA(2, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	f = FromImage(rgba)
	assert.Equal(t, models.RGB24, f.Format)
	assert.Equal(t, []uint8{10, 20, 30}, []uint8{f.Planes[0].U8[2], f.Planes[1].U8[2], f.Planes[2].U8[2]})
}

func TestFromImageOffsetBounds(t *testing.T) {
	full := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range full.Pix {
		full.Pix[i] = uint8(i)
	}
	sub := full.SubImage(image.Rect(1, 1, 3, 3))

	f := FromImage(sub)
	require.Equal(t, 2, f.Width)
	assert.Equal(t, []uint8{5, 6}, f.Planes[0].U8[0:2])
	assert.Equal(t, []uint8{9, 10}, f.Planes[0].U8[f.Planes[0].Stride:f.Planes[0].Stride+2])
}

func TestToImageRoundTrip(t *testing.T) {
	rect := image.Rect(0, 0, 4, 3)
	images := []image.Image{image.NewGray(rect), image.NewGray16(rect), image.NewRGBA(rect), image.NewRGBA64(rect)}
	for k, img := range images {
		for y := 0; y < 3; y++ {
			for x := 0; x < 4; x++ {
				v := uint8(k*50 + x*20 + y*7)
				img.(interface{ Set(x, y int, c color.Color) }).Set(x, y, color.RGBA{R: v, G: v / 2, B: 255 - v, A: 255})
			}
		}
	}

	for _, img := range images {
		f := FromImage(img)
		back, err := ToImage(f)
		require.NoError(t, err, f.Format.Name)
		again := FromImage(back)
		assert.Equal(t, f.Format, again.Format)
		assert.Equal(t, f.Planes, again.Planes, f.Format.Name)
	}
}

func TestToImageScalesDeepFormats(t *testing.T) {
	f := models.NewFrame(models.YUV420P10, 2, 2)
	_, err := ToImage(f)
	assert.Error(t, err, "subsampled formats have no image form")

	gray10 := models.Format{Name: "Gray10", SampleType: models.Integer, BitsPerSample: 10, NumPlanes: 1}
	f = models.NewFrame(gray10, 1, 1)
	f.Planes[0].U16[0] = 1023
	img, err := ToImage(f)
	require.NoError(t, err)
	assert.Equal(t, color.Gray16{Y: 0xffff}, img.At(0, 0))

	f = models.NewFrame(models.GrayS, 3, 1)
	copy(f.Planes[0].F32, []float32{-0.5, 0.5, 2})
	img, err = ToImage(f)
	require.NoError(t, err)
	assert.Equal(t, color.Gray16{Y: 0}, img.At(0, 0))
	assert.Equal(t, color.Gray16{Y: 0x8000}, img.At(1, 0))
	assert.Equal(t, color.Gray16{Y: 0xffff}, img.At(2, 0))
}

func TestSaveNumbered(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	f := models.NewFrame(models.RGB24, 5, 4)
	f.Planes[1].U8[3] = 77

	path, err := SaveNumbered(dir, 12, f)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "frame_000012.png"), path)

	img, err := loadImage(path)
	require.NoError(t, err)
	assert.Equal(t, f.Planes, FromImage(img).Planes)
}

func TestOpenDirOrdersByNumber(t *testing.T) {
	dir := t.TempDir()
	writeGray(t, filepath.Join(dir, "frame_10.png"), 4, 3, 100)
	writeGray(t, filepath.Join(dir, "frame_2.png"), 4, 3, 20)
	writeGray(t, filepath.Join(dir, "frame_1.png"), 4, 3, 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644))

	s, err := OpenDir(dir)
	require.NoError(t, err)
	defer s.Close()

	info := s.Info()
	assert.Equal(t, models.Gray8, info.Format)
	assert.Equal(t, 4, info.Width)
	assert.Equal(t, 3, info.Height)
	assert.Equal(t, 3, info.NumFrames)
	assert.Equal(t, filepath.Join(dir, "frame_1.png"), s.Files()[0])

	// Frame 0 is decoded by OpenDir and must carry the same metadata as the rest
	for n, name := range []string{"frame_1.png", "frame_2.png"} {
		f, err := clip.Fetch(context.Background(), s, n)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, name), f.Props["source"], "frame %d", n)
	}

	for n, want := range map[int]uint8{0: 10, 1: 20, 2: 100, 5: 100, -1: 10} {
		f, err := clip.Fetch(context.Background(), s, n)
		require.NoError(t, err)
		assert.Equal(t, want, f.Planes[0].U8[0], "frame %d", n)
		s.Release(f)
	}
}

func TestOpenDirDecodesJPEG(t *testing.T) {
	dir := t.TempDir()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	file, err := os.Create(filepath.Join(dir, "slice_001.jpg"))
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(file, img, &jpeg.Options{Quality: 95}))
	require.NoError(t, file.Close())

	s, err := OpenDir(dir)
	require.NoError(t, err)
	assert.Equal(t, models.Gray8, s.Info().Format)
	assert.InDelta(t, 128, int(s.cache[0].Planes[0].U8[0]), 2)
}

func TestOpenDirErrors(t *testing.T) {
	_, err := OpenDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = OpenDir(t.TempDir())
	assert.ErrorContains(t, err, "no PNG or JPEG images")
}

func TestSequenceRejectsMismatchedFrames(t *testing.T) {
	dir := t.TempDir()
	writeGray(t, filepath.Join(dir, "0.png"), 4, 4, 1)
	writeGray(t, filepath.Join(dir, "1.png"), 5, 4, 1)

	s, err := OpenDir(dir)
	require.NoError(t, err)

	_, err = clip.Fetch(context.Background(), s, 1)
	assert.ErrorContains(t, err, "differs from sequence format")
}

func TestSequenceCacheAndClose(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeGray(t, filepath.Join(dir, FrameName(i)), 2, 2, uint8(i))
	}
	s, err := OpenDir(dir)
	require.NoError(t, err)
	s.SetCacheSize(2)

	for n := 0; n < 5; n++ {
		_, err := clip.Fetch(context.Background(), s, n)
		require.NoError(t, err)
	}
	s.mu.Lock()
	assert.Len(t, s.cache, 2)
	assert.Equal(t, []int{3, 4}, s.order)
	s.mu.Unlock()

	require.NoError(t, s.Close())
	_, err = clip.Fetch(context.Background(), s, 4)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenDirs(t *testing.T) {
	root := t.TempDir()
	var dirs []string
	for _, name := range []string{"a", "b", "c"} {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0755))
		writeGray(t, filepath.Join(dir, "0.png"), 2, 2, 9)
		dirs = append(dirs, dir)
	}

	clips, err := OpenDirs(context.Background(), dirs)
	require.NoError(t, err)
	require.Len(t, clips, 3)
	for i, s := range clips {
		assert.Equal(t, dirs[i], s.Dir())
	}

	_, err = OpenDirs(context.Background(), append(dirs, filepath.Join(root, "missing")))
	assert.Error(t, err)
}
