package frameio

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"framemedian/internal/models"
	"framemedian/pkg/clip"
)

// DefaultCacheSize is the number of decoded frames a SequenceClip keeps
const DefaultCacheSize = 32

// ErrClosed is returned for requests made after Close
var ErrClosed = errors.New("sequence is closed")

// SequenceClip is a clip backed by a directory of numbered images. Frames are
// decoded on first request and kept in a bounded cache; decoded frames are
// shared between callers and must be treated as read-only.
type SequenceClip struct {
	dir   string
	files []string
	info  models.VideoInfo

	loads singleflight.Group

	mu        sync.Mutex
	cache     map[int]*models.Frame
	order     []int
	cacheSize int
	closed    bool
}

// OpenDir lists the PNG and JPEG files in dir, ordered by the number in their
// names, and decodes the first one to fix the clip format
func OpenDir(dir string) (*SequenceClip, error) {
	files, err := listImages(dir)
	if err != nil {
		return nil, err
	}

	img, err := loadImage(files[0])
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", files[0], err)
	}
	first := FromImage(img)
	first.Props["source"] = files[0]

	s := &SequenceClip{
		dir:   dir,
		files: files,
		info: models.VideoInfo{
			Format:    first.Format,
			Width:     first.Width,
			Height:    first.Height,
			NumFrames: len(files),
		},
		cache:     make(map[int]*models.Frame),
		cacheSize: DefaultCacheSize,
	}
	s.store(0, first)
	return s, nil
}

// OpenDirs opens every directory concurrently. When any of them fails the
// clips already opened are closed.
func OpenDirs(ctx context.Context, dirs []string) ([]*SequenceClip, error) {
	clips := make([]*SequenceClip, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	for i, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := OpenDir(dir)
			if err != nil {
				return err
			}
			clips[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, s := range clips {
			if s != nil {
				s.Close()
			}
		}
		return nil, err
	}
	return clips, nil
}

// SetCacheSize changes the number of decoded frames kept; values below 1 keep one
func (s *SequenceClip) SetCacheSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheSize = max(1, n)
	s.evict()
}

// Dir returns the directory the clip was opened from
func (s *SequenceClip) Dir() string {
	return s.dir
}

// Files returns the image paths in frame order
func (s *SequenceClip) Files() []string {
	return append([]string(nil), s.files...)
}

// Info implements clip.Clip
func (s *SequenceClip) Info() models.VideoInfo {
	return s.info
}

// Request implements clip.Clip. Indices outside the sequence are clamped.
func (s *SequenceClip) Request(n int) *clip.Request {
	idx := clip.ClampIndex(n, len(s.files))

	s.mu.Lock()
	closed := s.closed
	cached := s.cache[idx]
	s.mu.Unlock()

	switch {
	case closed:
		return clip.Resolved(s.dir, n, nil, ErrClosed)
	case cached != nil:
		return clip.Resolved(s.dir, n, cached, nil)
	}
	return clip.NewRequest(s.dir, n, func() (*models.Frame, error) {
		v, err, _ := s.loads.Do(strconv.Itoa(idx), func() (any, error) {
			return s.load(idx)
		})
		if err != nil {
			return nil, err
		}
		return v.(*models.Frame), nil
	})
}

// Release implements clip.Clip. Frames stay owned by the cache.
func (s *SequenceClip) Release(*models.Frame) {}

// Close implements clip.Clip and drops the cache
func (s *SequenceClip) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cache = make(map[int]*models.Frame)
	s.order = nil
	return nil
}

func (s *SequenceClip) load(idx int) (*models.Frame, error) {
	path := s.files[idx]
	img, err := loadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	f := FromImage(img)
	if f.Format != s.info.Format || f.Width != s.info.Width || f.Height != s.info.Height {
		return nil, fmt.Errorf("%s: %s %dx%d differs from sequence format %s %dx%d",
			filepath.Base(path), f.Format.Name, f.Width, f.Height,
			s.info.Format.Name, s.info.Width, s.info.Height)
	}
	f.Props["source"] = path

	s.mu.Lock()
	if !s.closed {
		s.store(idx, f)
	}
	s.mu.Unlock()
	return f, nil
}

// store caches f; callers hold mu or own s exclusively
func (s *SequenceClip) store(idx int, f *models.Frame) {
	if _, ok := s.cache[idx]; ok {
		return
	}
	s.cache[idx] = f
	s.order = append(s.order, idx)
	s.evict()
}

// evict drops the oldest entries beyond the cache size
func (s *SequenceClip) evict() {
	for len(s.order) > s.cacheSize {
		delete(s.cache, s.order[0])
		s.order = s.order[1:]
	}
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".png" || ext == ".jpg" || ext == ".jpeg" {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no PNG or JPEG images found in %s", dir)
	}

	// ReadDir sorts by name, so equal numbers keep name order
	sort.SliceStable(names, func(i, j int) bool {
		return extractNumber(names[i]) < extractNumber(names[j])
	})

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		num, err := strconv.Atoi(numStr)
		if err == nil {
			return num
		}
	}
	return 0
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	return img, nil
}
