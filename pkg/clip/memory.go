package clip

import (
	"errors"
	"fmt"
	"sync"

	"framemedian/internal/models"
)

// ErrClosed is returned for requests made after Close
var ErrClosed = errors.New("clip is closed")

// Memory is a clip backed by frames held in memory. It tracks borrowed
// references and requested indices so callers can check release discipline.
type Memory struct {
	name   string
	info   models.VideoInfo
	frames []*models.Frame

	mu          sync.Mutex
	outstanding int
	requested   []int
	failures    map[int]error
	closed      bool
}

// NewMemory builds a clip from frames. All frames must share the format and
// dimensions of the first one; the clip reports the zero Format otherwise.
func NewMemory(name string, frames []*models.Frame) *Memory {
	m := &Memory{name: name, frames: frames, failures: make(map[int]error)}
	if len(frames) == 0 {
		return m
	}
	first := frames[0]
	m.info = models.VideoInfo{
		Format:    first.Format,
		Width:     first.Width,
		Height:    first.Height,
		NumFrames: len(frames),
	}
	for _, f := range frames[1:] {
		if f.Format != first.Format || f.Width != first.Width || f.Height != first.Height {
			m.info.Format = models.Format{}
			m.info.Width, m.info.Height = 0, 0
			break
		}
	}
	return m
}

// Name returns the clip name used in error messages
func (m *Memory) Name() string {
	return m.name
}

// Info implements Clip
func (m *Memory) Info() models.VideoInfo {
	return m.info
}

// Request implements Clip. Indices outside the clip are clamped.
func (m *Memory) Request(n int) *Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requested = append(m.requested, n)
	if m.closed {
		return Resolved(m.name, n, nil, ErrClosed)
	}
	if err, ok := m.failures[n]; ok {
		return Resolved(m.name, n, nil, err)
	}
	if len(m.frames) == 0 {
		return Resolved(m.name, n, nil, fmt.Errorf("clip has no frames"))
	}
	frame := m.frames[ClampIndex(n, len(m.frames))]
	return Resolved(m.name, n, frame, nil).WithBorrow(func(*models.Frame) {
		m.mu.Lock()
		m.outstanding++
		m.mu.Unlock()
	})
}

// Release implements Clip
func (m *Memory) Release(f *models.Frame) {
	if f == nil {
		return
	}
	m.mu.Lock()
	m.outstanding--
	m.mu.Unlock()
}

// Close implements Clip
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close has been called
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Outstanding returns the number of borrowed frames not yet released
func (m *Memory) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outstanding
}

// Requested returns every index passed to Request, in call order
func (m *Memory) Requested() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.requested...)
}

// ResetRequested clears the request log
func (m *Memory) ResetRequested() {
	m.mu.Lock()
	m.requested = nil
	m.mu.Unlock()
}

// FailAt makes every later request for index n fail with err
func (m *Memory) FailAt(n int, err error) {
	m.mu.Lock()
	m.failures[n] = err
	m.mu.Unlock()
}
