// Package clip defines how the filter talks to the host that owns frames.
//
// Frame access is split in two phases. Request declares that a frame will be
// needed and returns immediately; Wait on the returned handle blocks until the
// host has produced the frame. Issuing every request before waiting on any of
// them lets the host overlap the work. Each successful Wait borrows one
// reference that must be handed back with Release.
package clip

import (
	"context"
	"fmt"

	"framemedian/internal/models"
)

// Clip is a stream of frames owned by the host
type Clip interface {
	// Info describes the clip format, dimensions and length
	Info() models.VideoInfo

	// Request declares interest in frame n and never blocks
	Request(n int) *Request

	// Release returns a frame obtained from a Request
	Release(f *models.Frame)

	// Close drops the stream handle
	Close() error
}

// Request is a pending frame
type Request struct {
	clip  string
	index int
	done  chan struct{}
	frame *models.Frame
	err   error

	borrow func(*models.Frame)
}

// NewRequest starts produce in its own goroutine and returns a handle to its result
func NewRequest(name string, index int, produce func() (*models.Frame, error)) *Request {
	r := &Request{clip: name, index: index, done: make(chan struct{})}
	go func() {
		defer close(r.done)
		r.frame, r.err = produce()
	}()
	return r
}

// Resolved returns a request that is already settled
func Resolved(name string, index int, frame *models.Frame, err error) *Request {
	r := &Request{clip: name, index: index, done: make(chan struct{}), frame: frame, err: err}
	close(r.done)
	return r
}

// WithBorrow registers fn to run on every successful Wait. Hosts use it to
// count references; it must be called before the request is handed out.
func (r *Request) WithBorrow(fn func(*models.Frame)) *Request {
	r.borrow = fn
	return r
}

// Index returns the frame number the request was issued for
func (r *Request) Index() int {
	return r.index
}

// Wait blocks until the frame is available or ctx is done
func (r *Request) Wait(ctx context.Context) (*models.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case <-r.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if r.err != nil {
		return nil, fmt.Errorf("%s: frame %d: %w", r.clip, r.index, r.err)
	}
	if r.borrow != nil {
		r.borrow(r.frame)
	}
	return r.frame, nil
}

// Fetch requests frame n from c and waits for it
func Fetch(ctx context.Context, c Clip, n int) (*models.Frame, error) {
	return c.Request(n).Wait(ctx)
}

// ClampIndex limits n to the valid frame range of a clip with numFrames frames
func ClampIndex(n, numFrames int) int {
	if n >= numFrames {
		n = numFrames - 1
	}
	if n < 0 {
		n = 0
	}
	return n
}
