package median

import (
	"context"

	"framemedian/internal/models"
	"framemedian/pkg/align"
	"framemedian/pkg/clip"
)

// Output is one computed frame
type Output struct {
	// N is the output frame number
	N int

	// Frame is newly allocated and owned by the caller
	Frame *models.Frame

	// Alignment holds one result per secondary clip when sync is enabled.
	// Alignment[i] belongs to clip i+1.
	Alignment []align.Result
}

// requestPlan holds the requests issued for one output frame
type requestPlan struct {
	// direct[i] is the request for contributing frame i, nil for synced
	// secondary clips
	direct []*clip.Request

	// candidates[i] are the search window requests of clip i, offset order
	candidates [][]*clip.Request
}

// borrowed tracks fetched frames and the clip each must be returned to
type borrowed struct {
	frames []*models.Frame
	owners []clip.Clip
}

func (b *borrowed) add(owner clip.Clip, f *models.Frame) {
	b.frames = append(b.frames, f)
	b.owners = append(b.owners, owner)
}

func (b *borrowed) release() {
	for i, f := range b.frames {
		b.owners[i].Release(f)
	}
	b.frames, b.owners = nil, nil
}

// RequestIndices returns, per contributing stream, the input frames
// requested for output frame n. Synced secondary clips list their whole
// search window.
func (f *Filter) RequestIndices(n int) [][]int {
	indices := make([][]int, f.depth)
	switch {
	case f.mode == TemporalMedian:
		for i := range indices {
			indices[i] = []int{max(0, n-f.radius+i)}
		}
	case f.synchronizer != nil:
		indices[0] = []int{n}
		for i := 1; i < f.depth; i++ {
			indices[i] = f.synchronizer.CandidateIndices(n)
		}
	default:
		for i := range indices {
			indices[i] = []int{n}
		}
	}
	return indices
}

// request issues every request needed for output frame n without waiting
func (f *Filter) request(n int) *requestPlan {
	indices := f.RequestIndices(n)
	plan := &requestPlan{
		direct:     make([]*clip.Request, f.depth),
		candidates: make([][]*clip.Request, f.depth),
	}
	for i, list := range indices {
		c := f.clipFor(i)
		if i > 0 && f.synchronizer != nil {
			plan.candidates[i] = make([]*clip.Request, len(list))
			for k, idx := range list {
				plan.candidates[i][k] = c.Request(idx)
			}
			continue
		}
		plan.direct[i] = c.Request(list[0])
	}
	return plan
}

// clipFor returns the clip feeding contributing stream i
func (f *Filter) clipFor(i int) clip.Clip {
	if f.mode == TemporalMedian {
		return f.clips[0]
	}
	return f.clips[i]
}

// consume waits for the planned frames in stream order, running the
// alignment search for synced clips. On error every frame obtained so far
// has been released.
func (f *Filter) consume(ctx context.Context, n int, plan *requestPlan, held *borrowed) ([]align.Result, error) {
	var alignment []align.Result
	if f.synchronizer != nil {
		alignment = make([]align.Result, 0, f.depth-1)
	}

	for i := 0; i < f.depth; i++ {
		c := f.clipFor(i)

		req := plan.direct[i]
		if req == nil {
			res, err := f.synchronizer.Search(ctx, held.frames[0], plan.candidates[i], c.Release)
			if err != nil {
				return nil, f.frameError(n, i, -1, err)
			}
			alignment = append(alignment, res)
			req = c.Request(res.Index(n))
		}

		frame, err := req.Wait(ctx)
		if err != nil {
			return nil, f.frameError(n, i, req.Index(), err)
		}
		held.add(c, frame)
	}
	return alignment, nil
}

func (f *Filter) frameError(n, stream, index int, err error) error {
	clipIdx := stream
	if f.mode == TemporalMedian {
		clipIdx = 0
	}
	return &FrameError{Mode: f.mode, N: n, Clip: clipIdx, Index: index, Err: err}
}

// Process computes output frame n. Input frames are borrowed from the clips
// for the duration of the call and always released before it returns.
func (f *Filter) Process(ctx context.Context, n int) (Output, error) {
	plan := f.request(n)

	held := &borrowed{}
	defer held.release()

	alignment, err := f.consume(ctx, n, plan, held)
	if err != nil {
		f.logger.Warn("input frame unavailable", "frame", n, "error", err)
		return Output{}, err
	}

	src := held.frames[0]
	if f.mode == TemporalMedian {
		src = held.frames[f.low]
	}

	numPlanes := f.info.Format.NumPlanes
	copyPlane := make([]bool, numPlanes)
	for p := range copyPlane {
		copyPlane[p] = !f.process[p]
	}
	dst := models.NewFrameFrom(src, copyPlane)

	srcs := make([]*models.Plane, f.depth)
	for p := 0; p < numPlanes; p++ {
		if !f.process[p] {
			continue
		}
		for i, frame := range held.frames {
			srcs[i] = frame.Planes[p]
		}
		f.kernel.Process(srcs, dst.Planes[p])
	}

	if f.debug {
		f.setDebugProps(dst, n, alignment)
	}
	return Output{N: n, Frame: dst, Alignment: alignment}, nil
}

// GetFrame computes output frame n and returns only the frame
func (f *Filter) GetFrame(ctx context.Context, n int) (*models.Frame, error) {
	out, err := f.Process(ctx, n)
	if err != nil {
		return nil, err
	}
	return out.Frame, nil
}
