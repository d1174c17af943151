package median

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Render computes frames first..last with up to workers concurrent calls to
// Process and hands each result to sink as soon as it is ready, so frames
// may arrive out of order and sink may be called concurrently. A negative
// last means the final frame of the clip; workers below 1 means one per CPU.
// The first error stops the remaining work.
func (f *Filter) Render(ctx context.Context, first, last, workers int, sink func(Output) error) error {
	numFrames := f.info.NumFrames
	if last < 0 || last >= numFrames {
		last = numFrames - 1
	}
	if first < 0 || first > last {
		return fmt.Errorf("%s: invalid frame range %d..%d for %d frames", f.mode, first, last, numFrames)
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	start := time.Now()
	f.logger.Info("rendering", "first", first, "last", last, "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for n := first; n <= last; n++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out, err := f.Process(gctx, n)
			if err != nil {
				return err
			}
			return sink(out)
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		f.logger.Error("render failed", "error", err)
		return err
	}

	f.logger.Info("render complete", "frames", last-first+1, "elapsed", time.Since(start))
	return nil
}
