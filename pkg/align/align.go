// Package align finds, for a secondary stream, the frame offset that best
// matches a reference frame.
package align

import (
	"context"
	"fmt"

	"framemedian/internal/models"
	"framemedian/pkg/clip"
	"framemedian/pkg/similarity"
)

// Result is the chosen offset for one secondary stream
type Result struct {
	// Offset is relative to the output frame number
	Offset int

	// Score is the winning similarity, or 0 when no candidate scored above 0
	Score float64
}

// Index returns the frame referenced by the result for output frame n
func (r Result) Index(n int) int {
	return max(0, n+r.Offset)
}

// Synchronizer searches a window of offsets around the current frame
type Synchronizer struct {
	// Radius is the half-width of the search window
	Radius int

	// Samples is the similarity sample budget
	Samples int

	// Compare scores candidates; similarity.Compare when nil
	Compare similarity.Func
}

// CandidateIndices returns the frames to request for output frame n, one per
// offset from -Radius to +Radius, clamped at 0
func (s *Synchronizer) CandidateIndices(n int) []int {
	indices := make([]int, 0, 2*s.Radius+1)
	for j := -s.Radius; j <= s.Radius; j++ {
		indices = append(indices, max(0, n+j))
	}
	return indices
}

// Search scores the candidates in offset order and returns the best one.
// candidates[k] must be the request for offset k-Radius. Each candidate is
// released before the next one is awaited.
//
// A candidate replaces the current best only with a strictly greater score,
// so the most negative offset wins ties. The best score starts at 0 with
// offset 0; when no candidate scores above 0 the result keeps offset 0.
func (s *Synchronizer) Search(ctx context.Context, ref *models.Frame, candidates []*clip.Request, release func(*models.Frame)) (Result, error) {
	compare := s.Compare
	if compare == nil {
		compare = similarity.Compare
	}

	var best Result
	for k, req := range candidates {
		frame, err := req.Wait(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("sync offset %+d: %w", k-s.Radius, err)
		}
		score := compare(ref, frame, s.Samples)
		release(frame)

		if score > best.Score {
			best = Result{Offset: k - s.Radius, Score: score}
		}
	}
	return best, nil
}
