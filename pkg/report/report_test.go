package report

import (
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framemedian/pkg/align"
)

func TestSummary(t *testing.T) {
	c := NewCollector()
	c.Add([]align.Result{{Offset: 1, Score: 90}, {Offset: 0, Score: 100}})
	c.Add([]align.Result{{Offset: 1, Score: 96}, {Offset: -2, Score: 80}})
	c.Add([]align.Result{{Offset: 0, Score: 99}, {Offset: 2, Score: 70}})
	c.Add(nil)

	assert.Equal(t, 3, c.Frames())
	summaries := c.Summary()
	require.Len(t, summaries, 2)

	first := summaries[0]
	assert.Equal(t, 2, first.Clip)
	assert.Equal(t, 3, first.Frames)
	assert.Equal(t, 1, first.Offset)
	assert.Equal(t, 2, first.Shifted)
	assert.InDelta(t, 95, first.MeanScore, 1e-9)
	assert.InDelta(t, math.Sqrt(21), first.StdDevScore, 1e-9)
	assert.Equal(t, 90.0, first.MinScore)
	assert.Equal(t, 99.0, first.MaxScore)
	assert.Equal(t, map[int]int{0: 1, 1: 2}, first.Offsets)

	second := summaries[1]
	assert.Equal(t, 3, second.Clip)
	assert.Equal(t, 0, second.Offset, "ties go to the smallest magnitude")
	assert.Equal(t, 2, second.Shifted)
}

func TestSummaryTieBreaksNegativeFirst(t *testing.T) {
	c := NewCollector()
	c.Add([]align.Result{{Offset: 2, Score: 50}})
	c.Add([]align.Result{{Offset: -2, Score: 50}})

	s := c.Summary()[0]
	assert.Equal(t, -2, s.Offset)
	assert.Zero(t, s.StdDevScore)
}

func TestSingleFrameHasZeroSpread(t *testing.T) {
	c := NewCollector()
	c.Add([]align.Result{{Offset: 0, Score: 42}})
	s := c.Summary()[0]
	assert.Equal(t, 42.0, s.MeanScore)
	assert.Zero(t, s.StdDevScore)
}

func TestCollectorConcurrentAdd(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add([]align.Result{{Offset: 1, Score: 100}})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Frames())
	assert.Equal(t, 50, c.Summary()[0].Frames)
}

func TestTable(t *testing.T) {
	c := NewCollector()
	c.Add([]align.Result{{Offset: -1, Score: 88.5}})
	c.Add([]align.Result{{Offset: 0, Score: 100}})

	out := c.Table()
	for _, want := range []string{"Clip", "Offsets", "StdDev", "-1:1 +0:1", "94.250", "88.500", "100.000"} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.HasPrefix(out, "╭"), "rounded style")
}
