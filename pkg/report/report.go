// Package report aggregates per-frame alignment results into a summary of
// how each secondary clip was synchronized.
package report

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gonum.org/v1/gonum/stat"

	"framemedian/pkg/align"
)

// Collector records alignment results. It is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	frames  int
	streams [][]align.Result
}

// NewCollector returns an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// Add records the alignment of one output frame; alignment[i] belongs to
// secondary stream i
func (c *Collector) Add(alignment []align.Result) {
	if len(alignment) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frames++
	for len(c.streams) < len(alignment) {
		c.streams = append(c.streams, nil)
	}
	for i, res := range alignment {
		c.streams[i] = append(c.streams[i], res)
	}
}

// Frames returns the number of frames recorded
func (c *Collector) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// StreamSummary describes the alignment of one secondary clip
type StreamSummary struct {
	// Clip is the 1-based position of the clip among the inputs
	Clip int

	Frames int

	MeanScore   float64
	StdDevScore float64
	MinScore    float64
	MaxScore    float64

	// Offset is the most frequent offset; ties go to the smallest magnitude
	Offset int

	// Offsets counts how often each offset was chosen
	Offsets map[int]int

	// Shifted counts frames aligned with a non-zero offset
	Shifted int
}

// Summary returns one entry per secondary clip
func (c *Collector) Summary() []StreamSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	summaries := make([]StreamSummary, 0, len(c.streams))
	for i, results := range c.streams {
		summaries = append(summaries, summarize(i+2, results))
	}
	return summaries
}

func summarize(clipNumber int, results []align.Result) StreamSummary {
	s := StreamSummary{
		Clip:     clipNumber,
		Frames:   len(results),
		MinScore: math.Inf(1),
		MaxScore: math.Inf(-1),
		Offsets:  make(map[int]int),
	}

	scores := make([]float64, len(results))
	for k, res := range results {
		scores[k] = res.Score
		s.MinScore = math.Min(s.MinScore, res.Score)
		s.MaxScore = math.Max(s.MaxScore, res.Score)
		s.Offsets[res.Offset]++
		if res.Offset != 0 {
			s.Shifted++
		}
	}
	if len(scores) == 0 {
		s.MinScore, s.MaxScore = 0, 0
		return s
	}

	s.MeanScore = stat.Mean(scores, nil)
	if len(scores) > 1 {
		s.StdDevScore = stat.StdDev(scores, nil)
	}

	best := -1
	for offset, count := range s.Offsets {
		if count > best || (count == best && preferOffset(offset, s.Offset)) {
			s.Offset, best = offset, count
		}
	}
	return s
}

// preferOffset orders offsets by magnitude, then negative first
func preferOffset(a, b int) bool {
	absA, absB := max(a, -a), max(b, -b)
	if absA != absB {
		return absA < absB
	}
	return a < b
}

// Table renders the summary as a text table
func (c *Collector) Table() string {
	summaries := c.Summary()
	headers := []string{"Clip", "Frames", "Offset", "Shifted", "Mean", "StdDev", "Min", "Max", "Offsets"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.Clip),
			fmt.Sprintf("%d", s.Frames),
			fmt.Sprintf("%+d", s.Offset),
			fmt.Sprintf("%d", s.Shifted),
			fmt.Sprintf("%.3f", s.MeanScore),
			fmt.Sprintf("%.3f", s.StdDevScore),
			fmt.Sprintf("%.3f", s.MinScore),
			fmt.Sprintf("%.3f", s.MaxScore),
			formatOffsets(s.Offsets),
		})
	}
	aligns := []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}

// formatOffsets lists offset counts in increasing offset order
func formatOffsets(counts map[int]int) string {
	offsets := make([]int, 0, len(counts))
	for offset := range counts {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)

	out := ""
	for i, offset := range offsets {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%+d:%d", offset, counts[offset])
	}
	return out
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
