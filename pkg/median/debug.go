package median

import (
	"fmt"
	"strings"

	"framemedian/internal/models"
	"framemedian/pkg/align"
)

// Diagnostic frame properties written when Options.Debug is set
const (
	PropFrame       = "Median_frame"
	PropClips       = "Median_clips"
	PropSyncRadius  = "Median_sync_radius"
	PropSyncMetrics = "Median_sync_metrics"
)

// metricWidth bounds each clip's entry in PropSyncMetrics
const metricWidth = 27

func (f *Filter) setDebugProps(dst *models.Frame, n int, alignment []align.Result) {
	dst.Props[PropFrame] = n
	dst.Props[PropClips] = f.depth
	if f.synchronizer == nil {
		return
	}
	dst.Props[PropSyncRadius] = f.sync
	dst.Props[PropSyncMetrics] = FormatSyncMetrics(alignment)
}

// FormatSyncMetrics renders alignment results as fixed-width text: clip
// number, offset and score per secondary clip, each entry cut to 27 bytes.
func FormatSyncMetrics(alignment []align.Result) string {
	var b strings.Builder
	for i, res := range alignment {
		entry := fmt.Sprintf("%2d %+3d %f", i+2, res.Offset, res.Score)
		if len(entry) > metricWidth {
			entry = entry[:metricWidth]
		}
		b.WriteString(entry)
	}
	return b.String()
}
