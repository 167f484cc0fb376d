package timeline

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/forPelevin/brollplan/internal/types"
)

const (
	previewRunes      = 50
	summaryRunes      = 60
	defaultSourceName = "narration_video.mp4"
)

type Options struct {
	// ID is generated when empty.
	ID string
	// CreatedAt defaults to time.Now().UTC().
	CreatedAt   time.Time
	SourceVideo string
}

// Build assembles the interval sequence and wraps it into a Timeline document.
func Build(segs []types.Segment, ins []types.Insertion, opts Options) types.Timeline {
	ivs := Assemble(segs, ins)
	st := Stats(ivs, segs, ins)

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	created := opts.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	src := opts.SourceVideo
	if src == "" {
		src = defaultSourceName
	}

	return types.Timeline{
		ID:            id,
		CreatedAt:     created,
		SourceVideo:   src,
		TotalDuration: st.TotalDuration,
		Segments:      ivs,
		Statistics:    st,
		DebugInfo:     debugInfo(segs, ins, len(ivs)),
	}
}

func debugInfo(segs []types.Segment, ins []types.Insertion, intervals int) types.DebugInfo {
	d := types.DebugInfo{
		NarrationSegments: len(segs),
		MatchesFound:      len(ins),
		IntervalsCreated:  intervals,
		Segments:          make([]types.SegmentPreview, 0, len(segs)),
		Insertions:        make([]types.InsertionPreview, 0, len(ins)),
	}
	for _, s := range segs {
		d.Segments = append(d.Segments, types.SegmentPreview{
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Text:      preview(s.Text, previewRunes),
		})
	}
	for _, in := range ins {
		d.Insertions = append(d.Insertions, types.InsertionPreview{
			ClipID:     in.ClipID,
			AtTime:     in.StartSec,
			Confidence: in.Confidence,
			Reason:     in.Reason,
		})
	}
	return d
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// Summary renders a human-readable report of tl for terminal output.
func Summary(tl types.Timeline) string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)
	st := tl.Statistics

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "TIMELINE SUMMARY")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Timeline ID: %s\n", tl.ID)
	fmt.Fprintf(&b, "Created: %s\n", tl.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Source Video: %s\n", tl.SourceVideo)
	fmt.Fprintf(&b, "\nTotal Duration: %.2fs\n", tl.TotalDuration)

	fmt.Fprintln(&b, "\nStatistics:")
	fmt.Fprintf(&b, "  - Narration intervals: %d\n", st.NarrationIntervals)
	fmt.Fprintf(&b, "  - Cutaway insertions: %d\n", st.CutawayInsertions)
	fmt.Fprintf(&b, "  - Narration duration: %.2fs\n", st.NarrationDuration)
	fmt.Fprintf(&b, "  - Cutaway duration: %.2fs\n", st.CutawayDuration)
	fmt.Fprintf(&b, "  - Cutaway coverage: %.1f%%\n", st.CoveragePercent)
	fmt.Fprintf(&b, "  - Average confidence: %.3f\n", st.AverageConfidence)

	fmt.Fprintf(&b, "\nTimeline Segments (%d):\n", len(tl.Segments))
	fmt.Fprintln(&b, strings.Repeat("-", 80))
	for i, iv := range tl.Segments {
		fmt.Fprintf(&b, "%d. [%s] %.2fs - %.2fs (%.2fs)\n", i+1, strings.ToUpper(string(iv.Type)), iv.StartTime, iv.EndTime, iv.Duration)
		switch iv.Type {
		case types.IntervalNarration:
			fmt.Fprintf(&b, "   Transcript: %s\n", preview(iv.Transcript, summaryRunes))
		case types.IntervalCutaway:
			conf := 0.0
			if iv.Confidence != nil {
				conf = *iv.Confidence
			}
			fmt.Fprintf(&b, "   Clip: %s\n", iv.Source)
			fmt.Fprintf(&b, "   Reason: %s\n", iv.InsertionReason)
			fmt.Fprintf(&b, "   Confidence: %.3f\n", conf)
		}
	}
	return b.String()
}
