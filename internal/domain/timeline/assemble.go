package timeline

import (
	"math"
	"sort"
	"strings"

	"github.com/forPelevin/brollplan/internal/types"
)

// matchTolerance is how close a segment start must be to an insertion start
// for the segment to be reported as the cutaway's matching segment.
const matchTolerance = 0.1

// Assemble interleaves narration and cutaway intervals into one contiguous
// sequence covering [0, total], where total is the last segment's end time.
func Assemble(segs []types.Segment, ins []types.Insertion) []types.Interval {
	if len(segs) == 0 {
		return []types.Interval{}
	}
	// times are compared at 2dp so sums like 0.2+3.1 line up with segment bounds
	total := round2(segs[len(segs)-1].EndTime)

	sorted := make([]types.Insertion, len(ins))
	copy(sorted, ins)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartSec < sorted[j].StartSec })

	out := make([]types.Interval, 0, 2*len(sorted)+1)
	cursor := 0.0
	for _, in := range sorted {
		start := round2(in.StartSec)
		if start < cursor || start >= total {
			// overlaps the previous cutaway or lies past the narration
			continue
		}
		end := math.Min(round2(in.EndSec()), total)
		if end <= start {
			continue
		}
		if cursor < start {
			out = append(out, narration(segs, cursor, start))
		}
		out = append(out, cutaway(segs, in, start, end))
		cursor = end
	}
	if cursor < total {
		out = append(out, narration(segs, cursor, total))
	}
	return out
}

func narration(segs []types.Segment, from, to float64) types.Interval {
	return types.Interval{
		Type:       types.IntervalNarration,
		StartTime:  round2(from),
		EndTime:    round2(to),
		Duration:   round2(to - from),
		Source:     types.NarrationSource,
		Transcript: transcriptFor(segs, from, to),
	}
}

func cutaway(segs []types.Segment, in types.Insertion, start, end float64) types.Interval {
	conf := in.Confidence
	iv := types.Interval{
		Type:            types.IntervalCutaway,
		StartTime:       round2(start),
		EndTime:         round2(end),
		Duration:        round2(end - start),
		Source:          in.ClipID,
		InsertionReason: in.Reason,
		Confidence:      &conf,
	}
	for _, s := range segs {
		if math.Abs(s.StartTime-start) < matchTolerance {
			iv.MatchingSegment = &types.MatchingSegment{Text: s.Text, StartTime: s.StartTime, EndTime: s.EndTime}
			break
		}
	}
	return iv
}

// transcriptFor joins the text of every segment touching [from, to], bounds inclusive.
func transcriptFor(segs []types.Segment, from, to float64) string {
	var parts []string
	for _, s := range segs {
		if s.EndTime < from || s.StartTime > to {
			continue
		}
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}

func round2(v float64) float64 { return roundTo(v, 2) }

func roundTo(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
