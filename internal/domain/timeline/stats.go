package timeline

import "github.com/forPelevin/brollplan/internal/types"

// Stats derives totals from an assembled interval sequence. Average confidence
// is taken over the insertions handed to the assembler, including any it skipped.
func Stats(ivs []types.Interval, segs []types.Segment, ins []types.Insertion) types.Statistics {
	var st types.Statistics
	var total, narr, cut float64
	for _, iv := range ivs {
		total += iv.Duration
		switch iv.Type {
		case types.IntervalNarration:
			narr += iv.Duration
			st.NarrationIntervals++
		case types.IntervalCutaway:
			cut += iv.Duration
			st.CutawayInsertions++
		}
	}
	if len(segs) > 0 {
		st.NarrationSpan = round2(segs[len(segs)-1].EndTime)
	}
	if len(ins) > 0 {
		var sum float64
		for _, in := range ins {
			sum += in.Confidence
		}
		st.AverageConfidence = roundTo(sum/float64(len(ins)), 3)
	}
	if total > 0 {
		st.CoveragePercent = roundTo(cut/total*100, 1)
	}
	st.TotalDuration = round2(total)
	st.NarrationDuration = round2(narr)
	st.CutawayDuration = round2(cut)
	st.TotalIntervals = len(ivs)
	return st
}
