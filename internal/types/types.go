package types

import "time"

// Segment is one timestamped narration utterance.
type Segment struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

type Transcript struct {
	VideoPath     string    `json:"video_path,omitempty"`
	Segments      []Segment `json:"segments"`
	TotalSegments int       `json:"total_segments"`
	TotalDuration float64   `json:"total_duration"`
}

type ClipDescription struct {
	ClipID      string `json:"clip_id"`
	Description string `json:"description"`
}

// Candidate is a pre-selection (segment, clip) pair that cleared the
// similarity threshold.
type Candidate struct {
	SegmentIndex    int
	ClipIndex       int
	ClipID          string
	Similarity      float64
	StartTime       float64
	EndTime         float64
	SegmentText     string
	ClipDescription string
}

type Insertion struct {
	StartSec    float64 `json:"start_sec"`
	DurationSec float64 `json:"duration_sec"`
	ClipID      string  `json:"clip_id"`
	Confidence  float64 `json:"confidence"`
	Reason      string  `json:"reason"`
}

func (in Insertion) EndSec() float64 { return in.StartSec + in.DurationSec }

type IntervalType string

const (
	IntervalNarration IntervalType = "narration"
	IntervalCutaway   IntervalType = "cutaway"
)

// NarrationSource is the source value of every narration interval.
const NarrationSource = "narration_video"

type MatchingSegment struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

type Interval struct {
	Type      IntervalType `json:"type"`
	StartTime float64      `json:"start_time"`
	EndTime   float64      `json:"end_time"`
	Duration  float64      `json:"duration"`
	Source    string       `json:"source"`

	// narration
	Transcript string `json:"transcript,omitempty"`

	// cutaway
	InsertionReason string           `json:"insertion_reason,omitempty"`
	Confidence      *float64         `json:"confidence,omitempty"`
	MatchingSegment *MatchingSegment `json:"matching_segment,omitempty"`
}

type Statistics struct {
	TotalDuration      float64 `json:"total_duration"`
	NarrationSpan      float64 `json:"original_narration_duration"`
	NarrationDuration  float64 `json:"narration_duration"`
	CutawayDuration    float64 `json:"broll_duration"`
	NarrationIntervals int     `json:"narration_intervals"`
	CutawayInsertions  int     `json:"broll_insertions"`
	CoveragePercent    float64 `json:"broll_coverage_percent"`
	AverageConfidence  float64 `json:"average_confidence"`
	TotalIntervals     int     `json:"total_segments"`
}

type SegmentPreview struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
}

type InsertionPreview struct {
	ClipID     string  `json:"clip_id"`
	AtTime     float64 `json:"at_time"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

type DebugInfo struct {
	NarrationSegments int                `json:"original_narration_segments"`
	MatchesFound      int                `json:"broll_matches_found"`
	IntervalsCreated  int                `json:"timeline_segments_created"`
	Segments          []SegmentPreview   `json:"narration_segments"`
	Insertions        []InsertionPreview `json:"broll_insertions"`
}

type Timeline struct {
	ID            string     `json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	SourceVideo   string     `json:"source_video"`
	TotalDuration float64    `json:"total_duration"`
	Segments      []Interval `json:"segments"`
	Statistics    Statistics `json:"statistics"`
	DebugInfo     DebugInfo  `json:"debug_info"`
}

// Cutaways returns the cutaway intervals in timeline order.
func (t Timeline) Cutaways() []Interval {
	var out []Interval
	for _, iv := range t.Segments {
		if iv.Type == IntervalCutaway {
			out = append(out, iv)
		}
	}
	return out
}
