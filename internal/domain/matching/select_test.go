package matching

import (
	"math"
	"reflect"
	"testing"

	"github.com/forPelevin/brollplan/internal/types"
)

// evenSegments returns n segments of the given length laid end to end from 0.
func evenSegments(n int, length float64) []types.Segment {
	out := make([]types.Segment, n)
	for i := range out {
		out[i] = types.Segment{StartTime: float64(i) * length, EndTime: float64(i+1) * length, Text: "s"}
	}
	return out
}

func clipList(ids ...string) []types.ClipDescription {
	out := make([]types.ClipDescription, len(ids))
	for i, id := range ids {
		out[i] = types.ClipDescription{ClipID: id, Description: id}
	}
	return out
}

func uniformMatrix(rows, cols int, v float64) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = v
		}
	}
	return m
}

func TestCandidates_ThresholdAndStableOrder(t *testing.T) {
	segs := evenSegments(3, 10)
	clips := clipList("a", "b")
	m := Matrix{
		{0.80, 0.90},
		{0.90, 0.71},
		{0.72, 0.80},
	}
	got := Candidates(m, segs, clips, 0.72)

	type key struct {
		seg  int
		clip string
	}
	var order []key
	for _, c := range got {
		order = append(order, key{c.SegmentIndex, c.ClipID})
	}
	want := []key{{0, "b"}, {1, "a"}, {0, "a"}, {2, "b"}, {2, "a"}}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
}

func TestSelect_StrictSpacingAndMax(t *testing.T) {
	// 1s segments, one clip per segment, similarity decreasing with time.
	segs := evenSegments(40, 1)
	ids := make([]string, 40)
	m := make(Matrix, 40)
	for i := range ids {
		ids[i] = string(rune('A' + i%26)) + string(rune('a'+i/26))
	}
	clips := clipList(ids...)
	for i := range m {
		m[i] = make([]float64, 40)
		m[i][i] = 0.99 - float64(i)*0.001
	}

	cfg := Config{SimilarityThreshold: 0.72, MinInsertions: 3, MaxInsertions: 6}
	got := Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg)
	if len(got) != 6 {
		t.Fatalf("expected max 6 insertions, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if d := got[i].StartTime - got[i-1].StartTime; d < strictGapSec {
			t.Fatalf("pass-1 insertions %v and %v only %.2fs apart", got[i-1].StartTime, got[i].StartTime, d)
		}
	}
	wantStarts := []float64{0, 5, 10, 15, 20, 25}
	for i, c := range got {
		if c.StartTime != wantStarts[i] {
			t.Fatalf("start[%d] = %v, want %v", i, c.StartTime, wantStarts[i])
		}
	}
}

func TestSelect_ReuseCapAcrossSegments(t *testing.T) {
	segs := evenSegments(10, 6)
	clips := clipList("only")
	m := uniformMatrix(10, 1, 0.95)

	cfg := Config{SimilarityThreshold: 0.5, MinInsertions: 5, MaxInsertions: 6}
	got := Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg)
	if len(got) != maxUsesPerClip {
		t.Fatalf("expected the single clip to be used %d times, got %d", maxUsesPerClip, len(got))
	}
	if got[0].SegmentIndex == got[1].SegmentIndex {
		t.Fatalf("a segment received two cutaways")
	}
}

func TestSelect_RelaxedPassKeepsLastStart(t *testing.T) {
	// Segments every 4s: strict pass can take 0, 8, 16; relaxed pass adds 4s gaps.
	segs := evenSegments(5, 4)
	clips := clipList("a", "b", "c")
	m := Matrix{
		{0.95, 0, 0},
		{0, 0.80, 0},
		{0, 0, 0.90},
		{0.78, 0, 0},
		{0, 0.85, 0},
	}
	cfg := Config{SimilarityThreshold: 0.72, MinInsertions: 4, MaxInsertions: 6}
	got := Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg)

	// sorted: s0(.95) s2(.90) s4(.85) s1(.80) s3(.78)
	// pass 1: s0@0, s2@8, s4@16 accepted (last=16)
	// pass 2: s1@4 and s3@12 are before last, blocked by the carried-over last start.
	var starts []float64
	for _, c := range got {
		starts = append(starts, c.StartTime)
	}
	if !reflect.DeepEqual(starts, []float64{0, 8, 16}) {
		t.Fatalf("starts = %v, want [0 8 16]", starts)
	}
}

func TestSelect_RelaxedPassAcceptsThreeSecondGap(t *testing.T) {
	segs := []types.Segment{
		{StartTime: 0, EndTime: 3, Text: "a"},
		{StartTime: 3.5, EndTime: 7, Text: "b"},
		{StartTime: 7, EndTime: 10, Text: "c"},
	}
	clips := clipList("x", "y", "z")
	m := Matrix{
		{0.95, 0, 0},
		{0, 0.90, 0},
		{0, 0, 0.80},
	}
	cfg := Config{SimilarityThreshold: 0.72, MinInsertions: 3, MaxInsertions: 6}
	got := Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg)

	// pass 1: 0 accepted; 3.5 blocked (<5); 7 accepted (last=7).
	// pass 2: 3.5 blocked (3.5-7 < 3). Minimum cannot be reached.
	if len(got) != 2 {
		t.Fatalf("expected 2 insertions, got %d", len(got))
	}

	segs[2].StartTime, segs[2].EndTime = 6.6, 10
	got = Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg)
	// pass 1: 0 accepted; 3.5 blocked; 6.6 accepted (6.6 >= 5). pass 2 again blocked.
	if len(got) != 2 {
		t.Fatalf("expected 2 insertions, got %d", len(got))
	}

	m = Matrix{
		{0.95, 0, 0},
		{0, 0.80, 0},
		{0, 0, 0.90},
	}
	segs = []types.Segment{
		{StartTime: 0, EndTime: 3, Text: "a"},
		{StartTime: 9, EndTime: 12, Text: "b"},
		{StartTime: 5.5, EndTime: 9, Text: "c"},
	}
	got = Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg)
	// sorted: s0@0, s2@5.5, s1@9. pass 1: 0, 5.5 (gap 5.5), 9 blocked (gap 3.5).
	// pass 2: 9 accepted (gap 3.5 >= 3).
	var starts []float64
	for _, c := range got {
		starts = append(starts, c.StartTime)
	}
	if !reflect.DeepEqual(starts, []float64{0, 5.5, 9}) {
		t.Fatalf("starts = %v, want [0 5.5 9]", starts)
	}
}

func TestSelect_TwoCloseCandidatesMinOne(t *testing.T) {
	segs := []types.Segment{
		{StartTime: 10, EndTime: 12, Text: "a"},
		{StartTime: 12, EndTime: 14, Text: "b"},
	}
	clips := clipList("x")
	m := Matrix{{0.80}, {0.90}}
	cfg := Config{SimilarityThreshold: 0.72, MinInsertions: 1, MaxInsertions: 6}
	got := Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg)
	if len(got) != 1 {
		t.Fatalf("expected 1 insertion, got %d", len(got))
	}
	if got[0].SegmentIndex != 1 {
		t.Fatalf("expected the higher-similarity candidate, got segment %d", got[0].SegmentIndex)
	}
}

func TestSelect_NeverExceedsMaxEvenWhenMinIsHigher(t *testing.T) {
	segs := evenSegments(10, 1)
	clips := clipList("a", "b", "c", "d", "e", "f")
	m := uniformMatrix(10, 6, 0.9)
	cfg := Config{SimilarityThreshold: 0.72, MinInsertions: 8, MaxInsertions: 2}
	got := Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg)
	if len(got) > cfg.MaxInsertions {
		t.Fatalf("got %d insertions, max is %d", len(got), cfg.MaxInsertions)
	}
}

func TestSelect_Deterministic(t *testing.T) {
	segs := evenSegments(20, 2.5)
	clips := clipList("a", "b", "c")
	m := uniformMatrix(20, 3, 0.8)
	cfg := DefaultConfig()

	first := Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg)
	for i := 0; i < 20; i++ {
		again := Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%v\n%v", i, first, again)
		}
	}
	// ties resolve by segment then clip; the clip cap forces rotation.
	if first[0].ClipID != "a" || first[0].StartTime != 0 {
		t.Fatalf("unexpected first pick: %+v", first[0])
	}
	uses := map[string]int{}
	for _, c := range first {
		uses[c.ClipID]++
		if uses[c.ClipID] > maxUsesPerClip {
			t.Fatalf("clip %s used %d times", c.ClipID, uses[c.ClipID])
		}
	}
}

func TestSelect_NothingAboveThreshold(t *testing.T) {
	segs := evenSegments(10, 4)
	clips := clipList("a")
	m := uniformMatrix(10, 1, 0.5)
	cfg := Config{SimilarityThreshold: 0.99, MinInsertions: 3, MaxInsertions: 6}
	if got := Select(Candidates(m, segs, clips, cfg.SimilarityThreshold), cfg); len(got) != 0 {
		t.Fatalf("expected no insertions, got %d", len(got))
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"zero min", Config{SimilarityThreshold: 0, MinInsertions: 0, MaxInsertions: 1}, false},
		{"upper bounds", Config{SimilarityThreshold: 1, MinInsertions: 20, MaxInsertions: 20}, false},
		{"threshold above one", Config{SimilarityThreshold: 1.01, MinInsertions: 1, MaxInsertions: 2}, true},
		{"threshold nan", Config{SimilarityThreshold: math.NaN(), MinInsertions: 1, MaxInsertions: 2}, true},
		{"negative min", Config{SimilarityThreshold: 0.5, MinInsertions: -1, MaxInsertions: 2}, true},
		{"zero max", Config{SimilarityThreshold: 0.5, MinInsertions: 0, MaxInsertions: 0}, true},
		{"max over limit", Config{SimilarityThreshold: 0.5, MinInsertions: 0, MaxInsertions: 21}, true},
		{"min above max", Config{SimilarityThreshold: 0.5, MinInsertions: 5, MaxInsertions: 4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
