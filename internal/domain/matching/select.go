package matching

import (
	"fmt"
	"math"
	"sort"

	"github.com/forPelevin/brollplan/internal/types"
)

const (
	DefaultSimilarityThreshold = 0.72
	DefaultMinInsertions       = 3
	DefaultMaxInsertions       = 6

	// MaxInsertionsLimit bounds both min and max insertions at the request layer.
	MaxInsertionsLimit = 20

	strictGapSec          = 5.0
	relaxedGapSec         = 3.0
	maxUsesPerClip        = 2
	initialLastInsert     = -10.0
	roundTimeDigits       = 2
	roundConfidenceDigits = 3
)

type Config struct {
	SimilarityThreshold float64 `json:"similarity_threshold"`
	MinInsertions       int     `json:"min_insertions"`
	MaxInsertions       int     `json:"max_insertions"`
}

func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: DefaultSimilarityThreshold,
		MinInsertions:       DefaultMinInsertions,
		MaxInsertions:       DefaultMaxInsertions,
	}
}

// Validate applies the request-layer bounds. The selector itself trusts its config.
func (c Config) Validate() error {
	if math.IsNaN(c.SimilarityThreshold) || c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be within [0, 1], got %v", c.SimilarityThreshold)
	}
	if c.MinInsertions < 0 || c.MinInsertions > MaxInsertionsLimit {
		return fmt.Errorf("min_insertions must be within [0, %d], got %d", MaxInsertionsLimit, c.MinInsertions)
	}
	if c.MaxInsertions < 1 || c.MaxInsertions > MaxInsertionsLimit {
		return fmt.Errorf("max_insertions must be within [1, %d], got %d", MaxInsertionsLimit, c.MaxInsertions)
	}
	if c.MinInsertions > c.MaxInsertions {
		return fmt.Errorf("min_insertions (%d) must be <= max_insertions (%d)", c.MinInsertions, c.MaxInsertions)
	}
	return nil
}

// Candidates lists every pair at or above threshold, sorted by similarity
// descending. Equal similarities keep enumeration order (segment, then clip).
func Candidates(m Matrix, segs []types.Segment, clips []types.ClipDescription, threshold float64) []types.Candidate {
	var out []types.Candidate
	for si, s := range segs {
		if si >= len(m) {
			break
		}
		for ci, c := range clips {
			if ci >= len(m[si]) {
				break
			}
			sim := m[si][ci]
			if sim < threshold {
				continue
			}
			out = append(out, types.Candidate{
				SegmentIndex:    si,
				ClipIndex:       ci,
				ClipID:          c.ClipID,
				Similarity:      sim,
				StartTime:       s.StartTime,
				EndTime:         s.EndTime,
				SegmentText:     s.Text,
				ClipDescription: c.Description,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	return out
}

// selection is the mutable acceptance state of one Select call.
type selection struct {
	accepted     []types.Candidate
	usedSegments map[int]struct{}
	clipUses     map[string]int
	lastStart    float64
}

func newSelection() *selection {
	return &selection{
		usedSegments: make(map[int]struct{}),
		clipUses:     make(map[string]int),
		lastStart:    initialLastInsert,
	}
}

func (s *selection) admits(c types.Candidate, gap float64) bool {
	if _, used := s.usedSegments[c.SegmentIndex]; used {
		return false
	}
	if s.clipUses[c.ClipID] >= maxUsesPerClip {
		return false
	}
	return c.StartTime-s.lastStart >= gap
}

func (s *selection) accept(c types.Candidate) {
	s.accepted = append(s.accepted, c)
	s.usedSegments[c.SegmentIndex] = struct{}{}
	s.clipUses[c.ClipID]++
	s.lastStart = c.StartTime
}

// Select runs the two-pass greedy selection over sorted candidates and
// returns the accepted ones in chronological order.
func Select(sorted []types.Candidate, cfg Config) []types.Candidate {
	st := newSelection()

	// pass 1: strict spacing
	for _, c := range sorted {
		if len(st.accepted) >= cfg.MaxInsertions {
			break
		}
		if st.admits(c, strictGapSec) {
			st.accept(c)
		}
	}

	// pass 2: relaxed spacing, only to reach the minimum
	if len(st.accepted) < cfg.MinInsertions {
		for _, c := range sorted {
			if len(st.accepted) >= cfg.MinInsertions || len(st.accepted) >= cfg.MaxInsertions {
				break
			}
			if st.admits(c, relaxedGapSec) {
				st.accept(c)
			}
		}
	}

	out := st.accepted
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
