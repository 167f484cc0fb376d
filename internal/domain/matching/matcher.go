package matching

import (
	"context"

	"github.com/forPelevin/brollplan/internal/errs"
	"github.com/forPelevin/brollplan/internal/platform/logger"
	"github.com/forPelevin/brollplan/internal/ports"
	"github.com/forPelevin/brollplan/internal/types"
)

type Matcher struct {
	engine *Engine
	cfg    Config
	log    *logger.Logger
}

func NewMatcher(emb ports.Embedder, cfg Config, log *logger.Logger) *Matcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Matcher{engine: NewEngine(emb), cfg: cfg, log: log.With("component", "matcher")}
}

// Match scores every (segment, clip) pair and returns the selected insertions
// in chronological order. No candidate above threshold yields an empty slice.
func (m *Matcher) Match(ctx context.Context, segs []types.Segment, clips []types.ClipDescription) ([]types.Insertion, error) {
	const op = "match"
	if len(segs) == 0 {
		return nil, errs.Errorf(errs.KindInput, op, "narration segments: %w", errs.ErrEmptyInput)
	}
	if len(clips) == 0 {
		return nil, errs.Errorf(errs.KindInput, op, "clip descriptions: %w", errs.ErrEmptyInput)
	}

	segTexts := make([]string, len(segs))
	for i, s := range segs {
		segTexts[i] = s.Text
	}
	clipTexts := make([]string, len(clips))
	for i, c := range clips {
		clipTexts[i] = c.Description
	}

	m.log.Debug("generating embeddings", "segments", len(segTexts), "clips", len(clipTexts))
	matrix, err := m.engine.Relevance(ctx, segTexts, clipTexts)
	if err != nil {
		return nil, err
	}

	m.log.Debug("relevance computed", "matrix", matrix.String())

	cands := Candidates(matrix, segs, clips, m.cfg.SimilarityThreshold)
	picked := Select(cands, m.cfg)
	m.log.Info("selected insertions",
		"candidates", len(cands),
		"accepted", len(picked),
		"threshold", m.cfg.SimilarityThreshold,
	)
	return ToInsertions(picked), nil
}

// ToInsertions formats accepted candidates; each cutaway spans its segment exactly.
func ToInsertions(cands []types.Candidate) []types.Insertion {
	out := make([]types.Insertion, 0, len(cands))
	for _, c := range cands {
		out = append(out, types.Insertion{
			StartSec:    round(c.StartTime, roundTimeDigits),
			DurationSec: round(c.EndTime-c.StartTime, roundTimeDigits),
			ClipID:      c.ClipID,
			Confidence:  round(c.Similarity, roundConfidenceDigits),
			Reason:      Reason(c.SegmentText, c.ClipDescription, c.Similarity),
		})
	}
	return out
}
