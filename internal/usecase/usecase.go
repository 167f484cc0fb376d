package usecase

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/forPelevin/brollplan/internal/domain/describe"
	"github.com/forPelevin/brollplan/internal/domain/matching"
	"github.com/forPelevin/brollplan/internal/domain/subtitles"
	"github.com/forPelevin/brollplan/internal/domain/timeline"
	"github.com/forPelevin/brollplan/internal/errs"
	"github.com/forPelevin/brollplan/internal/platform/logger"
	"github.com/forPelevin/brollplan/internal/ports"
	"github.com/forPelevin/brollplan/internal/types"
)

type Deps struct {
	Video    ports.VideoTool
	ASR      ports.Transcriber
	Embedder ports.Embedder
	Log      *logger.Logger
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return Usecase{d: d}
}

type Input struct {
	VideoPath string
	// ClipMetadata is a JSON object of clip_id -> metadata. Ignored when Clips is set.
	ClipMetadata []byte
	Clips        []types.ClipDescription
	Matching     matching.Config
	// TempRoot is where the per-run work dir is created; empty means os.TempDir().
	TempRoot string
	// SourceName is recorded as the timeline's source_video; defaults to the video base name.
	SourceName string
}

type Result struct {
	Timeline   types.Timeline
	Transcript types.Transcript
	Clips      []types.ClipDescription
}

// Generate runs the whole planning flow for one narration video: audio
// extraction, transcription, clip description, matching and assembly.
// Intermediate files live in a temporary work dir removed on return.
func (u Usecase) Generate(ctx context.Context, in Input) (Result, error) {
	const op = "generate"
	if err := in.Matching.Validate(); err != nil {
		return Result{}, errs.E(errs.KindConfiguration, op, err)
	}
	clips, err := u.clips(in)
	if err != nil {
		return Result{}, err
	}

	workDir, err := os.MkdirTemp(in.TempRoot, "brollplan-*")
	if err != nil {
		return Result{}, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			u.d.Log.Warn("work dir cleanup failed", "dir", workDir, "error", rmErr)
		}
	}()

	log := u.d.Log.With("video", filepath.Base(in.VideoPath))
	wav := filepath.Join(workDir, "audio.wav")
	log.Info("extracting audio")
	if err := u.d.Video.ExtractAudio(ctx, in.VideoPath, wav); err != nil {
		return Result{}, errs.E(errs.KindCompositing, op, err)
	}

	log.Info("transcribing")
	raw, err := u.d.ASR.Transcribe(ctx, wav, workDir)
	if err != nil {
		return Result{}, errs.E(errs.KindProvider, "transcribe", err)
	}
	segs := NormalizeSegments(raw)
	if len(segs) == 0 {
		return Result{}, errs.Errorf(errs.KindInput, "transcribe", "no speech found: %w", errs.ErrEmptyInput)
	}
	log.Info("transcribed", "segments", len(segs), "duration", segs[len(segs)-1].EndTime)

	source := in.SourceName
	if source == "" {
		source = filepath.Base(in.VideoPath)
	}
	tl, err := u.Plan(ctx, PlanInput{Segments: segs, Clips: clips, Matching: in.Matching, SourceName: source})
	if err != nil {
		return Result{}, err
	}
	return Result{
		Timeline:   tl,
		Transcript: NewTranscript(in.VideoPath, segs),
		Clips:      clips,
	}, nil
}

func (u Usecase) clips(in Input) ([]types.ClipDescription, error) {
	clips := in.Clips
	if len(clips) == 0 && len(in.ClipMetadata) > 0 {
		var err error
		clips, err = describe.All(in.ClipMetadata, u.d.Log)
		if err != nil {
			return nil, err
		}
	}
	if len(clips) == 0 {
		return nil, errs.Errorf(errs.KindInput, "clips", "clip descriptions: %w", errs.ErrEmptyInput)
	}
	return clips, nil
}

type PlanInput struct {
	Segments   []types.Segment
	Clips      []types.ClipDescription
	Matching   matching.Config
	SourceName string
	// TimelineID is generated when empty.
	TimelineID string
}

// Plan matches an existing transcript against clip descriptions and builds
// the timeline. It performs no media work.
func (u Usecase) Plan(ctx context.Context, in PlanInput) (types.Timeline, error) {
	if err := in.Matching.Validate(); err != nil {
		return types.Timeline{}, errs.E(errs.KindConfiguration, "plan", err)
	}
	m := matching.NewMatcher(u.d.Embedder, in.Matching, u.d.Log)
	ins, err := m.Match(ctx, in.Segments, in.Clips)
	if err != nil {
		return types.Timeline{}, err
	}
	tl := timeline.Build(in.Segments, ins, timeline.Options{ID: in.TimelineID, SourceVideo: in.SourceName})
	u.d.Log.Info("timeline built",
		"timeline_id", tl.ID,
		"intervals", len(tl.Segments),
		"insertions", tl.Statistics.CutawayInsertions,
		"coverage_percent", tl.Statistics.CoveragePercent,
	)
	return tl, nil
}

type RenderInput struct {
	NarrationVideo string
	Timeline       types.Timeline
	ClipPaths      map[string]string
	OutVideo       string
	// Segments are burned in as captions when non-empty.
	Segments []types.Segment
	TempRoot string
}

// Render composites the planned cutaways over the narration video.
func (u Usecase) Render(ctx context.Context, in RenderInput) error {
	const op = "render"
	for _, c := range in.Timeline.Cutaways() {
		p, ok := in.ClipPaths[c.Source]
		if !ok || strings.TrimSpace(p) == "" {
			return errs.Errorf(errs.KindInput, op, "no media path for clip %q", c.Source)
		}
		if _, err := os.Stat(p); err != nil {
			return errs.E(errs.KindInput, op, err)
		}
	}

	if err := u.checkNarrationLength(ctx, in.NarrationVideo, in.Timeline.TotalDuration); err != nil {
		return err
	}

	spec := ports.RenderSpec{
		NarrationVideo: in.NarrationVideo,
		Timeline:       in.Timeline,
		ClipPaths:      in.ClipPaths,
		OutVideo:       in.OutVideo,
	}
	if len(in.Segments) > 0 {
		dir, err := os.MkdirTemp(in.TempRoot, "brollplan-subs-*")
		if err != nil {
			return fmt.Errorf("create subtitles dir: %w", err)
		}
		defer os.RemoveAll(dir)
		spec.BurnASS = filepath.Join(dir, "narration.ass")
		if err := os.WriteFile(spec.BurnASS, []byte(subtitles.RenderNarrationASS(in.Segments)), 0o644); err != nil {
			return fmt.Errorf("write subtitles: %w", err)
		}
	}

	u.d.Log.Info("rendering", "out", in.OutVideo, "cutaways", len(in.Timeline.Cutaways()), "subtitles", spec.BurnASS != "")
	if err := u.d.Video.RenderOverlay(ctx, spec); err != nil {
		return errs.E(errs.KindCompositing, op, err)
	}
	return nil
}

// durationSlack absorbs container vs. transcript rounding when comparing lengths.
const durationSlack = 0.5

// checkNarrationLength refuses to render a timeline longer than the narration video.
func (u Usecase) checkNarrationLength(ctx context.Context, video string, total float64) error {
	const op = "render"
	d, err := u.d.Video.ProbeDuration(ctx, video)
	if err != nil {
		return errs.E(errs.KindCompositing, op, err)
	}
	if got := d.Seconds(); got+durationSlack < total {
		return errs.Errorf(errs.KindInput, op, "narration video is %.2fs but the timeline covers %.2fs", got, total)
	}
	return nil
}

// NormalizeSegments trims text, drops empty segments and rounds times to 2dp.
func NormalizeSegments(in []types.Segment) []types.Segment {
	out := make([]types.Segment, 0, len(in))
	for _, s := range in {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		out = append(out, types.Segment{
			StartTime: round2(s.StartTime),
			EndTime:   round2(s.EndTime),
			Text:      text,
		})
	}
	return out
}

func NewTranscript(videoPath string, segs []types.Segment) types.Transcript {
	tr := types.Transcript{VideoPath: videoPath, Segments: segs, TotalSegments: len(segs)}
	if len(segs) > 0 {
		tr.TotalDuration = segs[len(segs)-1].EndTime
	}
	return tr
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
