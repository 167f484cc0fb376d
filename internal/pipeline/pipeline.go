package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/forPelevin/brollplan/internal/domain/describe"
	"github.com/forPelevin/brollplan/internal/domain/matching"
	"github.com/forPelevin/brollplan/internal/errs"
	"github.com/forPelevin/brollplan/internal/platform/logger"
	"github.com/forPelevin/brollplan/internal/ports"
	"github.com/forPelevin/brollplan/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/brollplan/internal/ports/adapters/openai"
	"github.com/forPelevin/brollplan/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/brollplan/internal/types"
	"github.com/forPelevin/brollplan/internal/usecase"
)

const (
	TranscriberOpenAI     = "openai"
	TranscriberWhisperCpp = "whispercpp"

	timelineFile   = "timeline.json"
	transcriptFile = "transcript.json"
	renderFile     = "final.mp4"
)

// Providers holds the credentials and binaries shared by every command.
type Providers struct {
	FFmpegPath  string
	FFprobePath string

	// Transcriber is "openai" (default) or "whispercpp".
	Transcriber  string
	WhisperBin   string
	WhisperModel string

	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAIAllowedHosts    []string
	OpenAIEmbeddingModel  string
	OpenAITranscribeModel string
}

func (p Providers) validate(needASR bool) error {
	if strings.TrimSpace(p.OpenAIAPIKey) == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if err := openai.ValidateBaseURL(p.OpenAIBaseURL, p.OpenAIAllowedHosts); err != nil {
		return err
	}
	if !needASR {
		return nil
	}
	switch p.Transcriber {
	case "", TranscriberOpenAI:
	case TranscriberWhisperCpp:
		if p.WhisperModel == "" {
			return errors.New("whisper model path is required")
		}
	default:
		return fmt.Errorf("unknown transcriber %q", p.Transcriber)
	}
	return nil
}

func (p Providers) openAIConfig() openai.Config {
	return openai.Config{
		APIKey:          p.OpenAIAPIKey,
		BaseURL:         p.OpenAIBaseURL,
		EmbeddingModel:  p.OpenAIEmbeddingModel,
		TranscribeModel: p.OpenAITranscribeModel,
	}
}

// Deps wires the adapters selected by p into usecase dependencies.
func (p Providers) Deps(log *logger.Logger) usecase.Deps {
	var asr ports.Transcriber
	if p.Transcriber == TranscriberWhisperCpp {
		asr = whispercpp.New(p.WhisperBin, p.WhisperModel)
	} else {
		asr = openai.NewTranscriber(p.openAIConfig())
	}
	return usecase.Deps{
		Video:    ffmpeg.New(p.FFmpegPath, p.FFprobePath),
		ASR:      asr,
		Embedder: openai.NewEmbedder(p.openAIConfig()),
		Log:      log,
	}
}

type Config struct {
	InputVideo   string
	ClipMetadata string
	OutDir       string
	Matching     matching.Config
	Providers    Providers
	Log          *logger.Logger

	// ClipPaths maps clip ids to media files; when set the plan is also rendered.
	ClipPaths     string
	BurnSubtitles bool
}

func (c Config) Validate() error {
	if c.InputVideo == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputVideo); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.ClipMetadata == "" {
		return errors.New("clip metadata file is required")
	}
	if _, err := os.Stat(c.ClipMetadata); err != nil {
		return fmt.Errorf("stat clip metadata: %w", err)
	}
	if err := c.Matching.Validate(); err != nil {
		return err
	}
	return c.Providers.validate(true)
}

type Output struct {
	RunDir       string
	TimelinePath string
	VideoPath    string
	Timeline     types.Timeline
}

// Run plans cutaways for one narration video and writes timeline.json and
// transcript.json into a fresh run directory under OutDir.
func Run(ctx context.Context, cfg Config) (Output, error) {
	log := orNop(cfg.Log)
	uc := usecase.New(cfg.Providers.Deps(log))

	clips, err := describe.LoadFile(cfg.ClipMetadata, log)
	if err != nil {
		return Output{}, err
	}

	runDir, err := prepareRunDir(cfg.OutDir, cfg.InputVideo)
	if err != nil {
		return Output{}, err
	}
	log.Info("output run dir", "dir", runDir)

	res, err := uc.Generate(ctx, usecase.Input{
		VideoPath: cfg.InputVideo,
		Clips:     clips,
		Matching:  cfg.Matching,
	})
	if err != nil {
		return Output{}, err
	}

	out := Output{RunDir: runDir, Timeline: res.Timeline}
	if out.TimelinePath, err = writeJSON(runDir, timelineFile, res.Timeline); err != nil {
		return Output{}, err
	}
	if _, err := writeJSON(runDir, transcriptFile, res.Transcript); err != nil {
		return Output{}, err
	}
	log.Info("timeline written", "path", out.TimelinePath, "insertions", res.Timeline.Statistics.CutawayInsertions)

	if cfg.ClipPaths == "" {
		return out, nil
	}
	paths, err := LoadClipPaths(cfg.ClipPaths)
	if err != nil {
		return Output{}, err
	}
	rin := usecase.RenderInput{
		NarrationVideo: cfg.InputVideo,
		Timeline:       res.Timeline,
		ClipPaths:      paths,
		OutVideo:       filepath.Join(runDir, renderFile),
	}
	if cfg.BurnSubtitles {
		rin.Segments = res.Transcript.Segments
	}
	if err := uc.Render(ctx, rin); err != nil {
		return Output{}, err
	}
	out.VideoPath = rin.OutVideo
	log.Info("video rendered", "path", out.VideoPath)
	return out, nil
}

type PlanConfig struct {
	Transcript   string
	ClipMetadata string
	OutDir       string
	Matching     matching.Config
	Providers    Providers
	Log          *logger.Logger
}

func (c PlanConfig) Validate() error {
	if c.Transcript == "" || c.ClipMetadata == "" {
		return errors.New("transcript and clip metadata files are required")
	}
	if err := c.Matching.Validate(); err != nil {
		return err
	}
	return c.Providers.validate(false)
}

// Plan builds a timeline from an existing transcript file, skipping audio
// extraction and transcription.
func Plan(ctx context.Context, cfg PlanConfig) (Output, error) {
	log := orNop(cfg.Log)
	tr, err := LoadTranscript(cfg.Transcript)
	if err != nil {
		return Output{}, err
	}
	clips, err := describe.LoadFile(cfg.ClipMetadata, log)
	if err != nil {
		return Output{}, err
	}

	uc := usecase.New(cfg.Providers.Deps(log))
	source := tr.VideoPath
	if source != "" {
		source = filepath.Base(source)
	}
	tl, err := uc.Plan(ctx, usecase.PlanInput{
		Segments:   tr.Segments,
		Clips:      clips,
		Matching:   cfg.Matching,
		SourceName: source,
	})
	if err != nil {
		return Output{}, err
	}

	runDir, err := prepareRunDir(cfg.OutDir, cfg.Transcript)
	if err != nil {
		return Output{}, err
	}
	p, err := writeJSON(runDir, timelineFile, tl)
	if err != nil {
		return Output{}, err
	}
	log.Info("timeline written", "path", p, "insertions", tl.Statistics.CutawayInsertions)
	return Output{RunDir: runDir, TimelinePath: p, Timeline: tl}, nil
}

type RenderConfig struct {
	Timeline       string
	NarrationVideo string
	ClipPaths      string
	OutVideo       string
	// Transcript, when set, is burned in as captions.
	Transcript string
	Providers  Providers
	Log        *logger.Logger
}

// Render composites an existing timeline.json over the narration video.
func Render(ctx context.Context, cfg RenderConfig) error {
	log := orNop(cfg.Log)
	raw, err := os.ReadFile(cfg.Timeline)
	if err != nil {
		return errs.E(errs.KindInput, "read timeline", err)
	}
	var tl types.Timeline
	if err := json.Unmarshal(raw, &tl); err != nil {
		return errs.E(errs.KindInput, "parse timeline", err)
	}
	paths, err := LoadClipPaths(cfg.ClipPaths)
	if err != nil {
		return err
	}

	var segs []types.Segment
	if cfg.Transcript != "" {
		tr, err := LoadTranscript(cfg.Transcript)
		if err != nil {
			return err
		}
		segs = tr.Segments
	}

	// rendering needs no provider credentials
	uc := usecase.New(usecase.Deps{Video: ffmpeg.New(cfg.Providers.FFmpegPath, cfg.Providers.FFprobePath), Log: log})
	return uc.Render(ctx, usecase.RenderInput{
		NarrationVideo: cfg.NarrationVideo,
		Timeline:       tl,
		ClipPaths:      paths,
		OutVideo:       cfg.OutVideo,
		Segments:       segs,
	})
}

func prepareRunDir(outRoot, input string) (string, error) {
	if outRoot == "" {
		outRoot = "out"
	}
	dir := buildRunOutDir(outRoot, input, time.Now().UTC())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(dir, name string, v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

func buildRunOutDir(outRoot, input string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", input, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

func orNop(l *logger.Logger) *logger.Logger {
	if l == nil {
		return logger.Nop()
	}
	return l
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Transcriber = (*whispercpp.Adapter)(nil)
var _ ports.Transcriber = (*openai.Transcriber)(nil)
var _ ports.Embedder = (*openai.Embedder)(nil)
