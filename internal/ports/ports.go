package ports

import (
	"context"
	"time"

	"github.com/forPelevin/brollplan/internal/types"
)

type VideoTool interface {
	ExtractAudio(ctx context.Context, inVideo, outWav string) error
	ProbeDuration(ctx context.Context, inVideo string) (time.Duration, error)
	RenderOverlay(ctx context.Context, spec RenderSpec) error
}

// RenderSpec describes one composite: the narration video with every cutaway
// of Timeline shown full-frame over it. ClipPaths maps clip_id to a playable file.
type RenderSpec struct {
	NarrationVideo string
	Timeline       types.Timeline
	ClipPaths      map[string]string
	OutVideo       string
	BurnASS        string
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, workDir string) ([]types.Segment, error)
}

// Embedder returns one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
