package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/brollplan/internal/ports"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// ExtractAudio writes a mono 16 kHz wav, the input both transcribers expect.
func (a *Adapter) ExtractAudio(ctx context.Context, inVideo, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inVideo,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

// RenderOverlay composites every cutaway of the timeline over the narration
// video. The narration audio track is copied unchanged.
func (a *Adapter) RenderOverlay(ctx context.Context, spec ports.RenderSpec) error {
	args, err := OverlayArgs(spec)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg render overlay: %w\n%s", err, string(b))
	}
	return nil
}

// OverlayArgs builds the ffmpeg argument list for RenderOverlay. Each cutaway
// gets its own input so a clip used twice restarts from its first frame.
func OverlayArgs(spec ports.RenderSpec) ([]string, error) {
	cuts := spec.Timeline.Cutaways()
	args := []string{"-y", "-i", spec.NarrationVideo}
	for _, c := range cuts {
		p, ok := spec.ClipPaths[c.Source]
		if !ok || strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("no media path for clip %q", c.Source)
		}
		args = append(args, "-i", p)
	}

	var chain []string
	last := "0:v"
	for i, c := range cuts {
		in := i + 1
		clip := fmt.Sprintf("c%d", in)
		out := fmt.Sprintf("v%d", in)
		start := fmtSec(c.StartTime)
		chain = append(chain,
			fmt.Sprintf("[%d:v]setpts=PTS-STARTPTS+%s/TB[%s]", in, start, clip),
			fmt.Sprintf("[%s][%s]overlay=0:0:enable='between(t,%s,%s)':eof_action=pass[%s]",
				last, clip, start, fmtSec(c.EndTime), out),
		)
		last = out
	}
	if spec.BurnASS != "" {
		chain = append(chain, fmt.Sprintf("[%s]subtitles=%s[vout]", last, escapeFilterPath(spec.BurnASS)))
		last = "vout"
	}

	if len(chain) == 0 {
		args = append(args, "-map", "0:v:0")
	} else {
		args = append(args, "-filter_complex", strings.Join(chain, ";"), "-map", "["+last+"]")
	}
	args = append(args,
		"-map", "0:a:0?",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "20",
		"-c:a", "copy",
		spec.OutVideo,
	)
	return args, nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, inVideo string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inVideo,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func fmtSec(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	p = strings.ReplaceAll(p, "'", "\\'")
	return p
}
