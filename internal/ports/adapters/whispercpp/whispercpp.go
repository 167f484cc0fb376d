package whispercpp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/forPelevin/brollplan/internal/types"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	if binPath == "" {
		binPath = "whisper-cli"
	}
	return &Adapter{bin: binPath, model: modelPath}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, workDir string) ([]types.Segment, error) {
	outPrefix := filepath.Join(workDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, err
	}
	return parseOutput(jb)
}

// parseOutput reads whisper.cpp -oj output. Offsets are in milliseconds.
func parseOutput(jb []byte) ([]types.Segment, error) {
	if !gjson.ValidBytes(jb) {
		return nil, fmt.Errorf("whisper.cpp output is not valid JSON")
	}
	items := gjson.GetBytes(jb, "transcription")
	if !items.IsArray() {
		return nil, fmt.Errorf("whisper.cpp output has no transcription array")
	}
	var out []types.Segment
	for _, it := range items.Array() {
		out = append(out, types.Segment{
			StartTime: it.Get("offsets.from").Float() / 1000,
			EndTime:   it.Get("offsets.to").Float() / 1000,
			Text:      strings.TrimSpace(it.Get("text").String()),
		})
	}
	return out, nil
}
