package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	sdk "github.com/openai/openai-go"
	"github.com/tidwall/gjson"

	"github.com/forPelevin/brollplan/internal/types"
)

type Transcriber struct {
	client sdk.Client
	key    string
	model  string
}

func NewTranscriber(cfg Config) *Transcriber {
	model := cfg.TranscribeModel
	if model == "" {
		model = DefaultTranscribeModel
	}
	return &Transcriber{client: newClient(cfg), key: cfg.APIKey, model: model}
}

// Transcribe uploads the audio file and returns segment-level timestamps.
// workDir is unused; the API keeps no local artifacts.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, _ string) ([]types.Segment, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	resp, err := t.client.Audio.Transcriptions.New(ctx, sdk.AudioTranscriptionNewParams{
		File:                   f,
		Model:                  sdk.AudioModel(t.model),
		ResponseFormat:         sdk.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcription: %w", describeErr(err, t.key))
	}
	return parseVerboseJSON(resp.RawJSON())
}

// parseVerboseJSON reads the segments array of a verbose_json transcription.
func parseVerboseJSON(raw string) ([]types.Segment, error) {
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("openai transcription: response is not valid JSON")
	}
	segs := gjson.Get(raw, "segments")
	if !segs.IsArray() {
		return nil, fmt.Errorf("openai transcription: response has no segments")
	}
	var out []types.Segment
	for _, s := range segs.Array() {
		out = append(out, types.Segment{
			StartTime: s.Get("start").Float(),
			EndTime:   s.Get("end").Float(),
			Text:      strings.TrimSpace(s.Get("text").String()),
		})
	}
	return out, nil
}
