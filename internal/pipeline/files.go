package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/forPelevin/brollplan/internal/errs"
	"github.com/forPelevin/brollplan/internal/types"
	"github.com/forPelevin/brollplan/internal/usecase"
)

// LoadTranscript reads either a transcript document ({"segments": [...]}) or
// a bare segment array. Segments are normalized the same way fresh
// transcriptions are.
func LoadTranscript(path string) (types.Transcript, error) {
	const op = "load transcript"
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Transcript{}, errs.E(errs.KindInput, op, err)
	}
	if !gjson.ValidBytes(raw) {
		return types.Transcript{}, errs.Errorf(errs.KindInput, op, "%s is not valid JSON", path)
	}
	root := gjson.ParseBytes(raw)
	segsJSON := root
	if !root.IsArray() {
		segsJSON = root.Get("segments")
	}
	if !segsJSON.IsArray() {
		return types.Transcript{}, errs.Errorf(errs.KindInput, op, "%s has no segments array", path)
	}

	var segs []types.Segment
	if err := json.Unmarshal([]byte(segsJSON.Raw), &segs); err != nil {
		return types.Transcript{}, errs.E(errs.KindInput, op, err)
	}
	segs = usecase.NormalizeSegments(segs)
	if len(segs) == 0 {
		return types.Transcript{}, errs.Errorf(errs.KindInput, op, "%s: %w", path, errs.ErrEmptyInput)
	}
	return usecase.NewTranscript(root.Get("video_path").String(), segs), nil
}

// LoadClipPaths reads a JSON object of clip_id -> media path. Relative paths
// are resolved against the mapping file's directory.
func LoadClipPaths(path string) (map[string]string, error) {
	const op = "load clip paths"
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.E(errs.KindInput, op, err)
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errs.E(errs.KindInput, op, err)
	}
	base := filepath.Dir(path)
	for id, p := range m {
		if p != "" && !filepath.IsAbs(p) {
			m[id] = filepath.Join(base, p)
		}
	}
	return m, nil
}
