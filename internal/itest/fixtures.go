//go:build integration

package itest

import (
	"os"
	"path/filepath"
	"testing"
)

type fixtures struct {
	dir        string
	video      string
	notMedia   string
	meta       string
	transcript string
}

// newFixtures writes small input files. The video is only a placeholder: the
// CLI must reject every case that uses it before ffmpeg reads it.
func newFixtures(t *testing.T) fixtures {
	t.Helper()
	dir := t.TempDir()
	fx := fixtures{
		dir:        dir,
		video:      filepath.Join(dir, "talk.mp4"),
		notMedia:   filepath.Join(dir, "not-media.txt"),
		meta:       filepath.Join(dir, "clips.json"),
		transcript: filepath.Join(dir, "transcript.json"),
	}
	write := func(p, body string) {
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", p, err)
		}
	}
	write(fx.video, "placeholder")
	write(fx.notMedia, "this is not a video")
	write(fx.meta, `{"clip_office": {"title": "Office", "description": "people working at laptops"}}`)
	write(fx.transcript, `{"segments": [{"start_time": 0, "end_time": 4.2, "text": "We built this product for busy teams."}]}`)
	return fx
}
