package describe

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/forPelevin/brollplan/internal/errs"
	"github.com/forPelevin/brollplan/internal/platform/logger"
)

func TestClip(t *testing.T) {
	tests := []struct {
		name string
		meta string
		want string
	}{
		{
			name: "title subject objects description mood",
			meta: `{"title":"Product Close-up","description":"Close-up shot of smartphone screen showing app interface","category":"product_demo","subject":"mobile application","objects":["smartphone","screen","app interface"],"mood":"professional"}`,
			want: "Product Close-up features mobile application with smartphone, screen, app interface - Close-up shot of smartphone screen showing app interface",
		},
		{
			name: "action wins over subject",
			meta: `{"title":"Code Editor","subject":"programming","action":"coding"}`,
			want: "Code Editor shows coding",
		},
		{
			name: "aliases are case-insensitive",
			meta: `{"NAME":"Office","Place":"downtown","Tone":"calm"}`,
			want: "Office at downtown (calm tone)",
		},
		{
			name: "description alone is not prefixed",
			meta: `{"summary":"People around a whiteboard"}`,
			want: "People around a whiteboard",
		},
		{
			name: "category only when nothing else",
			meta: `{"genre":"graphics"}`,
			want: "graphics clip",
		},
		{
			name: "tags limited to three",
			meta: `{"keywords":["a","b","c","d"]}`,
			want: "[a, b, c]",
		},
		{
			name: "tags skipped once two parts exist",
			meta: `{"title":"T","location":"L","tags":["x"]}`,
			want: "T at L",
		},
		{
			name: "fallback to first scalar extra",
			meta: `{"camera":"Sony A7","fps":60}`,
			want: "Sony A7",
		},
		{
			name: "numeric extra",
			meta: `{"fps":60}`,
			want: "60",
		},
		{
			name: "nothing usable",
			meta: `{"title":"","extra":{"a":1}}`,
			want: "B-roll video clip",
		},
		{
			name: "nested metadata container",
			meta: `{"id":"x","metadata":{"title":"Beach","mood":"warm"}}`,
			want: "Beach (warm tone)",
		},
		{
			name: "top level beats nested",
			meta: `{"title":"Top","details":{"title":"Nested"}}`,
			want: "Top",
		},
		{
			name: "whitespace collapsed",
			meta: `{"title":"  Wide   shot  "}`,
			want: "Wide shot",
		},
		{
			name: "metadata given as json string",
			meta: `"{\"title\":\"Typing\",\"action\":\"typing on keyboard\"}"`,
			want: "Typing shows typing on keyboard",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Clip(gjson.Parse(tt.meta))
			if !ok {
				t.Fatalf("Clip reported unreadable metadata")
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClip_TruncatesLongDescription(t *testing.T) {
	long := strings.Repeat("a", 150)
	got, _ := Clip(gjson.Parse(`{"title":"T","description":"` + long + `"}`))
	want := "T - " + strings.Repeat("a", 97) + "..."
	if got != want {
		t.Fatalf("got %q", got)
	}
}

func TestAll_OrderAndFallback(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	raw := []byte(`{
		"broll_2": {"title": "Office"},
		"broll_1": "not json",
		"broll_3": 42
	}`)
	got, err := All(raw, log)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	var ids, texts []string
	for _, c := range got {
		ids = append(ids, c.ClipID)
		texts = append(texts, c.Description)
	}
	if !reflect.DeepEqual(ids, []string{"broll_2", "broll_1", "broll_3"}) {
		t.Fatalf("ids = %v", ids)
	}
	if !reflect.DeepEqual(texts, []string{"Office", "B-roll clip broll_1", "B-roll clip broll_3"}) {
		t.Fatalf("texts = %v", texts)
	}
	if logs.Len() != 2 {
		t.Fatalf("expected 2 warnings, got %d", logs.Len())
	}
}

func TestAll_RejectsMalformedDocument(t *testing.T) {
	for _, raw := range []string{`{"a":`, `["a","b"]`, `"x"`} {
		_, err := All([]byte(raw), nil)
		if !errs.Is(err, errs.KindInput) {
			t.Fatalf("%s: expected input error, got %v", raw, err)
		}
	}
}

func TestLoadFile_YAMLKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "clips.yaml")
	doc := `
zeta:
  title: Last letter
  tags: [one, two]
alpha:
  name: First letter
  objects:
    - pen
    - paper
`
	if err := os.WriteFile(p, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFile(p, nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(got) != 2 || got[0].ClipID != "zeta" || got[1].ClipID != "alpha" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[1].Description != "First letter with pen, paper" {
		t.Fatalf("description = %q", got[1].Description)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"), nil)
	if !errs.Is(err, errs.KindInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}
