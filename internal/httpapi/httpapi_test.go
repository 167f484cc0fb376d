package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/forPelevin/brollplan/internal/errs"
	"github.com/forPelevin/brollplan/internal/types"
	"github.com/forPelevin/brollplan/internal/usecase"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeGenerator struct {
	err    error
	got    usecase.Input
	video  []byte
	called bool
}

func (f *fakeGenerator) Generate(_ context.Context, in usecase.Input) (usecase.Result, error) {
	f.called = true
	f.got = in
	f.video, _ = os.ReadFile(in.VideoPath)
	if f.err != nil {
		return usecase.Result{}, f.err
	}
	return usecase.Result{Timeline: types.Timeline{ID: "tl-1", SourceVideo: "talk.mp4", TotalDuration: 12.5}}, nil
}

func multipartBody(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	if filename != "" {
		fw, err := w.CreateFormFile("aroll_video", filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte("fake video bytes"))
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &b, w.FormDataContentType()
}

func doGenerate(t *testing.T, d Deps, filename string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, filename, fields)
	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	NewRouter(d).ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(Deps{OpenAIConfigured: true}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" || body["openai_configured"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestInfo(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(Deps{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte(`"/generate"`)) {
		t.Fatalf("unexpected response %d: %s", rec.Code, rec.Body)
	}
}

func TestGenerate_Success(t *testing.T) {
	gen := &fakeGenerator{}
	tmp := t.TempDir()
	rec := doGenerate(t, Deps{Generator: gen, OpenAIConfigured: true, TempRoot: tmp}, "talk.MP4", map[string]string{
		"broll_metadata":       `{"b1":{"title":"Office"}}`,
		"similarity_threshold": "0.65",
		"min_insertions":       "1",
		"max_insertions":       "4",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var tl types.Timeline
	if err := json.Unmarshal(rec.Body.Bytes(), &tl); err != nil {
		t.Fatal(err)
	}
	if tl.ID != "tl-1" {
		t.Fatalf("unexpected timeline: %+v", tl)
	}

	if gen.got.Matching.SimilarityThreshold != 0.65 || gen.got.Matching.MinInsertions != 1 || gen.got.Matching.MaxInsertions != 4 {
		t.Fatalf("thresholds not forwarded: %+v", gen.got.Matching)
	}
	if string(gen.video) != "fake video bytes" || gen.got.SourceName != "talk.MP4" {
		t.Fatalf("upload not forwarded: %q %q", gen.video, gen.got.SourceName)
	}
	if entries, _ := os.ReadDir(tmp); len(entries) != 0 {
		t.Fatalf("upload dir not removed")
	}
}

func TestGenerate_RequestErrors(t *testing.T) {
	meta := `{"b1":{"title":"Office"}}`
	tests := []struct {
		name       string
		configured bool
		filename   string
		fields     map[string]string
		wantStatus int
		wantKind   string
	}{
		{"not configured", false, "talk.mp4", map[string]string{"broll_metadata": meta}, http.StatusServiceUnavailable, "configuration_error"},
		{"bad extension", true, "talk.txt", map[string]string{"broll_metadata": meta}, http.StatusBadRequest, "input_validation_error"},
		{"missing file", true, "", map[string]string{"broll_metadata": meta}, http.StatusBadRequest, "input_validation_error"},
		{"invalid metadata json", true, "talk.mp4", map[string]string{"broll_metadata": `{"b1":`}, http.StatusBadRequest, "input_validation_error"},
		{"metadata not an object", true, "talk.mp4", map[string]string{"broll_metadata": `["b1"]`}, http.StatusBadRequest, "input_validation_error"},
		{"threshold out of range", true, "talk.mp4", map[string]string{"broll_metadata": meta, "similarity_threshold": "1.5"}, http.StatusBadRequest, "configuration_error"},
		{"min above max", true, "talk.mp4", map[string]string{"broll_metadata": meta, "min_insertions": "7", "max_insertions": "6"}, http.StatusBadRequest, "configuration_error"},
		{"max above limit", true, "talk.mp4", map[string]string{"broll_metadata": meta, "max_insertions": "21"}, http.StatusBadRequest, "configuration_error"},
		{"non-numeric min", true, "talk.mp4", map[string]string{"broll_metadata": meta, "min_insertions": "three"}, http.StatusBadRequest, "configuration_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			rec := doGenerate(t, Deps{Generator: gen, OpenAIConfigured: tt.configured, TempRoot: t.TempDir()}, tt.filename, tt.fields)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", body.Error.Kind, tt.wantKind)
			}
			if gen.called {
				t.Fatalf("generator must not run for a rejected request")
			}
		})
	}
}

func TestGenerate_PipelineErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.E(errs.KindProvider, "embed narration", errors.New("429")), http.StatusBadGateway},
		{errs.Errorf(errs.KindInput, "transcribe", "no speech: %w", errs.ErrEmptyInput), http.StatusUnprocessableEntity},
		{errs.E(errs.KindCompositing, "generate", errors.New("ffmpeg exit 1")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		gen := &fakeGenerator{err: tt.err}
		rec := doGenerate(t, Deps{Generator: gen, OpenAIConfigured: true, TempRoot: t.TempDir()}, "talk.mp4", map[string]string{
			"broll_metadata": `{"b1":{"title":"Office"}}`,
		})
		if rec.Code != tt.want {
			t.Fatalf("%v: status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}
