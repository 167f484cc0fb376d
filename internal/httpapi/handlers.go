package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/forPelevin/brollplan/internal/domain/matching"
	"github.com/forPelevin/brollplan/internal/errs"
	"github.com/forPelevin/brollplan/internal/usecase"
)

var allowedVideoExts = map[string]struct{}{
	".mp4": {},
	".mov": {},
	".avi": {},
	".mkv": {},
}

type handler struct {
	d Deps
}

func (h *handler) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    ServiceName,
		"version": ServiceVersion,
		"endpoints": gin.H{
			"/generate": "POST - Generate timeline plan",
			"/health":   "GET - Health check",
		},
	})
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"openai_configured": h.d.OpenAIConfigured,
	})
}

// generate accepts multipart/form-data with aroll_video, broll_metadata and
// optional similarity_threshold, min_insertions and max_insertions fields.
func (h *handler) generate(c *gin.Context) {
	if !h.d.OpenAIConfigured {
		respondStatus(c, http.StatusServiceUnavailable, errs.KindConfiguration,
			"OpenAI API key not configured. Set OPENAI_API_KEY environment variable.")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.d.MaxUploadBytes)

	cfg, err := matchingConfig(c)
	if err != nil {
		respondError(c, err)
		return
	}

	meta := c.PostForm("broll_metadata")
	if strings.TrimSpace(meta) == "" {
		respondError(c, errs.Errorf(errs.KindInput, "generate", "broll_metadata is required"))
		return
	}
	if !gjson.Valid(meta) {
		respondError(c, errs.Errorf(errs.KindInput, "generate", "invalid JSON in broll_metadata"))
		return
	}
	if !gjson.Parse(meta).IsObject() {
		respondError(c, errs.Errorf(errs.KindInput, "generate", "broll_metadata must be an object mapping clip id to metadata"))
		return
	}

	fh, err := c.FormFile("aroll_video")
	if err != nil {
		respondError(c, errs.Errorf(errs.KindInput, "generate", "aroll_video file is required"))
		return
	}
	name := filepath.Base(fh.Filename)
	if _, ok := allowedVideoExts[strings.ToLower(filepath.Ext(name))]; !ok {
		respondError(c, errs.Errorf(errs.KindInput, "generate", "invalid video format. Supported: .mp4, .mov, .avi, .mkv"))
		return
	}

	dir, err := os.MkdirTemp(h.d.TempRoot, "brollplan-upload-*")
	if err != nil {
		respondError(c, fmt.Errorf("create upload dir: %w", err))
		return
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			h.d.Log.Warn("upload cleanup failed", "dir", dir, "error", rmErr)
		}
	}()

	videoPath := filepath.Join(dir, name)
	if err := saveUpload(fh, videoPath); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.d.Generator.Generate(c.Request.Context(), usecase.Input{
		VideoPath:    videoPath,
		ClipMetadata: []byte(meta),
		Matching:     cfg,
		TempRoot:     h.d.TempRoot,
		SourceName:   name,
	})
	if err != nil {
		h.d.Log.Error("generate failed", "error", err, "kind", errs.KindOf(err).String())
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res.Timeline)
}

func matchingConfig(c *gin.Context) (matching.Config, error) {
	const op = "generate"
	cfg := matching.DefaultConfig()
	if v, ok := c.GetPostForm("similarity_threshold"); ok && strings.TrimSpace(v) != "" {
		f, err := cast.ToFloat64E(strings.TrimSpace(v))
		if err != nil {
			return cfg, errs.Errorf(errs.KindConfiguration, op, "similarity_threshold: %w", err)
		}
		cfg.SimilarityThreshold = f
	}
	if v, ok := c.GetPostForm("min_insertions"); ok && strings.TrimSpace(v) != "" {
		n, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return cfg, errs.Errorf(errs.KindConfiguration, op, "min_insertions: %w", err)
		}
		cfg.MinInsertions = n
	}
	if v, ok := c.GetPostForm("max_insertions"); ok && strings.TrimSpace(v) != "" {
		n, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return cfg, errs.Errorf(errs.KindConfiguration, op, "max_insertions: %w", err)
		}
		cfg.MaxInsertions = n
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errs.E(errs.KindConfiguration, op, err)
	}
	return cfg, nil
}

func saveUpload(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return errs.E(errs.KindInput, "read upload", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return errs.E(errs.KindInput, "read upload", err)
	}
	return out.Close()
}
