// Package httpapi exposes timeline generation over HTTP.
package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/forPelevin/brollplan/internal/platform/logger"
	"github.com/forPelevin/brollplan/internal/usecase"
)

const (
	ServiceName    = "brollplan"
	ServiceVersion = "1.0.0"

	defaultMaxUploadBytes = 2 << 30
)

type Generator interface {
	Generate(ctx context.Context, in usecase.Input) (usecase.Result, error)
}

type Deps struct {
	Generator Generator
	// OpenAIConfigured is reported by /health; generation is refused without it.
	OpenAIConfigured bool
	Log              *logger.Logger
	// TempRoot holds per-request upload dirs; empty means os.TempDir().
	TempRoot       string
	MaxUploadBytes int64
	AllowOrigins   []string
}

func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = defaultMaxUploadBytes
	}
	h := &handler{d: d}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(d.Log))
	r.Use(CORS(d.AllowOrigins))

	r.GET("/", h.info)
	r.GET("/health", h.health)
	r.POST("/generate", h.generate)
	return r
}
