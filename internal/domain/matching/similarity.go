package matching

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/brollplan/internal/errs"
	"github.com/forPelevin/brollplan/internal/ports"
)

// Matrix holds cosine similarities: rows are narration segments, columns clips.
type Matrix [][]float64

type Engine struct {
	emb ports.Embedder
}

func NewEngine(emb ports.Embedder) *Engine { return &Engine{emb: emb} }

// Relevance embeds both text pools and returns the |narration| x |clips| matrix.
// The two provider calls are independent and run concurrently.
func (e *Engine) Relevance(ctx context.Context, narration, clips []string) (Matrix, error) {
	const op = "relevance"
	if len(narration) == 0 {
		return nil, errs.Errorf(errs.KindInput, op, "narration texts: %w", errs.ErrEmptyInput)
	}
	if len(clips) == 0 {
		return nil, errs.Errorf(errs.KindInput, op, "clip descriptions: %w", errs.ErrEmptyInput)
	}

	var aVecs, bVecs [][]float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := e.embed(gctx, "narration", narration)
		aVecs = v
		return err
	})
	g.Go(func() error {
		v, err := e.embed(gctx, "clips", clips)
		bVecs = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if dim(aVecs) != dim(bVecs) {
		return nil, errs.Errorf(errs.KindProvider, op, "embedding dimension mismatch: narration=%d clips=%d", dim(aVecs), dim(bVecs))
	}
	return Relevance(aVecs, bVecs), nil
}

func (e *Engine) embed(ctx context.Context, side string, texts []string) ([][]float64, error) {
	op := "embed " + side
	vecs, err := e.emb.Embed(ctx, texts)
	if err != nil {
		return nil, errs.E(errs.KindProvider, op, err)
	}
	if len(vecs) != len(texts) {
		return nil, errs.Errorf(errs.KindProvider, op, "provider returned %d vectors for %d texts", len(vecs), len(texts))
	}
	d := len(vecs[0])
	for i, v := range vecs {
		if len(v) != d || d == 0 {
			return nil, errs.Errorf(errs.KindProvider, op, "vector %d has dimension %d, want %d", i, len(v), d)
		}
	}
	return vecs, nil
}

// Relevance computes normalized dot products. A zero vector scores 0 against everything.
func Relevance(a, b [][]float64) Matrix {
	an := normalizeAll(a)
	bn := normalizeAll(b)
	m := make(Matrix, len(an))
	for i := range an {
		row := make([]float64, len(bn))
		for j := range bn {
			row[j] = dot(an[i], bn[j])
		}
		m[i] = row
	}
	return m
}

func normalizeAll(vs [][]float64) [][]float64 {
	out := make([][]float64, len(vs))
	for i, v := range vs {
		out[i] = normalize(v)
	}
	return out
}

// normalize returns a unit-length copy of v, or an all-zero copy when |v| == 0.
func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	out := make([]float64, len(v))
	if sum <= 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = x * inv
	}
	return out
}

func dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	var s float64
	for i := 0; i < n; i++ {
		s += a[i] * b[i]
	}
	return s
}

func dim(vs [][]float64) int {
	if len(vs) == 0 {
		return 0
	}
	return len(vs[0])
}

func (m Matrix) String() string {
	if len(m) == 0 {
		return "Matrix[0x0]"
	}
	return fmt.Sprintf("Matrix[%dx%d]", len(m), len(m[0]))
}
