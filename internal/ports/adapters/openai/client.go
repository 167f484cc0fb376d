// Package openai implements the embedding and transcription ports on top of
// the OpenAI API (or a compatible, allow-listed gateway).
package openai

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultTranscribeModel = "whisper-1"

	requestTimeout = 5 * time.Minute
)

type Config struct {
	APIKey          string
	BaseURL         string
	EmbeddingModel  string
	TranscribeModel string
}

func newClient(cfg Config) sdk.Client {
	return sdk.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(normalizeBaseURL(cfg.BaseURL)+"/"),
		// retries belong to the caller
		option.WithMaxRetries(0),
		option.WithRequestTimeout(requestTimeout),
	)
}

// describeErr turns an SDK error into a short message without credentials.
func describeErr(err error, apiKey string) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		body := ""
		if raw := apiErr.RawJSON(); raw != "" {
			body = truncate(redactSecrets(raw, apiKey), 400)
		}
		return fmt.Errorf("openai status %d: %s", apiErr.StatusCode, body)
	}
	return errors.New(truncate(redactSecrets(err.Error(), apiKey), 400))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
	skKeyRE       = regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{8,}\b`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = skKeyRE.ReplaceAllString(out, "[REDACTED]")
	return out
}
