package cli

import (
	"os"
	"strings"

	"github.com/forPelevin/brollplan/internal/pipeline"
	"github.com/forPelevin/brollplan/internal/platform/logger"
)

func providersFromEnv() pipeline.Providers {
	return pipeline.Providers{
		FFmpegPath:  getenvDefault("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getenvDefault("FFPROBE_PATH", "ffprobe"),

		Transcriber:  getenvDefault("TRANSCRIBER", pipeline.TranscriberOpenAI),
		WhisperBin:   getenvDefault("WHISPER_BIN", ".cache/bin/whisper-cli"),
		WhisperModel: getenvDefault("WHISPER_MODEL", ".cache/models/ggml-base.bin"),

		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:         os.Getenv("OPENAI_BASE_URL"),
		OpenAIAllowedHosts:    splitList(os.Getenv("OPENAI_ALLOWED_HOSTS")),
		OpenAIEmbeddingModel:  os.Getenv("OPENAI_EMBEDDING_MODEL"),
		OpenAITranscribeModel: os.Getenv("OPENAI_TRANSCRIBE_MODEL"),
	}
}

func newLogger() (*logger.Logger, error) {
	return logger.New(getenvDefault("LOG_MODE", "dev"))
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
