package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs_RedactsSecretKeys(t *testing.T) {
	got := sanitizeKVs([]interface{}{"OPENAI_API_KEY", "sk-123", "clips", 3, "Authorization", "Bearer x", "dangling"})
	want := []interface{}{"OPENAI_API_KEY", "[REDACTED]", "clips", 3, "Authorization", "[REDACTED]", "dangling"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kv[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLogger_WritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("request_id", "r1").Info("matched", "insertions", 4, "api_key", "sk-1")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "r1" {
		t.Fatalf("missing request_id: %v", fields)
	}
	if fields["insertions"] != int64(4) {
		t.Fatalf("unexpected insertions field: %#v", fields["insertions"])
	}
	if fields["api_key"] != "[REDACTED]" {
		t.Fatalf("api_key must be redacted: %v", fields)
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	l := Nop()
	l.Debug("x")
	l.Warn("y", "k", "v")
	l.Sync()
}
