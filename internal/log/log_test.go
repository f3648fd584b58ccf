package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})

	Info(context.Background(), "hello", "user", "test")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	if !strings.Contains(line, "ts=") {
		t.Fatalf("expected timestamp field in log line, got %q", line)
	}
	if !strings.Contains(line, "level=info") {
		t.Fatalf("expected level field in log line, got %q", line)
	}
	if !strings.Contains(line, "msg=hello") {
		t.Fatalf("expected message field in log line, got %q", line)
	}
	if !strings.Contains(line, "user=test") {
		t.Fatalf("expected structured field in log line, got %q", line)
	}
}

func TestRequestIDIsAppended(t *testing.T) {
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})

	ctx := WithRequestID(context.Background(), "req-123")
	Info(ctx, "box saved", "id", 7)

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "request_id=req-123") {
		t.Fatalf("expected request id in log line, got %q", line)
	}
	if RequestID(ctx) != "req-123" {
		t.Fatalf("RequestID() = %q", RequestID(ctx))
	}
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() {
		_ = SetLevel("info")
	})

	for _, level := range []string{"debug", "INFO", "error", ""} {
		if err := SetLevel(level); err != nil {
			t.Fatalf("SetLevel(%q) error = %v", level, err)
		}
	}
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
