package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"streetpoints.org/internal/obs"
)

func TestLogEvent(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	logger.SetFlags(0)
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	ctx := WithRequestID(context.Background(), "req-123")

	err := LogEvent(ctx, "auth.login", Actor{ID: "3", Role: "homeless"}, map[string]any{"username": "homeless1"})
	if err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	line := buf.String()
	if line == "" {
		t.Fatal("expected log output")
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if entry["type"] != "audit" {
		t.Fatalf("unexpected type: %v", entry["type"])
	}
	if entry["event"] != "auth.login" {
		t.Fatalf("unexpected event: %v", entry["event"])
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("unexpected request id: %v", entry["request_id"])
	}
	if entry["actor_id"] != "3" || entry["actor_role"] != "homeless" {
		t.Fatalf("unexpected actor: %v / %v", entry["actor_id"], entry["actor_role"])
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["username"] != "homeless1" {
		t.Fatalf("fields missing or incorrect: %v", entry["fields"])
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", Actor{}, nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}

func TestLogEventWithoutActor(t *testing.T) {
	logger := obs.Logger()
	original := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(original)

	if err := LogEvent(context.Background(), "auth.login_failed", Actor{}, nil); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if _, present := entry["actor_id"]; present {
		t.Fatal("zero actor must not emit actor_id")
	}
}
