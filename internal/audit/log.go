// Package audit records security-relevant events (logins, refreshes, debits)
// as structured JSON lines. Actor identity is passed explicitly by callers
// rather than pulled from ambient request state, so every call site shows who
// did what.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"streetpoints.org/internal/obs"
)

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context for audit
// correlation with the access log.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// Actor identifies who performed an audited action. A zero Actor is valid for
// unauthenticated events such as failed logins.
type Actor struct {
	ID   string
	Role string
}

// LogEvent writes one audit entry. The actor is explicit so handlers cannot
// accidentally attribute an action to the wrong principal.
func LogEvent(ctx context.Context, event string, actor Actor, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"type":  "audit",
		"event": event,
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	if actor.ID != "" {
		entry["actor_id"] = actor.ID
	}
	if actor.Role != "" {
		entry["actor_role"] = actor.Role
	}
	if len(fields) > 0 {
		copyFields := make(map[string]any, len(fields))
		for k, v := range fields {
			copyFields[k] = v
		}
		entry["fields"] = copyFields
	} else {
		entry["fields"] = map[string]any{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}
