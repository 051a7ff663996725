package session

import (
	"context"

	"streetpoints.org/internal/directory"
)

type ctxKey string

const profileKey ctxKey = "session_profile"

// ContextWithProfile attaches the authenticated profile to the context.
func ContextWithProfile(ctx context.Context, p directory.Profile) context.Context {
	return context.WithValue(ctx, profileKey, p)
}

// ProfileFromContext returns the profile placed by the auth guard, if any.
func ProfileFromContext(ctx context.Context) (directory.Profile, bool) {
	p, ok := ctx.Value(profileKey).(directory.Profile)
	return p, ok
}
