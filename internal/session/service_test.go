package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"streetpoints.org/internal/directory"
	"streetpoints.org/internal/token"
)

func newTestService(t *testing.T, opts ...token.Option) (*Service, *directory.Memory) {
	t.Helper()
	codec, err := token.NewCodec("test-access-secret", "test-refresh-secret", opts...)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	dir := directory.NewMemory(directory.Seed()...)
	return NewService(dir, codec), dir
}

func TestLoginSuccess(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	profile, tokens, err := svc.Login(ctx, "store1", "store123", directory.RoleStore)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if profile.Username != "store1" || profile.Role != directory.RoleStore {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if tokens.Access == "" || tokens.Refresh == "" {
		t.Fatal("expected both tokens")
	}
	if !tokens.RefreshExpiresAt.After(tokens.AccessExpiresAt) {
		t.Fatal("refresh token should outlive access token")
	}

	// The issued access token authenticates.
	got, err := svc.Authenticate(ctx, tokens.Access)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != profile.ID {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		password string
		role     directory.Role
	}{
		{"unknown user", "ghost", "x", directory.RoleStore},
		{"wrong password", "store1", "wrongpw", directory.RoleStore},
		{"role mismatch", "store1", "store123", directory.RoleHomeless},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tc.username, tc.password, tc.role)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthenticateTaxonomy(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Authenticate(ctx, ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	// Expired access token: mint with a codec whose clock sits in the past.
	past := time.Now().Add(-2 * time.Hour)
	expiredCodec, err := token.NewCodec("test-access-secret", "test-refresh-secret",
		token.WithClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	expired, _, err := expiredCodec.IssueAccess("3", "homeless")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := svc.Authenticate(ctx, expired); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// Valid token whose subject was deleted.
	tok, _, err := svc.Codec().IssueAccess("3", "homeless")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	dir.Remove("3")
	if _, err := svc.Authenticate(ctx, tok); !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestAuthenticateReflectsCurrentProfile(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	_, tokens, err := svc.Login(ctx, "homeless1", "homeless123", directory.RoleHomeless)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Profile edited after issuance: Authenticate must return fresh data.
	p, _ := dir.FindByID(ctx, "3")
	p.Name = "Renamed"
	dir.Add(p)

	got, err := svc.Authenticate(ctx, tokens.Access)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.Name != "Renamed" {
		t.Fatalf("expected fresh profile, got %q", got.Name)
	}
}

func TestRefreshTaxonomy(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Refresh(ctx, ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, _, err := svc.Refresh(ctx, "junk"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	// An access token is not a refresh token.
	access, _, _ := svc.Codec().IssueAccess("3", "homeless")
	if _, _, err := svc.Refresh(ctx, access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token, got %v", err)
	}

	// Expired refresh token.
	past := time.Now().Add(-8 * 24 * time.Hour)
	expiredCodec, _ := token.NewCodec("test-access-secret", "test-refresh-secret",
		token.WithClock(func() time.Time { return past }))
	expired, _, _ := expiredCodec.IssueRefresh("3")
	if _, _, err := svc.Refresh(ctx, expired); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// Deleted subject.
	refresh, _, _ := svc.Codec().IssueRefresh("3")
	dir.Remove("3")
	if _, _, err := svc.Refresh(ctx, refresh); !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestRefreshIssuesAccessWithCurrentRole(t *testing.T) {
	svc, dir := newTestService(t)
	ctx := context.Background()

	_, tokens, err := svc.Login(ctx, "homeless1", "homeless123", directory.RoleHomeless)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Simulate an out-of-band role change (role is immutable in scope, but
	// the refresh contract is to embed whatever the directory holds now).
	p, _ := dir.FindByID(ctx, "3")
	p.Role = directory.RoleStore
	dir.Add(p)

	access, _, err := svc.Refresh(ctx, tokens.Refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	claims, err := svc.Codec().VerifyAccess(access)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Role != string(directory.RoleStore) {
		t.Fatalf("expected current role in new token, got %q", claims.Role)
	}
}

func TestProfileContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := ProfileFromContext(ctx); ok {
		t.Fatal("empty context yielded a profile")
	}
	want := directory.Profile{ID: "1", Username: "admin", Role: directory.RoleNGOAdmin}
	got, ok := ProfileFromContext(ContextWithProfile(ctx, want))
	if !ok || got != want {
		t.Fatalf("round trip failed: ok=%v got=%+v", ok, got)
	}
}

func TestOptionalNeverFails(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, ok := svc.Optional(ctx, ""); ok {
		t.Fatal("expected no principal for empty token")
	}
	if _, ok := svc.Optional(ctx, "junk"); ok {
		t.Fatal("expected no principal for invalid token")
	}

	_, tokens, _ := svc.Login(ctx, "admin", "admin123", directory.RoleNGOAdmin)
	profile, ok := svc.Optional(ctx, tokens.Access)
	if !ok || profile.Username != "admin" {
		t.Fatalf("expected principal, got ok=%v profile=%+v", ok, profile)
	}
}
