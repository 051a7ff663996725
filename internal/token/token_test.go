package token

import (
	"errors"
	"testing"
	"time"
)

func newTestCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()
	c, err := NewCodec("access-secret", "refresh-secret", opts...)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodecRejectsBadSecrets(t *testing.T) {
	if _, err := NewCodec("", "refresh"); err == nil {
		t.Fatal("expected error for empty access secret")
	}
	if _, err := NewCodec("same", "same"); err == nil {
		t.Fatal("expected error for identical secrets")
	}
}

func TestAccessRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	tok, exp, err := c.IssueAccess("user-3", "store")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", exp)
	}

	claims, err := c.VerifyAccess(tok)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Subject != "user-3" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != "store" {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
	if claims.TokenType != TypeAccess {
		t.Fatalf("unexpected token type: %s", claims.TokenType)
	}
}

func TestRefreshCarriesNoRole(t *testing.T) {
	c := newTestCodec(t)

	tok, _, err := c.IssueRefresh("user-3")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	claims, err := c.VerifyRefresh(tok)
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if claims.Role != "" {
		t.Fatalf("refresh token should not carry a role, got %q", claims.Role)
	}
}

func TestExpiredTokenFailsWithErrExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	minter := newTestCodec(t, WithClock(func() time.Time { return past }))
	verifier := newTestCodec(t)

	tok, _, err := minter.IssueAccess("user-3", "homeless")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := verifier.VerifyAccess(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestSecretIsolation(t *testing.T) {
	c := newTestCodec(t)

	access, _, err := c.IssueAccess("user-3", "store")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, _, err := c.IssueRefresh("user-3")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if _, err := c.VerifyAccess(refresh); !errors.Is(err, ErrInvalid) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}
	if _, err := c.VerifyRefresh(access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestForeignSecretRejected(t *testing.T) {
	issuer := newTestCodec(t)
	other, err := NewCodec("other-access", "other-refresh")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	tok, _, err := issuer.IssueAccess("user-3", "store")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := other.VerifyAccess(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for foreign secret, got %v", err)
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	c := newTestCodec(t)
	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := c.VerifyAccess(tok); !errors.Is(err, ErrInvalid) {
			t.Fatalf("token %q: expected ErrInvalid, got %v", tok, err)
		}
	}
}
