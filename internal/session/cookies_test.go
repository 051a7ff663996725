package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	res := rec.Result()
	defer res.Body.Close()
	for _, ck := range res.Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSetCookieAttributes(t *testing.T) {
	cw := NewCookieWriter(false, 15*time.Minute, 7*24*time.Hour)

	rec := httptest.NewRecorder()
	cw.SetAccess(rec, "tok-a")
	cw.SetRefresh(rec, "tok-r")

	access := findCookie(t, rec, AccessCookie)
	if access.Value != "tok-a" {
		t.Fatalf("unexpected value: %q", access.Value)
	}
	if !access.HttpOnly {
		t.Fatal("access cookie must be HttpOnly")
	}
	if access.Path != "/" {
		t.Fatalf("unexpected path: %q", access.Path)
	}
	if access.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected SameSite: %v", access.SameSite)
	}
	if access.Secure {
		t.Fatal("Secure must be off outside production")
	}
	if access.MaxAge != 900 {
		t.Fatalf("unexpected access MaxAge: %d", access.MaxAge)
	}

	refresh := findCookie(t, rec, RefreshCookie)
	if refresh.MaxAge != 604800 {
		t.Fatalf("unexpected refresh MaxAge: %d", refresh.MaxAge)
	}
	if !refresh.HttpOnly || refresh.Path != "/" {
		t.Fatalf("refresh attributes wrong: %+v", refresh)
	}
}

func TestSecureFlagInProduction(t *testing.T) {
	cw := NewCookieWriter(true, 15*time.Minute, 7*24*time.Hour)

	rec := httptest.NewRecorder()
	cw.SetAccess(rec, "tok")
	if !findCookie(t, rec, AccessCookie).Secure {
		t.Fatal("production cookies must be Secure")
	}
}

func TestClearAll(t *testing.T) {
	cw := NewCookieWriter(false, 15*time.Minute, 7*24*time.Hour)

	rec := httptest.NewRecorder()
	cw.ClearAll(rec)

	for _, name := range []string{AccessCookie, RefreshCookie} {
		ck := findCookie(t, rec, name)
		if ck.Value != "" {
			t.Fatalf("%s not emptied: %q", name, ck.Value)
		}
		if ck.MaxAge != -1 {
			t.Fatalf("%s MaxAge should be -1, got %d", name, ck.MaxAge)
		}
	}
}

func TestReadCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ReadCookie(r, AccessCookie); ok {
		t.Fatal("expected absence")
	}

	r.AddCookie(&http.Cookie{Name: AccessCookie, Value: "tok"})
	got, ok := ReadCookie(r, AccessCookie)
	if !ok || got != "tok" {
		t.Fatalf("unexpected read: %q ok=%v", got, ok)
	}
}
