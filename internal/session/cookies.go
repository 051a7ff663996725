package session

import (
	"net/http"
	"time"
)

// Cookie names are the session's entire wire contract with the browser.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// CookieWriter maps tokens to and from browser cookies with a fixed
// attribute set: HttpOnly always, Path=/, SameSite=Lax, Secure only in
// production mode, MaxAge matching each token's TTL.
type CookieWriter struct {
	secure        bool
	accessMaxAge  time.Duration
	refreshMaxAge time.Duration
}

// NewCookieWriter builds the adapter. secure should be true in production
// deployments only, so local development over plain HTTP keeps working.
func NewCookieWriter(secure bool, accessTTL, refreshTTL time.Duration) *CookieWriter {
	return &CookieWriter{
		secure:        secure,
		accessMaxAge:  accessTTL,
		refreshMaxAge: refreshTTL,
	}
}

// SetAccess writes the access token cookie.
func (c *CookieWriter) SetAccess(w http.ResponseWriter, tok string) {
	c.set(w, AccessCookie, tok, c.accessMaxAge)
}

// SetRefresh writes the refresh token cookie.
func (c *CookieWriter) SetRefresh(w http.ResponseWriter, tok string) {
	c.set(w, RefreshCookie, tok, c.refreshMaxAge)
}

// Clear removes a named cookie from the browser.
func (c *CookieWriter) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAll strips both session cookies.
func (c *CookieWriter) ClearAll(w http.ResponseWriter) {
	c.Clear(w, AccessCookie)
	c.Clear(w, RefreshCookie)
}

func (c *CookieWriter) set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Expires:  time.Now().Add(maxAge),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadCookie extracts a cookie value from the request. Absence is not an
// error at this layer; it surfaces as ok=false.
func ReadCookie(r *http.Request, name string) (string, bool) {
	ck, err := r.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}
