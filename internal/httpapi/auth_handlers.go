package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"streetpoints.org/internal/audit"
	"streetpoints.org/internal/directory"
	"streetpoints.org/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// invalidCredentialsMsg is deliberately shared by every login failure mode so
// callers cannot tell whether the username, role or password was wrong.
const invalidCredentialsMsg = "invalid username, role, or password"

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || strings.TrimSpace(req.Role) == "" {
		writeFailure(w, http.StatusBadRequest, "username, password and role are required")
		return
	}

	// An unknown role string gets the same ambiguous rejection as a role
	// mismatch; a distinct message would leak the valid role set.
	role, err := directory.ParseRole(req.Role)
	if err != nil {
		writeFailure(w, http.StatusUnauthorized, invalidCredentialsMsg)
		return
	}

	profile, tokens, err := a.sessions.Login(r.Context(), req.Username, req.Password, role)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			_ = audit.LogEvent(r.Context(), "auth.login_failed", audit.Actor{},
				map[string]any{"username": req.Username})
			writeFailure(w, http.StatusUnauthorized, invalidCredentialsMsg)
			return
		}
		writeFailure(w, http.StatusInternalServerError, "internal error")
		return
	}

	a.cookies.SetAccess(w, tokens.Access)
	a.cookies.SetRefresh(w, tokens.Refresh)

	_ = audit.LogEvent(r.Context(), "auth.login", audit.Actor{ID: profile.ID, Role: string(profile.Role)},
		map[string]any{"username": profile.Username})

	writeUser(w, http.StatusOK, "Login successful", profile)
}

// handleLogout is idempotent: it clears both cookies whether or not a valid
// session was presented.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if profile, ok := a.sessionsOptional(r); ok {
		_ = audit.LogEvent(r.Context(), "auth.logout", audit.Actor{ID: profile.ID, Role: string(profile.Role)}, nil)
	}
	a.cookies.ClearAll(w)
	writeMessage(w, http.StatusOK, "Logout successful")
}

func (a *API) sessionsOptional(r *http.Request) (directory.Profile, bool) {
	tok, _ := session.ReadCookie(r, session.AccessCookie)
	return a.sessions.Optional(r.Context(), tok)
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	tok, ok := session.ReadCookie(r, session.RefreshCookie)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "refresh token missing")
		return
	}

	access, _, err := a.sessions.Refresh(r.Context(), tok)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionExpired):
			// The session is over; make the browser drop both cookies.
			a.cookies.ClearAll(w)
			writeFailure(w, http.StatusUnauthorized, "session expired, please log in again")
		case errors.Is(err, session.ErrTokenInvalid):
			// Tampered or foreign token. Cookies are left alone: clearing on
			// an attacker-supplied token would let anyone log the user out.
			writeFailure(w, http.StatusForbidden, "invalid refresh token")
		case errors.Is(err, session.ErrPrincipalNotFound):
			a.cookies.ClearAll(w)
			writeFailure(w, http.StatusUnauthorized, "account no longer exists")
		default:
			writeFailure(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	a.cookies.SetAccess(w, access)
	writeMessage(w, http.StatusOK, "Token refreshed")
}

// handleMe serves both /api/auth/me and /api/auth/verify: the guard has
// already resolved a fresh profile.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	profile, ok := session.ProfileFromContext(r.Context())
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeUser(w, http.StatusOK, "", profile)
}
