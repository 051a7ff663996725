package httpapi

import (
	"errors"
	"net/http"

	"streetpoints.org/internal/directory"
	"streetpoints.org/internal/session"
)

// Role sets reused across routes. Debits are performed by store terminals or
// NGO staff acting for a store; listings are NGO-side only.
var (
	ngoRoles   = []directory.Role{directory.RoleNGOAdmin, directory.RoleNGOPartner}
	debitRoles = []directory.Role{directory.RoleStore, directory.RoleNGOAdmin, directory.RoleNGOPartner}
)

// requireAuth authenticates the access cookie and stores the fresh profile in
// the request context. Failures map onto the session taxonomy: expiry is a
// 401 with the expired flag so the client refreshes silently, invalidity is a
// 403 forcing re-login.
func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, _ := session.ReadCookie(r, session.AccessCookie)
		profile, err := a.sessions.Authenticate(r.Context(), tok)
		if err != nil {
			a.writeAuthError(w, err)
			return
		}
		ctx := session.ContextWithProfile(r.Context(), profile)
		next(w, r.WithContext(ctx))
	}
}

func (a *API) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		writeFailure(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, session.ErrSessionExpired):
		writeExpired(w, "session expired")
	case errors.Is(err, session.ErrTokenInvalid):
		writeFailure(w, http.StatusForbidden, "invalid token")
	case errors.Is(err, session.ErrPrincipalNotFound):
		writeFailure(w, http.StatusUnauthorized, "account no longer exists")
	default:
		writeFailure(w, http.StatusInternalServerError, "internal error")
	}
}

// requireRole runs strictly after requireAuth: an unauthenticated caller must
// see the authentication failure, never a role hint.
func (a *API) requireRole(next http.HandlerFunc, allowed ...directory.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := session.ProfileFromContext(r.Context())
		if !ok {
			writeFailure(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !profile.Role.In(allowed...) {
			writeFailure(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		next(w, r)
	}
}
