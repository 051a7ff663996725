package session

import "errors"

// The failure taxonomy every protected endpoint maps onto. The distinction
// between ErrSessionExpired and ErrTokenInvalid is load-bearing: expiry tells
// the client to refresh silently, invalidity forces a re-login.
var (
	// ErrInvalidCredentials is returned for unknown username, wrong
	// password AND claimed-role mismatch alike, so a caller cannot probe
	// which check failed.
	ErrInvalidCredentials = errors.New("session: invalid credentials")
	// ErrUnauthenticated means no credential was presented at all.
	ErrUnauthenticated = errors.New("session: no credential presented")
	// ErrSessionExpired means the credential parsed and verified but its
	// expiry has passed.
	ErrSessionExpired = errors.New("session: expired")
	// ErrTokenInvalid means the credential is malformed or its signature
	// does not check out.
	ErrTokenInvalid = errors.New("session: invalid token")
	// ErrPrincipalNotFound means the token was valid but its subject no
	// longer exists; treated as session-ending.
	ErrPrincipalNotFound = errors.New("session: principal not found")
)
