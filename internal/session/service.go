// Package session is the login/refresh/verify state machine. It owns the
// failure taxonomy and the mapping of credentials to browser cookies; token
// mechanics live in internal/token and principal storage in
// internal/directory.
package session

import (
	"context"
	"errors"
	"time"

	"streetpoints.org/internal/directory"
	"streetpoints.org/internal/token"
)

// Tokens is the credential pair minted at login.
type Tokens struct {
	Access           string
	AccessExpiresAt  time.Time
	Refresh          string
	RefreshExpiresAt time.Time
}

// Service orchestrates credential issuance and verification.
type Service struct {
	directory directory.Directory
	codec     *token.Codec
}

// NewService wires the auth core to its collaborators.
func NewService(dir directory.Directory, codec *token.Codec) *Service {
	return &Service{directory: dir, codec: codec}
}

// Codec exposes the credential codec, mainly so the HTTP layer can size
// cookie lifetimes to token TTLs.
func (s *Service) Codec() *token.Codec { return s.codec }

// Login authenticates username+password+claimed role and mints both tokens.
// Unknown user, role mismatch and wrong password are deliberately
// indistinguishable.
func (s *Service) Login(ctx context.Context, username, password string, claimedRole directory.Role) (directory.Profile, Tokens, error) {
	principal, err := s.directory.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return directory.Profile{}, Tokens{}, ErrInvalidCredentials
		}
		return directory.Profile{}, Tokens{}, err
	}
	if principal.Role != claimedRole {
		return directory.Profile{}, Tokens{}, ErrInvalidCredentials
	}
	if err := directory.VerifyPassword(principal.PasswordHash, password); err != nil {
		return directory.Profile{}, Tokens{}, ErrInvalidCredentials
	}

	access, accessExp, err := s.codec.IssueAccess(principal.ID, string(principal.Role))
	if err != nil {
		return directory.Profile{}, Tokens{}, err
	}
	refresh, refreshExp, err := s.codec.IssueRefresh(principal.ID)
	if err != nil {
		return directory.Profile{}, Tokens{}, err
	}

	return principal.Profile(), Tokens{
		Access:           access,
		AccessExpiresAt:  accessExp,
		Refresh:          refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Refresh redeems a refresh token for a fresh access token. The refresh
// token itself is not rotated. The new access token carries the principal's
// CURRENT role, not the role at login time.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, time.Time, error) {
	if refreshToken == "" {
		return "", time.Time{}, ErrUnauthenticated
	}
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return "", time.Time{}, ErrSessionExpired
		}
		return "", time.Time{}, ErrTokenInvalid
	}
	principal, err := s.directory.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return "", time.Time{}, ErrPrincipalNotFound
		}
		return "", time.Time{}, err
	}
	return s.codec.IssueAccess(principal.ID, string(principal.Role))
}

// Authenticate verifies an access token and returns the principal's public
// profile, freshly loaded so profile edits since issuance are reflected.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (directory.Profile, error) {
	if accessToken == "" {
		return directory.Profile{}, ErrUnauthenticated
	}
	claims, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return directory.Profile{}, ErrSessionExpired
		}
		return directory.Profile{}, ErrTokenInvalid
	}
	principal, err := s.directory.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return directory.Profile{}, ErrPrincipalNotFound
		}
		return directory.Profile{}, err
	}
	return principal.Profile(), nil
}

// Optional resolves the profile when a valid token is present and reports
// absence or invalidity as "no principal", never as an error.
func (s *Service) Optional(ctx context.Context, accessToken string) (directory.Profile, bool) {
	profile, err := s.Authenticate(ctx, accessToken)
	if err != nil {
		return directory.Profile{}, false
	}
	return profile, true
}
