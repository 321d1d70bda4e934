package model

import "time"

// AuthState is the transient OAuth/PKCE state for one in-flight connect
// flow. It is created when the redirect URL is built, stored keyed by the
// state nonce and consumed exactly once at callback time.
type AuthState struct {
	State        string    `json:"state"`
	CodeVerifier string    `json:"code_verifier"`
	PlatformSlug string    `json:"platform_slug"`
	Guard        string    `json:"guard"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the state can no longer be consumed.
func (s *AuthState) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}
