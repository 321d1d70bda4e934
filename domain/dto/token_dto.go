package dto

import "encoding/json"

// TokenResponse is the parsed body of a successful token exchange or
// refresh. Fields absent from a provider's response stay zero.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	ExpiresIn        int64  `json:"expires_in,omitempty"`
	RefreshExpiresIn int64  `json:"refresh_expires_in,omitempty"`
	OpenID           string `json:"open_id,omitempty"`
	Scope            string `json:"scope,omitempty"`
	TokenType        string `json:"token_type,omitempty"`
}

// TokenResult is the raw outcome of a refresh call. Refresh does not fail
// on non-2xx; callers inspect StatusCode before trusting Token.
type TokenResult struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body,omitempty"`
	Token      *TokenResponse  `json:"token,omitempty"`
}

// Successful reports whether the provider accepted the refresh.
func (r *TokenResult) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ProfileResult is the raw outcome of a who-am-I call.
type ProfileResult struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// Successful reports whether the profile fetch succeeded.
func (r *ProfileResult) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
