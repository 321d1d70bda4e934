package model

import "time"

// Account types and connection flags carried from the admin panel.
const (
	AccountTypeProfile = "profile"
	AccountTypePage    = "page"

	ConnectionOfficial   = "official"
	ConnectionUnofficial = "unofficial"
)

// Social account status values.
const (
	AccountStatusConnected    = "connected"
	AccountStatusDisconnected = "disconnected"
)

// SocialAccount is a linked social profile/channel owned by a guard
// (admin or user scope).
type SocialAccount struct {
	ID                   int64      `json:"id"`
	Guard                string     `json:"guard"`
	PlatformID           int64      `json:"platform_id"`
	AccountID            string     `json:"account_id"`
	Name                 string     `json:"name"`
	Avatar               string     `json:"avatar,omitempty"`
	Link                 string     `json:"link,omitempty"`
	Email                *string    `json:"email,omitempty"`
	Token                string     `json:"-"`
	TokenExpireAt        *time.Time `json:"access_token_expire_at,omitempty"`
	RefreshToken         string     `json:"-"`
	RefreshTokenExpireAt *time.Time `json:"refresh_token_expire_at,omitempty"`
	AccountType          string     `json:"account_type"`
	ConnectionType       string     `json:"connection_type"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	// Loaded alongside the account when adapters need credentials.
	Platform *MediaPlatform `json:"platform,omitempty"`
}

// TokenExpiring reports whether the access token is missing, expired or
// expires within the given window.
func (a *SocialAccount) TokenExpiring(window time.Duration) bool {
	if a.Token == "" {
		return true
	}
	if a.TokenExpireAt == nil {
		return false
	}
	return time.Until(*a.TokenExpireAt) < window
}
