package dto

import "time"

// AccountInfo is the adapter-normalized identity of a remote account,
// handed to the account manager for persistence.
type AccountInfo struct {
	AccountID            string     `json:"account_id"`
	Name                 string     `json:"name"`
	Avatar               string     `json:"avatar,omitempty"`
	Link                 string     `json:"link,omitempty"`
	Email                *string    `json:"email,omitempty"`
	Token                string     `json:"token"`
	TokenExpireAt        *time.Time `json:"access_token_expire_at,omitempty"`
	RefreshToken         string     `json:"refresh_token,omitempty"`
	RefreshTokenExpireAt *time.Time `json:"refresh_token_expire_at,omitempty"`
}

// SaveResult is the outcome of persisting a connected account.
type SaveResult struct {
	Status    string `json:"status"` // success | error
	Message   string `json:"message"`
	AccountID int64  `json:"account_id,omitempty"`
}

// ConnectRequest is the manual connect payload (tokens pasted by an
// administrator instead of going through the browser flow).
type ConnectRequest struct {
	AccountID    *int64 `json:"account_id,omitempty"`
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
