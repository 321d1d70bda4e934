package repository

import (
	"context"

	"mx-social/domain/dto"
	"mx-social/domain/model"
)

// IPlatformAdapter is the uniform contract every platform integration
// satisfies. AuthRedirect and ExchangeCode raise to the caller; Send and
// AccountDetails never do - they convert failures into structured results
// because schedulers and batch reporting must keep going after one bad
// account.
type IPlatformAdapter interface {
	// AuthRedirect builds the provider consent URL. The returned AuthState
	// (state nonce + PKCE verifier) must be stored by the caller and
	// consumed once at callback time.
	AuthRedirect(platform *model.MediaPlatform) (string, *model.AuthState, error)

	// ExchangeCode posts the callback code plus the stored code verifier to
	// the token endpoint. Non-2xx responses surface as *model.AuthExchangeError
	// carrying the provider body.
	ExchangeCode(ctx context.Context, code, codeVerifier string, platform *model.MediaPlatform) (*dto.TokenResponse, error)

	// RefreshAccessToken hits the same token endpoint with
	// grant_type=refresh_token and returns the raw result; callers inspect
	// the status code.
	RefreshAccessToken(ctx context.Context, platform *model.MediaPlatform, refreshToken string) (*dto.TokenResult, error)

	// GetAccount performs the authenticated who-am-I call and returns the
	// raw result.
	GetAccount(ctx context.Context, token string, platform *model.MediaPlatform) (*dto.ProfileResult, error)

	// CompleteConnection fetches the profile, maps it into a SocialAccount
	// and persists it through the account manager seam.
	CompleteConnection(ctx context.Context, tok *dto.TokenResponse, guard string, platform *model.MediaPlatform, accountType, connectionType string, existingID *int64) (*dto.SaveResult, error)

	// Send publishes one post, enforcing the platform media constraints
	// before any network call.
	Send(ctx context.Context, post *model.SocialPost) *dto.PublishResult

	// AccountDetails lists recent posts mapped to the normalized feed
	// schema. A provider error envelope disconnects the account.
	AccountDetails(ctx context.Context, account *model.SocialAccount) *dto.ActivityResult
}
