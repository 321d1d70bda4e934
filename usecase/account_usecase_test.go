package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mx-social/domain/dto"
	"mx-social/domain/model"
	"mx-social/infrastructure/cache"
)

func tiktokPlatform() *model.MediaPlatform {
	return &model.MediaPlatform{
		ID:     1,
		Name:   "TikTok",
		Slug:   model.PlatformTikTok,
		Status: model.PlatformStatusActive,
		Configuration: model.PlatformConfiguration{
			ClientID:     "key",
			ClientSecret: "secret",
			RedirectBase: "https://app.example.com",
		},
	}
}

// TestAccountUsecase_AuthRedirect checks the adapter state is stored with
// the caller's guard before the redirect URL is handed back.
func TestAccountUsecase_AuthRedirect(t *testing.T) {
	states := cache.NewMemoryAuthStateStore()
	adapter := &fakeAdapter{
		redirectURL: "https://www.tiktok.com/v2/auth/authorize/?state=nonce-1",
		authState: &model.AuthState{
			State:        "nonce-1",
			CodeVerifier: "verifier-1",
			PlatformSlug: model.PlatformTikTok,
			ExpiresAt:    time.Now().Add(10 * time.Minute),
		},
	}
	u := NewAccountUsecase(
		&fakePlatformCatalog{platforms: []*model.MediaPlatform{tiktokPlatform()}},
		newFakeAccountStore(),
		states,
		AdapterRegistry{model.PlatformTikTok: adapter},
	)

	redirect, err := u.AuthRedirect(context.Background(), model.PlatformTikTok, "admin")
	require.NoError(t, err)
	require.Equal(t, adapter.redirectURL, redirect)

	stored, err := states.Take(context.Background(), "nonce-1")
	require.NoError(t, err)
	require.Equal(t, "admin", stored.Guard)
	require.Equal(t, "verifier-1", stored.CodeVerifier)
}

// TestAccountUsecase_HandleCallback checks the stored verifier reaches the
// token exchange and the nonce cannot be replayed.
func TestAccountUsecase_HandleCallback(t *testing.T) {
	states := cache.NewMemoryAuthStateStore()
	require.NoError(t, states.Put(context.Background(), &model.AuthState{
		State:        "nonce-1",
		CodeVerifier: "verifier-1",
		PlatformSlug: model.PlatformTikTok,
		Guard:        "admin",
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}))

	adapter := &fakeAdapter{
		token:      &dto.TokenResponse{AccessToken: "at-1"},
		saveResult: &dto.SaveResult{Status: "success", Message: "Account connected successfully", AccountID: 7},
	}
	u := NewAccountUsecase(
		&fakePlatformCatalog{platforms: []*model.MediaPlatform{tiktokPlatform()}},
		newFakeAccountStore(),
		states,
		AdapterRegistry{model.PlatformTikTok: adapter},
	)

	result, err := u.HandleCallback(context.Background(), model.PlatformTikTok, "auth-code", "nonce-1")
	require.NoError(t, err)
	require.Equal(t, "success", result.Status)
	require.Equal(t, []string{"auth-code"}, adapter.exchangedCodes)
	require.Equal(t, []string{"verifier-1"}, adapter.exchangedVerifiers)
	require.Equal(t, 1, adapter.completed)

	// Replaying the same nonce must fail.
	_, err = u.HandleCallback(context.Background(), model.PlatformTikTok, "auth-code", "nonce-1")
	require.ErrorIs(t, err, cache.ErrStateNotFound)
}

// TestAccountUsecase_HandleCallback_WrongPlatform checks a nonce minted
// for one platform cannot complete another platform's callback.
func TestAccountUsecase_HandleCallback_WrongPlatform(t *testing.T) {
	states := cache.NewMemoryAuthStateStore()
	require.NoError(t, states.Put(context.Background(), &model.AuthState{
		State:        "nonce-1",
		PlatformSlug: model.PlatformYouTube,
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}))

	u := NewAccountUsecase(
		&fakePlatformCatalog{platforms: []*model.MediaPlatform{tiktokPlatform()}},
		newFakeAccountStore(),
		states,
		AdapterRegistry{model.PlatformTikTok: &fakeAdapter{}},
	)

	_, err := u.HandleCallback(context.Background(), model.PlatformTikTok, "auth-code", "nonce-1")
	require.ErrorIs(t, err, ErrStateMismatch)
}

// TestAccountUsecase_RefreshExpiring checks a successful refresh stores
// the new tokens and a rejected one disconnects the account.
func TestAccountUsecase_RefreshExpiring(t *testing.T) {
	platform := tiktokPlatform()
	good := &model.SocialAccount{ID: 1, Guard: "admin", PlatformID: 1, Platform: platform, RefreshToken: "rt-1", Status: model.AccountStatusConnected}
	bad := &model.SocialAccount{ID: 2, Guard: "admin", PlatformID: 1, Platform: platform, RefreshToken: "rt-2", Status: model.AccountStatusConnected}

	store := newFakeAccountStore(good, bad)
	store.expiring = []*model.SocialAccount{good}

	adapter := &fakeAdapter{
		refreshResult: &dto.TokenResult{
			StatusCode: 200,
			Token:      &dto.TokenResponse{AccessToken: "at-new", ExpiresIn: 86400},
		},
	}
	u := NewAccountUsecase(
		&fakePlatformCatalog{platforms: []*model.MediaPlatform{platform}},
		store,
		cache.NewMemoryAuthStateStore(),
		AdapterRegistry{model.PlatformTikTok: adapter},
	)

	refreshed, err := u.RefreshExpiring(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 1, refreshed)
	require.Equal(t, "at-new", store.updated[1].AccessToken)
	require.Empty(t, store.disconnects)

	// Provider rejects the second account's refresh token.
	store.expiring = []*model.SocialAccount{bad}
	adapter.refreshResult = &dto.TokenResult{StatusCode: 400, Body: []byte(`{"error":"invalid_grant"}`)}

	refreshed, err = u.RefreshExpiring(context.Background(), 10)
	require.NoError(t, err)
	require.Zero(t, refreshed)
	require.Equal(t, []int64{2}, store.disconnects)
}

// TestAccountUsecase_Disconnect checks guard ownership is enforced.
func TestAccountUsecase_Disconnect(t *testing.T) {
	account := &model.SocialAccount{ID: 1, Guard: "admin", PlatformID: 1, Status: model.AccountStatusConnected}
	store := newFakeAccountStore(account)

	u := NewAccountUsecase(
		&fakePlatformCatalog{platforms: []*model.MediaPlatform{tiktokPlatform()}},
		store,
		cache.NewMemoryAuthStateStore(),
		AdapterRegistry{},
	)

	require.Error(t, u.Disconnect(context.Background(), 1, "other"))
	require.NoError(t, u.Disconnect(context.Background(), 1, "admin"))
	require.Equal(t, []int64{1}, store.disconnects)
}
