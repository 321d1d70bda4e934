package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mx-social/domain/dto"
	"mx-social/domain/model"
)

// TestReportUsecase_AccountActivity checks the adapter feed is returned for
// a connected account owned by the caller.
func TestReportUsecase_AccountActivity(t *testing.T) {
	account := &model.SocialAccount{
		ID:         7,
		Guard:      "admin",
		PlatformID: 1,
		Status:     model.AccountStatusConnected,
	}
	store := newFakeAccountStore(account)
	adapter := &fakeAdapter{
		activity: &dto.ActivityResult{
			Status:   true,
			Response: &dto.FeedResponse{Data: []dto.FeedItem{{Message: "hello"}}},
		},
	}
	uc := NewReportUsecase(store, &fakePlatformCatalog{platforms: []*model.MediaPlatform{tiktokPlatform()}}, AdapterRegistry{model.PlatformTikTok: adapter})

	result, err := uc.AccountActivity(context.Background(), 7, "admin")
	require.NoError(t, err)
	require.True(t, result.Status)
	require.Len(t, result.Response.Data, 1)
	require.Equal(t, "hello", result.Response.Data[0].Message)
}

// TestReportUsecase_WrongGuard checks ownership is enforced before any
// provider call.
func TestReportUsecase_WrongGuard(t *testing.T) {
	account := &model.SocialAccount{ID: 7, Guard: "admin", PlatformID: 1, Status: model.AccountStatusConnected}
	uc := NewReportUsecase(newFakeAccountStore(account), &fakePlatformCatalog{platforms: []*model.MediaPlatform{tiktokPlatform()}}, AdapterRegistry{model.PlatformTikTok: &fakeAdapter{}})

	_, err := uc.AccountActivity(context.Background(), 7, "someone-else")
	require.Error(t, err)
}

// TestReportUsecase_Disconnected checks disconnected accounts short-circuit
// with a failed result instead of calling the provider.
func TestReportUsecase_Disconnected(t *testing.T) {
	account := &model.SocialAccount{ID: 7, Guard: "admin", PlatformID: 1, Status: model.AccountStatusDisconnected}
	uc := NewReportUsecase(newFakeAccountStore(account), &fakePlatformCatalog{platforms: []*model.MediaPlatform{tiktokPlatform()}}, AdapterRegistry{model.PlatformTikTok: &fakeAdapter{}})

	result, err := uc.AccountActivity(context.Background(), 7, "admin")
	require.NoError(t, err)
	require.False(t, result.Status)
	require.Equal(t, "Account is disconnected", result.Message)
}
