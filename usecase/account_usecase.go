package usecase

import (
	"context"
	"errors"
	"fmt"

	"mx-social/domain/dto"
	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
)

// AdapterRegistry maps a platform slug to its adapter.
type AdapterRegistry map[string]repository.IPlatformAdapter

func (r AdapterRegistry) Get(slug string) (repository.IPlatformAdapter, error) {
	adapter, ok := r[slug]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for platform %q", slug)
	}
	return adapter, nil
}

var ErrStateMismatch = errors.New("authorization state does not match this platform")

type IAccountUsecase interface {
	// AuthRedirect builds the provider consent URL and stores the
	// in-flight state keyed by its nonce.
	AuthRedirect(ctx context.Context, slug, guard string) (string, error)
	// HandleCallback consumes the state nonce exactly once, exchanges the
	// code and persists the connected account.
	HandleCallback(ctx context.Context, slug, code, nonce string) (*dto.SaveResult, error)
	ListAccounts(ctx context.Context, guard string) ([]*model.SocialAccount, error)
	GetAccount(ctx context.Context, id int64, guard string) (*model.SocialAccount, error)
	Disconnect(ctx context.Context, id int64, guard string) error
	// RefreshExpiring renews access tokens that run out soon and returns
	// how many accounts were refreshed.
	RefreshExpiring(ctx context.Context, limit int) (int, error)
	ListPlatforms(ctx context.Context) ([]*model.MediaPlatform, error)
}

type accountUsecase struct {
	platforms repository.IMediaPlatform
	accounts  repository.ISocialAccount
	states    repository.IAuthState
	adapters  AdapterRegistry
}

func NewAccountUsecase(platforms repository.IMediaPlatform, accounts repository.ISocialAccount, states repository.IAuthState, adapters AdapterRegistry) IAccountUsecase {
	return &accountUsecase{platforms: platforms, accounts: accounts, states: states, adapters: adapters}
}

func (u *accountUsecase) AuthRedirect(ctx context.Context, slug, guard string) (string, error) {
	platform, err := u.platforms.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	adapter, err := u.adapters.Get(slug)
	if err != nil {
		return "", err
	}
	redirect, state, err := adapter.AuthRedirect(platform)
	if err != nil {
		return "", err
	}
	state.Guard = guard
	if err := u.states.Put(ctx, state); err != nil {
		return "", err
	}
	return redirect, nil
}

func (u *accountUsecase) HandleCallback(ctx context.Context, slug, code, nonce string) (*dto.SaveResult, error) {
	state, err := u.states.Take(ctx, nonce)
	if err != nil {
		return nil, err
	}
	if state.PlatformSlug != slug {
		return nil, ErrStateMismatch
	}
	platform, err := u.platforms.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	adapter, err := u.adapters.Get(slug)
	if err != nil {
		return nil, err
	}
	tok, err := adapter.ExchangeCode(ctx, code, state.CodeVerifier, platform)
	if err != nil {
		return nil, err
	}
	return adapter.CompleteConnection(ctx, tok, state.Guard, platform, model.AccountTypeProfile, model.ConnectionOfficial, nil)
}

func (u *accountUsecase) ListAccounts(ctx context.Context, guard string) ([]*model.SocialAccount, error) {
	accounts, err := u.accounts.ListByGuard(ctx, guard)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		u.attachPlatform(ctx, account)
	}
	return accounts, nil
}

func (u *accountUsecase) GetAccount(ctx context.Context, id int64, guard string) (*model.SocialAccount, error) {
	account, err := u.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Guard != guard {
		return nil, fmt.Errorf("account %d does not belong to this guard", id)
	}
	u.attachPlatform(ctx, account)
	return account, nil
}

func (u *accountUsecase) Disconnect(ctx context.Context, id int64, guard string) error {
	account, err := u.GetAccount(ctx, id, guard)
	if err != nil {
		return err
	}
	return u.accounts.DisconnectAccount(ctx, account)
}

func (u *accountUsecase) RefreshExpiring(ctx context.Context, limit int) (int, error) {
	expiring, err := u.accounts.ListExpiring(ctx, limit)
	if err != nil {
		return 0, err
	}
	refreshed := 0
	for _, account := range expiring {
		u.attachPlatform(ctx, account)
		if account.Platform == nil {
			continue
		}
		adapter, err := u.adapters.Get(account.Platform.Slug)
		if err != nil {
			continue
		}
		result, err := adapter.RefreshAccessToken(ctx, account.Platform, account.RefreshToken)
		if err != nil {
			logger.GetLogger().
				WithField("account_id", account.ID).
				WithField("error", err).
				Warn("Token refresh failed")
			continue
		}
		if !result.Successful() {
			logger.GetLogger().
				WithField("account_id", account.ID).
				WithField("status_code", result.StatusCode).
				WithField("body", string(result.Body)).
				Warn("Provider rejected token refresh; disconnecting account")
			if err := u.accounts.DisconnectAccount(ctx, account); err != nil {
				logger.GetLogger().WithField("error", err).Error("Failed to disconnect account")
			}
			continue
		}
		if result.Token == nil {
			continue
		}
		if err := u.accounts.UpdateTokens(ctx, account.ID, result.Token); err != nil {
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (u *accountUsecase) ListPlatforms(ctx context.Context) ([]*model.MediaPlatform, error) {
	return u.platforms.List(ctx)
}

// attachPlatform is best effort; listings still work when the catalog has
// lost a platform row.
func (u *accountUsecase) attachPlatform(ctx context.Context, account *model.SocialAccount) {
	if account.Platform != nil {
		return
	}
	platforms, err := u.platforms.List(ctx)
	if err != nil {
		return
	}
	for _, p := range platforms {
		if p.ID == account.PlatformID {
			account.Platform = p
			return
		}
	}
}
