package usecase

import (
	"context"
	"fmt"

	"mx-social/domain/dto"
	"mx-social/domain/model"
	"mx-social/domain/repository"
)

type IReportUsecase interface {
	// AccountActivity lists the account's recent remote posts in the
	// normalized feed schema. Failures arrive as a result, not an error.
	AccountActivity(ctx context.Context, accountID int64, guard string) (*dto.ActivityResult, error)
}

type reportUsecase struct {
	accounts  repository.ISocialAccount
	platforms repository.IMediaPlatform
	adapters  AdapterRegistry
}

func NewReportUsecase(accounts repository.ISocialAccount, platforms repository.IMediaPlatform, adapters AdapterRegistry) IReportUsecase {
	return &reportUsecase{accounts: accounts, platforms: platforms, adapters: adapters}
}

func (u *reportUsecase) AccountActivity(ctx context.Context, accountID int64, guard string) (*dto.ActivityResult, error) {
	account, err := u.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Guard != guard {
		return nil, fmt.Errorf("account %d does not belong to this guard", accountID)
	}
	if account.Status != model.AccountStatusConnected {
		return &dto.ActivityResult{Status: false, Message: "Account is disconnected"}, nil
	}
	if account.Platform == nil {
		platforms, err := u.platforms.List(ctx)
		if err == nil {
			for _, p := range platforms {
				if p.ID == account.PlatformID {
					account.Platform = p
					break
				}
			}
		}
	}
	if account.Platform == nil {
		return nil, fmt.Errorf("account %d has no platform configured", accountID)
	}
	adapter, err := u.adapters.Get(account.Platform.Slug)
	if err != nil {
		return nil, err
	}
	return adapter.AccountDetails(ctx, account), nil
}
