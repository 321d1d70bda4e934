package usecase

import (
	"context"

	"mx-social/infrastructure/logger"
)

type IMaintenanceUsecase interface {
	// RunSweep refreshes expiring tokens then publishes due posts. Both
	// halves run even if the first fails; the first error is returned.
	RunSweep(ctx context.Context) error
}

type maintenanceUsecase struct {
	accounts  IAccountUsecase
	publisher IPublishUsecase
	batchSize int
}

func NewMaintenanceUsecase(accounts IAccountUsecase, publisher IPublishUsecase, batchSize int) IMaintenanceUsecase {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &maintenanceUsecase{accounts: accounts, publisher: publisher, batchSize: batchSize}
}

func (u *maintenanceUsecase) RunSweep(ctx context.Context) error {
	refreshed, refreshErr := u.accounts.RefreshExpiring(ctx, u.batchSize)
	if refreshErr != nil {
		logger.GetLogger().WithField("error", refreshErr).Error("Token refresh sweep failed")
	} else if refreshed > 0 {
		logger.GetLogger().WithField("refreshed", refreshed).Info("Access tokens refreshed")
	}

	if err := u.publisher.ProcessDuePosts(ctx, u.batchSize); err != nil {
		logger.GetLogger().WithField("error", err).Error("Due post sweep failed")
		if refreshErr == nil {
			return err
		}
	}
	return refreshErr
}
