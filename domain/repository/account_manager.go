package repository

import (
	"context"

	"mx-social/domain/dto"
	"mx-social/domain/model"
)

// IAccountManager is the persistence seam adapters talk to. Adapters never
// touch storage directly; this keeps them working against Postgres, MSSQL
// or a test double alike.
type IAccountManager interface {
	SaveAccount(ctx context.Context, guard string, platform *model.MediaPlatform, info *dto.AccountInfo, accountType, connectionType string, existingID *int64) (*dto.SaveResult, error)
	DisconnectAccount(ctx context.Context, account *model.SocialAccount) error
}

// ISocialAccount is the full account store used by use cases.
type ISocialAccount interface {
	IAccountManager
	GetByID(ctx context.Context, id int64) (*model.SocialAccount, error)
	ListByGuard(ctx context.Context, guard string) ([]*model.SocialAccount, error)
	ListExpiring(ctx context.Context, limit int) ([]*model.SocialAccount, error)
	UpdateTokens(ctx context.Context, id int64, tok *dto.TokenResponse) error
}
