package repository

import (
	"context"

	"mx-social/domain/model"
)

// ISocialPost persists posts and their publish lifecycle.
type ISocialPost interface {
	Create(ctx context.Context, post *model.SocialPost) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.SocialPost, error)
	// FetchDue returns pending posts whose schedule time has passed,
	// oldest first.
	FetchDue(ctx context.Context, limit int) ([]*model.SocialPost, error)
	UpdateStatus(ctx context.Context, id int64, status string, response *string, externalID *string) error
}
