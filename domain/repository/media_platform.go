package repository

import (
	"context"

	"mx-social/domain/model"
)

// IMediaPlatform is the platform catalog (credentials + metadata).
type IMediaPlatform interface {
	GetBySlug(ctx context.Context, slug string) (*model.MediaPlatform, error)
	List(ctx context.Context) ([]*model.MediaPlatform, error)
}
