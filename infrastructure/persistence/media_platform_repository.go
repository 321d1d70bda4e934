package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/configuration"
)

// MediaPlatformRepository serves the platform catalog from MySQL.
type MediaPlatformRepository struct {
	db *gorm.DB
}

func NewMediaPlatformRepository(db *gorm.DB) repository.IMediaPlatform {
	return &MediaPlatformRepository{db: db}
}

func (r *MediaPlatformRepository) GetBySlug(ctx context.Context, slug string) (*model.MediaPlatform, error) {
	var platform model.MediaPlatform
	err := r.db.WithContext(ctx).Where("slug = ? AND status = ?", slug, model.PlatformStatusActive).First(&platform).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("platform %q is not configured", slug)
	}
	if err != nil {
		return nil, err
	}
	applyRedirectBase(&platform)
	return &platform, nil
}

func (r *MediaPlatformRepository) List(ctx context.Context) ([]*model.MediaPlatform, error) {
	var platforms []*model.MediaPlatform
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&platforms).Error; err != nil {
		return nil, err
	}
	for _, p := range platforms {
		applyRedirectBase(p)
	}
	return platforms, nil
}

// SeedPlatforms inserts the configured platforms when the catalog is
// empty, so a fresh install can connect accounts without touching MySQL
// by hand.
func SeedPlatforms(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.MediaPlatform{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(staticPlatforms()).Error
}

// StaticPlatformCatalog serves platforms straight from configuration; it
// backs deployments that run without a MySQL catalog.
type StaticPlatformCatalog struct {
	platforms []*model.MediaPlatform
}

func NewStaticPlatformCatalog() repository.IMediaPlatform {
	return &StaticPlatformCatalog{platforms: staticPlatforms()}
}

func (r *StaticPlatformCatalog) GetBySlug(_ context.Context, slug string) (*model.MediaPlatform, error) {
	for _, p := range r.platforms {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, fmt.Errorf("platform %q is not configured", slug)
}

func (r *StaticPlatformCatalog) List(_ context.Context) ([]*model.MediaPlatform, error) {
	return r.platforms, nil
}

func staticPlatforms() []*model.MediaPlatform {
	cfg := configuration.C.Platforms
	platforms := []*model.MediaPlatform{
		{
			ID:     1,
			Name:   "TikTok",
			Slug:   model.PlatformTikTok,
			Status: model.PlatformStatusActive,
			Configuration: model.PlatformConfiguration{
				ClientID:     cfg.TikTok.ClientID,
				ClientSecret: cfg.TikTok.ClientSecret,
				AppVersion:   cfg.TikTok.AppVersion,
			},
		},
		{
			ID:     2,
			Name:   "YouTube",
			Slug:   model.PlatformYouTube,
			Status: model.PlatformStatusActive,
			Configuration: model.PlatformConfiguration{
				ClientID:     cfg.YouTube.ClientID,
				ClientSecret: cfg.YouTube.ClientSecret,
				AppVersion:   cfg.YouTube.AppVersion,
			},
		},
	}
	for _, p := range platforms {
		applyRedirectBase(p)
	}
	return platforms
}

func applyRedirectBase(p *model.MediaPlatform) {
	if p.Configuration.RedirectBase == "" {
		p.Configuration.RedirectBase = configuration.C.App.BaseURL
	}
}
