package model

import "time"

// Platform slugs supported by the adapter registry.
const (
	PlatformTikTok  = "tiktok"
	PlatformYouTube = "youtube"
)

// Platform status values.
const (
	PlatformStatusActive   = "active"
	PlatformStatusDisabled = "disabled"
)

// PlatformConfiguration holds the tenant supplied app credentials for one
// platform. Adapters read it, administrators edit it.
type PlatformConfiguration struct {
	ClientID     string `json:"client_id" gorm:"column:client_id"`
	ClientSecret string `json:"client_secret" gorm:"column:client_secret"`
	AppVersion   string `json:"app_version" gorm:"column:app_version"` // overrides the adapter default (v2/v3)
	RedirectBase string `json:"redirect_base" gorm:"column:redirect_base"`
}

// MediaPlatform is one connectable social platform (TikTok, YouTube, ...).
type MediaPlatform struct {
	ID            int64                 `json:"id" gorm:"primaryKey"`
	Name          string                `json:"name"`
	Slug          string                `json:"slug" gorm:"uniqueIndex"`
	Status        string                `json:"status"`
	Configuration PlatformConfiguration `json:"configuration" gorm:"embedded;embeddedPrefix:cfg_"`
	CreatedAt     time.Time             `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time             `json:"updated_at" gorm:"autoUpdateTime"`
}

func (MediaPlatform) TableName() string { return "media_platforms" }

// CallbackURL is the registered OAuth redirect target for this platform.
func (p *MediaPlatform) CallbackURL() string {
	base := p.Configuration.RedirectBase
	if base == "" {
		base = "http://localhost:10001"
	}
	return base + "/account/" + p.Slug + "/callback"
}
