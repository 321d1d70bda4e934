package model

import "time"

// Post status values. A post is immutable once sent except for status,
// response and external reference.
const (
	PostStatusPending    = "pending"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)

// PostFile is a single media attachment stored on the application disk.
type PostFile struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type,omitempty"`
}

// SocialPost is a user authored item targeted at one connected account.
type SocialPost struct {
	ID          int64      `json:"id"`
	AccountID   int64      `json:"account_id"`
	Content     string     `json:"content"`
	Link        *string    `json:"link,omitempty"`
	File        *PostFile  `json:"file,omitempty"`
	Status      string     `json:"status"`
	Response    *string    `json:"response,omitempty"`
	ExternalID  *string    `json:"external_id,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Account *SocialAccount `json:"account,omitempty"`
}

// PublishAudit is an append-only record of one publish attempt.
type PublishAudit struct {
	PostID      int64     `json:"post_id" bson:"postId"`
	AccountID   int64     `json:"account_id" bson:"accountId"`
	Platform    string    `json:"platform" bson:"platform"`
	Guard       string    `json:"guard" bson:"guard"`
	Status      bool      `json:"status" bson:"status"`
	Response    string    `json:"response" bson:"response"`
	ExternalRef string    `json:"external_ref,omitempty" bson:"externalRef,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
}
