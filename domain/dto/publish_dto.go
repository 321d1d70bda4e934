package dto

// PublishResult is the normalized outcome of one publish attempt. Send
// never raises; failures arrive here with a sanitized message.
type PublishResult struct {
	Status    bool    `json:"status"`
	Response  string  `json:"response"`
	PublishID string  `json:"publish_id,omitempty"` // TikTok async pull id
	VideoID   string  `json:"video_id,omitempty"`   // YouTube uploaded video id
	URL       *string `json:"url,omitempty"`
}

// ExternalRef returns whichever platform identifier the publish produced.
func (r *PublishResult) ExternalRef() string {
	if r.VideoID != "" {
		return r.VideoID
	}
	return r.PublishID
}

// CreatePostRequest is the schedule/create payload.
type CreatePostRequest struct {
	AccountID   int64   `json:"account_id" binding:"required"`
	Content     string  `json:"content"`
	Link        *string `json:"link,omitempty"`
	FileName    string  `json:"file_name,omitempty"`
	ScheduledAt *string `json:"scheduled_at,omitempty"` // RFC3339
}
