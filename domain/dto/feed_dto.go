package dto

// CountSummary wraps a single counter the way the reporting UI expects it.
type CountSummary struct {
	TotalCount int64 `json:"total_count"`
}

// FeedReactions is the like counter envelope.
type FeedReactions struct {
	Summary CountSummary `json:"summary"`
}

// FeedComments is the comment counter envelope.
type FeedComments struct {
	Summary CountSummary `json:"summary"`
}

// FeedShares is the share counter envelope.
type FeedShares struct {
	Count int64 `json:"count"`
}

// FeedViews is the view counter envelope.
type FeedViews struct {
	Count int64 `json:"count"`
}

// FeedPrivacy tags the audience of a remote post.
type FeedPrivacy struct {
	Value string `json:"value"`
}

// FeedItem is a platform-agnostic view of one remote post, used by the
// engagement report. Field names match the reporting schema shared by all
// platforms.
type FeedItem struct {
	FullPicture  string        `json:"full_picture"`
	Message      string        `json:"message"`
	CreatedTime  interface{}   `json:"created_time"`
	Reactions    FeedReactions `json:"reactions"`
	Comments     FeedComments  `json:"comments"`
	Shares       FeedShares    `json:"shares"`
	Views        *FeedViews    `json:"views,omitempty"`
	PermalinkURL string        `json:"permalink_url"`
	Privacy      FeedPrivacy   `json:"privacy"`
	Type         string        `json:"type"`
}

// FeedResponse is the normalized activity listing.
type FeedResponse struct {
	Data []FeedItem `json:"data"`
}

// ActivityResult is the outcome of one activity fetch. Like PublishResult
// it never escapes as an error; failures land here with a message.
type ActivityResult struct {
	Status   bool          `json:"status"`
	Message  string        `json:"message,omitempty"`
	Response *FeedResponse `json:"response,omitempty"`
}
