package model

import "fmt"

// ConfigurationError signals missing or invalid platform credentials.
type ConfigurationError struct {
	Platform string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s configuration invalid: %s", e.Platform, e.Reason)
}

// AuthExchangeError signals a non-success response from a token endpoint.
// Body carries the provider's raw error body for the caller to surface.
type AuthExchangeError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("failed to get %s access token (%d): %s", e.Platform, e.StatusCode, e.Body)
}

// AccountLinkError signals a profile response missing the expected
// identity fields.
type AccountLinkError struct {
	Platform string
	Reason   string
}

func (e *AccountLinkError) Error() string {
	return fmt.Sprintf("cannot link %s account: %s", e.Platform, e.Reason)
}

// MediaConstraintError signals a missing or wrong-type attachment, or an
// attachment the provider cannot reach. Raised before any network call.
type MediaConstraintError struct {
	Reason string
}

func (e *MediaConstraintError) Error() string { return e.Reason }

// PublishError signals that the provider rejected the publish call.
type PublishError struct {
	Platform string
	Message  string
}

func (e *PublishError) Error() string { return e.Message }

// ActivityFetchError signals that the provider rejected the listing call.
type ActivityFetchError struct {
	Platform string
	Message  string
}

func (e *ActivityFetchError) Error() string { return e.Message }
