package repository

import (
	"context"

	"mx-social/domain/model"
)

// IPostEvents publishes post lifecycle events to an external bus so other
// systems (reporting, billing) can react. Implementations must be nil-safe
// no-ops when the bus is not configured.
type IPostEvents interface {
	PostPublished(ctx context.Context, post *model.SocialPost, externalRef string) error
}

// IPublishAudit records every publish attempt to an append-only trail.
type IPublishAudit interface {
	Record(ctx context.Context, audit *model.PublishAudit) error
}
