package pubsub

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"

	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
)

// NewClient connects Google Cloud Pub/Sub. Callers treat a nil client as
// "event publishing disabled".
func NewClient(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, nil
	}
	return pubsub.NewClient(ctx, projectID)
}

// PostEvents publishes post lifecycle events to a Pub/Sub topic. With a
// nil client every publish is a logged no-op.
type PostEvents struct {
	client *pubsub.Client
	topic  string
}

func NewPostEvents(client *pubsub.Client, topic string) repository.IPostEvents {
	return &PostEvents{client: client, topic: topic}
}

type postPublishedEvent struct {
	PostID      int64  `json:"post_id"`
	AccountID   int64  `json:"account_id"`
	Platform    string `json:"platform,omitempty"`
	ExternalRef string `json:"external_ref,omitempty"`
	Status      string `json:"status"`
}

func (p *PostEvents) PostPublished(ctx context.Context, post *model.SocialPost, externalRef string) error {
	if p.client == nil {
		return nil
	}

	event := postPublishedEvent{
		PostID:      post.ID,
		AccountID:   post.AccountID,
		ExternalRef: externalRef,
		Status:      post.Status,
	}
	if post.Account != nil && post.Account.Platform != nil {
		event.Platform = post.Account.Platform.Slug
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := p.client.Topic(p.topic)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := p.client.CreateTopic(ctx, p.topic); err != nil {
			return err
		}
		topic = p.client.Topic(p.topic)
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while publishing post event")
		return err
	}
	logger.GetLogger().WithField("server ID", serverID).Info("Post event published")
	return nil
}
