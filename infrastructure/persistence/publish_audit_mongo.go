package persistence

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
)

const (
	auditDatabase   = "mx_social"
	auditCollection = "publish_audits"
)

// PublishAuditMongo appends publish attempts to MongoDB. With a nil client
// every write is a logged no-op, so the publish path never depends on
// Mongo being up.
type PublishAuditMongo struct {
	client *mongo.Client
}

func NewPublishAuditMongo(client *mongo.Client) repository.IPublishAudit {
	return &PublishAuditMongo{client: client}
}

func (r *PublishAuditMongo) Record(ctx context.Context, audit *model.PublishAudit) error {
	if r.client == nil {
		logger.GetLogger().Info("MongoDB client is nil - skipping publish audit")
		return nil
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	collection := r.client.Database(auditDatabase).Collection(auditCollection)
	if _, err := collection.InsertOne(ctx, audit); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while recording publish audit")
		return err
	}
	return nil
}
