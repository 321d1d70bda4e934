package servicebus

import (
	"context"
	"encoding/json"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
)

// NewServiceBus connects Azure Service Bus with the default credential
// chain. Callers treat a nil client as "event publishing disabled".
func NewServiceBus(_ context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, nil
	}
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, credential, nil)
}

// PostEvents mirrors post lifecycle events onto an Azure Service Bus
// queue for deployments that run on Azure instead of GCP.
type PostEvents struct {
	client *azservicebus.Client
	queue  string
}

func NewPostEvents(client *azservicebus.Client, queue string) repository.IPostEvents {
	return &PostEvents{client: client, queue: queue}
}

func (p *PostEvents) PostPublished(ctx context.Context, post *model.SocialPost, externalRef string) error {
	if p.client == nil {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"post_id":      post.ID,
		"account_id":   post.AccountID,
		"external_ref": externalRef,
		"status":       post.Status,
	})
	if err != nil {
		return err
	}

	sender, err := p.client.NewSender(p.queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return err
	}
	defer func(sender *azservicebus.Sender, ctx context.Context) {
		if err := sender.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
		}
	}(sender, ctx)

	if err := sender.SendMessage(ctx, &azservicebus.Message{Body: payload}, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return err
	}
	return nil
}
