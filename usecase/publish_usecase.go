package usecase

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"mx-social/domain/dto"
	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
)

// postBroadcaster pushes live status updates to connected panels.
type postBroadcaster interface {
	BroadcastPostStatus(post *model.SocialPost)
}

type IPublishUsecase interface {
	CreatePost(ctx context.Context, guard string, req *dto.CreatePostRequest) (*model.SocialPost, error)
	GetPost(ctx context.Context, id int64, guard string) (*model.SocialPost, error)
	// Publish sends one post through its platform adapter and records the
	// outcome. The returned result is never nil.
	Publish(ctx context.Context, postID int64) (*dto.PublishResult, error)
	// ProcessDuePosts publishes pending posts whose schedule has passed.
	ProcessDuePosts(ctx context.Context, batchSize int) error
}

type publishUsecase struct {
	posts     repository.ISocialPost
	accounts  repository.ISocialAccount
	platforms repository.IMediaPlatform
	adapters  AdapterRegistry
	hub       postBroadcaster
	events    []repository.IPostEvents
	audit     repository.IPublishAudit
}

func NewPublishUsecase(posts repository.ISocialPost, accounts repository.ISocialAccount, platforms repository.IMediaPlatform, adapters AdapterRegistry, hub postBroadcaster, audit repository.IPublishAudit, events ...repository.IPostEvents) IPublishUsecase {
	return &publishUsecase{
		posts:     posts,
		accounts:  accounts,
		platforms: platforms,
		adapters:  adapters,
		hub:       hub,
		audit:     audit,
		events:    events,
	}
}

func (u *publishUsecase) CreatePost(ctx context.Context, guard string, req *dto.CreatePostRequest) (*model.SocialPost, error) {
	account, err := u.accounts.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Guard != guard {
		return nil, fmt.Errorf("account %d does not belong to this guard", req.AccountID)
	}
	if account.Status != model.AccountStatusConnected {
		return nil, fmt.Errorf("account %d is not connected", req.AccountID)
	}

	post := &model.SocialPost{
		AccountID: req.AccountID,
		Content:   req.Content,
		Link:      req.Link,
		Status:    model.PostStatusPending,
	}
	if req.FileName != "" {
		post.File = &model.PostFile{
			FileName: req.FileName,
			MimeType: mime.TypeByExtension(filepath.Ext(req.FileName)),
		}
	}
	if req.ScheduledAt != nil && *req.ScheduledAt != "" {
		at, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			return nil, fmt.Errorf("scheduled_at must be RFC3339: %w", err)
		}
		post.ScheduledAt = &at
	}
	if _, err := u.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (u *publishUsecase) GetPost(ctx context.Context, id int64, guard string) (*model.SocialPost, error) {
	post, err := u.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account, err := u.accounts.GetByID(ctx, post.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Guard != guard {
		return nil, fmt.Errorf("post %d does not belong to this guard", id)
	}
	post.Account = account
	return post, nil
}

func (u *publishUsecase) Publish(ctx context.Context, postID int64) (*dto.PublishResult, error) {
	post, err := u.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	account, err := u.accounts.GetByID(ctx, post.AccountID)
	if err != nil {
		return nil, err
	}
	post.Account = account
	u.attachPlatform(ctx, account)
	if account.Platform == nil {
		return nil, fmt.Errorf("account %d has no platform configured", account.ID)
	}
	adapter, err := u.adapters.Get(account.Platform.Slug)
	if err != nil {
		return nil, err
	}

	post.Status = model.PostStatusPublishing
	if err := u.posts.UpdateStatus(ctx, post.ID, model.PostStatusPublishing, nil, nil); err != nil {
		return nil, err
	}
	u.broadcast(post)

	result := adapter.Send(ctx, post)

	status := model.PostStatusFailed
	var externalRef *string
	if result.Status {
		status = model.PostStatusPublished
		if ref := result.ExternalRef(); ref != "" {
			externalRef = &ref
		}
	}
	response := result.Response
	if err := u.posts.UpdateStatus(ctx, post.ID, status, &response, externalRef); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to record publish outcome")
	}
	post.Status = status
	post.Response = &response
	if externalRef != nil {
		post.ExternalID = externalRef
	}
	u.broadcast(post)

	if result.Status {
		for _, sink := range u.events {
			if sink == nil {
				continue
			}
			if err := sink.PostPublished(ctx, post, result.ExternalRef()); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Post event delivery failed")
			}
		}
	}
	u.recordAudit(ctx, post, result)
	return result, nil
}

func (u *publishUsecase) ProcessDuePosts(ctx context.Context, batchSize int) error {
	due, err := u.posts.FetchDue(ctx, batchSize)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, post := range due {
		post := post
		g.Go(func() error {
			result, err := u.Publish(ctx, post.ID)
			if err != nil {
				logger.GetLogger().
					WithField("post_id", post.ID).
					WithField("error", err).
					Error("Scheduled publish failed")
				return nil
			}
			logger.GetLogger().
				WithField("post_id", post.ID).
				WithField("status", result.Status).
				Info("Scheduled publish processed")
			return nil
		})
	}
	return g.Wait()
}

func (u *publishUsecase) broadcast(post *model.SocialPost) {
	if u.hub != nil {
		u.hub.BroadcastPostStatus(post)
	}
}

func (u *publishUsecase) recordAudit(ctx context.Context, post *model.SocialPost, result *dto.PublishResult) {
	if u.audit == nil {
		return
	}
	audit := &model.PublishAudit{
		PostID:      post.ID,
		AccountID:   post.AccountID,
		Status:      result.Status,
		Response:    result.Response,
		ExternalRef: result.ExternalRef(),
		CreatedAt:   time.Now().UTC(),
	}
	if post.Account != nil {
		audit.Guard = post.Account.Guard
		if post.Account.Platform != nil {
			audit.Platform = post.Account.Platform.Slug
		}
	}
	if err := u.audit.Record(ctx, audit); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Publish audit write failed")
	}
}

func (u *publishUsecase) attachPlatform(ctx context.Context, account *model.SocialAccount) {
	if account.Platform != nil {
		return
	}
	platforms, err := u.platforms.List(ctx)
	if err != nil {
		return
	}
	for _, p := range platforms {
		if p.ID == account.PlatformID {
			account.Platform = p
			return
		}
	}
}
