package persistence

import (
	"context"
	"database/sql"
	"time"

	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
)

// SocialPostRepositoryMSSQL is the SQL Server post store.
type SocialPostRepositoryMSSQL struct{ db *sql.DB }

func NewSocialPostRepositoryMSSQL(db *sql.DB) repository.ISocialPost {
	return &SocialPostRepositoryMSSQL{db}
}

func (r *SocialPostRepositoryMSSQL) Create(ctx context.Context, post *model.SocialPost) (int64, error) {
	now := time.Now().UTC()
	fileJSON, err := marshalFile(post.File)
	if err != nil {
		return 0, err
	}
	status := post.Status
	if status == "" {
		status = model.PostStatusPending
	}
	var id int64
	err = r.db.QueryRowContext(ctx, `INSERT INTO dbo.[social_posts]
		(account_id, content, link, file, status, scheduled_at, created_at, updated_at)
		OUTPUT inserted.id
		VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p7)`,
		post.AccountID, post.Content, post.Link, fileJSON, status, post.ScheduledAt, now).Scan(&id)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mssql: create post failed")
		return 0, err
	}
	post.ID = id
	post.Status = status
	return id, nil
}

func (r *SocialPostRepositoryMSSQL) GetByID(ctx context.Context, id int64) (*model.SocialPost, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM dbo.[social_posts] WHERE id=@p1`, id)
	return scanPost(row)
}

func (r *SocialPostRepositoryMSSQL) FetchDue(ctx context.Context, limit int) ([]*model.SocialPost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT TOP (@p1) `+postColumns+` FROM dbo.[social_posts]
		WHERE status=@p2 AND (scheduled_at IS NULL OR scheduled_at <= SYSUTCDATETIME())
		ORDER BY created_at ASC`,
		limit, model.PostStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.SocialPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *SocialPostRepositoryMSSQL) UpdateStatus(ctx context.Context, id int64, status string, response *string, externalID *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[social_posts] SET status=@p1, response=@p2, external_id=COALESCE(@p3, external_id), updated_at=@p4 WHERE id=@p5`,
		status, response, externalID, time.Now().UTC(), id)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mssql: update post status failed")
	}
	return err
}
