package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
)

const postColumns = `id, account_id, content, link, file, status, response, external_id, scheduled_at, created_at, updated_at`

// SocialPostRepository is the PostgreSQL post store. The attachment is
// stored as a JSON blob since posts carry at most one file.
type SocialPostRepository struct {
	db *sql.DB
}

func NewSocialPostRepository(db *sql.DB) repository.ISocialPost {
	return &SocialPostRepository{db: db}
}

func (r *SocialPostRepository) Create(ctx context.Context, post *model.SocialPost) (int64, error) {
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
	err = r.db.QueryRowContext(ctx, `INSERT INTO social_posts
		(account_id, content, link, file, status, scheduled_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$7) RETURNING id`,
		post.AccountID, post.Content, post.Link, fileJSON, status, post.ScheduledAt, now).Scan(&id)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("pg: create post failed")
		return 0, err
	}
	post.ID = id
	post.Status = status
	return id, nil
}

func (r *SocialPostRepository) GetByID(ctx context.Context, id int64) (*model.SocialPost, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM social_posts WHERE id=$1`, id)
	return scanPost(row)
}

// FetchDue returns pending posts whose schedule time has passed, oldest
// first. Posts without a schedule are due immediately.
func (r *SocialPostRepository) FetchDue(ctx context.Context, limit int) ([]*model.SocialPost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+postColumns+` FROM social_posts
		WHERE status=$1 AND (scheduled_at IS NULL OR scheduled_at <= NOW())
		ORDER BY created_at ASC LIMIT $2`,
		model.PostStatusPending, limit)
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

func (r *SocialPostRepository) UpdateStatus(ctx context.Context, id int64, status string, response *string, externalID *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE social_posts SET status=$1, response=$2, external_id=COALESCE($3, external_id), updated_at=$4 WHERE id=$5`,
		status, response, externalID, time.Now().UTC(), id)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("pg: update post status failed")
	}
	return err
}

func marshalFile(file *model.PostFile) (*string, error) {
	if file == nil {
		return nil, nil
	}
	raw, err := json.Marshal(file)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

func scanPost(row rowScanner) (*model.SocialPost, error) {
	p := &model.SocialPost{}
	var link, fileJSON, response, externalID sql.NullString
	var scheduledAt sql.NullTime
	if err := row.Scan(&p.ID, &p.AccountID, &p.Content, &link, &fileJSON, &p.Status,
		&response, &externalID, &scheduledAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if link.Valid {
		p.Link = &link.String
	}
	if fileJSON.Valid && fileJSON.String != "" {
		var file model.PostFile
		if err := json.Unmarshal([]byte(fileJSON.String), &file); err == nil {
			p.File = &file
		}
	}
	if response.Valid {
		p.Response = &response.String
	}
	if externalID.Valid {
		p.ExternalID = &externalID.String
	}
	if scheduledAt.Valid {
		p.ScheduledAt = &scheduledAt.Time
	}
	return p, nil
}
