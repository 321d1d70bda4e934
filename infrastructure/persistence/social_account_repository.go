package persistence

import (
	"context"
	"database/sql"
	"time"

	"mx-social/domain/dto"
	"mx-social/domain/model"
	"mx-social/domain/repository"
	"mx-social/infrastructure/logger"
)

const accountColumns = `id, guard, platform_id, account_id, name, avatar, link, email, token, token_expire_at, refresh_token, refresh_token_expire_at, account_type, connection_type, status, created_at, updated_at`

// SocialAccountRepository is the PostgreSQL account store.
type SocialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) repository.ISocialAccount {
	return &SocialAccountRepository{db: db}
}

// SaveAccount upserts a connected account. An explicit existingID pins the
// row to update; otherwise (guard, platform, remote account id) identifies
// it, so reconnecting the same profile never duplicates a row.
func (r *SocialAccountRepository) SaveAccount(ctx context.Context, guard string, platform *model.MediaPlatform, info *dto.AccountInfo, accountType, connectionType string, existingID *int64) (*dto.SaveResult, error) {
	now := time.Now().UTC()
	var id int64
	var err error

	if existingID != nil {
		_, err = r.db.ExecContext(ctx, `UPDATE social_accounts SET
			account_id=$1, name=$2, avatar=$3, link=$4, email=$5,
			token=$6, token_expire_at=$7, refresh_token=$8, refresh_token_expire_at=$9,
			status=$10, updated_at=$11
			WHERE id=$12`,
			info.AccountID, info.Name, info.Avatar, info.Link, info.Email,
			info.Token, info.TokenExpireAt, info.RefreshToken, info.RefreshTokenExpireAt,
			model.AccountStatusConnected, now, *existingID)
		id = *existingID
	} else {
		row := r.db.QueryRowContext(ctx, `INSERT INTO social_accounts
			(guard, platform_id, account_id, name, avatar, link, email, token, token_expire_at, refresh_token, refresh_token_expire_at, account_type, connection_type, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$15)
			ON CONFLICT (guard, platform_id, account_id) DO UPDATE SET
				name=EXCLUDED.name, avatar=EXCLUDED.avatar, link=EXCLUDED.link, email=EXCLUDED.email,
				token=EXCLUDED.token, token_expire_at=EXCLUDED.token_expire_at,
				refresh_token=EXCLUDED.refresh_token, refresh_token_expire_at=EXCLUDED.refresh_token_expire_at,
				status=EXCLUDED.status, updated_at=EXCLUDED.updated_at
			RETURNING id`,
			guard, platform.ID, info.AccountID, info.Name, info.Avatar, info.Link, info.Email,
			info.Token, info.TokenExpireAt, info.RefreshToken, info.RefreshTokenExpireAt,
			accountType, connectionType, model.AccountStatusConnected, now)
		err = row.Scan(&id)
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("pg: save account failed")
		return &dto.SaveResult{Status: "error", Message: "Failed to save account"}, err
	}
	return &dto.SaveResult{Status: "success", Message: "Account connected successfully", AccountID: id}, nil
}

// DisconnectAccount marks the account stale and drops its credentials.
func (r *SocialAccountRepository) DisconnectAccount(ctx context.Context, account *model.SocialAccount) error {
	_, err := r.db.ExecContext(ctx, `UPDATE social_accounts SET status=$1, token='', refresh_token='', updated_at=$2 WHERE id=$3`,
		model.AccountStatusDisconnected, time.Now().UTC(), account.ID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("pg: disconnect account failed")
		return err
	}
	account.Status = model.AccountStatusDisconnected
	return nil
}

func (r *SocialAccountRepository) GetByID(ctx context.Context, id int64) (*model.SocialAccount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM social_accounts WHERE id=$1`, id)
	return scanAccount(row)
}

func (r *SocialAccountRepository) ListByGuard(ctx context.Context, guard string) ([]*model.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM social_accounts WHERE guard=$1 ORDER BY id ASC`, guard)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// ListExpiring returns connected accounts whose access token runs out
// within the refresh window and that still hold a refresh token.
func (r *SocialAccountRepository) ListExpiring(ctx context.Context, limit int) ([]*model.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM social_accounts
		WHERE status=$1 AND refresh_token <> ''
		AND token_expire_at IS NOT NULL AND token_expire_at < NOW() + INTERVAL '30 minutes'
		ORDER BY token_expire_at ASC LIMIT $2`,
		model.AccountStatusConnected, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *SocialAccountRepository) UpdateTokens(ctx context.Context, id int64, tok *dto.TokenResponse) error {
	now := time.Now().UTC()
	var tokenExpiry *time.Time
	if tok.ExpiresIn > 0 {
		t := now.Add(time.Duration(tok.ExpiresIn) * time.Second)
		tokenExpiry = &t
	}
	var refreshExpiry *time.Time
	if tok.RefreshExpiresIn > 0 {
		t := now.Add(time.Duration(tok.RefreshExpiresIn) * time.Second)
		refreshExpiry = &t
	}
	_, err := r.db.ExecContext(ctx, `UPDATE social_accounts SET
		token=$1, token_expire_at=$2,
		refresh_token=COALESCE(NULLIF($3, ''), refresh_token),
		refresh_token_expire_at=COALESCE($4, refresh_token_expire_at),
		updated_at=$5 WHERE id=$6`,
		tok.AccessToken, tokenExpiry, tok.RefreshToken, refreshExpiry, now, id)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("pg: update tokens failed")
	}
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*model.SocialAccount, error) {
	a := &model.SocialAccount{}
	var avatar, link, email sql.NullString
	var tokenExpire, refreshExpire sql.NullTime
	if err := row.Scan(&a.ID, &a.Guard, &a.PlatformID, &a.AccountID, &a.Name, &avatar, &link, &email,
		&a.Token, &tokenExpire, &a.RefreshToken, &refreshExpire,
		&a.AccountType, &a.ConnectionType, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Avatar = avatar.String
	a.Link = link.String
	if email.Valid {
		a.Email = &email.String
	}
	if tokenExpire.Valid {
		a.TokenExpireAt = &tokenExpire.Time
	}
	if refreshExpire.Valid {
		a.RefreshTokenExpireAt = &refreshExpire.Time
	}
	return a, nil
}

func collectAccounts(rows *sql.Rows) ([]*model.SocialAccount, error) {
	var list []*model.SocialAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
