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

// SocialAccountRepositoryMSSQL is the SQL Server account store.
type SocialAccountRepositoryMSSQL struct{ db *sql.DB }

func NewSocialAccountRepositoryMSSQL(db *sql.DB) repository.ISocialAccount {
	return &SocialAccountRepositoryMSSQL{db}
}

func (r *SocialAccountRepositoryMSSQL) SaveAccount(ctx context.Context, guard string, platform *model.MediaPlatform, info *dto.AccountInfo, accountType, connectionType string, existingID *int64) (*dto.SaveResult, error) {
	now := time.Now().UTC()
	var id int64
	var err error

	if existingID != nil {
		_, err = r.db.ExecContext(ctx, `UPDATE dbo.[social_accounts] SET
			account_id=@p1, name=@p2, avatar=@p3, link=@p4, email=@p5,
			token=@p6, token_expire_at=@p7, refresh_token=@p8, refresh_token_expire_at=@p9,
			status=@p10, updated_at=@p11
			WHERE id=@p12`,
			info.AccountID, info.Name, info.Avatar, info.Link, info.Email,
			info.Token, info.TokenExpireAt, info.RefreshToken, info.RefreshTokenExpireAt,
			model.AccountStatusConnected, now, *existingID)
		id = *existingID
	} else {
		q := `MERGE dbo.[social_accounts] AS target
USING (VALUES (@p1, @p2, @p3)) AS src(guard, platform_id, account_id)
ON target.guard = src.guard AND target.platform_id = src.platform_id AND target.account_id = src.account_id
WHEN MATCHED THEN UPDATE SET
  name=@p4, avatar=@p5, link=@p6, email=@p7,
  token=@p8, token_expire_at=@p9, refresh_token=@p10, refresh_token_expire_at=@p11,
  status=@p14, updated_at=@p15
WHEN NOT MATCHED THEN
  INSERT (guard, platform_id, account_id, name, avatar, link, email, token, token_expire_at, refresh_token, refresh_token_expire_at, account_type, connection_type, status, created_at, updated_at)
  VALUES (src.guard, src.platform_id, src.account_id, @p4, @p5, @p6, @p7, @p8, @p9, @p10, @p11, @p12, @p13, @p14, @p15, @p15)
OUTPUT inserted.id;`
		row := r.db.QueryRowContext(ctx, q,
			guard, platform.ID, info.AccountID, info.Name, info.Avatar, info.Link, info.Email,
			info.Token, info.TokenExpireAt, info.RefreshToken, info.RefreshTokenExpireAt,
			accountType, connectionType, model.AccountStatusConnected, now)
		err = row.Scan(&id)
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mssql: save account failed")
		return &dto.SaveResult{Status: "error", Message: "Failed to save account"}, err
	}
	return &dto.SaveResult{Status: "success", Message: "Account connected successfully", AccountID: id}, nil
}

func (r *SocialAccountRepositoryMSSQL) DisconnectAccount(ctx context.Context, account *model.SocialAccount) error {
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[social_accounts] SET status=@p1, token='', refresh_token='', updated_at=@p2 WHERE id=@p3`,
		model.AccountStatusDisconnected, time.Now().UTC(), account.ID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mssql: disconnect account failed")
		return err
	}
	account.Status = model.AccountStatusDisconnected
	return nil
}

func (r *SocialAccountRepositoryMSSQL) GetByID(ctx context.Context, id int64) (*model.SocialAccount, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM dbo.[social_accounts] WHERE id=@p1`, id)
	return scanAccount(row)
}

func (r *SocialAccountRepositoryMSSQL) ListByGuard(ctx context.Context, guard string) ([]*model.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM dbo.[social_accounts] WHERE guard=@p1 ORDER BY id ASC`, guard)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *SocialAccountRepositoryMSSQL) ListExpiring(ctx context.Context, limit int) ([]*model.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT TOP (@p1) `+accountColumns+` FROM dbo.[social_accounts]
		WHERE status=@p2 AND refresh_token <> ''
		AND token_expire_at IS NOT NULL AND token_expire_at < DATEADD(minute, 30, SYSUTCDATETIME())
		ORDER BY token_expire_at ASC`,
		limit, model.AccountStatusConnected)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *SocialAccountRepositoryMSSQL) UpdateTokens(ctx context.Context, id int64, tok *dto.TokenResponse) error {
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
	_, err := r.db.ExecContext(ctx, `UPDATE dbo.[social_accounts] SET
		token=@p1, token_expire_at=@p2,
		refresh_token=COALESCE(NULLIF(@p3, ''), refresh_token),
		refresh_token_expire_at=COALESCE(@p4, refresh_token_expire_at),
		updated_at=@p5 WHERE id=@p6`,
		tok.AccessToken, tokenExpiry, tok.RefreshToken, refreshExpiry, now, id)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("mssql: update tokens failed")
	}
	return err
}
