package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureSocialSchemaMSSQL creates the account and post tables for SQL
// Server deployments when they are missing.
func EnsureSocialSchemaMSSQL(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tables := []struct {
		name string
		ddl  string
	}{
		{"social_accounts", `CREATE TABLE dbo.[social_accounts] (
			id BIGINT IDENTITY(1,1) PRIMARY KEY,
			guard NVARCHAR(64) NOT NULL,
			platform_id BIGINT NOT NULL,
			account_id NVARCHAR(255) NOT NULL,
			name NVARCHAR(255) NOT NULL DEFAULT '',
			avatar NVARCHAR(1024) NULL,
			link NVARCHAR(1024) NULL,
			email NVARCHAR(255) NULL,
			token NVARCHAR(MAX) NOT NULL DEFAULT '',
			token_expire_at DATETIME2 NULL,
			refresh_token NVARCHAR(MAX) NOT NULL DEFAULT '',
			refresh_token_expire_at DATETIME2 NULL,
			account_type NVARCHAR(32) NOT NULL DEFAULT 'profile',
			connection_type NVARCHAR(32) NOT NULL DEFAULT 'official',
			status NVARCHAR(32) NOT NULL DEFAULT 'connected',
			created_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME(),
			updated_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME(),
			CONSTRAINT uq_social_accounts UNIQUE (guard, platform_id, account_id)
		)`},
		{"social_posts", `CREATE TABLE dbo.[social_posts] (
			id BIGINT IDENTITY(1,1) PRIMARY KEY,
			account_id BIGINT NOT NULL,
			content NVARCHAR(MAX) NOT NULL DEFAULT '',
			link NVARCHAR(1024) NULL,
			file NVARCHAR(MAX) NULL,
			status NVARCHAR(32) NOT NULL DEFAULT 'pending',
			response NVARCHAR(MAX) NULL,
			external_id NVARCHAR(255) NULL,
			scheduled_at DATETIME2 NULL,
			created_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME(),
			updated_at DATETIME2 NOT NULL DEFAULT SYSUTCDATETIME()
		)`},
		{"users", `CREATE TABLE dbo.[users] (
			id BIGINT IDENTITY(1,1) PRIMARY KEY,
			name NVARCHAR(255) NOT NULL,
			user_name NVARCHAR(255) NOT NULL UNIQUE,
			password NVARCHAR(255) NOT NULL,
			created_at DATETIME2 NOT NULL DEFAULT SYSDATETIME(),
			updated_at DATETIME2 NOT NULL DEFAULT SYSDATETIME()
		)`},
	}
	for _, t := range tables {
		q := fmt.Sprintf(`IF OBJECT_ID('dbo.%s', 'U') IS NULL BEGIN %s END`, t.name, t.ddl)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure table dbo.%s: %w", t.name, err)
		}
	}

	addIfMissing := func(table, column, ddl string) error {
		q := fmt.Sprintf(`IF COL_LENGTH('%s', '%s') IS NULL BEGIN %s END`, table, column, ddl)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure column %s.%s: %w", table, column, err)
		}
		return nil
	}
	if err := addIfMissing("dbo.social_posts", "external_id", "ALTER TABLE dbo.[social_posts] ADD external_id NVARCHAR(255) NULL"); err != nil {
		return err
	}
	return addIfMissing("dbo.social_accounts", "email", "ALTER TABLE dbo.[social_accounts] ADD email NVARCHAR(255) NULL")
}
