package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureSocialSchema creates the account and post tables when they are
// missing and adds newer columns to existing installs. Safe to call at
// startup.
func EnsureSocialSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tables := []string{
		`CREATE TABLE IF NOT EXISTS social_accounts (
			id BIGSERIAL PRIMARY KEY,
			guard TEXT NOT NULL,
			platform_id BIGINT NOT NULL,
			account_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			avatar TEXT,
			link TEXT,
			email TEXT,
			token TEXT NOT NULL DEFAULT '',
			token_expire_at TIMESTAMPTZ,
			refresh_token TEXT NOT NULL DEFAULT '',
			refresh_token_expire_at TIMESTAMPTZ,
			account_type TEXT NOT NULL DEFAULT 'profile',
			connection_type TEXT NOT NULL DEFAULT 'official',
			status TEXT NOT NULL DEFAULT 'connected',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (guard, platform_id, account_id)
		)`,
		`CREATE TABLE IF NOT EXISTS social_posts (
			id BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			link TEXT,
			file TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			response TEXT,
			external_id TEXT,
			scheduled_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS public.user (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			user_name TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, ddl := range tables {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("ensuring table failed: %w", err)
		}
	}

	checks := []struct {
		table  string
		column string
		ddl    string
	}{
		{"social_posts", "external_id", "ALTER TABLE social_posts ADD COLUMN external_id TEXT"},
		{"social_accounts", "email", "ALTER TABLE social_accounts ADD COLUMN email TEXT"},
	}
	for _, c := range checks {
		exists, err := socialColumnExists(ctx, db, c.table, c.column)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.ExecContext(ctx, c.ddl); err != nil {
				return fmt.Errorf("adding column %s.%s failed: %w", c.table, c.column, err)
			}
		}
	}
	return nil
}

func socialColumnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	row := db.QueryRowContext(ctx, `SELECT 1 FROM information_schema.columns WHERE table_name=$1 AND column_name=$2`, table, column)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
