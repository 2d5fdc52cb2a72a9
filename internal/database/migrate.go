package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order on every start; each statement is idempotent.
// The unique index on leads.email is what keeps concurrent submissions of
// the same address down to a single row.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		username      VARCHAR(64)  CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		email         VARCHAR(254) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(32)  NOT NULL DEFAULT 'admin',
		created_at    DATETIME(3)  NOT NULL,
		updated_at    DATETIME(3)  NOT NULL,
		UNIQUE KEY uq_admins_username (username),
		UNIQUE KEY uq_admins_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS leads (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		name        VARCHAR(120) NOT NULL,
		email       VARCHAR(254) NOT NULL,
		phone       VARCHAR(32)  NOT NULL,
		course      VARCHAR(120) NOT NULL DEFAULT '',
		message     TEXT         NOT NULL,
		status      ENUM('new','contacted','enrolled','rejected') NOT NULL DEFAULT 'new',
		source      VARCHAR(64)  NOT NULL DEFAULT 'website',
		row_version BIGINT       NOT NULL DEFAULT 1,
		created_at  DATETIME(3)  NOT NULL,
		updated_at  DATETIME(3)  NOT NULL,
		UNIQUE KEY uq_leads_email (email),
		KEY idx_leads_created (created_at),
		KEY idx_leads_status_created (status, created_at)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the admins and leads tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
