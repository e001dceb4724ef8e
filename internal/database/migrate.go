package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS dining_tables (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		tenant_id  BIGINT UNSIGNED NOT NULL,
		number     INT NOT NULL,
		capacity   INT NOT NULL,
		status     ENUM('available','occupied','reserved') NOT NULL DEFAULT 'available',
		mergeable  JSON NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_tables_tenant_number (tenant_id, number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id                     BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		tenant_id              BIGINT UNSIGNED NOT NULL,
		res_date               DATE NOT NULL,
		res_time               TIME NOT NULL,
		duration_min           INT NOT NULL,
		party_size             INT NOT NULL,
		name                   VARCHAR(120) NOT NULL,
		phone                  VARCHAR(40) NOT NULL DEFAULT '',
		email                  VARCHAR(190) NOT NULL DEFAULT '',
		preferred_table_number INT NULL,
		status                 ENUM('pending','confirmed','seated','completed','cancelled','no-show') NOT NULL DEFAULT 'pending',
		table_id               BIGINT UNSIGNED NULL,
		table_number           INT NULL,
		admin_notes            TEXT NULL,
		created_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at             DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_res_table_date (tenant_id, table_id, res_date),
		KEY idx_res_tenant_date (tenant_id, res_date, res_time),
		CONSTRAINT fk_res_table FOREIGN KEY (table_id) REFERENCES dining_tables (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		tenant_id     BIGINT UNSIGNED NOT NULL,
		email         VARCHAR(190) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		role          ENUM('OWNER','STAFF') NOT NULL DEFAULT 'STAFF',
		is_active     TINYINT(1) NOT NULL DEFAULT 1,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
