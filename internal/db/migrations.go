package db

import (
	"database/sql"
	"fmt"

	"github.com/zanvidmar/vitrina/internal/model"
)

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end. %s placeholders are expanded once per collection table.
var migrations = []string{
	// Migration 1: index the soft-delete flag; admin list pages filter on it
	// constantly.
	`CREATE INDEX IF NOT EXISTS idx_%s_archived ON %s(is_archived)`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		for _, collection := range model.Collections() {
			stmt := fmt.Sprintf(m, collection, collection)
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("running migration %d for %s: %w", i+1, collection, err)
			}
		}
	}

	return nil
}
