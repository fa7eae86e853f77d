package archive

import (
	"database/sql"
	"fmt"
	"time"
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS agents (
    key    TEXT PRIMARY KEY,
    name   TEXT NOT NULL,
    role   TEXT,
    joined TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id INTEGER NOT NULL,
    from_agent TEXT NOT NULL,
    to_agent   TEXT NOT NULL,
    content    TEXT NOT NULL,
    created    TEXT NOT NULL,
    broadcast  INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_agent, created);
`

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql:     schemaV1,
	},
}

func applyMigrations(database *sql.DB) error {
	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS schema_version (
	version     INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	applied_at  TEXT NOT NULL
);`); err != nil {
		return fmt.Errorf("ensure schema_version table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := database.QueryRow(`SELECT COUNT(1) FROM schema_version WHERE version = ?`, m.version).Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}
		if _, err := database.Exec(m.sql); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := database.Exec(`INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`,
			m.version, m.name, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}
