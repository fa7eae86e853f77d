// Package archive mirrors agents and messages into a SQLite database for
// offline inspection. The live store stays authoritative and in-memory;
// the archive is write-only from the servers' point of view and its
// absence changes nothing.
package archive

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"parley/internal/models"
)

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

type Archive struct {
	db *sql.DB
}

func Open(path string) (*Archive, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	for _, pragma := range sqlitePragmas {
		if _, err := database.Exec(pragma); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if err := applyMigrations(database); err != nil {
		_ = database.Close()
		return nil, err
	}
	return &Archive{db: database}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordAgent upserts an agent row. Re-registrations overwrite the row so
// the archive tracks the latest role under the stable lowercase key.
func (a *Archive) RecordAgent(agent models.Agent) error {
	_, err := a.db.Exec(`
INSERT INTO agents (key, name, role, joined)
VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET name = excluded.name, role = excluded.role`,
		strings.ToLower(agent.Name), agent.Name, agent.Profile.Role,
		agent.Joined.Format(time.RFC3339))
	return err
}

func (a *Archive) RecordMessage(msg models.Message, broadcast bool) error {
	flag := 0
	if broadcast {
		flag = 1
	}
	_, err := a.db.Exec(`
INSERT INTO messages (message_id, from_agent, to_agent, content, created, broadcast)
VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.From, msg.To, msg.Content,
		msg.Created.Format(time.RFC3339), flag)
	return err
}

// Counts reports how many agents and messages the archive holds.
func (a *Archive) Counts() (agents, messages int, err error) {
	if err = a.db.QueryRow(`SELECT COUNT(1) FROM agents`).Scan(&agents); err != nil {
		return 0, 0, err
	}
	if err = a.db.QueryRow(`SELECT COUNT(1) FROM messages`).Scan(&messages); err != nil {
		return 0, 0, err
	}
	return agents, messages, nil
}
