// Package sqlite is a SQLite implementation of the installation store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tessellate-io/slackwise/internal/installstore"
)

// Store is a SQLite implementation of installstore.Store.
type Store struct {
	db *sql.DB
}

var _ installstore.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS installations (
			enterprise_id TEXT NOT NULL DEFAULT '',
			team_id TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			is_bot INTEGER NOT NULL DEFAULT 0,
			bot_token TEXT,
			user_token TEXT,
			installed_at TIMESTAMP NOT NULL,
			PRIMARY KEY (enterprise_id, team_id, user_id, is_bot)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_installations_team ON installations(enterprise_id, team_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}

func (s *Store) Save(ctx context.Context, inst installstore.Installation) error {
	installedAt := inst.InstalledAt
	if installedAt.IsZero() {
		installedAt = time.Now()
	}

	isBot := 0
	if inst.IsBot {
		isBot = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO installations (enterprise_id, team_id, user_id, is_bot, bot_token, user_token, installed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (enterprise_id, team_id, user_id, is_bot)
		DO UPDATE SET bot_token = excluded.bot_token, user_token = excluded.user_token, installed_at = excluded.installed_at`,
		inst.EnterpriseID, inst.TeamID, inst.UserID, isBot, inst.BotToken, inst.UserToken, installedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save installation: %w", err)
	}
	return nil
}

func (s *Store) DeleteInstallation(ctx context.Context, enterpriseID, teamID, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM installations WHERE enterprise_id = ? AND team_id = ? AND user_id = ? AND is_bot = 0`,
		enterpriseID, teamID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete installation: %w", err)
	}
	return nil
}

func (s *Store) DeleteBot(ctx context.Context, enterpriseID, teamID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM installations WHERE enterprise_id = ? AND team_id = ? AND is_bot = 1`,
		enterpriseID, teamID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete bot installation: %w", err)
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context, enterpriseID, teamID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM installations WHERE enterprise_id = ? AND team_id = ?`,
		enterpriseID, teamID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete installations: %w", err)
	}
	return nil
}

// Count returns the number of stored grants for a workspace. Used by
// tests and operational tooling.
func (s *Store) Count(ctx context.Context, enterpriseID, teamID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM installations WHERE enterprise_id = ? AND team_id = ?`,
		enterpriseID, teamID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count installations: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
