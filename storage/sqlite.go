package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"rowlly_listings/models"
)

// SQLiteStore is the service's local database: persisted selections, the
// operator command queue and image check results.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS image_checks (
		url TEXT PRIMARY KEY,
		property_id TEXT NOT NULL,
		status_code INTEGER,
		error TEXT,
		checked_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_image_checks_property ON image_checks(property_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get implements selection.Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements selection.Store.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now())
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) EnqueueCommand(cmd models.CommandType, params *models.CommandParams) (int64, error) {
	var raw any
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return 0, err
		}
		raw = string(data)
	}
	res, err := s.db.Exec(`INSERT INTO commands (command, params, created_at) VALUES (?, ?, ?)`,
		cmd, raw, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt, &cmd.ProcessedAt); err != nil {
			return nil, err
		}
		if params.Valid {
			cmd.Params = json.RawMessage(params.String)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func (s *SQLiteStore) ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	if cmd.Params == nil || string(cmd.Params) == "null" {
		return &models.CommandParams{}, nil
	}
	var params models.CommandParams
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// SaveImageChecks replaces the stored result for each checked URL.
func (s *SQLiteStore) SaveImageChecks(checks []models.ImageCheck) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO image_checks (url, property_id, status_code, error, checked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			property_id = excluded.property_id,
			status_code = excluded.status_code,
			error = excluded.error,
			checked_at = excluded.checked_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range checks {
		if _, err := stmt.Exec(c.URL, c.PropertyID, c.StatusCode, c.Error, c.CheckedAt); err != nil {
			return fmt.Errorf("save check %s: %w", c.URL, err)
		}
	}
	return tx.Commit()
}

// GetBrokenImages returns the failing photos from the most recent checks.
func (s *SQLiteStore) GetBrokenImages() ([]models.ImageCheck, error) {
	rows, err := s.db.Query(`
		SELECT url, property_id, status_code, COALESCE(error, ''), checked_at
		FROM image_checks
		WHERE error != '' OR status_code < 200 OR status_code >= 400
		ORDER BY property_id, url`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checks := []models.ImageCheck{}
	for rows.Next() {
		var c models.ImageCheck
		if err := rows.Scan(&c.URL, &c.PropertyID, &c.StatusCode, &c.Error, &c.CheckedAt); err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// PruneImageChecks deletes the results of photos not listed in keep and
// returns how many were removed.
func (s *SQLiteStore) PruneImageChecks(keep []string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	wanted := make(map[string]struct{}, len(keep))
	for _, url := range keep {
		wanted[url] = struct{}{}
	}

	rows, err := tx.Query(`SELECT url FROM image_checks`)
	if err != nil {
		return 0, err
	}
	var stale []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			rows.Close()
			return 0, err
		}
		if _, ok := wanted[url]; !ok {
			stale = append(stale, url)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, url := range stale {
		if _, err := tx.Exec(`DELETE FROM image_checks WHERE url = ?`, url); err != nil {
			return 0, fmt.Errorf("prune %s: %w", url, err)
		}
	}
	return int64(len(stale)), tx.Commit()
}

// ResetAllData clears all SQLite operational tables
func (s *SQLiteStore) ResetAllData() error {
	tables := []string{
		"kv",
		"commands",
		"image_checks",
	}

	for _, table := range tables {
		_, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	return nil
}
