package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"setupdialog/internal/dialog"
)

// ErrNotFound is returned when no session matches a lookup.
var ErrNotFound = errors.New("journal: session not found")

// Store persists dialog sessions backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ dialog.Recorder = (*Store)(nil)

// Open initializes or connects to the journal database and applies the schema.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SessionStarted inserts a new session row.
func (s *Store) SessionStarted(ctx context.Context, rec dialog.SessionRecord) error {
	started := formatTime(rec.StartedAt)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (
            id, title, message, command_file, total_items, completed_items,
            percent, state, pid, started_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Title,
		rec.Message,
		rec.CommandFile,
		rec.TotalItems,
		rec.CompletedItems,
		rec.Percent,
		rec.State.String(),
		rec.PID,
		started,
		started,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// CommandWritten appends a command line and refreshes the session counters
// in one transaction.
func (s *Store) CommandWritten(ctx context.Context, rec dialog.SessionRecord, cmd dialog.Command) error {
	now := formatTime(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin command tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO commands (session_id, line, written_at) VALUES (?, ?, ?)`,
		rec.ID, string(cmd), now,
	); err != nil {
		return fmt.Errorf("insert command: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE sessions
            SET completed_items = ?, percent = ?, state = ?, updated_at = ?
          WHERE id = ?`,
		rec.CompletedItems, rec.Percent, rec.State.String(), now, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update session counters: %w", err)
	}
	if err := requireRow(res, rec.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit command: %w", err)
	}
	return nil
}

// SessionEnded stamps the final state and end time of a session.
func (s *Store) SessionEnded(ctx context.Context, rec dialog.SessionRecord) error {
	ended := rec.EndedAt
	if ended.IsZero() {
		ended = time.Now()
	}
	stamp := formatTime(ended)
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions
            SET completed_items = ?, percent = ?, state = ?, updated_at = ?, ended_at = ?
          WHERE id = ?`,
		rec.CompletedItems, rec.Percent, rec.State.String(), stamp, stamp, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return requireRow(res, rec.ID)
}

const sessionColumns = `id, title, message, command_file, total_items, completed_items,
    percent, state, pid, started_at, updated_at, ended_at`

// Recent returns up to limit sessions, newest first. A non-positive limit
// returns every session.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Latest returns the most recently started session or ErrNotFound.
func (s *Store) Latest(ctx context.Context) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return session, err
}

// Session returns the session with the given ID or ErrNotFound.
func (s *Store) Session(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return session, err
}

// Commands returns the command lines written during a session in order.
func (s *Store) Commands(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, line, written_at FROM commands WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			written string
		)
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Line, &written); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		entry.WrittenAt = parseTime(written)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commands: %w", err)
	}
	return entries, nil
}

// Prune removes sessions that started before the cutoff along with their
// commands. Commands are deleted explicitly since foreign_keys is a
// per-connection pragma.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	cutoff := formatTime(before)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM commands WHERE session_id IN (SELECT id FROM sessions WHERE started_at < ?)`,
		cutoff,
	); err != nil {
		return 0, fmt.Errorf("prune commands: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		session Session
		started string
		updated string
		ended   sql.NullString
	)
	err := row.Scan(
		&session.ID,
		&session.Title,
		&session.Message,
		&session.CommandFile,
		&session.TotalItems,
		&session.CompletedItems,
		&session.Percent,
		&session.State,
		&session.PID,
		&started,
		&updated,
		&ended,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	session.StartedAt = parseTime(started)
	session.UpdatedAt = parseTime(updated)
	if ended.Valid && ended.String != "" {
		t := parseTime(ended.String)
		session.EndedAt = &t
	}
	return &session, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// timeLayout keeps a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
