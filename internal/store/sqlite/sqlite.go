// Package sqlite implements store.Store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fyrsmithlabs/volunteerd/internal/store"
	"github.com/fyrsmithlabs/volunteerd/internal/volunteer"
)

const schema = `
CREATE TABLE IF NOT EXISTS volunteers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name TEXT NOT NULL,
	contacts TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'Active',
	lateness_count INTEGER NOT NULL DEFAULT 0,
	warnings_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS blacklist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name TEXT NOT NULL UNIQUE,
	reason TEXT NOT NULL DEFAULT '',
	added TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Open opens the SQLite database at path with sensible defaults and ensures
// the schema exists. Use ":memory:" for an in-process database.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer; a single connection avoids SQLITE_BUSY
	// under concurrent handlers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Store implements store.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an opened database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const volunteerCols = "id, full_name, contacts, status, lateness_count, warnings_count"

func scanVolunteer(row interface{ Scan(...any) error }) (volunteer.Volunteer, error) {
	var v volunteer.Volunteer
	err := row.Scan(&v.ID, &v.FullName, &v.Contacts, &v.Status, &v.LatenessCount, &v.WarningsCount)
	return v, err
}

func (s *Store) ListVolunteers(ctx context.Context) ([]volunteer.Volunteer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+volunteerCols+" FROM volunteers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list volunteers: %w", err)
	}
	defer rows.Close()
	return collectVolunteers(rows)
}

func collectVolunteers(rows *sql.Rows) ([]volunteer.Volunteer, error) {
	var out []volunteer.Volunteer
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan volunteer: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) ListBlacklist(ctx context.Context) ([]volunteer.BlacklistEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, full_name, reason, added FROM blacklist ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	var out []volunteer.BlacklistEntry
	for rows.Next() {
		var e volunteer.BlacklistEntry
		var added string
		if err := rows.Scan(&e.ID, &e.FullName, &e.Reason, &added); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		e.Added = parseTimestamp(added)
		out = append(out, e)
	}
	return out, rows.Err()
}

// parseTimestamp handles the formats SQLite emits for CURRENT_TIMESTAMP.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (s *Store) GetVolunteer(ctx context.Context, id int64) (volunteer.Volunteer, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+volunteerCols+" FROM volunteers WHERE id = ?", id)
	v, err := scanVolunteer(row)
	if err == sql.ErrNoRows {
		return volunteer.Volunteer{}, store.ErrNotFound
	}
	if err != nil {
		return volunteer.Volunteer{}, fmt.Errorf("get volunteer %d: %w", id, err)
	}
	return v, nil
}

func (s *Store) InsertVolunteer(ctx context.Context, fullName, contacts string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM volunteers WHERE full_name = ? AND contacts = ?",
		fullName, contacts).Scan(&existing)
	if err == nil {
		return 0, store.ErrDuplicate
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("check duplicate: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO volunteers (full_name, contacts) VALUES (?, ?)",
		fullName, contacts)
	if err != nil {
		return 0, fmt.Errorf("insert volunteer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert volunteer id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return id, nil
}

func (s *Store) IncrementLateness(ctx context.Context, id int64) error {
	return s.increment(ctx, id, "lateness_count")
}

func (s *Store) IncrementWarning(ctx context.Context, id int64) error {
	return s.increment(ctx, id, "warnings_count")
}

// increment bumps one of the two counter columns. The column name is one of
// two compile-time constants, never caller input.
func (s *Store) increment(ctx context.Context, id int64, column string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE volunteers SET "+column+" = "+column+" + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("increment %s: %w", column, err)
	}
	return oneRowOrNotFound(res)
}

func (s *Store) SetStatus(ctx context.Context, id int64, status volunteer.Status) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE volunteers SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	return oneRowOrNotFound(res)
}

func (s *Store) UpsertBlacklistEntry(ctx context.Context, fullName, reason string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO blacklist (full_name, reason) VALUES (?, ?) ON CONFLICT(full_name) DO NOTHING",
		fullName, reason)
	if err != nil {
		return fmt.Errorf("upsert blacklist entry: %w", err)
	}
	return nil
}

func (s *Store) DeleteVolunteer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM volunteers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete volunteer: %w", err)
	}
	return oneRowOrNotFound(res)
}

func (s *Store) SearchVolunteers(ctx context.Context, substring string) ([]volunteer.Volunteer, error) {
	pattern := "%" + strings.ToLower(substring) + "%"
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+volunteerCols+" FROM volunteers WHERE lower(full_name) LIKE ? OR lower(contacts) LIKE ? ORDER BY id",
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search volunteers: %w", err)
	}
	defer rows.Close()
	return collectVolunteers(rows)
}

func (s *Store) UpdateField(ctx context.Context, id int64, field volunteer.EditableField, value string) error {
	// One dedicated statement per editable field; the enum is the allow-list.
	var query string
	switch field {
	case volunteer.FieldFullName:
		query = "UPDATE volunteers SET full_name = ? WHERE id = ?"
	case volunteer.FieldContacts:
		query = "UPDATE volunteers SET contacts = ? WHERE id = ?"
	default:
		return fmt.Errorf("field %q is not editable", field)
	}
	res, err := s.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("update %s: %w", field, err)
	}
	return oneRowOrNotFound(res)
}

func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	var st store.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(lateness_count), 0),
		       COALESCE(SUM(warnings_count), 0),
		       COALESCE(SUM(status = 'Blacklisted'), 0)
		FROM volunteers`).
		Scan(&st.Volunteers, &st.Lateness, &st.Warnings, &st.Blacklisted)
	if err != nil {
		return store.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func oneRowOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
