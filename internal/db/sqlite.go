package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

var sqliteSchema = []string{
	`PRAGMA foreign_keys=ON;`,
	`PRAGMA journal_mode=WAL;`,
	`PRAGMA busy_timeout=5000;`,
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		password_set  INTEGER NOT NULL DEFAULT 0,
		created_at    INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS store_nodes (
		path       TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`,
}

// SQLite keeps users and store nodes in a single database file. It is the
// single-node alternative to PostgreSQL and needs no server.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer at a time; WAL lets readers proceed.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
		}
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Ping checks that the database is usable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ListNodes returns every leaf at or below prefix, keyed by path.
func (s *SQLite) ListNodes(ctx context.Context, prefix string) (map[string]any, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if prefix == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT path, value FROM store_nodes`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT path, value FROM store_nodes WHERE path = ? OR substr(path, 1, ?) = ?`,
			prefix, len(prefix)+1, prefix+"/",
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var path, raw string
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("failed to decode node %s: %w", path, err)
		}
		out[path] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	return out, nil
}

// ApplyNodeChanges applies every change in one transaction.
func (s *SQLite) ApplyNodeChanges(ctx context.Context, changes []NodeChange) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := s.now().UnixMilli()
	for _, c := range changes {
		if c.Prefix == "" {
			_, err = tx.ExecContext(ctx, `DELETE FROM store_nodes`)
		} else {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM store_nodes WHERE path = ? OR substr(path, 1, ?) = ?`,
				c.Prefix, len(c.Prefix)+1, c.Prefix+"/",
			)
		}
		if err != nil {
			return fmt.Errorf("failed to clear nodes under %s: %w", c.Prefix, err)
		}
		if len(c.Ancestors) > 0 {
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(c.Ancestors)), ",")
			args := make([]any, len(c.Ancestors))
			for i, a := range c.Ancestors {
				args[i] = a
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM store_nodes WHERE path IN (`+placeholders+`)`, args...); err != nil {
				return fmt.Errorf("failed to clear ancestors of %s: %w", c.Prefix, err)
			}
		}
		for path, v := range c.Leaves {
			raw, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to encode node %s: %w", path, err)
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO store_nodes (path, value, updated_at) VALUES (?, ?, ?)
				 ON CONFLICT (path) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
				path, string(raw), now,
			)
			if err != nil {
				return fmt.Errorf("failed to write node %s: %w", path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit node changes: %w", err)
	}
	return nil
}

// CreateUser inserts a user without a password and returns its ID
func (s *SQLite) CreateUser(ctx context.Context, name, email string) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate user id: %w", err)
	}
	now := s.now().UnixMilli()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, created_at, updated_at) VALUES (?, ?, LOWER(?), ?, ?)`,
		id.String(), name, email, now, now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

const sqliteUserColumns = `id, name, email, password_hash, password_set, created_at, updated_at`

// GetUser retrieves a user by ID. Returns nil if not found.
func (s *SQLite) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.scanUser(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE id = ?`, id.String())
}

// GetUserByEmail retrieves a user by email, case-insensitively. Returns nil if not found.
func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE email = LOWER(?)`, email)
}

func (s *SQLite) scanUser(ctx context.Context, query string, arg any) (*User, error) {
	var (
		u                User
		id               string
		created, updated int64
		passwordSet      int
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&id, &u.Name, &u.Email, &u.PasswordHash, &passwordSet, &created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("failed to parse user id %q: %w", id, err)
	}
	u.PasswordSet = passwordSet != 0
	u.CreatedAt = time.UnixMilli(created)
	u.UpdatedAt = time.UnixMilli(updated)
	return &u, nil
}

// UpdatePassword stores a new password hash
func (s *SQLite) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, password_set = 1, updated_at = ? WHERE id = ?`,
		passwordHash, s.now().UnixMilli(), id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// CheckEmailExists reports whether an account already uses email
func (s *SQLite) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = LOWER(?))`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}
