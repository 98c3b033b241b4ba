package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// NodeChange replaces the subtree at Prefix with Leaves. Ancestors are the proper
// prefixes of Prefix; any scalar stored at one of them is removed.
type NodeChange struct {
	Prefix    string
	Ancestors []string
	Leaves    map[string]any
}

// ListNodes returns every leaf at or below prefix, keyed by path. The empty prefix lists everything.
func (db *DB) ListNodes(ctx context.Context, prefix string) (map[string]any, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if prefix == "" {
		rows, err = db.pool.Query(ctx, `SELECT path, value FROM store_nodes`)
	} else {
		rows, err = db.pool.Query(ctx,
			`SELECT path, value FROM store_nodes WHERE path = $1 OR starts_with(path, $2)`,
			prefix, prefix+"/",
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var (
			path string
			raw  []byte
		)
		if err := rows.Scan(&path, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
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
func (db *DB) ApplyNodeChanges(ctx context.Context, changes []NodeChange) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, c := range changes {
		if c.Prefix == "" {
			batch.Queue(`DELETE FROM store_nodes`)
		} else {
			batch.Queue(`DELETE FROM store_nodes WHERE path = $1 OR starts_with(path, $2)`, c.Prefix, c.Prefix+"/")
		}
		if len(c.Ancestors) > 0 {
			batch.Queue(`DELETE FROM store_nodes WHERE path = ANY($1)`, c.Ancestors)
		}
		for path, v := range c.Leaves {
			raw, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to encode node %s: %w", path, err)
			}
			batch.Queue(
				`INSERT INTO store_nodes (path, value, updated_at) VALUES ($1, $2::jsonb, NOW())
				 ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
				path, string(raw),
			)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to apply node changes: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit node changes: %w", err)
	}
	return nil
}
