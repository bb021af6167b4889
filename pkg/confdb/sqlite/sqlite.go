package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/veesix-networks/vlanhal/pkg/confdb"
	"github.com/veesix-networks/vlanhal/pkg/logger"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", p, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS vlan_groups (
			group_name TEXT NOT NULL PRIMARY KEY,
			vlan_id TEXT NOT NULL,
			updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Get(logger.ConfDB).Info("Opened config store", "path", path)
	return &Store{db: db}, nil
}

func (s *Store) Put(ctx context.Context, group, vlanID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vlan_groups (group_name, vlan_id, updated_at)
		VALUES (?, ?, strftime('%s', 'now'))
		ON CONFLICT(group_name) DO UPDATE SET
			vlan_id = excluded.vlan_id,
			updated_at = excluded.updated_at
	`, group, vlanID)
	return err
}

func (s *Store) Delete(ctx context.Context, group string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM vlan_groups WHERE group_name = ?
	`, group)
	return err
}

func (s *Store) Load(ctx context.Context, fn confdb.LoadFunc) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT group_name, vlan_id FROM vlan_groups ORDER BY group_name
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var group, vlanID string
		if err := rows.Scan(&group, &vlanID); err != nil {
			return err
		}
		if err := fn(group, vlanID); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM vlan_groups`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
