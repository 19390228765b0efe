// Package menucache caches per-application menu-bar AX trees, keyed by
// (bundle_id, app_version). If the OS upgrades its accessibility schema
// without a corresponding app-version bump, a stale cache entry is a
// known, accepted limitation — the cache does not attempt to detect
// AX-schema drift.
package menucache

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/scriptkit/launchercore/pkg/dbworker"
)

type Entry struct {
	BundleID    string
	MenuJSON    string
	LastScanned int64
	AppVersion  string
}

var Migrations = []dbworker.Migration{
	{Name: "001_create_menu_cache", Apply: func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS menu_cache (
				bundle_id TEXT PRIMARY KEY,
				menu_json TEXT NOT NULL,
				last_scanned INTEGER NOT NULL,
				app_version TEXT NOT NULL
			)
		`)
		return err
	}},
}

type Store struct {
	w *dbworker.Worker
}

func NewStore(w *dbworker.Worker) *Store {
	return &Store{w: w}
}

// Lookup returns the cached entry only if its app_version still matches
// currentVersion — a version bump invalidates the cache entirely, per the
// spec's (bundle_id, app_version) cache-key decision.
func (s *Store) Lookup(ctx context.Context, bundleID, currentVersion string) (*Entry, bool, error) {
	var e Entry
	var found bool
	err := s.w.Do(ctx, func(db *sql.DB) error {
		row := db.QueryRowContext(ctx, `SELECT bundle_id, menu_json, last_scanned, app_version FROM menu_cache WHERE bundle_id = ?`, bundleID)
		if err := row.Scan(&e.BundleID, &e.MenuJSON, &e.LastScanned, &e.AppVersion); err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			return err
		}
		found = e.AppVersion == currentVersion
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &e, true, nil
}

// Store replaces (or inserts) the cache row for bundleID.
func (s *Store) Store(ctx context.Context, bundleID string, menu any, appVersion string) error {
	raw, err := json.Marshal(menu)
	if err != nil {
		return err
	}
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO menu_cache (bundle_id, menu_json, last_scanned, app_version)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(bundle_id) DO UPDATE SET menu_json = excluded.menu_json, last_scanned = excluded.last_scanned, app_version = excluded.app_version`,
			bundleID, string(raw), time.Now().UnixMilli(), appVersion)
		return err
	})
}

func (s *Store) Invalidate(ctx context.Context, bundleID string) error {
	return s.w.Do(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, `DELETE FROM menu_cache WHERE bundle_id = ?`, bundleID)
		return err
	})
}
