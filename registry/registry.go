// Package registry persists what an installation learned about its zones on
// first start, so later starts do not have to probe the amplifier again.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS installation (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS zones (
	zone_id    INTEGER PRIMARY KEY,
	enabled    INTEGER NOT NULL,
	probe_ok   INTEGER NOT NULL,
	updated_at TEXT NOT NULL
);
`

// ZoneRecord is the persisted registration of one zone entity.
type ZoneRecord struct {
	Zone    int
	Enabled bool
	ProbeOK bool
}

type Registry struct {
	db *sql.DB
}

// Open opens or creates the registry database at path.
func Open(path string) (*Registry, error) {
	if path == "" {
		return nil, errors.New("registry path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Registry{db: db}, nil
}

func (r *Registry) Close() error {
	return r.db.Close()
}

// InstallationID returns the id namespacing every entity of this
// installation, creating it on first use.
func (r *Registry) InstallationID() (string, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM installation LIMIT 1`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("read installation: %w", err)
	}

	id = uuid.NewString()
	if _, err := r.db.Exec(`INSERT INTO installation (id, created_at) VALUES (?, ?)`, id, now()); err != nil {
		return "", fmt.Errorf("create installation: %w", err)
	}
	return id, nil
}

// Zones returns every registered zone ordered by id. An empty result means
// the installation has not completed its first run.
func (r *Registry) Zones() ([]ZoneRecord, error) {
	rows, err := r.db.Query(`SELECT zone_id, enabled, probe_ok FROM zones ORDER BY zone_id`)
	if err != nil {
		return nil, fmt.Errorf("query zones: %w", err)
	}
	defer rows.Close()

	records := []ZoneRecord{}
	for rows.Next() {
		var rec ZoneRecord
		if err := rows.Scan(&rec.Zone, &rec.Enabled, &rec.ProbeOK); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveZones records the zones in one transaction.
func (r *Registry) SaveZones(records []ZoneRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO zones (zone_id, enabled, probe_ok, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(zone_id) DO UPDATE SET enabled = excluded.enabled, probe_ok = excluded.probe_ok, updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare zone upsert: %w", err)
	}
	defer stmt.Close()

	ts := now()
	for _, rec := range records {
		if _, err := stmt.Exec(rec.Zone, rec.Enabled, rec.ProbeOK, ts); err != nil {
			return fmt.Errorf("save zone %d: %w", rec.Zone, err)
		}
	}
	return tx.Commit()
}

// SetEnabled changes whether a registered zone is enabled.
func (r *Registry) SetEnabled(zone int, enabled bool) error {
	res, err := r.db.Exec(`UPDATE zones SET enabled = ?, updated_at = ? WHERE zone_id = ?`, enabled, now(), zone)
	if err != nil {
		return fmt.Errorf("update zone %d: %w", zone, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("zone %d is not registered", zone)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
