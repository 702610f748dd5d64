package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/devpath/resourced/internal/resource"
)

// Store persists generated snapshots so a restarted process can serve
// stale-but-valid data instead of cold-starting every category.
type Store struct {
	db *sql.DB
}

func OpenStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			category     TEXT PRIMARY KEY,
			generated_at DATETIME NOT NULL,
			data         TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(snap resource.CategorySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", snap.Category, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO snapshots (category, generated_at, data)
		VALUES (?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			generated_at = excluded.generated_at,
			data = excluded.data
	`, snap.Category, snap.GeneratedAt, data)
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", snap.Category, err)
	}
	return nil
}

func (s *Store) LoadAll() ([]resource.CategorySnapshot, error) {
	rows, err := s.db.Query("SELECT data FROM snapshots")
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []resource.CategorySnapshot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		var snap resource.CategorySnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			// A corrupt row is not worth failing startup over.
			continue
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *Store) SetLastRefresh() error {
	_, err := s.db.Exec(`
		INSERT INTO meta (key, value) VALUES ('last_refresh', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, time.Now().Format(time.RFC3339))
	return err
}

func (s *Store) LastRefresh() (time.Time, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = 'last_refresh'").Scan(&value)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
