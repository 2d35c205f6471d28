// Package cache persists computed fingerprints across runs. Entries are
// keyed by content digest, not path, so renamed files stay cache hits.
// The cache is plain key-value: no ordering or cross-key guarantees.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"similarimages/internal/models"
)

// Entry is one cached analysis result. Byte size and mod time are cheap to
// stat fresh each run, so only the decode-derived values are stored.
type Entry struct {
	Digest      string
	Fingerprint models.Fingerprint
	Width       int
	Height      int
	Format      string
	HasExif     bool
}

// Cache is a SQLite-backed fingerprint cache.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Current schema version. Also part of the database filename, so an
// incompatible schema simply starts a fresh file instead of migrating
// across incompatible layouts.
const schemaVersion = 2

// migrations defines schema migrations within a filename generation.
// Each migration must be safe to run more than once.
var migrations = []struct {
	version     int
	description string
	up          string
}{
	{
		version:     1,
		description: "Initial schema",
		up:          "", // handled by base schema creation
	},
	{
		version:     2,
		description: "Add format and has_exif columns",
		up: `
			ALTER TABLE fingerprints ADD COLUMN format TEXT DEFAULT '';
			ALTER TABLE fingerprints ADD COLUMN has_exif INTEGER DEFAULT 0;
		`,
	},
}

// Open opens (or creates) the cache under cacheDir.
func Open(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, fmt.Sprintf("fingerprints-v%d.db", schemaVersion))
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	c := &Cache{db: db, dbPath: dbPath}
	if err := c.init(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// init creates the schema and applies pending migrations.
func (c *Cache) init() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS fingerprints (
		digest TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		format TEXT DEFAULT '',
		has_exif INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := c.migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// migrate runs pending schema migrations.
func (c *Cache) migrate() error {
	currentVersion := c.getSchemaVersion()

	for _, m := range migrations {
		if m.version <= currentVersion || m.up == "" {
			continue
		}

		if m.version == 2 && c.columnExists("fingerprints", "format") {
			c.setSchemaVersion(m.version)
			continue
		}

		if _, err := c.db.Exec(m.up); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}

		c.setSchemaVersion(m.version)
	}

	return nil
}

func (c *Cache) getSchemaVersion() int {
	var version int
	err := c.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

func (c *Cache) setSchemaVersion(version int) {
	c.db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, version)
}

func (c *Cache) columnExists(table, column string) bool {
	var count int
	err := c.db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?
	`, table, column).Scan(&count)
	if err != nil {
		return false
	}
	return count > 0
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached entry for digest, or (nil, nil) on a miss.
// A stored fingerprint that no longer parses is a models.ErrInvalidFingerprint.
func (c *Cache) Lookup(digest string) (*Entry, error) {
	var fingerprintHex string
	var hasExifInt int
	e := &Entry{Digest: digest}
	err := c.db.QueryRow(`
		SELECT fingerprint, width, height, format, has_exif
		FROM fingerprints WHERE digest = ?
	`, digest).Scan(&fingerprintHex, &e.Width, &e.Height, &e.Format, &hasExifInt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup for %s failed: %w", digest, err)
	}

	fp, err := models.ParseFingerprint(fingerprintHex)
	if err != nil {
		return nil, fmt.Errorf("cached fingerprint for %s: %w", digest, err)
	}
	e.Fingerprint = fp
	e.HasExif = hasExifInt == 1
	return e, nil
}

// StoreBatch inserts or replaces entries in one transaction.
func (c *Cache) StoreBatch(entries []*Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO fingerprints (digest, fingerprint, width, height, format, has_exif)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if !e.Fingerprint.Valid() {
			return fmt.Errorf("store %s: %w", e.Digest, models.ErrInvalidFingerprint)
		}
		hasExifInt := 0
		if e.HasExif {
			hasExifInt = 1
		}
		if _, err := stmt.Exec(e.Digest, e.Fingerprint.String(), e.Width, e.Height, e.Format, hasExifInt); err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.Digest, err)
		}
	}

	return tx.Commit()
}

// Len returns the number of cached fingerprints.
func (c *Cache) Len() (int, error) {
	var count int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM fingerprints`).Scan(&count)
	return count, err
}
