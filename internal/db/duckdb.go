package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

type DB struct {
	conn *sql.DB
}

func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_crate_id START 1;`,
		`CREATE SEQUENCE IF NOT EXISTS seq_item_id START 1;`,
		`CREATE SEQUENCE IF NOT EXISTS seq_path_id START 1;`,
		`CREATE SEQUENCE IF NOT EXISTS seq_relation_id START 1;`,

		`CREATE TABLE IF NOT EXISTS crates (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			root_id TEXT NOT NULL,
			format_version INTEGER NOT NULL,
			includes_private BOOLEAN NOT NULL DEFAULT FALSE,
			built_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(name, version)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_crates_name ON crates (name)`,

		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY,
			crate_id INTEGER REFERENCES crates(id),
			item_id TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			kind TEXT NOT NULL,
			docs TEXT,
			deprecated BOOLEAN NOT NULL DEFAULT FALSE,
			raw TEXT,
			UNIQUE(crate_id, item_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_crate ON items (crate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_path ON items (path)`,
		`CREATE INDEX IF NOT EXISTS idx_items_name ON items (name)`,

		`CREATE TABLE IF NOT EXISTS paths (
			id INTEGER PRIMARY KEY,
			crate_id INTEGER REFERENCES crates(id),
			item_id TEXT NOT NULL,
			path TEXT NOT NULL,
			kind TEXT NOT NULL,
			origin_crate INTEGER NOT NULL,
			UNIQUE(crate_id, item_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paths_crate ON paths (crate_id)`,

		`CREATE TABLE IF NOT EXISTS relations (
			id INTEGER PRIMARY KEY,
			crate_id INTEGER REFERENCES crates(id),
			from_id TEXT NOT NULL,
			to_id TEXT NOT NULL,
			kind TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_relations_from ON relations (crate_id, from_id)`,
	}

	for _, q := range queries {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("executing %q: %w", q, err)
		}
	}
	return nil
}

// --- Crate operations ---

type Crate struct {
	ID              int
	Name            string
	Version         string
	RootID          string
	FormatVersion   int
	IncludesPrivate bool
	BuiltAt         time.Time
}

const crateColumns = `id, name, version, root_id, format_version, includes_private, built_at`

func scanCrate(row *sql.Row) (*Crate, error) {
	var c Crate
	err := row.Scan(&c.ID, &c.Name, &c.Version, &c.RootID, &c.FormatVersion, &c.IncludesPrivate, &c.BuiltAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertCrate inserts or refreshes the crate row for a name/version
// pair and returns it with its assigned ID.
func (db *DB) UpsertCrate(name, version, rootID string, formatVersion int, includesPrivate bool) (*Crate, error) {
	existing, err := db.GetCrate(name, version)
	if err != nil {
		return nil, fmt.Errorf("checking crate: %w", err)
	}

	if existing != nil {
		_, err := db.conn.Exec(
			`UPDATE crates SET root_id = ?, format_version = ?, includes_private = ?, built_at = CURRENT_TIMESTAMP WHERE id = ?`,
			rootID, formatVersion, includesPrivate, existing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("updating crate: %w", err)
		}
		return db.GetCrate(name, version)
	}

	_, err = db.conn.Exec(
		`INSERT INTO crates (id, name, version, root_id, format_version, includes_private)
		 VALUES (nextval('seq_crate_id'), ?, ?, ?, ?, ?)`,
		name, version, rootID, formatVersion, includesPrivate,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting crate: %w", err)
	}

	return db.GetCrate(name, version)
}

func (db *DB) GetCrate(name, version string) (*Crate, error) {
	return scanCrate(db.conn.QueryRow(
		`SELECT `+crateColumns+` FROM crates WHERE name = ? AND version = ?`,
		name, version,
	))
}

// GetLatestCrate returns the most recently built crate with the given name.
func (db *DB) GetLatestCrate(name string) (*Crate, error) {
	return scanCrate(db.conn.QueryRow(
		`SELECT `+crateColumns+` FROM crates WHERE name = ? ORDER BY built_at DESC LIMIT 1`,
		name,
	))
}

func (db *DB) ListCrates() ([]Crate, error) {
	rows, err := db.conn.Query(`SELECT ` + crateColumns + ` FROM crates ORDER BY name, version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var crates []Crate
	for rows.Next() {
		var c Crate
		if err := rows.Scan(&c.ID, &c.Name, &c.Version, &c.RootID, &c.FormatVersion, &c.IncludesPrivate, &c.BuiltAt); err != nil {
			return nil, err
		}
		crates = append(crates, c)
	}
	return crates, rows.Err()
}

// DeleteCrateData removes the crate's items, paths and relations but
// keeps the crate row itself, so re-exports keep a stable crate ID.
func (db *DB) DeleteCrateData(crateID int) error {
	for _, table := range []string{"items", "paths", "relations"} {
		if _, err := db.conn.Exec(fmt.Sprintf(`DELETE FROM %s WHERE crate_id = ?`, table), crateID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// --- Item operations ---

type Item struct {
	ID         int
	CrateID    int
	ItemID     string
	Name       string
	Path       string
	Kind       string
	Docs       string
	Deprecated bool
	Raw        string // JSON-encoded document item
}

const itemColumns = `id, crate_id, item_id, name, path, kind, docs, deprecated, raw`

func (it *Item) scanFields() []interface{} {
	return []interface{}{&it.ID, &it.CrateID, &it.ItemID, &it.Name, &it.Path, &it.Kind, &it.Docs, &it.Deprecated, &it.Raw}
}

func (db *DB) InsertItem(item *Item) error {
	_, err := db.conn.Exec(
		`INSERT INTO items (id, crate_id, item_id, name, path, kind, docs, deprecated, raw)
		 VALUES (nextval('seq_item_id'), ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.CrateID, item.ItemID, item.Name, item.Path, item.Kind, item.Docs, item.Deprecated, item.Raw,
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}

	return db.conn.QueryRow(
		`SELECT id FROM items WHERE crate_id = ? AND item_id = ?`,
		item.CrateID, item.ItemID,
	).Scan(&item.ID)
}

func (db *DB) GetItem(crateID int, itemID string) (*Item, error) {
	var it Item
	err := db.conn.QueryRow(
		`SELECT `+itemColumns+` FROM items WHERE crate_id = ? AND item_id = ?`,
		crateID, itemID,
	).Scan(it.scanFields()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (db *DB) GetItemByPath(crateID int, path string) (*Item, error) {
	var it Item
	err := db.conn.QueryRow(
		`SELECT `+itemColumns+` FROM items WHERE crate_id = ? AND path = ?`,
		crateID, path,
	).Scan(it.scanFields()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// SearchItems matches the query as a substring of item names and
// paths, optionally restricted to crates and kinds. Shorter paths sort
// first so top-level items beat deeply nested ones.
func (db *DB) SearchItems(query string, crateIDs []int, kinds []string, limit int) ([]Item, error) {
	var filters []string
	var params []interface{}

	filters = append(filters, `(name LIKE '%' || ? || '%' OR path LIKE '%' || ? || '%')`)
	params = append(params, query, query)

	if len(crateIDs) > 0 {
		placeholders := make([]string, len(crateIDs))
		for i, id := range crateIDs {
			placeholders[i] = "?"
			params = append(params, id)
		}
		filters = append(filters, fmt.Sprintf(`crate_id IN (%s)`, strings.Join(placeholders, ",")))
	}
	if len(kinds) > 0 {
		placeholders := make([]string, len(kinds))
		for i, k := range kinds {
			placeholders[i] = "?"
			params = append(params, k)
		}
		filters = append(filters, fmt.Sprintf(`kind IN (%s)`, strings.Join(placeholders, ",")))
	}
	params = append(params, limit)

	q := fmt.Sprintf(
		`SELECT `+itemColumns+` FROM items WHERE %s ORDER BY length(path), path LIMIT ?`,
		strings.Join(filters, " AND "),
	)
	rows, err := db.conn.Query(q, params...)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(it.scanFields()...); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (db *DB) GetCrateIDsByNames(names []string) ([]int, error) {
	if len(names) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(names))
	params := make([]interface{}, len(names))
	for i, n := range names {
		placeholders[i] = "?"
		params[i] = n
	}
	query := fmt.Sprintf(`SELECT id FROM crates WHERE name IN (%s)`, strings.Join(placeholders, ","))
	rows, err := db.conn.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) CountItems(crateID int) (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM items WHERE crate_id = ?`, crateID).Scan(&count)
	return count, err
}

// --- Path operations ---

func (db *DB) InsertPath(crateID int, itemID, path, kind string, originCrate uint32) error {
	_, err := db.conn.Exec(
		`INSERT INTO paths (id, crate_id, item_id, path, kind, origin_crate)
		 VALUES (nextval('seq_path_id'), ?, ?, ?, ?, ?)`,
		crateID, itemID, path, kind, originCrate,
	)
	if err != nil {
		return fmt.Errorf("inserting path: %w", err)
	}
	return nil
}

// GetPath returns the fully qualified path recorded for an item ID,
// covering external IDs that have no items row.
func (db *DB) GetPath(crateID int, itemID string) (string, bool) {
	var path string
	err := db.conn.QueryRow(
		`SELECT path FROM paths WHERE crate_id = ? AND item_id = ?`,
		crateID, itemID,
	).Scan(&path)
	if err != nil {
		return "", false
	}
	return path, true
}

// --- Relation operations ---

func (db *DB) InsertRelation(crateID int, fromID, toID, kind string) error {
	_, err := db.conn.Exec(
		`INSERT INTO relations (id, crate_id, from_id, to_id, kind)
		 VALUES (nextval('seq_relation_id'), ?, ?, ?, ?)`,
		crateID, fromID, toID, kind,
	)
	if err != nil {
		return fmt.Errorf("inserting relation: %w", err)
	}
	return nil
}

// ListRelations returns relation targets in insertion order, which
// preserves the order the document listed them in.
func (db *DB) ListRelations(crateID int, fromID, kind string) ([]string, error) {
	rows, err := db.conn.Query(
		`SELECT to_id FROM relations WHERE crate_id = ? AND from_id = ? AND kind = ? ORDER BY id`,
		crateID, fromID, kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
