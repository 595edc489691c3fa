// Package store persists resources in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resourcebot/internal/model"

	_ "modernc.org/sqlite"
)

// selectResourceFields is the column list shared by every SELECT.
const selectResourceFields = `id,
	COALESCE(resource, ''), COALESCE(region, ''),
	COALESCE(island, ''), COALESCE(description, '')`

const createResourcesTable = `CREATE TABLE IF NOT EXISTS resources (
	id INTEGER PRIMARY KEY,
	resource TEXT,
	region TEXT,
	island TEXT,
	description TEXT
)`

// DB wraps a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens or creates the SQLite database at the given path.
// The schema is not touched; call EnsureSchema once after opening.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &DB{db: db, path: path}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.path
}

// EnsureSchema creates the resources table when it is missing and seeds it
// with model.SeedResource. It reports whether the table was created by this
// call. Calling it against an existing table is a no-op.
func (d *DB) EnsureSchema(ctx context.Context) (bool, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'resources'",
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking resources table: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, createResourcesTable); err != nil {
		return false, fmt.Errorf("creating resources table: %w", err)
	}

	seed := model.SeedResource
	_, err = tx.ExecContext(ctx,
		"INSERT INTO resources (resource, region, island, description) VALUES (?, ?, ?, ?)",
		seed.Resource, seed.Region, seed.Island, seed.Description,
	)
	if err != nil {
		return false, fmt.Errorf("seeding resources table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing schema: %w", err)
	}
	return true, nil
}

// Create inserts a resource and returns the id assigned by the database.
// r.ID is ignored.
func (d *DB) Create(ctx context.Context, r model.Resource) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO resources (resource, region, island, description) VALUES (?, ?, ?, ?)",
		r.Resource, r.Region, r.Island, r.Description,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting resource: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inserted id: %w", err)
	}
	return id, nil
}

// Update overwrites every field but the id of the row matching r.ID.
// Updating an id that does not exist is not an error.
func (d *DB) Update(ctx context.Context, r model.Resource) error {
	_, err := d.db.ExecContext(ctx,
		"UPDATE resources SET resource = ?, region = ?, island = ?, description = ? WHERE id = ?",
		r.Resource, r.Region, r.Island, r.Description, r.ID,
	)
	if err != nil {
		return fmt.Errorf("updating resource %d: %w", r.ID, err)
	}
	return nil
}

// Delete removes the row matching id. Deleting a missing id is a no-op.
func (d *DB) Delete(ctx context.Context, id int64) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM resources WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting resource %d: %w", id, err)
	}
	return nil
}

// FindBySubstring returns the resources whose name contains fragment.
// Matching uses SQLite LIKE, so it is case-insensitive for ASCII letters.
// Wildcard characters in fragment match literally.
func (d *DB) FindBySubstring(ctx context.Context, fragment string) ([]model.Resource, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+selectResourceFields+` FROM resources WHERE resource LIKE ? ESCAPE '\' ORDER BY id`,
		"%"+escapeLike(fragment)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("searching resources: %w", err)
	}
	defer rows.Close()
	return scanResources(rows)
}

// ListAll returns every resource in insertion order.
func (d *DB) ListAll(ctx context.Context) ([]model.Resource, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT "+selectResourceFields+" FROM resources ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	defer rows.Close()
	return scanResources(rows)
}

// Count returns the number of stored resources.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, "SELECT count(*) FROM resources").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting resources: %w", err)
	}
	return n, nil
}

func scanResources(rows *sql.Rows) ([]model.Resource, error) {
	var out []model.Resource
	for rows.Next() {
		var r model.Resource
		if err := rows.Scan(&r.ID, &r.Resource, &r.Region, &r.Island, &r.Description); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resources: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
