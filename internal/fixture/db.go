package fixture

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/itemview/internal/record"
	"github.com/roach88/itemview/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Empty database
// 1 - records(id, body)
const currentSchemaVersion = 1

// DB is a SQLite fixture database.
type DB struct {
	db *sql.DB
}

// OpenDB creates or opens a SQLite fixture database at path and applies
// pragmas and schema. Safe to call repeatedly on the same file.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %w", ErrInvalidFixture, err)
	}

	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to apply pragmas: %w", ErrInvalidFixture, err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{db: db}, nil
}

// OpenDBReadOnly opens an existing fixture database for reading. Nothing
// is written to the file: no pragmas, no schema and no user_version.
// Files that are not SQLite databases, or were not written by OpenDB,
// fail with ErrInvalidFixture.
func OpenDBReadOnly(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", readOnlyDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %w", ErrInvalidFixture, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := checkSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}

	return &DB{db: db}, nil
}

// readOnlyDSN builds a SQLite URI opening path with mode=ro. Characters
// with meaning in a URI are percent-encoded.
func readOnlyDSN(path string) string {
	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(path)
	return "file:" + escaped + "?mode=ro"
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Put writes a record, replacing any existing record with the same id.
func (d *DB) Put(ctx context.Context, id string, r record.Object) error {
	return d.PutAll(ctx, map[string]record.Object{id: r})
}

// PutAll writes records in a single transaction.
func (d *DB) PutAll(ctx context.Context, records map[string]record.Object) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, body) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for id, r := range records {
		if err := store.ValidateKey(id); err != nil {
			return err
		}
		body, err := record.MarshalCanonical(r)
		if err != nil {
			return fmt.Errorf("marshal record %q: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, string(body)); err != nil {
			return fmt.Errorf("insert record %q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Delete removes a record. Missing ids are ignored.
func (d *DB) Delete(ctx context.Context, id string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete record %q: %w", id, err)
	}
	return nil
}

// Records returns every record in the database by id.
func (d *DB) Records(ctx context.Context) (map[string]record.Object, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, body
		FROM records
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]record.Object)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := store.ValidateKey(id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
		}
		obj, err := record.ParseObject([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("%w: record %q: %w", ErrInvalidFixture, id, err)
		}
		records[id] = obj
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables and records the schema version. Databases
// written by a newer schema are refused rather than misread.
func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// checkSchema requires the schema version written by applySchema.
func checkSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version != currentSchemaVersion {
		return fmt.Errorf("schema version %d, want %d", version, currentSchemaVersion)
	}
	return nil
}

// schemaVersion reads PRAGMA user_version. Used for testing.
func (d *DB) schemaVersion() (int, error) {
	var version int
	if err := d.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}
