package fixture

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/itemview/internal/record"
)

func TestOpenDB_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")

	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")

	version, err := db.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpenDB_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")

	for i := 0; i < 3; i++ {
		db, err := OpenDB(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, db.Close())
	}
}

func TestOpenDB_RefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = OpenDB(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version 99 is newer than supported version 1")
}

func TestDB_PutAllAndRecords(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.PutAll(ctx, wantUsers()))

	got, err := db.Records(ctx)
	require.NoError(t, err)
	assertRecords(t, wantUsers(), got)
}

func TestDB_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put(ctx, "u1", record.Object{"name": record.String("Ann")}))
	require.NoError(t, db.Put(ctx, "u1", record.Object{"name": record.String("Bea")}))

	got, err := db.Records(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, record.String("Bea"), got["u1"]["name"])
}

func TestDB_PutRejectsInvalidKeyAtomically(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	err = db.PutAll(ctx, map[string]record.Object{
		"u1": {"name": record.String("Ann")},
		"":   {"name": record.String("Nobody")},
	})
	require.Error(t, err)

	got, err := db.Records(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "failed batch must not leave partial writes")
}

func TestDB_Delete(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.PutAll(ctx, wantUsers()))
	require.NoError(t, db.Delete(ctx, "u1"))
	require.NoError(t, db.Delete(ctx, "never-existed"))

	got, err := db.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NotContains(t, got, "u1")
}

func TestDB_RecordsRejectsCorruptBody(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.db.Exec(`INSERT INTO records (id, body) VALUES ('u1', '{"score": 1.5}')`)
	require.NoError(t, err)

	_, err = db.Records(ctx)
	assert.ErrorIs(t, err, ErrInvalidFixture)
	assert.ErrorIs(t, err, record.ErrFloat)
}

func TestDB_RoundTripKeepsDecomposedStrings(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	want := map[string]record.Object{
		"u1": {
			"name":          record.String("Jose\u0301"),
			"e\u0301t\u00e9": record.Array{record.String("A\u030a"), record.String("\u00c5")},
		},
	}
	require.NoError(t, db.PutAll(ctx, want))

	got, err := db.Records(ctx)
	require.NoError(t, err)
	assertRecords(t, want, got)
	assert.Equal(t, record.String("Jose\u0301"), got["u1"]["name"], "stored strings must not be normalized")
}

func TestDB_PutAllRejectsNFCKeyCollision(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	err = db.PutAll(ctx, map[string]record.Object{
		"u1": {"name": record.String("Ann")},
		"u2": {"e\u0301": record.Int(1), "\u00e9": record.Int(2)},
	})
	require.ErrorIs(t, err, record.ErrKeyCollision)

	got, err := db.Records(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "failed batch must not leave partial writes")
}

func TestOpenDB_NotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a sqlite database\n", 64)), 0o644))

	_, err := OpenDB(path)
	assert.ErrorIs(t, err, ErrInvalidFixture)
}

func TestLoad_SQLiteNotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a sqlite database\n", 64)), 0o644))

	_, err := Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrInvalidFixture)
}

func TestLoad_SQLiteWithoutSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec("CREATE TABLE other (x INTEGER)")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	_, err = Load(context.Background(), path)
	require.ErrorIs(t, err, ErrInvalidFixture)
	assert.Contains(t, err.Error(), "schema version 0, want 1")
}

func TestLoad_SQLiteLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.db")

	// A fixture written by another tool in rollback-journal mode.
	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(schemaSQL)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO records (id, body) VALUES ('u1', '{"name":"Ann"}')`)
	require.NoError(t, err)
	_, err = raw.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	st, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, st.Keys())

	raw, err = sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()

	var mode string
	require.NoError(t, raw.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "delete", mode, "loading must not switch the journal mode")
}

func TestReadOnlyDSN(t *testing.T) {
	assert.Equal(t, "file:/tmp/items.db?mode=ro", readOnlyDSN("/tmp/items.db"))
	assert.Equal(t, "file:/tmp/a%3fb%23c%25d.db?mode=ro", readOnlyDSN("/tmp/a?b#c%d.db"))
}

func TestLoad_SQLiteFixture(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.sqlite")

	db, err := OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, db.PutAll(ctx, wantUsers()))
	require.NoError(t, db.Close())

	st, err := Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"empty", "u1", "u2"}, st.Keys())

	res, err := st.Get("u2")
	require.NoError(t, err)
	assert.True(t, record.Equal(wantUsers()["u2"], res.Record()))
}
