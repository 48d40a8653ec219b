package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const createChunkKVSQL = `
	CREATE TABLE IF NOT EXISTS chunkKV (
		key TEXT PRIMARY KEY,
		value TEXT
	)`

// CreateInMemoryDB creates an in-memory SQLite chunk store for testing
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	// every connection to :memory: is a fresh database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createChunkKVSQL); err != nil {
		db.Close()
		t.Fatalf("Failed to create chunkKV table: %v", err)
	}

	return db
}

// SampleChunks is the chunk log loaded by CreateTestDB and CreateSQLiteFixture.
// Stream "doc" grows a single Vis node; stream "panes" is a two-channel
// envelope; "notes" is plain prose.
var SampleChunks = []struct {
	Key   string
	Value string
}{
	{Key: "chunk:doc:0", Value: "```vis\n{\"uid\":\"a\",\"type\":\"incr\",\"markdown\":\"x\"}\n```"},
	{Key: "chunk:doc:1", Value: "```vis\n{\"uid\":\"a\",\"type\":\"incr\",\"markdown\":\"y\"}\n```"},
	{Key: "chunk:doc:2", Value: "```vis\n{\"uid\":\"b\",\"markdown\":\"z\"}\n```"},
	{Key: "chunk:panes:0", Value: `{"left":"A","right":"B"}`},
	{Key: "chunk:panes:1", Value: `{"left":"A2","right":"B2"}`},
	{Key: "chunk:notes:0", Value: "Hello "},
	{Key: "chunk:notes:1", Value: "world"},
}

// CreateTestDB creates an in-memory chunk store loaded with SampleChunks
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)

	stmt, err := db.Prepare("INSERT INTO chunkKV (key, value) VALUES (?, ?)")
	if err != nil {
		db.Close()
		t.Fatalf("Failed to prepare insert statement: %v", err)
	}
	defer stmt.Close()

	for _, c := range SampleChunks {
		if _, err := stmt.Exec(c.Key, c.Value); err != nil {
			db.Close()
			t.Fatalf("Failed to insert chunk %s: %v", c.Key, err)
		}
	}

	return db
}

// InsertChunk inserts one chunkKV row
func InsertChunk(t *testing.T, db *sql.DB, key, value string) {
	t.Helper()
	if _, err := db.Exec("INSERT INTO chunkKV (key, value) VALUES (?, ?)", key, value); err != nil {
		t.Fatalf("Failed to insert chunk: %v", err)
	}
}
