package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// CreateSQLiteFixture writes a chunk store file loaded with SampleChunks
func CreateSQLiteFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createChunkKVSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	for _, c := range SampleChunks {
		if _, err := db.Exec("INSERT INTO chunkKV (key, value) VALUES (?, ?)", c.Key, c.Value); err != nil {
			t.Fatalf("Failed to insert chunk %s: %v", c.Key, err)
		}
	}
}

// CreateChunkFiles writes each chunk to its own numbered file under dir and
// returns the paths in order
func CreateChunkFiles(t *testing.T, dir string, chunks ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(chunks))
	for i, c := range chunks {
		path := filepath.Join(dir, "chunk_"+string(rune('a'+i))+".md")
		if err := os.WriteFile(path, []byte(c), 0644); err != nil {
			t.Fatalf("Failed to write chunk file: %v", err)
		}
		paths = append(paths, path)
	}
	return paths
}
