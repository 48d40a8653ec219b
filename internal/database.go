package internal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// OpenDatabase opens a SQLite chunk store in read-only mode
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}

	return db, nil
}

// QueryChunkKV returns the chunkKV rows whose key matches a LIKE pattern,
// ordered by key. Rows with a NULL value are skipped.
func QueryChunkKV(db *sql.DB, pattern string) ([]KeyValuePair, error) {
	query := "SELECT key, value FROM chunkKV WHERE key LIKE ? AND value IS NOT NULL ORDER BY key"
	rows, err := db.Query(query, pattern)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	defer rows.Close()

	var pairs []KeyValuePair
	for rows.Next() {
		var pair KeyValuePair
		var value sql.NullString
		if err := rows.Scan(&pair.Key, &value); err != nil {
			return nil, &StorageError{Op: "scan", Err: err}
		}
		if value.Valid {
			pair.Value = value.String
			pairs = append(pairs, pair)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return pairs, nil
}

// KeyValuePair is one row of chunkKV
type KeyValuePair struct {
	Key   string
	Value string
}
