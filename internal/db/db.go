// Package db opens the sqlite file every other storage package shares.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Quotes and materials are written from request handlers while reads happen
// concurrently, so WAL and a busy timeout are set up front.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Open opens the quote database at path and verifies it is reachable.
func Open(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open quote database: %w", err)
	}

	for _, pragma := range pragmas {
		if _, err := database.Exec(pragma); err != nil {
			database.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping quote database: %w", err)
	}

	return database, nil
}
