// Package sqlite queries the precomputed SQLite lookups shipped with the
// data: the best association per variant and the rsID table.
package sqlite

import (
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Open connects read-only to an existing SQLite database. Unlike the driver
// default, a missing file is an error rather than a new empty database.
func Open(path string) (*sqlx.DB, error) {
	path = strings.TrimPrefix(path, "file:")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// URI filenames have to begin with 'file:'; see
	// https://www.sqlite.org/c3ref/open.html
	db, err := sqlx.Connect(driverName, "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("connect sqlite %s: %w", path, err)
	}
	return db, nil
}
