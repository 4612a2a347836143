//go:build cgo

package sqlite

// With cgo available the mattn driver is used; it is faster than modernc.

import (
	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"
