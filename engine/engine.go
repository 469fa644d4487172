package engine

import (
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./db.sqlite" or a DSN built by
// FileDSN. For in-memory databases, pass ":memory:".
func Open(dsn string) (*sql.DB, error) { return sql.Open(DriverName, dsn) }

// FileDSN builds a "file:" DSN for path with a busy timeout. When readOnly is
// set the database is opened with mode=ro so no connection can write.
func FileDSN(path string, busyTimeout time.Duration, readOnly bool) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("engine: resolve path %q: %w", path, err)
	}
	busy := int(busyTimeout / time.Millisecond)
	if busy <= 0 {
		busy = 5000
	}
	query := url.Values{}
	query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy))
	if readOnly {
		query.Set("mode", "ro")
	}
	return "file:" + abs + "?" + query.Encode(), nil
}
