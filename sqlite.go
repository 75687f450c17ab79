package crumbs

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (pure Go).
)

func openDatabaseReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	dsn := "file:" + filepath.ToSlash(path) + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open cookies DB: %v", ErrBrowserCookie, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: failed to open cookies DB: %v", ErrBrowserCookie, err)
	}
	return db, nil
}

// chromiumMetaVersion reads the schema generation from the meta table.
// Missing table, missing row or an unparsable value all mean 0.
func chromiumMetaVersion(ctx context.Context, db *sql.DB) int64 {
	var value string
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&value); err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func firefoxSchemaVersion(ctx context.Context, db *sql.DB) int64 {
	var v int64
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&v); err != nil {
		return 0
	}
	return v
}

// tableColumns returns the column names of table, for telling apart the
// historical schema generations.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `PRAGMA table_info(`+table+`)`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s schema: %v", ErrBrowserCookie, table, err)
	}
	defer func() { _ = rows.Close() }()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int64
			name       string
			colType    string
			notNull    int64
			defaultVal sql.NullString
			pk         int64
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("%w: failed to read %s schema: %v", ErrBrowserCookie, table, err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read %s schema: %v", ErrBrowserCookie, table, err)
	}
	return columns, nil
}
