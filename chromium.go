package crumbs

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// chromiumSettings is resolved fresh for every extraction from the per-OS
// browser tables plus environment-derived roots.
type chromiumSettings struct {
	browser     Browser
	userDataDir string

	// safeStorageName is the OS credential-store account ("<name> Safe
	// Storage") protecting the cookie encryption key.
	safeStorageName string

	// Opera keeps a single profile directly in its user-data dir.
	supportsProfiles bool
}

// chromiumDecryptFunc decrypts one encrypted_value. A failed decrypt drops
// the row, never the extraction.
type chromiumDecryptFunc func(encrypted []byte) (string, bool)

func extractChromiumCookies(ctx context.Context, cfg Config) (*Result, error) {
	var warnings []string

	settings, err := resolveChromiumSettings(cfg.Browser)
	if err != nil {
		return nil, err
	}

	dbPath, err := findCookieDatabase(settings.userDataDir, cfg.Profile, "Cookies", settings.supportsProfiles, &warnings)
	if err != nil {
		return nil, err
	}

	snap, cleanup, err := snapshotDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	db, err := openDatabaseReadOnly(ctx, snap)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	metaVersion := chromiumMetaVersion(ctx, db)
	columns, err := tableColumns(ctx, db, "cookies")
	if err != nil {
		return nil, err
	}
	secureColumn := "secure"
	if columns["is_secure"] {
		secureColumn = "is_secure"
	}
	httpOnlyColumn := "0"
	if columns["is_httponly"] {
		httpOnlyColumn = "is_httponly"
	} else if columns["httponly"] {
		httpOnlyColumn = "httponly"
	}

	decrypt, err := newChromiumDecryptor(settings, cfg.Keyring, metaVersion, &warnings)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // Column names come from the fixed rename table above.
	query := fmt.Sprintf(
		`SELECT host_key, name, value, encrypted_value, path, expires_utc, %s, %s FROM cookies`,
		secureColumn, httpOnlyColumn,
	)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query cookies: %v", ErrBrowserCookie, err)
	}
	defer func() { _ = rows.Close() }()

	store := make(Store)
	for rows.Next() {
		var (
			hostKey   string
			name      string
			value     string
			encrypted []byte
			path      string
			expires   sql.NullInt64
			secure    sql.NullInt64
			httpOnly  sql.NullInt64
		)
		if err := rows.Scan(&hostKey, &name, &value, &encrypted, &path, &expires, &secure, &httpOnly); err != nil {
			return nil, fmt.Errorf("%w: failed to read cookie row: %v", ErrBrowserCookie, err)
		}

		cookie, ok := chromiumRowToCookie(hostKey, name, value, encrypted, path, expires.Int64, secure.Int64, httpOnly.Int64, decrypt, &warnings)
		if !ok {
			continue
		}
		store.add(cookie)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read cookie rows: %v", ErrBrowserCookie, err)
	}

	if store.Len() == 0 {
		return nil, noCookiesError(cfg.Browser, warnings)
	}
	return &Result{Store: store, Warnings: warnings}, nil
}

func chromiumRowToCookie(hostKey, name, value string, encrypted []byte, path string, expiresUTC, secure, httpOnly int64, decrypt chromiumDecryptFunc, warnings *[]string) (Cookie, bool) {
	if hostKey == "" || name == "" {
		return Cookie{}, false
	}

	switch {
	case value != "":
	case len(encrypted) > 0:
		decrypted, ok := decrypt(encrypted)
		if !ok {
			*warnings = append(*warnings, fmt.Sprintf("failed to decrypt cookie %q for %s", name, hostKey))
			return Cookie{}, false
		}
		value = decrypted
	default:
		return Cookie{}, false
	}

	return Cookie{
		Name:     name,
		Value:    value,
		Domain:   hostKey,
		Path:     path,
		Secure:   secure != 0,
		HTTPOnly: httpOnly != 0,
		Expires:  chromiumExpiresToTime(expiresUTC),
	}, true
}

// chromiumExpiresToTime converts Chromium's microseconds-since-1601 to Unix
// time. Zero and anything not after the Unix epoch mean a session cookie.
func chromiumExpiresToTime(expiresUTC int64) *time.Time {
	if expiresUTC == 0 {
		return nil
	}
	const windowsToUnixEpochSeconds = 11_644_473_600
	seconds := expiresUTC/1_000_000 - windowsToUnixEpochSeconds
	if seconds <= 0 {
		return nil
	}
	t := time.Unix(seconds, 0).UTC()
	return &t
}

func noCookiesError(b Browser, warnings []string) error {
	if len(warnings) > 0 {
		return fmt.Errorf("%w: no %s cookies could be extracted (%s)", ErrBrowserCookie, b, strings.Join(warnings, "; "))
	}
	return fmt.Errorf("%w: no %s cookies could be extracted", ErrBrowserCookie, b)
}
