package crumbs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ini/ini"
)

// Newest cookie schema generation this extractor has been validated against.
const firefoxMaxKnownSchemaVersion = 17

func extractFirefoxCookies(ctx context.Context, cfg Config) (*Result, error) {
	var warnings []string

	dbPath, err := firefoxFindDatabase(cfg.Profile, &warnings)
	if err != nil {
		return nil, err
	}

	container, err := resolveFirefoxContainer(dbPath, cfg.Container)
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

	schemaVersion := firefoxSchemaVersion(ctx, db)
	if schemaVersion > firefoxMaxKnownSchemaVersion {
		warnings = append(warnings, fmt.Sprintf("Firefox cookie DB schema version %d may be unsupported", schemaVersion))
	}

	columns, err := tableColumns(ctx, db, "moz_cookies")
	if err != nil {
		return nil, err
	}
	expiryColumn := ""
	switch {
	case columns["expiry"]:
		expiryColumn = "expiry"
	case columns["expires"]:
		expiryColumn = "expires"
	default:
		return nil, fmt.Errorf("%w: moz_cookies table missing expiry column", ErrBrowserCookie)
	}
	secureColumn := "isSecure"
	if !columns["isSecure"] && columns["is_secure"] {
		secureColumn = "is_secure"
	}
	httpOnlyColumn := "0"
	if columns["isHttpOnly"] {
		httpOnlyColumn = "isHttpOnly"
	} else if columns["is_http_only"] {
		httpOnlyColumn = "is_http_only"
	}

	//nolint:gosec // Column names come from the fixed rename table above.
	query := fmt.Sprintf(
		`SELECT host, name, value, path, %s, %s, %s FROM moz_cookies`,
		expiryColumn, secureColumn, httpOnlyColumn,
	)
	var args []any
	switch container.mode {
	case firefoxContainerNoneOnly:
		query += ` WHERE NOT INSTR(originAttributes, 'userContextId=')`
	case firefoxContainerSpecific:
		query += ` WHERE originAttributes LIKE ? OR originAttributes LIKE ?`
		args = append(args,
			fmt.Sprintf("%%userContextId=%d", container.id),
			fmt.Sprintf("%%userContextId=%d&%%", container.id),
		)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query Firefox cookies: %v", ErrBrowserCookie, err)
	}
	defer func() { _ = rows.Close() }()

	store := make(Store)
	for rows.Next() {
		var (
			host     string
			name     string
			value    string
			path     string
			expiry   sql.NullInt64
			secure   sql.NullInt64
			httpOnly sql.NullInt64
		)
		if err := rows.Scan(&host, &name, &value, &path, &expiry, &secure, &httpOnly); err != nil {
			return nil, fmt.Errorf("%w: failed to read Firefox cookie row: %v", ErrBrowserCookie, err)
		}
		if host == "" || name == "" || value == "" {
			continue
		}
		store.add(Cookie{
			Name:     name,
			Value:    value,
			Domain:   host,
			Path:     path,
			Secure:   secure.Int64 != 0,
			HTTPOnly: httpOnly.Int64 != 0,
			Expires:  firefoxExpiryToTime(expiry, schemaVersion),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read Firefox cookie rows: %v", ErrBrowserCookie, err)
	}

	if store.Len() == 0 {
		return nil, noCookiesError(BrowserFirefox, warnings)
	}
	return &Result{Store: store, Warnings: warnings}, nil
}

// firefoxExpiryToTime converts the stored expiry to Unix time. Schema 16
// switched the column from seconds to milliseconds.
func firefoxExpiryToTime(expiry sql.NullInt64, schemaVersion int64) *time.Time {
	if !expiry.Valid {
		return nil
	}
	seconds := expiry.Int64
	if schemaVersion >= 16 {
		seconds /= 1000
	}
	if seconds <= 0 {
		return nil
	}
	t := time.Unix(seconds, 0).UTC()
	return &t
}

func firefoxFindDatabase(profile string, warnings *[]string) (string, error) {
	var searchRoot string
	switch {
	case profile != "" && isPathLike(profile):
		expanded, err := expandPath(profile)
		if err != nil {
			return "", err
		}
		if fileExists(expanded) {
			return expanded, nil
		}
		searchRoot = expanded
	case profile != "":
		root, err := firefoxRoot()
		if err != nil {
			return "", err
		}
		searchRoot = firefoxProfileDir(root, profile, warnings)
	default:
		root, err := firefoxRoot()
		if err != nil {
			return "", err
		}
		searchRoot = root
	}

	if !dirExists(searchRoot) {
		return "", fmt.Errorf("%w: Firefox profile dir not found: %s", ErrFileNotFound, searchRoot)
	}
	candidates, err := findFiles(searchRoot, "cookies.sqlite")
	if err != nil {
		return "", err
	}
	newest := newestPath(candidates)
	if newest == "" {
		return "", fmt.Errorf("%w: Firefox cookies database not found under %s", ErrFileNotFound, searchRoot)
	}
	return newest, nil
}

// firefoxProfileDir maps a bare profile name to its directory, preferring
// the registration in profiles.ini over a literal directory name.
func firefoxProfileDir(root, profile string, warnings *[]string) string {
	iniPath := filepath.Join(root, "profiles.ini")
	if cfg, err := ini.Load(iniPath); err == nil {
		for _, section := range cfg.Sections() {
			if !strings.HasPrefix(section.Name(), "Profile") {
				continue
			}
			pathStr := filepath.FromSlash(section.Key("Path").String())
			if pathStr == "" {
				continue
			}
			if section.Key("Name").String() != profile && filepath.Base(pathStr) != profile {
				continue
			}
			if section.Key("IsRelative").String() == "1" {
				pathStr = filepath.Join(root, pathStr)
			}
			return pathStr
		}
		*warnings = append(*warnings, fmt.Sprintf("Firefox profile %q not registered in profiles.ini", profile))
	}
	if dir := filepath.Join(root, "Profiles", profile); dirExists(dir) {
		return dir
	}
	return filepath.Join(root, profile)
}

type firefoxContainerMode int

const (
	firefoxContainerAny firefoxContainerMode = iota
	firefoxContainerNoneOnly
	firefoxContainerSpecific
)

type firefoxContainer struct {
	mode firefoxContainerMode
	id   int64
}

// resolveFirefoxContainer maps the requested container name to a
// userContextId via the profile's containers.json. The literal "none"
// selects cookies outside any container; an unresolvable name is a hard
// failure.
func resolveFirefoxContainer(cookieDB, container string) (firefoxContainer, error) {
	if container == "" {
		return firefoxContainer{mode: firefoxContainerAny}, nil
	}
	if container == "none" {
		return firefoxContainer{mode: firefoxContainerNoneOnly}, nil
	}

	containersPath := filepath.Join(filepath.Dir(cookieDB), "containers.json")
	if !fileExists(containersPath) {
		return firefoxContainer{}, fmt.Errorf("%w: Firefox containers.json not found at %s", ErrFileNotFound, containersPath)
	}
	data, err := os.ReadFile(containersPath)
	if err != nil {
		return firefoxContainer{}, fmt.Errorf("%w: failed to read containers.json: %v", ErrBrowserCookie, err)
	}

	var parsed struct {
		Identities []struct {
			Name          string `json:"name"`
			L10nID        string `json:"l10nID"`
			UserContextID *int64 `json:"userContextId"`
		} `json:"identities"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return firefoxContainer{}, fmt.Errorf("%w: failed to parse containers.json: %v", ErrBrowserCookie, err)
	}

	for _, identity := range parsed.Identities {
		if identity.UserContextID == nil {
			continue
		}
		if identity.Name == container || l10nLabelMatches(container, identity.L10nID) {
			return firefoxContainer{mode: firefoxContainerSpecific, id: *identity.UserContextID}, nil
		}
	}
	return firefoxContainer{}, fmt.Errorf("%w: Firefox container %q not found", ErrBrowserCookie, container)
}

// l10nLabelMatches recognizes the built-in containers, whose names live in
// localization IDs of the form "userContext<Label>.label".
func l10nLabelMatches(container, l10nID string) bool {
	label, ok := strings.CutPrefix(l10nID, "userContext")
	if !ok {
		return false
	}
	label, ok = strings.CutSuffix(label, ".label")
	if !ok {
		return false
	}
	return label == container
}
