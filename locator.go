package crumbs

import (
	"fmt"
	"os"
	"path/filepath"
)

// findCookieDatabase resolves the profile selector against the browser's
// user-data directory and returns the newest matching cookie database.
//
// A path-like profile is expanded and, if it points at a file, returned
// directly without any discovery. A bare profile name is joined onto the
// user-data directory when the browser supports profiles; otherwise the base
// directory is searched and a warning recorded.
func findCookieDatabase(userDataDir, profile, filename string, supportsProfiles bool, warnings *[]string) (string, error) {
	searchRoot := userDataDir
	if profile != "" {
		if isPathLike(profile) {
			expanded, err := expandPath(profile)
			if err != nil {
				return "", err
			}
			if fileExists(expanded) {
				return expanded, nil
			}
			searchRoot = expanded
		} else if supportsProfiles {
			searchRoot = filepath.Join(userDataDir, profile)
		} else {
			*warnings = append(*warnings, "profile selection is not supported for this browser")
		}
	}

	if !dirExists(searchRoot) {
		return "", fmt.Errorf("%w: browser data dir not found: %s", ErrFileNotFound, searchRoot)
	}

	candidates, err := findFiles(searchRoot, filename)
	if err != nil {
		return "", err
	}
	newest := newestPath(candidates)
	if newest == "" {
		return "", fmt.Errorf("%w: %s database not found under %s", ErrFileNotFound, filename, searchRoot)
	}
	return newest, nil
}

// findFiles collects every file named filename below root. The walk keeps
// its own stack so profile trees of arbitrary depth cannot exhaust the call
// stack.
func findFiles(root, filename string) ([]string, error) {
	var matches []string
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read directory %s: %v", ErrBrowserCookie, dir, err)
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				stack = append(stack, path)
			} else if entry.Name() == filename {
				matches = append(matches, path)
			}
		}
	}
	return matches, nil
}

// newestPath picks the candidate with the most recent modification time.
// Ties are broken arbitrarily.
func newestPath(paths []string) string {
	newest := ""
	var newestMod int64
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if mod := fi.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = path
			newestMod = mod
		}
	}
	return newest
}

// snapshotDatabase copies the live cookie database into a fresh temporary
// file so it can be opened without contending with a running browser. WAL
// sidecars, if present, come along so recent writes are visible.
func snapshotDatabase(dbPath string) (snapshotPath string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "crumbs-")
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to create temp dir: %v", ErrBrowserCookie, err)
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	target := filepath.Join(dir, filepath.Base(dbPath))
	if err := copyFile(dbPath, target); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%w: failed to copy cookies DB: %v", ErrBrowserCookie, err)
	}
	_ = copyFileIfExists(dbPath+"-wal", target+"-wal")
	_ = copyFileIfExists(dbPath+"-shm", target+"-shm")

	return target, cleanup, nil
}
