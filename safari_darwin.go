//go:build darwin && !ios

package crumbs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const safariCookieFile = "Cookies.binarycookies"

func extractSafariCookies(_ context.Context, cfg Config) (*Result, error) {
	dbPath, err := findSafariDatabase(cfg.Profile)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, dbPath)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrBrowserCookie, dbPath, err)
	}
	store, err := parseBinaryCookies(data)
	if err != nil {
		return nil, err
	}
	if store.Len() == 0 {
		return nil, noCookiesError(BrowserSafari, nil)
	}
	return &Result{Store: store}, nil
}

// findSafariDatabase resolves the cookie file. Safari has no profiles, so a
// profile override is only honored when it names a path to a file directly.
func findSafariDatabase(profile string) (string, error) {
	if profile != "" {
		if !isPathLike(profile) {
			return "", fmt.Errorf("%w: safari does not support profiles", ErrConfig)
		}
		path, err := expandPath(profile)
		if err != nil {
			return "", err
		}
		if !fileExists(path) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: cannot resolve home directory: %v", ErrBrowserCookie, err)
	}
	candidates := []string{
		filepath.Join(home, "Library", "Cookies", safariCookieFile),
		filepath.Join(home, "Library", "Containers", "com.apple.Safari", "Data", "Library", "Cookies", safariCookieFile),
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFileNotFound, candidates[0])
}
