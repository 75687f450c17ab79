//go:build windows

package crumbs

import (
	"fmt"
	"os"
	"path/filepath"
)

func firefoxRoot() (string, error) {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "Mozilla", "Firefox"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: cannot determine APPDATA: %v", ErrConfig, err)
	}
	return filepath.Join(home, "AppData", "Roaming", "Mozilla", "Firefox"), nil
}
