//go:build linux && !android

package crumbs

import (
	"fmt"
	"os"
	"path/filepath"
)

func firefoxRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: cannot determine home directory: %v", ErrConfig, err)
	}
	return filepath.Join(home, ".mozilla", "firefox"), nil
}
