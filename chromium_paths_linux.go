//go:build linux && !android

package crumbs

import (
	"fmt"
	"os"
	"path/filepath"
)

func resolveChromiumSettings(b Browser) (chromiumSettings, error) {
	base := xdgConfigHome()
	if base == "" {
		return chromiumSettings{}, fmt.Errorf("%w: cannot determine config directory", ErrConfig)
	}

	// The keyring name is the label Chromium registered the Safe Storage
	// secret under; several vendors never rebranded it.
	var (
		relativeDir     string
		safeStorageName string
	)
	supportsProfiles := true
	switch b {
	case BrowserChrome:
		relativeDir, safeStorageName = "google-chrome", "Chrome"
	case BrowserEdge:
		relativeDir, safeStorageName = "microsoft-edge", "Chromium"
	case BrowserBrave:
		relativeDir, safeStorageName = filepath.Join("BraveSoftware", "Brave-Browser"), "Brave"
	case BrowserOpera:
		relativeDir, safeStorageName = "opera", "Chromium"
		supportsProfiles = false
	case BrowserVivaldi:
		relativeDir, safeStorageName = "vivaldi", "Chrome"
	case BrowserWhale:
		relativeDir, safeStorageName = "naver-whale", "Whale"
	default:
		return chromiumSettings{}, fmt.Errorf("%w: %q is not a Chromium-family browser", ErrConfig, b)
	}

	return chromiumSettings{
		browser:          b,
		userDataDir:      filepath.Join(base, relativeDir),
		safeStorageName:  safeStorageName,
		supportsProfiles: supportsProfiles,
	}, nil
}

func xdgConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
