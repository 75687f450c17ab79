//go:build darwin && !ios

package crumbs

import (
	"fmt"
	"os"
	"path/filepath"
)

func resolveChromiumSettings(b Browser) (chromiumSettings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return chromiumSettings{}, fmt.Errorf("%w: cannot determine home directory: %v", ErrConfig, err)
	}
	base := filepath.Join(home, "Library", "Application Support")

	var (
		relativeDir     string
		safeStorageName string
	)
	supportsProfiles := true
	switch b {
	case BrowserChrome:
		relativeDir, safeStorageName = filepath.Join("Google", "Chrome"), "Chrome"
	case BrowserEdge:
		relativeDir, safeStorageName = "Microsoft Edge", "Microsoft Edge"
	case BrowserBrave:
		relativeDir, safeStorageName = filepath.Join("BraveSoftware", "Brave-Browser"), "Brave"
	case BrowserOpera:
		// Opera uses its app bundle identifier and a single profile.
		relativeDir, safeStorageName = "com.operasoftware.Opera", "Opera"
		supportsProfiles = false
	case BrowserVivaldi:
		relativeDir, safeStorageName = "Vivaldi", "Vivaldi"
	case BrowserWhale:
		relativeDir, safeStorageName = filepath.Join("Naver", "Whale"), "Whale"
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
