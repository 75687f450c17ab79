//go:build windows

package crumbs

import (
	"fmt"
	"os"
	"path/filepath"
)

func resolveChromiumSettings(b Browser) (chromiumSettings, error) {
	local := os.Getenv("LOCALAPPDATA")
	roaming := os.Getenv("APPDATA")
	if local == "" || roaming == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return chromiumSettings{}, fmt.Errorf("%w: cannot determine LOCALAPPDATA/APPDATA: %v", ErrConfig, err)
		}
		if local == "" {
			local = filepath.Join(home, "AppData", "Local")
		}
		if roaming == "" {
			roaming = filepath.Join(home, "AppData", "Roaming")
		}
	}

	root := local
	var relativeDir string
	supportsProfiles := true
	switch b {
	case BrowserChrome:
		relativeDir = filepath.Join("Google", "Chrome", "User Data")
	case BrowserEdge:
		relativeDir = filepath.Join("Microsoft", "Edge", "User Data")
	case BrowserBrave:
		relativeDir = filepath.Join("BraveSoftware", "Brave-Browser", "User Data")
	case BrowserOpera:
		// Opera keeps its single profile in roaming AppData.
		root = roaming
		relativeDir = filepath.Join("Opera Software", "Opera Stable")
		supportsProfiles = false
	case BrowserVivaldi:
		relativeDir = filepath.Join("Vivaldi", "User Data")
	case BrowserWhale:
		relativeDir = filepath.Join("Naver", "Naver Whale", "User Data")
	default:
		return chromiumSettings{}, fmt.Errorf("%w: %q is not a Chromium-family browser", ErrConfig, b)
	}

	return chromiumSettings{
		browser:          b,
		userDataDir:      filepath.Join(root, relativeDir),
		supportsProfiles: supportsProfiles,
	}, nil
}
