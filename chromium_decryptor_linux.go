//go:build linux && !android

package crumbs

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

type linuxKeyring int

const (
	linuxKeyringKWallet linuxKeyring = iota
	linuxKeyringKWallet5
	linuxKeyringKWallet6
	linuxKeyringGnome
	linuxKeyringBasicText
)

// newChromiumDecryptor builds the Linux decrypt strategy. Two keys exist
// regardless of the keyring outcome: the Chromium default ("peanuts") used
// for v10 values and the empty-password key; a third is derived from the
// keyring password, when one could be read, for v11 values.
func newChromiumDecryptor(settings chromiumSettings, keyringOverride string, metaVersion int64, warnings *[]string) (chromiumDecryptFunc, error) {
	password, havePassword, err := linuxSafeStoragePassword(settings.safeStorageName, keyringOverride, warnings)
	if err != nil {
		return nil, err
	}

	v10Key := deriveAESKey([]byte("peanuts"), chromiumIterationsLinux)
	emptyKey := deriveAESKey(nil, chromiumIterationsLinux)
	var v11Key []byte
	if havePassword {
		v11Key = deriveAESKey(password, chromiumIterationsLinux)
	}

	return func(encrypted []byte) (string, bool) {
		if len(encrypted) < 3 {
			return "", false
		}
		version, ciphertext := encrypted[:3], encrypted[3:]
		switch string(version) {
		case "v10":
			return decryptAESCBCMulti(ciphertext, [][]byte{v10Key, emptyKey}, metaVersion)
		case "v11":
			if v11Key == nil {
				return "", false
			}
			return decryptAESCBCMulti(ciphertext, [][]byte{v11Key, emptyKey}, metaVersion)
		default:
			*warnings = append(*warnings, fmt.Sprintf("unknown cookie encryption version %q", version))
			return "", false
		}
	}, nil
}

// linuxSafeStoragePassword reads the browser's Safe Storage password from
// the selected secret backend. A missing secret is reported as absent, not
// as an error; only a bad explicit keyring name fails.
func linuxSafeStoragePassword(name, keyringOverride string, warnings *[]string) (password []byte, havePassword bool, err error) {
	backend := detectLinuxKeyring()
	if keyringOverride != "" {
		backend, err = parseLinuxKeyring(keyringOverride)
		if err != nil {
			return nil, false, err
		}
	}

	switch backend {
	case linuxKeyringKWallet, linuxKeyringKWallet5, linuxKeyringKWallet6:
		return kwalletSafeStoragePassword(name, backend, warnings), true, nil
	case linuxKeyringGnome:
		return gnomeSafeStoragePassword(name, warnings), true, nil
	default:
		// Basic text: Chromium had no secret store, v11 values cannot exist.
		return nil, false, nil
	}
}

func parseLinuxKeyring(value string) (linuxKeyring, error) {
	switch strings.ToLower(value) {
	case "kwallet":
		return linuxKeyringKWallet, nil
	case "kwallet5":
		return linuxKeyringKWallet5, nil
	case "kwallet6":
		return linuxKeyringKWallet6, nil
	case "gnome", "gnomekeyring":
		return linuxKeyringGnome, nil
	case "basic", "basictext":
		return linuxKeyringBasicText, nil
	default:
		return 0, fmt.Errorf("%w: unsupported keyring %q", ErrConfig, value)
	}
}

func gnomeSafeStoragePassword(name string, warnings *[]string) []byte {
	service := name + " Safe Storage"
	if pw, err := keyring.Get(service, name); err == nil && pw != "" {
		return []byte(pw)
	}
	// Chromium registers its secret by label, not by service/account
	// attributes, so a plain lookup can miss it. Scan the collection.
	pw, err := secretServicePasswordByLabel(service)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("failed to read %s from GNOME keyring: %v", service, err))
		return nil
	}
	return pw
}

type linuxDesktop int

const (
	linuxDesktopOther linuxDesktop = iota
	linuxDesktopCinnamon
	linuxDesktopDeepin
	linuxDesktopGnome
	linuxDesktopKde3
	linuxDesktopKde4
	linuxDesktopKde5
	linuxDesktopKde6
	linuxDesktopPantheon
	linuxDesktopUkui
	linuxDesktopUnity
	linuxDesktopXfce
	linuxDesktopLxqt
)

func detectLinuxKeyring() linuxKeyring {
	switch detectLinuxDesktop() {
	case linuxDesktopKde4:
		return linuxKeyringKWallet
	case linuxDesktopKde5:
		return linuxKeyringKWallet5
	case linuxDesktopKde6:
		return linuxKeyringKWallet6
	case linuxDesktopKde3, linuxDesktopLxqt, linuxDesktopOther:
		return linuxKeyringBasicText
	default:
		return linuxKeyringGnome
	}
}

// detectLinuxDesktop mirrors Chromium's desktop-environment sniffing:
// XDG_CURRENT_DESKTOP tokens first, then DESKTOP_SESSION, then the legacy
// session markers.
func detectLinuxDesktop() linuxDesktop {
	desktopSession := os.Getenv("DESKTOP_SESSION")

	for _, part := range strings.Split(os.Getenv("XDG_CURRENT_DESKTOP"), ":") {
		switch strings.TrimSpace(part) {
		case "Unity":
			if strings.Contains(desktopSession, "gnome-fallback") {
				return linuxDesktopGnome
			}
			return linuxDesktopUnity
		case "Deepin":
			return linuxDesktopDeepin
		case "GNOME":
			return linuxDesktopGnome
		case "X-Cinnamon":
			return linuxDesktopCinnamon
		case "KDE":
			switch os.Getenv("KDE_SESSION_VERSION") {
			case "5":
				return linuxDesktopKde5
			case "6":
				return linuxDesktopKde6
			default:
				return linuxDesktopKde4
			}
		case "Pantheon":
			return linuxDesktopPantheon
		case "XFCE":
			return linuxDesktopXfce
		case "UKUI":
			return linuxDesktopUkui
		case "LXQt":
			return linuxDesktopLxqt
		}
	}

	switch desktopSession {
	case "deepin":
		return linuxDesktopDeepin
	case "mate", "gnome":
		return linuxDesktopGnome
	case "kde4", "kde-plasma":
		return linuxDesktopKde4
	case "kde":
		if os.Getenv("KDE_SESSION_VERSION") != "" {
			return linuxDesktopKde4
		}
		return linuxDesktopKde3
	case "ukui":
		return linuxDesktopUkui
	}

	if strings.Contains(desktopSession, "xfce") || desktopSession == "xubuntu" {
		return linuxDesktopXfce
	}
	if os.Getenv("GNOME_DESKTOP_SESSION_ID") != "" {
		return linuxDesktopGnome
	}
	if os.Getenv("KDE_FULL_SESSION") != "" {
		if os.Getenv("KDE_SESSION_VERSION") != "" {
			return linuxDesktopKde4
		}
		return linuxDesktopKde3
	}
	return linuxDesktopOther
}
