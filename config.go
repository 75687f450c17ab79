package crumbs

import (
	"fmt"
	"strings"
)

// ParseSourceSpec parses a compact cookie-source string of the form
// BROWSER[+KEYRING][:PROFILE][::CONTAINER], e.g. "firefox:work::Personal"
// or "chrome+gnome:Profile 2".
func ParseSourceSpec(spec string) (Config, error) {
	browserPart, container, _ := strings.Cut(spec, "::")
	browserKeyring, profile, _ := strings.Cut(browserPart, ":")
	name, keyring, _ := strings.Cut(browserKeyring, "+")

	browser, err := parseBrowser(name)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Browser:   browser,
		Profile:   profile,
		Container: container,
		Keyring:   keyring,
	}, nil
}

func parseBrowser(name string) (Browser, error) {
	switch Browser(strings.ToLower(strings.TrimSpace(name))) {
	case BrowserChrome:
		return BrowserChrome, nil
	case BrowserEdge:
		return BrowserEdge, nil
	case BrowserBrave:
		return BrowserBrave, nil
	case BrowserOpera:
		return BrowserOpera, nil
	case BrowserVivaldi:
		return BrowserVivaldi, nil
	case BrowserWhale:
		return BrowserWhale, nil
	case BrowserFirefox:
		return BrowserFirefox, nil
	case BrowserSafari:
		return BrowserSafari, nil
	default:
		return "", fmt.Errorf("%w: unsupported browser %q", ErrConfig, name)
	}
}
