package crumbs

import "time"

// Browser identifies a cookie source.
type Browser string

const (
	// BrowserChrome is Google Chrome.
	BrowserChrome Browser = "chrome"
	// BrowserEdge is Microsoft Edge.
	BrowserEdge Browser = "edge"
	// BrowserBrave is Brave Browser.
	BrowserBrave Browser = "brave"
	// BrowserOpera is Opera.
	BrowserOpera Browser = "opera"
	// BrowserVivaldi is Vivaldi.
	BrowserVivaldi Browser = "vivaldi"
	// BrowserWhale is Naver Whale.
	BrowserWhale Browser = "whale"

	// BrowserFirefox is Mozilla Firefox.
	BrowserFirefox Browser = "firefox"

	// BrowserSafari is Apple Safari (macOS only).
	BrowserSafari Browser = "safari"
)

// Cookie is one extracted browser cookie. Domain is the host key exactly as
// the browser stored it and may carry a leading dot. A nil Expires means a
// session cookie that never expires.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	Expires  *time.Time
}

// Store maps a cookie domain (raw host key, not normalized) to the cookies
// extracted for it, in extraction order. Map iteration order across domains
// is unspecified.
type Store map[string][]Cookie

func (s Store) add(c Cookie) {
	s[c.Domain] = append(s[c.Domain], c)
}

// Len reports the total number of cookies across all domains.
func (s Store) Len() int {
	n := 0
	for _, cookies := range s {
		n += len(cookies)
	}
	return n
}

// Result is returned by Extract. Warnings carry the non-fatal conditions
// (skipped rows, unreadable secrets) hit during extraction; rendering them is
// the caller's business.
type Result struct {
	Store    Store
	Warnings []string
}

// Config selects what to extract.
type Config struct {
	Browser Browser

	// Profile is a profile name, or a filesystem path (detected by path
	// separators or a leading ~). A path to a cookie database file bypasses
	// discovery entirely.
	Profile string

	// Container is a Firefox contextual-identity name, or the literal "none"
	// to keep only cookies outside any container. Empty means no filtering.
	Container string

	// Keyring overrides Linux secret-backend detection
	// (kwallet, kwallet5, kwallet6, gnome, basictext).
	Keyring string
}
