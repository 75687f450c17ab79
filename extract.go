package crumbs

import (
	"context"
	"fmt"
)

// Extract loads the cookie store for the browser named in cfg. The store is
// built once and owned by the caller; match it against each URL of a
// redirect chain with CookiesForURL.
//
// Per-cookie decrypt/decode failures never abort extraction -- the affected
// row is dropped and a warning recorded. Structural failures (no database,
// unreadable schema, unresolvable container) abort with a wrapped error
// kind. An extraction that ends with zero cookies is reported as
// ErrBrowserCookie rather than an empty success.
func Extract(ctx context.Context, cfg Config) (*Result, error) {
	switch cfg.Browser {
	case BrowserChrome, BrowserEdge, BrowserBrave, BrowserOpera, BrowserVivaldi, BrowserWhale:
		return extractChromiumCookies(ctx, cfg)
	case BrowserFirefox:
		return extractFirefoxCookies(ctx, cfg)
	case BrowserSafari:
		return extractSafariCookies(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown browser %q", ErrConfig, cfg.Browser)
	}
}
