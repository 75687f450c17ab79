package crumbs

import (
	"net/url"
	"strings"
	"time"
)

// Cookie expiry timestamps above this are treated as "never expires".
// Some browsers store sentinel far-future values that overflow naive
// time math, and anything past the year 5138 is not a real deadline.
const maxReasonableUnixSeconds = 100_000_000_000

// CookiesForURL returns the cookies in store that an HTTP request to rawURL
// should carry, applying domain, path, scheme and expiry rules. The order of
// the returned cookies follows store insertion order per domain key.
func CookiesForURL(store Store, rawURL string) []Cookie {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	secureOK := u.Scheme == "https"
	now := time.Now()

	var matched []Cookie
	for _, cookies := range store {
		for _, c := range cookies {
			if c.Secure && !secureOK {
				continue
			}
			if isExpired(c, now) {
				continue
			}
			if !domainMatches(c.Domain, host) {
				continue
			}
			if !pathMatches(c.Path, u.Path) {
				continue
			}
			matched = append(matched, c)
		}
	}
	return matched
}

// CookieHeader renders cookies as a Cookie request header value.
func CookieHeader(cookies []Cookie) string {
	var sb strings.Builder
	for i, c := range cookies {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(c.Name)
		sb.WriteByte('=')
		sb.WriteString(c.Value)
	}
	return sb.String()
}

// domainMatches implements the RFC 6265 host match. A cookie domain with a
// leading dot matches the host itself and any subdomain; without one it
// matches the exact host only.
func domainMatches(cookieDomain, host string) bool {
	domain := strings.ToLower(cookieDomain)
	if trimmed, ok := strings.CutPrefix(domain, "."); ok {
		return host == trimmed || strings.HasSuffix(host, domain)
	}
	return host == domain
}

// pathMatches implements the RFC 6265 path match. An empty request path is
// treated as "/".
func pathMatches(cookiePath, requestPath string) bool {
	if requestPath == "" {
		requestPath = "/"
	}
	if cookiePath == "" || cookiePath == requestPath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	if strings.HasSuffix(cookiePath, "/") {
		return true
	}
	return requestPath[len(cookiePath)] == '/'
}

func isExpired(c Cookie, now time.Time) bool {
	if c.Expires == nil {
		return false
	}
	if c.Expires.Unix() > maxReasonableUnixSeconds {
		return false
	}
	return !c.Expires.After(now)
}
