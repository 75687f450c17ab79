package crumbs

import "errors"

// Error kinds surfaced to the caller. The consuming CLI maps each to a
// distinct exit code, so structural failures always wrap exactly one of them
// and can be classified with errors.Is.
var (
	// ErrFileNotFound marks a missing cookie database, profile directory or
	// containers.json.
	ErrFileNotFound = errors.New("file not found")

	// ErrBrowserCookie marks a generic extraction, decryption or parse
	// failure, including an extraction that produced no cookies at all.
	ErrBrowserCookie = errors.New("browser cookie error")

	// ErrConfig marks a bad keyring name, an unresolvable home or config
	// directory, or an otherwise unusable Config.
	ErrConfig = errors.New("config error")

	// ErrUnsupported marks a browser/OS combination this build does not
	// implement.
	ErrUnsupported = errors.New("unsupported")
)
