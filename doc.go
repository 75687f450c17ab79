// Package crumbs extracts cookies from local browser profiles (Chromium
// family, Firefox, Safari) and matches them against request URLs.
//
// Extraction reads local browser state and may trigger keychain/keyring
// prompts; it blocks on file I/O, SQL queries and OS secret-store calls, so
// callers on a cooperative scheduler should run it in its own goroutine.
// Each call builds a fresh Store from a private snapshot of the cookie
// database; nothing is cached across calls.
package crumbs
