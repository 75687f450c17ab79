package crumbs

import (
	"context"
	"crypto/sha256"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestChromiumExpiresToTime(t *testing.T) {
	if got := chromiumExpiresToTime(0); got != nil {
		t.Fatalf("zero should be a session cookie, got %v", got)
	}
	if got := chromiumExpiresToTime(1_000_000); got != nil {
		t.Fatalf("pre-epoch value should be a session cookie, got %v", got)
	}

	// 2022-06-18T03:46:40Z in microseconds since 1601.
	got := chromiumExpiresToTime(13_300_000_000_000_000)
	if got == nil || got.Unix() != 13_300_000_000-11_644_473_600 {
		t.Fatalf("unexpected conversion %v", got)
	}
}

func TestChromiumRowToCookie_PlaintextPreferred(t *testing.T) {
	failingDecrypt := func([]byte) (string, bool) { return "", false }

	var warnings []string
	cookie, ok := chromiumRowToCookie(".example.com", "sid", "plain", []byte("enc"), "/", 0, 1, 1, failingDecrypt, &warnings)
	if !ok {
		t.Fatal("plaintext row dropped")
	}
	if cookie.Value != "plain" || !cookie.Secure || !cookie.HTTPOnly || cookie.Expires != nil {
		t.Fatalf("unexpected cookie %+v", cookie)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestChromiumRowToCookie_DecryptFailureDropsRow(t *testing.T) {
	failingDecrypt := func([]byte) (string, bool) { return "", false }

	var warnings []string
	if _, ok := chromiumRowToCookie("example.com", "sid", "", []byte("enc"), "/", 0, 0, 0, failingDecrypt, &warnings); ok {
		t.Fatal("undecryptable row kept")
	}
	if len(warnings) != 1 {
		t.Fatalf("want one warning got %v", warnings)
	}
}

func TestChromiumRowToCookie_DropsEmptyRows(t *testing.T) {
	decrypt := func([]byte) (string, bool) { return "x", true }

	var warnings []string
	if _, ok := chromiumRowToCookie("", "sid", "v", nil, "/", 0, 0, 0, decrypt, &warnings); ok {
		t.Fatal("row without host kept")
	}
	if _, ok := chromiumRowToCookie("example.com", "", "v", nil, "/", 0, 0, 0, decrypt, &warnings); ok {
		t.Fatal("row without name kept")
	}
	if _, ok := chromiumRowToCookie("example.com", "sid", "", nil, "/", 0, 0, 0, decrypt, &warnings); ok {
		t.Fatal("row without any value kept")
	}
}

func TestNoCookiesError(t *testing.T) {
	err := noCookiesError(BrowserChrome, []string{"a", "b"})
	if !errors.Is(err, ErrBrowserCookie) {
		t.Fatalf("want ErrBrowserCookie got %v", err)
	}
	if !strings.Contains(err.Error(), "a; b") {
		t.Fatalf("warnings missing from %v", err)
	}
}

func TestExtract_Chromium_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("Chromium extraction fixture is Linux-only")
	}
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dbPath := filepath.Join(configHome, "google-chrome", "Default", "Cookies")
	db := createChromiumCookieDB(t, dbPath, 24)

	expires := time.Now().Add(24*time.Hour).Unix() + 11_644_473_600
	insertChromiumCookie(t, db, ".example.com", "plain", "visible", nil, "/", expires*1_000_000, 1, 0)

	key := deriveAESKey([]byte("peanuts"), chromiumIterationsLinux)
	hashPrefix := sha256.Sum256([]byte("example.com"))
	plaintext := append(hashPrefix[:], []byte("decrypted")...)
	insertChromiumCookie(t, db, "example.com", "enc", "", encryptAESCBCForTest(t, "v10", key, plaintext), "/", 0, 0, 1)

	insertChromiumCookie(t, db, "example.com", "broken", "", []byte("v10garbage-not-aes"), "/", 0, 0, 0)

	res, err := Extract(context.Background(), Config{Browser: BrowserChrome, Keyring: "basictext"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Store.Len() != 2 {
		t.Fatalf("want 2 cookies got %d (warnings=%v)", res.Store.Len(), res.Warnings)
	}
	dotted := res.Store[".example.com"]
	if len(dotted) != 1 || dotted[0].Value != "visible" || !dotted[0].Secure {
		t.Fatalf("unexpected plaintext cookie %+v", dotted)
	}
	bare := res.Store["example.com"]
	if len(bare) != 1 || bare[0].Value != "decrypted" || !bare[0].HTTPOnly {
		t.Fatalf("unexpected decrypted cookie %+v", bare)
	}
	if bare[0].Expires != nil {
		t.Fatalf("session cookie should have nil expiry, got %v", bare[0].Expires)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("want one decrypt warning got %v", res.Warnings)
	}
}

func TestExtract_Chromium_LegacyColumnNames(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("Chromium extraction fixture is Linux-only")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dbPath := filepath.Join(t.TempDir(), "Cookies")
	db := openTestSQLite(t, dbPath)
	if _, err := db.Exec(`CREATE TABLE meta(key TEXT, value TEXT)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO meta(key, value) VALUES('version', '9')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE cookies(host_key TEXT, name TEXT, value TEXT, encrypted_value BLOB, path TEXT, expires_utc INTEGER, secure INTEGER, httponly INTEGER)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(
		`INSERT INTO cookies(host_key,name,value,encrypted_value,path,expires_utc,secure,httponly) VALUES(?,?,?,?,?,?,?,?)`,
		"example.com", "old", "school", nil, "/", 0, 1, 1,
	); err != nil {
		t.Fatal(err)
	}

	res, err := Extract(context.Background(), Config{Browser: BrowserChrome, Profile: dbPath, Keyring: "basictext"})
	if err != nil {
		t.Fatal(err)
	}
	cookies := res.Store["example.com"]
	if len(cookies) != 1 || !cookies[0].Secure || !cookies[0].HTTPOnly {
		t.Fatalf("legacy columns not read: %+v", cookies)
	}
}

func TestExtract_Chromium_EmptyDatabase(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("Chromium extraction fixture is Linux-only")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dbPath := filepath.Join(t.TempDir(), "Cookies")
	createChromiumCookieDB(t, dbPath, 24)

	_, err := Extract(context.Background(), Config{Browser: BrowserChrome, Profile: dbPath, Keyring: "basictext"})
	if !errors.Is(err, ErrBrowserCookie) {
		t.Fatalf("want ErrBrowserCookie for empty store, got %v", err)
	}
}

func TestExtract_Chromium_MissingDataDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("Chromium extraction fixture is Linux-only")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := Extract(context.Background(), Config{Browser: BrowserChrome, Keyring: "basictext"})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("want ErrFileNotFound got %v", err)
	}
}
