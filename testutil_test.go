package crumbs

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"database/sql"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openTestSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path)+"?mode=rwc")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// createChromiumCookieDB lays down a cookies database with the modern
// column names and the given meta version.
func createChromiumCookieDB(t *testing.T, path string, metaVersion int64) *sql.DB {
	t.Helper()
	db := openTestSQLite(t, path)
	stmts := []string{
		`CREATE TABLE meta(key TEXT, value TEXT)`,
		`CREATE TABLE cookies(host_key TEXT, name TEXT, value TEXT, encrypted_value BLOB, path TEXT, expires_utc INTEGER, is_secure INTEGER, is_httponly INTEGER)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.Exec(`INSERT INTO meta(key, value) VALUES('version', ?)`, metaVersion); err != nil {
		t.Fatal(err)
	}
	return db
}

func insertChromiumCookie(t *testing.T, db *sql.DB, host, name, value string, encrypted []byte, path string, expiresUTC, secure, httpOnly int64) {
	t.Helper()
	if _, err := db.Exec(
		`INSERT INTO cookies(host_key,name,value,encrypted_value,path,expires_utc,is_secure,is_httponly) VALUES(?,?,?,?,?,?,?,?)`,
		host, name, value, encrypted, path, expiresUTC, secure, httpOnly,
	); err != nil {
		t.Fatal(err)
	}
}

func createFirefoxCookieDB(t *testing.T, path string, schemaVersion int64) *sql.DB {
	t.Helper()
	db := openTestSQLite(t, path)
	if _, err := db.Exec(`CREATE TABLE moz_cookies(host TEXT, name TEXT, value TEXT, path TEXT, expiry INTEGER, isSecure INTEGER, isHttpOnly INTEGER, originAttributes TEXT DEFAULT '')`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`PRAGMA user_version = ` + strconv.FormatInt(schemaVersion, 10)); err != nil {
		t.Fatal(err)
	}
	return db
}

func insertFirefoxCookie(t *testing.T, db *sql.DB, host, name, value, path string, expiry int64, secure, httpOnly int64, originAttributes string) {
	t.Helper()
	if _, err := db.Exec(
		`INSERT INTO moz_cookies(host,name,value,path,expiry,isSecure,isHttpOnly,originAttributes) VALUES(?,?,?,?,?,?,?,?)`,
		host, name, value, path, expiry, secure, httpOnly, originAttributes,
	); err != nil {
		t.Fatal(err)
	}
}

func pkcs7Pad(t *testing.T, b []byte) []byte {
	t.Helper()
	paddingLen := aes.BlockSize - (len(b) % aes.BlockSize)
	if paddingLen == 0 {
		paddingLen = aes.BlockSize
	}
	out := make([]byte, 0, len(b)+paddingLen)
	out = append(out, b...)
	for i := 0; i < paddingLen; i++ {
		out = append(out, byte(paddingLen))
	}
	return out
}

func encryptAESCBCForTest(t *testing.T, prefix string, key []byte, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	iv := []byte(chromiumAESCBCIV)
	padded := pkcs7Pad(t, plaintext)
	ciphertext := make([]byte, len(padded))
	cbc := cipher.NewCBCEncrypter(block, iv)
	cbc.CryptBlocks(ciphertext, padded)
	return append([]byte(prefix), ciphertext...)
}

func encryptAESGCMForTest(t *testing.T, prefix string, key []byte, nonce []byte, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatal(err)
	}
	ciphertextAndTag := aesgcm.Seal(nil, nonce, plaintext, nil)
	out := make([]byte, 0, len(prefix)+len(nonce)+len(ciphertextAndTag))
	out = append(out, []byte(prefix)...)
	out = append(out, nonce...)
	out = append(out, ciphertextAndTag...)
	return out
}

// binaryCookiesFile assembles a .binarycookies buffer from pre-built pages.
func binaryCookiesFile(t *testing.T, pages ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("cook")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(pages)))
	for _, page := range pages {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(page)))
	}
	for _, page := range pages {
		buf.Write(page)
	}
	return buf.Bytes()
}

func binaryCookiesPage(t *testing.T, records ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x00, 0x01, 0x00})
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(records)))
	offset := 4 + 4 + 4*len(records)
	for _, record := range records {
		_ = binary.Write(&buf, binary.LittleEndian, uint32(offset))
		offset += len(record)
	}
	for _, record := range records {
		buf.Write(record)
	}
	return buf.Bytes()
}

func binaryCookiesRecord(t *testing.T, domain, name, path, value string, secure bool, expiration float64) []byte {
	t.Helper()
	const headerLen = 56
	var flags uint32
	if secure {
		flags = 0x0001
	}

	strings := []string{domain, name, path, value}
	offsets := make([]uint32, 4)
	cursor := headerLen
	var payload bytes.Buffer
	for i, s := range strings {
		offsets[i] = uint32(cursor)
		payload.WriteString(s)
		payload.WriteByte(0)
		cursor += len(s) + 1
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint32(headerLen+payload.Len()))
	buf.Write([]byte{0, 0, 0, 0})
	_ = binary.Write(&buf, binary.LittleEndian, flags)
	buf.Write([]byte{0, 0, 0, 0})
	for _, off := range offsets {
		_ = binary.Write(&buf, binary.LittleEndian, off)
	}
	buf.Write(make([]byte, 8))
	_ = binary.Write(&buf, binary.LittleEndian, math.Float64bits(expiration))
	_ = binary.Write(&buf, binary.LittleEndian, math.Float64bits(0)) // creation date
	buf.Write(payload.Bytes())
	return buf.Bytes()
}

func timePtr(t time.Time) *time.Time {
	return &t
}
