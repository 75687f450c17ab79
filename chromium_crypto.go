package crumbs

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1" //nolint:gosec // Chromium derives cookie keys with PBKDF2-HMAC-SHA1 ("saltysalt").
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"
)

const (
	chromiumKeySalt         = "saltysalt"
	chromiumAESCBCIV        = "                " // 16 spaces
	chromiumIterationsLinux = 1
	chromiumIterationsMacOS = 1003
	chromiumAESCBCKeyLen    = 16

	aesGCMNonceLen = 12
	aesGCMTagLen   = 16
)

func deriveAESKey(password []byte, iterations int) []byte {
	return pbkdf2.Key(password, []byte(chromiumKeySalt), iterations, chromiumAESCBCKeyLen, sha1.New)
}

// decryptAESCBC decrypts a Chromium cookie payload (version tag already
// stripped) with AES-128-CBC, the fixed all-spaces IV and PKCS7 padding.
func decryptAESCBC(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("cipher input not full blocks")
	}

	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, []byte(chromiumAESCBCIV)).CryptBlocks(out, ciphertext)
	return removePKCS7Padding(out)
}

// decryptAESCBCMulti tries each key in order and returns the first plaintext
// that survives the hash-prefix trim and decodes as UTF-8.
func decryptAESCBCMulti(ciphertext []byte, keys [][]byte, metaVersion int64) (string, bool) {
	for _, key := range keys {
		plain, err := decryptAESCBC(ciphertext, key)
		if err != nil {
			continue
		}
		if value, ok := decodeCookieValue(plain, metaVersion); ok {
			return value, true
		}
	}
	return "", false
}

// decryptAESGCM decrypts an AES-256-GCM payload laid out as
// [12-byte nonce][ciphertext+16-byte tag].
func decryptAESGCM(payload, key []byte) ([]byte, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid AES-GCM key length %d", len(key))
	}
	if len(payload) < aesGCMNonceLen+aesGCMTagLen {
		return nil, errors.New("AES-GCM payload too short")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, payload[:aesGCMNonceLen], payload[aesGCMNonceLen:], nil)
}

// decodeCookieValue applies the schema-gated trim and validates the result.
// Chromium 24+ prepends a 32-byte SHA-256 of the host key to the plaintext.
func decodeCookieValue(plain []byte, metaVersion int64) (string, bool) {
	if metaVersion >= 24 && len(plain) >= 32 {
		plain = plain[32:]
	}
	plain = stripLeadingControlBytes(plain)
	if !utf8.Valid(plain) {
		return "", false
	}
	return string(plain), true
}

// Some schema generations leave length or type bytes in front of the value.
func stripLeadingControlBytes(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] < 0x20 {
		i++
	}
	return b[i:]
}

func removePKCS7Padding(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return b, nil
	}
	paddingLen := int(b[len(b)-1])
	if paddingLen <= 0 || paddingLen > aes.BlockSize || paddingLen > len(b) {
		return nil, fmt.Errorf("invalid padding length: %d", paddingLen)
	}
	for _, p := range b[len(b)-paddingLen:] {
		if int(p) != paddingLen {
			return nil, errors.New("invalid padding bytes")
		}
	}
	return b[:len(b)-paddingLen], nil
}
