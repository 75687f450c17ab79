//go:build darwin && !ios

package crumbs

import (
	"context"
	"fmt"
	"strings"
)

// newChromiumDecryptor builds the macOS decrypt strategy: one AES-128-CBC
// key derived from the browser's keychain password. A missing or locked
// keychain entry is not fatal -- every v10 row just fails to decrypt.
func newChromiumDecryptor(settings chromiumSettings, _ string, metaVersion int64, warnings *[]string) (chromiumDecryptFunc, error) {
	var key []byte
	password, err := macosKeychainPassword(settings.safeStorageName)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("keychain read failed for %s Safe Storage: %v; encrypted cookies will be skipped", settings.safeStorageName, err))
	} else {
		key = deriveAESKey([]byte(password), chromiumIterationsMacOS)
	}

	return func(encrypted []byte) (string, bool) {
		if len(encrypted) < 3 {
			return "", false
		}
		version, ciphertext := encrypted[:3], encrypted[3:]
		if string(version) != "v10" {
			*warnings = append(*warnings, fmt.Sprintf("unknown cookie encryption version %q", version))
			return "", false
		}
		if key == nil {
			return "", false
		}
		return decryptAESCBCMulti(ciphertext, [][]byte{key}, metaVersion)
	}, nil
}

// macosKeychainPassword reads the generic password stored under service
// "<name> Safe Storage", account "<name>". This may pop a keychain prompt.
func macosKeychainPassword(name string) (string, error) {
	stdout, stderr, err := execCapture(context.Background(), "security",
		"find-generic-password",
		"-w",
		"-a", name,
		"-s", name+" Safe Storage",
	)
	if err != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	password := strings.TrimSpace(stdout)
	if password == "" {
		return "", fmt.Errorf("keychain returned an empty password")
	}
	return password, nil
}
