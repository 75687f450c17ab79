//go:build !darwin && !linux && !windows

package crumbs

import "fmt"

func resolveChromiumSettings(b Browser) (chromiumSettings, error) {
	return chromiumSettings{}, fmt.Errorf("%w: %s cookie extraction is not implemented on this OS", ErrUnsupported, b)
}

func newChromiumDecryptor(_ chromiumSettings, _ string, _ int64, _ *[]string) (chromiumDecryptFunc, error) {
	return nil, fmt.Errorf("%w: Chromium cookie decryption is not implemented on this OS", ErrUnsupported)
}
