//go:build !darwin && !linux && !windows

package crumbs

import "fmt"

func firefoxRoot() (string, error) {
	return "", fmt.Errorf("%w: Firefox cookie extraction is not implemented on this OS", ErrUnsupported)
}
