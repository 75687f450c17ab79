//go:build !darwin || ios

package crumbs

import (
	"context"
	"fmt"
	"runtime"
)

func extractSafariCookies(_ context.Context, _ Config) (*Result, error) {
	return nil, fmt.Errorf("%w: safari cookies are not available on %s", ErrUnsupported, runtime.GOOS)
}
