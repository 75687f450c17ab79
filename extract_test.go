package crumbs

import (
	"context"
	"errors"
	"runtime"
	"testing"
)

func TestExtract_UnknownBrowser(t *testing.T) {
	_, err := Extract(context.Background(), Config{Browser: "netscape"})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("want ErrConfig got %v", err)
	}
}

func TestExtract_SafariUnsupportedElsewhere(t *testing.T) {
	if runtime.GOOS == "darwin" {
		t.Skip("safari is supported here")
	}
	_, err := Extract(context.Background(), Config{Browser: BrowserSafari})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("want ErrUnsupported got %v", err)
	}
}
