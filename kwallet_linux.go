//go:build linux && !android

package crumbs

import (
	"context"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const kwalletDefaultWallet = "kdewallet"

// kwalletSafeStoragePassword reads "<name> Safe Storage" from the folder
// "<name> Keys" of the user's network wallet via the kwallet-query helper.
// Every failure degrades to "no password": v11 cookies then decrypt only
// with the empty-password key.
func kwalletSafeStoragePassword(name string, backend linuxKeyring, warnings *[]string) []byte {
	wallet := kwalletNetworkWallet(backend)

	stdout, _, err := execCapture(context.Background(), "kwallet-query",
		"--read-password", name+" Safe Storage",
		"--folder", name+" Keys",
		wallet,
	)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("kwallet-query failed: %v", err))
		return nil
	}
	out := strings.TrimSuffix(stdout, "\n")
	if strings.HasPrefix(strings.ToLower(out), "failed to read") {
		return nil
	}
	return []byte(out)
}

// kwalletNetworkWallet asks the running kwalletd for the active wallet name,
// falling back to the stock default when the daemon cannot be reached.
func kwalletNetworkWallet(backend linuxKeyring) string {
	var service, path string
	switch backend {
	case linuxKeyringKWallet:
		service, path = "org.kde.kwalletd", "/modules/kwalletd"
	case linuxKeyringKWallet5:
		service, path = "org.kde.kwalletd5", "/modules/kwalletd5"
	case linuxKeyringKWallet6:
		service, path = "org.kde.kwalletd6", "/modules/kwalletd6"
	default:
		return kwalletDefaultWallet
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return kwalletDefaultWallet
	}

	var wallet string
	obj := conn.Object(service, dbus.ObjectPath(path))
	if err := obj.Call("org.kde.KWallet.networkWallet", 0).Store(&wallet); err != nil {
		return kwalletDefaultWallet
	}
	if wallet = strings.TrimSpace(wallet); wallet == "" {
		return kwalletDefaultWallet
	}
	return wallet
}
