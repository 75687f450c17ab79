//go:build linux && !android

package crumbs

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	secretServiceDest = "org.freedesktop.secrets"
	secretServicePath = dbus.ObjectPath("/org/freedesktop/secrets")

	secretServiceIface    = "org.freedesktop.Secret.Service"
	secretCollectionIface = "org.freedesktop.Secret.Collection"
	secretItemIface       = "org.freedesktop.Secret.Item"
)

type secretServiceSecret struct {
	Session     dbus.ObjectPath
	Parameters  []byte
	Value       []byte
	ContentType string
}

// secretServicePasswordByLabel scans the default (or any) Secret Service
// collection for an item with the given label, unlocking it when necessary,
// and returns its secret value.
func secretServicePasswordByLabel(label string) ([]byte, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	service := conn.Object(secretServiceDest, secretServicePath)

	var discard dbus.Variant
	var sessionPath dbus.ObjectPath
	err = service.Call(secretServiceIface+".OpenSession", 0, "plain", dbus.MakeVariant("")).Store(&discard, &sessionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open secret service session: %w", err)
	}

	collectionPath, err := secretServiceCollection(service)
	if err != nil {
		return nil, err
	}
	collection := conn.Object(secretServiceDest, collectionPath)

	itemsVar, err := collection.GetProperty(secretCollectionIface + ".Items")
	if err != nil {
		return nil, fmt.Errorf("failed to list keyring items: %w", err)
	}
	items, _ := itemsVar.Value().([]dbus.ObjectPath)

	for _, itemPath := range items {
		item := conn.Object(secretServiceDest, itemPath)
		labelVar, err := item.GetProperty(secretItemIface + ".Label")
		if err != nil {
			continue
		}
		if itemLabel, _ := labelVar.Value().(string); itemLabel != label {
			continue
		}

		if lockedVar, err := item.GetProperty(secretItemIface + ".Locked"); err == nil {
			if locked, _ := lockedVar.Value().(bool); locked {
				var unlocked []dbus.ObjectPath
				var prompt dbus.ObjectPath
				_ = service.Call(secretServiceIface+".Unlock", 0, []dbus.ObjectPath{itemPath}).Store(&unlocked, &prompt)
			}
		}

		var secret secretServiceSecret
		if err := item.Call(secretItemIface+".GetSecret", 0, sessionPath).Store(&secret); err != nil {
			return nil, fmt.Errorf("failed to read keyring secret: %w", err)
		}
		return secret.Value, nil
	}

	return nil, fmt.Errorf("no keyring item labeled %q", label)
}

func secretServiceCollection(service dbus.BusObject) (dbus.ObjectPath, error) {
	var collectionPath dbus.ObjectPath
	err := service.Call(secretServiceIface+".ReadAlias", 0, "default").Store(&collectionPath)
	if err == nil && collectionPath != "/" {
		return collectionPath, nil
	}

	collectionsVar, err := service.GetProperty(secretServiceIface + ".Collections")
	if err != nil {
		return "", fmt.Errorf("failed to read keyring collections: %w", err)
	}
	collections, _ := collectionsVar.Value().([]dbus.ObjectPath)
	if len(collections) == 0 {
		return "", errors.New("no keyring collections available")
	}
	return collections[0], nil
}
