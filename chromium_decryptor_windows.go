//go:build windows

package crumbs

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// newChromiumDecryptor builds the Windows decrypt strategy: an AES-256-GCM
// master key unwrapped from Local State for v10 values, straight DPAPI for
// everything older. A missing or malformed Local State skips v10 rows
// instead of failing the extraction.
func newChromiumDecryptor(settings chromiumSettings, _ string, metaVersion int64, warnings *[]string) (chromiumDecryptFunc, error) {
	masterKey, err := chromiumWindowsMasterKey(settings.userDataDir)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("master key read failed: %v; v10 cookies will be skipped", err))
	}

	return func(encrypted []byte) (string, bool) {
		if len(encrypted) < 3 {
			return "", false
		}
		if string(encrypted[:3]) == "v10" {
			if masterKey == nil {
				return "", false
			}
			plain, err := decryptAESGCM(encrypted[3:], masterKey)
			if err != nil {
				return "", false
			}
			return decodeCookieValue(plain, metaVersion)
		}

		// Legacy values are whole DPAPI blobs with no version tag.
		plain, err := dpapiUnprotect(encrypted)
		if err != nil {
			return "", false
		}
		return decodeCookieValue(plain, metaVersion)
	}, nil
}

// chromiumWindowsMasterKey unwraps os_crypt.encrypted_key from the newest
// Local State file under the browser's user-data root.
func chromiumWindowsMasterKey(userDataDir string) ([]byte, error) {
	candidates, err := findFiles(userDataDir, "Local State")
	if err != nil {
		return nil, err
	}
	statePath := newestPath(candidates)
	if statePath == "" {
		return nil, errors.New("Local State not found")
	}

	stateBytes, err := os.ReadFile(statePath)
	if err != nil {
		return nil, err
	}
	var localState struct {
		OSCrypt struct {
			EncryptedKey string `json:"encrypted_key"`
		} `json:"os_crypt"`
	}
	if err := json.Unmarshal(stateBytes, &localState); err != nil {
		return nil, err
	}
	encB64 := strings.TrimSpace(localState.OSCrypt.EncryptedKey)
	if encB64 == "" {
		return nil, errors.New("Local State missing os_crypt.encrypted_key")
	}
	enc, err := base64.StdEncoding.DecodeString(encB64)
	if err != nil {
		return nil, err
	}
	const dpapiPrefix = "DPAPI"
	if !strings.HasPrefix(string(enc), dpapiPrefix) {
		return nil, errors.New("encrypted_key missing DPAPI prefix")
	}
	key, err := dpapiUnprotect(enc[len(dpapiPrefix):])
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("master key not 32 bytes (got %d)", len(key))
	}
	return key, nil
}

func dpapiUnprotect(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty DPAPI input")
	}

	var outBlob dataBlob
	if err := cryptUnprotectData(newBlob(data), &outBlob); err != nil {
		return nil, err
	}
	defer func() {
		_, _ = windows.LocalFree(windows.Handle(unsafe.Pointer(outBlob.pbData))) //nolint:gosec // Windows API requires this.
	}()
	return outBlob.bytes(), nil
}

type dataBlob struct {
	cbData uint32
	pbData *byte
}

func newBlob(d []byte) *dataBlob {
	if len(d) == 0 {
		return &dataBlob{}
	}
	return &dataBlob{pbData: &d[0], cbData: uint32(len(d))}
}

func (b *dataBlob) bytes() []byte {
	if b == nil || b.cbData == 0 || b.pbData == nil {
		return nil
	}
	out := make([]byte, b.cbData)
	copy(out, (*[1 << 30]byte)(unsafe.Pointer(b.pbData))[:b.cbData:b.cbData])
	return out
}

func cryptUnprotectData(in *dataBlob, out *dataBlob) error {
	// The x/sys wrapper is awkward for raw blobs; call the proc directly
	// with UI forbidden so no credential prompt can appear.
	dll := windows.NewLazySystemDLL("Crypt32.dll")
	proc := dll.NewProc("CryptUnprotectData")
	const cryptprotectUIForbidden = 0x1
	r, _, e := proc.Call(
		uintptr(unsafe.Pointer(in)),
		0,
		0,
		0,
		0,
		cryptprotectUIForbidden,
		uintptr(unsafe.Pointer(out)),
	)
	if r == 0 {
		return e
	}
	return nil
}
