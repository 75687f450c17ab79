package crumbs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Safari's binarycookies container: a big-endian file header over
// little-endian pages of little-endian records. There is no recovery
// heuristic in the format, so any malformed structure is a hard error.

var (
	safariFileMagic = []byte("cook")
	safariPageMagic = []byte{0x00, 0x00, 0x01, 0x00}
)

// Mac absolute time counts seconds from 2001-01-01T00:00:00Z.
const macEpochOffset = 978307200

// parseBinaryCookies parses an entire Cookies.binarycookies buffer.
func parseBinaryCookies(data []byte) (Store, error) {
	cursor := &byteCursor{data: data}
	if err := cursor.expect(safariFileMagic, "database signature"); err != nil {
		return nil, err
	}
	pageCount, err := cursor.readUint32BE()
	if err != nil {
		return nil, err
	}
	pageSizes := make([]int, 0, pageCount)
	for i := uint32(0); i < pageCount; i++ {
		size, err := cursor.readUint32BE()
		if err != nil {
			return nil, err
		}
		pageSizes = append(pageSizes, int(size))
	}

	store := make(Store)
	for i, size := range pageSizes {
		page, err := cursor.read(size)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		if err := parseSafariPage(page, store); err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
	}
	return store, nil
}

func parseSafariPage(page []byte, store Store) error {
	cursor := &byteCursor{data: page}
	if err := cursor.expect(safariPageMagic, "page signature"); err != nil {
		return err
	}
	recordCount, err := cursor.readUint32LE()
	if err != nil {
		return err
	}
	offsets := make([]int, 0, recordCount)
	for i := uint32(0); i < recordCount; i++ {
		off, err := cursor.readUint32LE()
		if err != nil {
			return err
		}
		offsets = append(offsets, int(off))
	}

	for i, off := range offsets {
		if off < 0 || off >= len(page) {
			return fmt.Errorf("%w: record %d offset out of bounds", ErrBrowserCookie, i)
		}
		cookie, ok, err := parseSafariRecord(page[off:])
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if ok {
			store.add(cookie)
		}
	}
	return nil
}

// parseSafariRecord reads one cookie record. String offsets are relative to
// the record start. Records with an empty domain or name are dropped without
// error; http_only is not recoverable from this format.
func parseSafariRecord(record []byte) (Cookie, bool, error) {
	cursor := &byteCursor{data: record}
	if _, err := cursor.readUint32LE(); err != nil { // record size
		return Cookie{}, false, err
	}
	if err := cursor.skip(4); err != nil {
		return Cookie{}, false, err
	}
	flags, err := cursor.readUint32LE()
	if err != nil {
		return Cookie{}, false, err
	}
	if err := cursor.skip(4); err != nil {
		return Cookie{}, false, err
	}

	var stringOffsets [4]uint32 // domain, name, path, value
	for i := range stringOffsets {
		stringOffsets[i], err = cursor.readUint32LE()
		if err != nil {
			return Cookie{}, false, err
		}
	}
	if err := cursor.skip(8); err != nil {
		return Cookie{}, false, err
	}
	expiration, err := cursor.readFloat64LE()
	if err != nil {
		return Cookie{}, false, err
	}
	if _, err := cursor.readFloat64LE(); err != nil { // creation date
		return Cookie{}, false, err
	}

	domain, err := readNulString(record, int(stringOffsets[0]))
	if err != nil {
		return Cookie{}, false, err
	}
	name, err := readNulString(record, int(stringOffsets[1]))
	if err != nil {
		return Cookie{}, false, err
	}
	path, err := readNulString(record, int(stringOffsets[2]))
	if err != nil {
		return Cookie{}, false, err
	}
	value, err := readNulString(record, int(stringOffsets[3]))
	if err != nil {
		return Cookie{}, false, err
	}

	if domain == "" || name == "" {
		return Cookie{}, false, nil
	}

	var expires *time.Time
	if expiration != 0 {
		t := time.Unix(macEpochOffset+int64(expiration), 0).UTC()
		expires = &t
	}
	return Cookie{
		Name:    name,
		Value:   value,
		Domain:  domain,
		Path:    path,
		Secure:  flags&0x0001 != 0,
		Expires: expires,
	}, true, nil
}

func readNulString(data []byte, offset int) (string, error) {
	if offset < 0 || offset >= len(data) {
		return "", fmt.Errorf("%w: cookie string offset out of bounds", ErrBrowserCookie)
	}
	end := bytes.IndexByte(data[offset:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: cookie string not terminated", ErrBrowserCookie)
	}
	raw := data[offset : offset+end]
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: cookie string is not valid UTF-8", ErrBrowserCookie)
	}
	return string(raw), nil
}

type byteCursor struct {
	data []byte
	off  int
}

func (c *byteCursor) read(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.data) {
		return nil, fmt.Errorf("%w: cookie data truncated", ErrBrowserCookie)
	}
	out := c.data[c.off : c.off+n]
	c.off += n
	return out, nil
}

func (c *byteCursor) expect(magic []byte, label string) error {
	got, err := c.read(len(magic))
	if err != nil {
		return err
	}
	if !bytes.Equal(got, magic) {
		return fmt.Errorf("%w: invalid %s", ErrBrowserCookie, label)
	}
	return nil
}

func (c *byteCursor) readUint32BE() (uint32, error) {
	b, err := c.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *byteCursor) readUint32LE() (uint32, error) {
	b, err := c.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *byteCursor) readFloat64LE() (float64, error) {
	b, err := c.read(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (c *byteCursor) skip(n int) error {
	_, err := c.read(n)
	return err
}
