package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// zipReader adapts a zip container to the Reader interface. The central
// directory gives us the full entry list up front, so enumeration walks an
// index and tokens are (index, data offset) pairs.
type zipReader struct {
	rc  *zip.ReadCloser
	pos int // current entry index, -1 before First
}

// OpenZip opens a zip container for entry enumeration and streaming.
func OpenZip(path string) (Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", path, err)
	}
	return &zipReader{rc: rc, pos: -1}, nil
}

func (z *zipReader) First() (*Entry, error) {
	if len(z.rc.File) == 0 {
		return nil, io.EOF
	}
	z.pos = 0
	return z.entryAt(z.pos), nil
}

func (z *zipReader) Next() (*Entry, error) {
	if z.pos+1 >= len(z.rc.File) {
		return nil, io.EOF
	}
	z.pos++
	return z.entryAt(z.pos), nil
}

func (z *zipReader) entryAt(i int) *Entry {
	f := z.rc.File[i]
	return &Entry{
		Path:             f.Name,
		UncompressedSize: int64(f.UncompressedSize64),
		IsDir:            strings.HasSuffix(f.Name, "/"),
	}
}

func (z *zipReader) Tell() (EntryToken, error) {
	if z.pos < 0 || z.pos >= len(z.rc.File) {
		return EntryToken{}, ErrNoEntry
	}
	offset, err := z.rc.File[z.pos].DataOffset()
	if err != nil {
		return EntryToken{}, fmt.Errorf("entry %q: %w", z.rc.File[z.pos].Name, err)
	}
	return EntryToken{Index: z.pos, Offset: offset}, nil
}

func (z *zipReader) SeekTo(token EntryToken) error {
	if token.Index < 0 || token.Index >= len(z.rc.File) {
		return fmt.Errorf("%w: index %d of %d entries", ErrBadToken, token.Index, len(z.rc.File))
	}
	z.pos = token.Index
	return nil
}

func (z *zipReader) OpenCursor() (Cursor, error) {
	if z.pos < 0 || z.pos >= len(z.rc.File) {
		return nil, ErrNoEntry
	}
	cursor, err := z.rc.File[z.pos].Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %q: %w", z.rc.File[z.pos].Name, err)
	}
	return cursor, nil
}

func (z *zipReader) Close() error {
	return z.rc.Close()
}
