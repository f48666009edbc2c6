// Package archive defines the container reader consumed by the catalog
// builder and the stream manager. The catalog never interprets container
// internals; it enumerates entries sequentially, captures a position token
// per entry, and later reopens the container and seeks back to that token
// to stream the entry's bytes.
package archive

import (
	"errors"
	"io"
)

// Entry describes one stored object during sequential enumeration.
type Entry struct {
	Path             string // full path within the container, as stored
	UncompressedSize int64
	IsDir            bool // directory marker (trailing separator)
}

// EntryToken is an opaque position of an entry inside its container.
// Holding a token is cheaper than rescanning the entry list linearly.
type EntryToken struct {
	Index  int   // ordinal of the entry in enumeration order
	Offset int64 // byte offset of the entry's data within the container
}

// Cursor streams the decompressed bytes of a single entry. Cursors are
// forward-only; there is no seeking within an archive entry.
type Cursor = io.ReadCloser

// Reader enumerates and opens entries of one container. Implementations are
// not safe for concurrent use; each caller owns its Reader exclusively.
type Reader interface {
	// First positions the reader on the first entry. Returns io.EOF when
	// the container holds no entries.
	First() (*Entry, error)

	// Next advances to the following entry. Returns io.EOF past the last.
	Next() (*Entry, error)

	// Tell captures a token for the current entry.
	Tell() (EntryToken, error)

	// SeekTo repositions the reader on the entry a token was captured from.
	SeekTo(token EntryToken) error

	// OpenCursor opens the current entry for reading.
	OpenCursor() (Cursor, error)

	Close() error
}

// OpenFunc opens a container by path. The catalog takes one of these so
// container formats can be swapped out (or faked in tests).
type OpenFunc func(path string) (Reader, error)

var (
	// ErrNoEntry is returned by Tell and OpenCursor when the reader is not
	// positioned on an entry.
	ErrNoEntry = errors.New("archive: no current entry")

	// ErrBadToken is returned by SeekTo for a token that does not locate an
	// entry in this container.
	ErrBadToken = errors.New("archive: token does not match an entry")
)
