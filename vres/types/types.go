package types

import (
	"github.com/redsteep/vres/vres/archive"
)

// BackendKind identifies the physical store a record points into.
type BackendKind uint8

const (
	// BackendDisk is a plain file inside a registered root folder.
	BackendDisk BackendKind = iota
	// BackendArchive is an entry inside a zip-style container.
	BackendArchive
)

func (k BackendKind) String() string {
	switch k {
	case BackendDisk:
		return "disk"
	case BackendArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// KeyMode selects how a logical request string is turned into a lookup key.
type KeyMode uint8

const (
	// KeyModeBasename indexes and resolves by file name only, discarding
	// any directory components of the request.
	KeyModeBasename KeyMode = iota
	// KeyModeFullPath keeps the directory structure in the key.
	KeyModeFullPath
)

func (m KeyMode) String() string {
	if m == KeyModeFullPath {
		return "fullpath"
	}
	return "basename"
}

// Record is one physical occurrence of a logical asset. Multiple records may
// share a lookup key (language or category variants of the same asset).
// A record is immutable once inserted into the store.
type Record struct {
	LogicalName string      // name as seen at index time, case preserved
	Backend     BackendKind // disk or archive
	Size        int64       // stat size (disk) or uncompressed size (archive)
	LanguageID  string      // empty means language-agnostic
	Category    string      // empty means always visible

	// RelPath is the path relative to the registered root (disk) or to the
	// declared root folder of the archive. Case preserved.
	RelPath string

	// Disk backend
	AbsPath string

	// Archive backend
	ArchivePath string
	Token       archive.EntryToken // locates the entry without rescanning
}
