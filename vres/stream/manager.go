// Package stream turns chosen catalog records into readable byte sources
// behind opaque handles. Disk records open as seekable files; archive
// records open as forward-only entry cursors inside their container. The
// manager owns the open-handle table; each handle owns its backend
// resources exclusively until closed.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/ZanzyTHEbar/assert-lib"

	"github.com/redsteep/vres/vres/archive"
	"github.com/redsteep/vres/vres/types"
)

// Handle identifies one open stream. Handles are allocated from a
// monotonically increasing counter, so an id can never collide with a
// concurrently open handle by construction.
type Handle int64

var (
	// ErrInvalidHandle is returned by Seek and Tell for an unknown or
	// already-closed handle. Read and Close absorb the condition instead
	// (zero bytes, no-op).
	ErrInvalidHandle = errors.New("invalid stream handle")

	// ErrNotSeekable is returned by Seek and Tell on archive-backed
	// handles; entry cursors are forward-only.
	ErrNotSeekable = errors.New("stream is not seekable")

	// ErrShortRead indicates a whole-object read delivered fewer bytes
	// than the record's declared size. Always fatal for that call, never
	// retried, and no partial data is returned.
	ErrShortRead = errors.New("short read")
)

// openStream pairs a record with its open backend resources.
type openStream struct {
	record    *types.Record
	file      *os.File       // disk backend
	container archive.Reader // archive backend
	cursor    archive.Cursor
}

func (s *openStream) read(p []byte) (int, error) {
	if s.file != nil {
		return s.file.Read(p)
	}
	return s.cursor.Read(p)
}

func (s *openStream) close() {
	if s.file != nil {
		s.file.Close()
		return
	}
	s.cursor.Close()
	s.container.Close()
}

// Manager tracks open handles. Opening and closing are safe for
// concurrent use; reads on one handle must be serialized by its owner.
type Manager struct {
	mu          sync.Mutex
	next        int64
	open        map[Handle]*openStream
	openArchive archive.OpenFunc
	asserts     *assert.AssertHandler
}

// NewManager creates a stream manager that opens archive containers with
// openArchive.
func NewManager(openArchive archive.OpenFunc, asserts *assert.AssertHandler) *Manager {
	return &Manager{
		open:        make(map[Handle]*openStream),
		openArchive: openArchive,
		asserts:     asserts,
	}
}

// Open opens rec's backend and registers it under a fresh handle.
func (m *Manager) Open(rec *types.Record) (Handle, error) {
	st, err := m.openBackend(rec)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	h := Handle(m.next)
	_, collision := m.open[h]
	// a collision means the allocator is broken, not a caller mistake
	m.asserts.Assert(context.TODO(), !collision, "duplicate stream handle id")
	m.open[h] = st

	slog.Debug("stream opened",
		"handle", int64(h),
		"name", rec.LogicalName,
		"backend", rec.Backend.String())
	return h, nil
}

func (m *Manager) openBackend(rec *types.Record) (*openStream, error) {
	switch rec.Backend {
	case types.BackendDisk:
		f, err := os.Open(rec.AbsPath)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", rec.AbsPath, err)
		}
		return &openStream{record: rec, file: f}, nil

	case types.BackendArchive:
		r, err := m.openArchive(rec.ArchivePath)
		if err != nil {
			return nil, fmt.Errorf("open archive %s: %w", rec.ArchivePath, err)
		}
		if err := r.SeekTo(rec.Token); err != nil {
			r.Close()
			return nil, fmt.Errorf("seek %s in %s: %w", rec.LogicalName, rec.ArchivePath, err)
		}
		cursor, err := r.OpenCursor()
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("open entry %s in %s: %w", rec.LogicalName, rec.ArchivePath, err)
		}
		return &openStream{record: rec, container: r, cursor: cursor}, nil

	default:
		return nil, fmt.Errorf("unknown backend kind %d", rec.Backend)
	}
}

// Read fills p from the stream behind h, returning the byte count. An
// unknown or closed handle reads zero bytes; end of stream reads zero
// bytes without error.
func (m *Manager) Read(h Handle, p []byte) (int, error) {
	m.mu.Lock()
	st, ok := m.open[h]
	m.mu.Unlock()
	if !ok {
		return 0, nil
	}
	n, err := st.read(p)
	if err == io.EOF {
		return n, nil
	}
	return n, err
}

// Seek repositions a disk-backed stream and returns the new position.
func (m *Manager) Seek(h Handle, offset int64, whence int) (int64, error) {
	m.mu.Lock()
	st, ok := m.open[h]
	m.mu.Unlock()
	if !ok {
		return 0, ErrInvalidHandle
	}
	if st.file == nil {
		return 0, fmt.Errorf("%s: %w", st.record.LogicalName, ErrNotSeekable)
	}
	return st.file.Seek(offset, whence)
}

// Tell returns the current position of a disk-backed stream.
func (m *Manager) Tell(h Handle) (int64, error) {
	return m.Seek(h, 0, io.SeekCurrent)
}

// Close releases the backend resources behind h and forgets the handle.
// Unknown handles are a no-op, so double close is safe.
func (m *Manager) Close(h Handle) {
	m.mu.Lock()
	st, ok := m.open[h]
	if ok {
		delete(m.open, h)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	st.close()
	slog.Debug("stream closed", "handle", int64(h))
}

// OpenCount returns the number of currently open handles.
func (m *Manager) OpenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

// ReadAll reads rec in one shot through a private, handle-less stream.
// The backend must deliver exactly the declared size; fewer bytes fail
// the call with ErrShortRead as a corruption cross-check.
func (m *Manager) ReadAll(rec *types.Record) ([]byte, error) {
	st, err := m.openBackend(rec)
	if err != nil {
		return nil, err
	}
	defer st.close()

	buf := make([]byte, rec.Size)
	n, err := io.ReadFull(st.asReader(), buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("%s: declared %d bytes, read %d: %w",
			rec.LogicalName, rec.Size, n, ErrShortRead)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rec.LogicalName, err)
	}
	return buf, nil
}

func (s *openStream) asReader() io.Reader {
	if s.file != nil {
		return s.file
	}
	return s.cursor
}
