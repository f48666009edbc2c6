package stream

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	assertlib "github.com/ZanzyTHEbar/assert-lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redsteep/vres/vres/archive"
	"github.com/redsteep/vres/vres/types"
)

// memReader is a minimal in-memory archive.Reader for driving the archive
// backend without a container on disk.
type memReader struct {
	entries map[int][]byte
	pos     int
}

func (r *memReader) First() (*archive.Entry, error) { r.pos = 0; return r.entry(), nil }

func (r *memReader) Next() (*archive.Entry, error) { return nil, io.EOF }

func (r *memReader) Tell() (archive.EntryToken, error) {
	return archive.EntryToken{Index: r.pos}, nil
}

func (r *memReader) SeekTo(tok archive.EntryToken) error {
	if _, ok := r.entries[tok.Index]; !ok {
		return archive.ErrBadToken
	}
	r.pos = tok.Index
	return nil
}

func (r *memReader) OpenCursor() (archive.Cursor, error) {
	return io.NopCloser(bytes.NewReader(r.entries[r.pos])), nil
}

func (r *memReader) Close() error { return nil }

func (r *memReader) entry() *archive.Entry {
	data := r.entries[r.pos]
	return &archive.Entry{Path: fmt.Sprintf("entry-%d", r.pos), UncompressedSize: int64(len(data))}
}

func memOpener(entries map[int][]byte) archive.OpenFunc {
	return func(string) (archive.Reader, error) {
		return &memReader{entries: entries}, nil
	}
}

func newTestManager(entries map[int][]byte) *Manager {
	return NewManager(memOpener(entries), assertlib.NewAssertHandler())
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func diskRecord(path string, size int64) *types.Record {
	return &types.Record{
		LogicalName: filepath.Base(path),
		Backend:     types.BackendDisk,
		Size:        size,
		AbsPath:     path,
		RelPath:     filepath.Base(path),
	}
}

func archiveRecord(index int, size int64) *types.Record {
	return &types.Record{
		LogicalName: fmt.Sprintf("entry-%d", index),
		Backend:     types.BackendArchive,
		Size:        size,
		ArchivePath: "mem.pak",
		Token:       archive.EntryToken{Index: index},
	}
}

func TestManager(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"DiskLifecycle", testDiskLifecycle},
		{"DiskSeekTell", testDiskSeekTell},
		{"ArchiveLifecycle", testArchiveLifecycle},
		{"ArchiveNotSeekable", testArchiveNotSeekable},
		{"InvalidHandle", testInvalidHandle},
		{"DoubleCloseIsSafe", testDoubleClose},
		{"HandlesAreUnique", testHandlesAreUnique},
		{"ReadAllExactSize", testReadAllExactSize},
		{"ReadAllShortRead", testReadAllShortRead},
		{"OpenMissingFile", testOpenMissingFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testDiskLifecycle(t *testing.T) {
	content := "0123456789"
	m := newTestManager(nil)
	rec := diskRecord(writeTempFile(t, content), int64(len(content)))

	h, err := m.Open(rec)
	require.NoError(t, err)
	assert.Equal(t, 1, m.OpenCount())

	// cumulative reads recover exactly the declared content
	var got []byte
	buf := make([]byte, 4)
	for {
		n, err := m.Read(h, buf)
		require.NoError(t, err)
		if n == 0 {
			break
		}
		assert.LessOrEqual(t, n, len(buf))
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, content, string(got))

	m.Close(h)
	assert.Zero(t, m.OpenCount())

	n, err := m.Read(h, buf)
	require.NoError(t, err)
	assert.Zero(t, n, "a closed handle reads zero bytes")
}

func testDiskSeekTell(t *testing.T) {
	m := newTestManager(nil)
	rec := diskRecord(writeTempFile(t, "0123456789"), 10)

	h, err := m.Open(rec)
	require.NoError(t, err)
	defer m.Close(h)

	pos, err := m.Seek(h, 6, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)

	pos, err = m.Tell(h)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)

	buf := make([]byte, 8)
	n, err := m.Read(h, buf)
	require.NoError(t, err)
	assert.Equal(t, "6789", string(buf[:n]))

	pos, err = m.Seek(h, -4, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)
}

func testArchiveLifecycle(t *testing.T) {
	payload := []byte("compressed-entry-bytes")
	m := newTestManager(map[int][]byte{3: payload})

	h, err := m.Open(archiveRecord(3, int64(len(payload))))
	require.NoError(t, err)

	got := make([]byte, 0, len(payload))
	buf := make([]byte, 7)
	for {
		n, err := m.Read(h, buf)
		require.NoError(t, err)
		if n == 0 {
			break
		}
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, payload, got)

	m.Close(h)
	assert.Zero(t, m.OpenCount())
}

func testArchiveNotSeekable(t *testing.T) {
	m := newTestManager(map[int][]byte{0: []byte("data")})

	h, err := m.Open(archiveRecord(0, 4))
	require.NoError(t, err)
	defer m.Close(h)

	_, err = m.Seek(h, 0, io.SeekStart)
	assert.ErrorIs(t, err, ErrNotSeekable)

	_, err = m.Tell(h)
	assert.ErrorIs(t, err, ErrNotSeekable)
}

func testInvalidHandle(t *testing.T) {
	m := newTestManager(nil)

	n, err := m.Read(Handle(42), make([]byte, 8))
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = m.Seek(Handle(42), 0, io.SeekStart)
	assert.ErrorIs(t, err, ErrInvalidHandle)

	_, err = m.Tell(Handle(42))
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func testDoubleClose(t *testing.T) {
	m := newTestManager(nil)
	rec := diskRecord(writeTempFile(t, "x"), 1)

	h, err := m.Open(rec)
	require.NoError(t, err)

	m.Close(h)
	m.Close(h) // no-op
	assert.Zero(t, m.OpenCount())
}

func testHandlesAreUnique(t *testing.T) {
	m := newTestManager(nil)
	rec := diskRecord(writeTempFile(t, "x"), 1)

	seen := make(map[Handle]struct{})
	for i := 0; i < 50; i++ {
		h, err := m.Open(rec)
		require.NoError(t, err)
		_, dup := seen[h]
		require.False(t, dup, "handle ids must be unique among open handles")
		seen[h] = struct{}{}
	}
	assert.Equal(t, 50, m.OpenCount())
	for h := range seen {
		m.Close(h)
	}
	assert.Zero(t, m.OpenCount())
}

func testReadAllExactSize(t *testing.T) {
	content := "whole-asset-payload"
	m := newTestManager(nil)

	data, err := m.ReadAll(diskRecord(writeTempFile(t, content), int64(len(content))))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.Zero(t, m.OpenCount(), "whole-object reads never leave a handle behind")
}

func testReadAllShortRead(t *testing.T) {
	m := newTestManager(nil)

	// declared size exceeds what the backend can deliver
	rec := diskRecord(writeTempFile(t, "short"), 64)
	data, err := m.ReadAll(rec)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShortRead)
	assert.Nil(t, data, "partial data must not escape a failed whole-object read")
}

func testOpenMissingFile(t *testing.T) {
	m := newTestManager(nil)
	rec := diskRecord(filepath.Join(t.TempDir(), "absent.bin"), 1)

	_, err := m.Open(rec)
	require.Error(t, err)
	assert.Zero(t, m.OpenCount())
}
