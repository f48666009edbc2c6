// Package catalog builds and serves a virtual resource catalog: one logical
// namespace of named assets physically scattered across directory trees and
// zip-style archives. Consumers ask for a logical name and get bytes or a
// seekable stream without knowing which backing store holds the data.
//
// A catalog is an explicit, constructible object. Build it once (root
// folders, archives), then query it from any number of goroutines. Builds
// and queries must not interleave; serialize them on the caller's side.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ZanzyTHEbar/assert-lib"
	"github.com/google/uuid"

	"github.com/redsteep/vres/vres/archive"
	"github.com/redsteep/vres/vres/stream"
	"github.com/redsteep/vres/vres/types"
)

// Catalog owns the record store, the build configuration, and the stream
// manager. All configuration is per-instance; there is no package-level
// shared state.
type Catalog struct {
	id      uuid.UUID // log correlation only
	store   *recordStore
	streams *stream.Manager

	mu                sync.RWMutex
	rootFolders       []string
	languageFolders   map[string]string // relative folder path -> language id
	categoryFolders   map[string]string // folder leaf name -> category
	enabledCategories map[string]struct{}
	activeLanguage    string
	keyMode           types.KeyMode
	searchRoots       []string

	openArchive archive.OpenFunc
}

// Option configures a Catalog at construction time.
type Option func(*Catalog)

// WithArchiveOpener overrides the container format reader. The default
// opens zip containers.
func WithArchiveOpener(open archive.OpenFunc) Option {
	return func(c *Catalog) {
		c.openArchive = open
	}
}

// New creates an empty catalog with a single empty-prefix search root and
// basename key mode.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		id:                uuid.New(),
		store:             newRecordStore(),
		languageFolders:   make(map[string]string),
		categoryFolders:   make(map[string]string),
		enabledCategories: make(map[string]struct{}),
		searchRoots:       []string{""},
		openArchive:       archive.OpenZip,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.streams = stream.NewManager(c.openArchive, assert.NewAssertHandler())
	return c
}

// ID returns the catalog's instance identifier.
func (c *Catalog) ID() uuid.UUID {
	return c.id
}

// AddLanguageFolder maps a relative folder to a language id. During
// directory ingestion the mapping matches the folder's full relative path
// and is inherited by descendants; a deeper exact match overrides. During
// archive ingestion it is a prefix match under the archive's root folder.
func (c *Catalog) AddLanguageFolder(languageID, folder string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.languageFolders[NormalizeKey(folder, types.KeyModeFullPath)] = languageID
}

// AddCategoryFolder maps a folder leaf name to a category. A folder with
// that name anywhere under a root tags everything beneath it with the
// category, and the folder's path segment is elided from lookup keys.
func (c *Catalog) AddCategoryFolder(category, folder string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categoryFolders[NormalizeKey(folder, types.KeyModeBasename)] = category
}

// EnableCategory makes records tagged with the category visible to
// resolution. Takes effect on the next Resolve call.
func (c *Catalog) EnableCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabledCategories[category] = struct{}{}
}

// DisableCategory hides records tagged with the category.
func (c *Catalog) DisableCategory(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.enabledCategories, category)
}

// SetCurrentLanguage sets the active language. Empty means no preference.
func (c *Catalog) SetCurrentLanguage(languageID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeLanguage = languageID
}

// SetKeyMode selects basename-only or full-relative-path keys. Affects
// both key computation at index time and request normalization, so it
// should be set before the first ingestion.
func (c *Catalog) SetKeyMode(mode types.KeyMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keyMode = mode
}

// KeyMode returns the active key mode.
func (c *Catalog) KeyMode() types.KeyMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keyMode
}

// AddSearchRoot appends a virtual prefix tried during resolution. Roots
// are priorities in registration order, not merged namespaces.
func (c *Catalog) AddSearchRoot(root string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchRoots = append(c.searchRoots, NormalizeKey(root, types.KeyModeFullPath))
}

// SetSearchRoots replaces the search root order wholesale.
func (c *Catalog) SetSearchRoots(roots []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(roots) == 0 {
		c.searchRoots = []string{""}
		return
	}
	c.searchRoots = make([]string, len(roots))
	for i, r := range roots {
		c.searchRoots[i] = NormalizeKey(r, types.KeyModeFullPath)
	}
}

// Reset drops the index and all configuration, returning the catalog to
// its freshly constructed state. Open stream handles are unaffected; they
// own their backend resources until closed.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rootFolders = nil
	c.languageFolders = make(map[string]string)
	c.categoryFolders = make(map[string]string)
	c.enabledCategories = make(map[string]struct{})
	c.activeLanguage = ""
	c.keyMode = types.KeyModeBasename
	c.searchRoots = []string{""}
	c.store.reset()
}

// Exists reports whether name resolves under the current configuration.
func (c *Catalog) Exists(name string) bool {
	_, ok := c.Resolve(name)
	return ok
}

// GetSize returns the declared size of the best record for name, or 0
// when the name does not resolve.
func (c *Catalog) GetSize(name string) int64 {
	rec, ok := c.Resolve(name)
	if !ok {
		return 0
	}
	return rec.Size
}

// ReadAll resolves name and reads the whole asset. The backend must
// deliver exactly the declared size; a short read is a hard failure, not
// a partial result.
func (c *Catalog) ReadAll(name string) ([]byte, error) {
	rec, ok := c.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return c.streams.ReadAll(rec)
}

// OpenStream resolves name and opens it as a stream, returning the handle
// for subsequent Read/Seek/Tell/CloseStream calls.
func (c *Catalog) OpenStream(name string) (stream.Handle, error) {
	rec, ok := c.Resolve(name)
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return c.streams.Open(rec)
}

// Read fills p from the stream behind handle. Returns 0 for an unknown
// or closed handle.
func (c *Catalog) Read(h stream.Handle, p []byte) (int, error) {
	return c.streams.Read(h, p)
}

// Seek repositions a disk-backed stream. Archive entry cursors are
// forward-only; seeking one is a reported error.
func (c *Catalog) Seek(h stream.Handle, offset int64, whence int) (int64, error) {
	return c.streams.Seek(h, offset, whence)
}

// Tell returns the current position of a disk-backed stream.
func (c *Catalog) Tell(h stream.Handle) (int64, error) {
	return c.streams.Tell(h)
}

// CloseStream releases the stream behind handle. Unknown handles are a
// no-op, so closing twice is safe.
func (c *Catalog) CloseStream(h stream.Handle) {
	c.streams.Close(h)
}

// Stats summarizes the built catalog.
type Stats struct {
	Keys        int64
	Records     int64
	OpenStreams int
}

// Stats returns index and stream counters.
func (c *Catalog) Stats() Stats {
	keys, records := c.store.snapshotStats()
	return Stats{
		Keys:        keys,
		Records:     records,
		OpenStreams: c.streams.OpenCount(),
	}
}

// KeysByCategory returns the sorted canonical keys owning at least one
// record tagged with the category, regardless of the enabled set.
func (c *Catalog) KeysByCategory(category string) []string {
	return c.store.keysByCategory(category)
}

// KeysByLanguage returns the sorted canonical keys owning at least one
// record in the language.
func (c *Catalog) KeysByLanguage(languageID string) []string {
	return c.store.keysByLanguage(languageID)
}

// ListPrefix returns the canonical keys starting with prefix, in lexical
// order.
func (c *Catalog) ListPrefix(prefix string) []string {
	var keys []string
	c.store.walkPrefix(NormalizeKey(prefix, types.KeyModeFullPath), func(key string, _ []*types.Record) bool {
		keys = append(keys, key)
		return false
	})
	return keys
}

// languageFolderMapping pairs a configured folder with its language id.
type languageFolderMapping struct {
	folder     string
	languageID string
}

// sortedLanguageFolders returns the language folder mappings ordered by
// folder path. Archive ingestion scans them in this order with last match
// winning, which lets a deeper overlapping folder override a shallower one.
func (c *Catalog) sortedLanguageFolders() []languageFolderMapping {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]languageFolderMapping, 0, len(c.languageFolders))
	for folder, id := range c.languageFolders {
		out = append(out, languageFolderMapping{folder: folder, languageID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].folder < out[j].folder })
	return out
}

// categoryFolderMapping pairs a configured folder leaf name with its
// category.
type categoryFolderMapping struct {
	folder   string
	category string
}

func (c *Catalog) sortedCategoryFolders() []categoryFolderMapping {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]categoryFolderMapping, 0, len(c.categoryFolders))
	for folder, cat := range c.categoryFolders {
		out = append(out, categoryFolderMapping{folder: folder, category: cat})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].folder < out[j].folder })
	return out
}
