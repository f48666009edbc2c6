package catalog

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/armon/go-radix"

	"github.com/redsteep/vres/vres/types"
)

// StoreStats tracks usage metrics for the record store
type StoreStats struct {
	TotalKeys    int64
	TotalRecords int64
	Lookups      int64
	Insertions   int64
	mu           sync.RWMutex
}

// recordStore is the append-only index from canonical key to the ordered
// list of physical records indexed under it. Records live in a stable arena
// and lists hold slot indices, so a record pointer handed out by a lookup
// stays valid no matter how many insertions follow. Keys are never removed.
//
// A compressed radix tree mirrors the direct key map to serve prefix walks
// in O(k) where k is the prefix length.
//
// Build is single-writer; after build the store is safe for any number of
// concurrent readers.
type recordStore struct {
	tree   *radix.Tree         // canonical key -> []uint32 slot list
	keys   map[string][]uint32 // direct mapping, mirrors the tree
	arena  []*types.Record     // slot -> record, append-only
	facets *facetBitmaps
	stats  *StoreStats
	mu     sync.RWMutex
}

func newRecordStore() *recordStore {
	return &recordStore{
		tree:   radix.New(),
		keys:   make(map[string][]uint32),
		facets: newFacetBitmaps(),
		stats:  &StoreStats{},
	}
}

// stagedRecord pairs a computed key with a record not yet committed.
// Archive ingestion stages a whole scan and commits it atomically.
type stagedRecord struct {
	key    string
	record *types.Record
}

// insert appends rec under key and returns its arena slot.
func (s *recordStore) insert(key string, rec *types.Record) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(key, rec)
}

// insertAll commits a staged batch under a single writer lock, preserving
// stage order.
func (s *recordStore) insertAll(staged []stagedRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sr := range staged {
		s.insertLocked(sr.key, sr.record)
	}
}

func (s *recordStore) insertLocked(key string, rec *types.Record) uint32 {
	slot := uint32(len(s.arena))
	s.arena = append(s.arena, rec)

	slots, existed := s.keys[key]
	slots = append(slots, slot)
	s.keys[key] = slots
	s.tree.Insert(key, slots)

	s.facets.add(rec.Category, rec.LanguageID, slot)

	s.stats.mu.Lock()
	if !existed {
		s.stats.TotalKeys++
	}
	s.stats.TotalRecords++
	s.stats.Insertions++
	s.stats.mu.Unlock()

	slog.Debug("record store insertion completed",
		"key", key,
		"backend", rec.Backend.String(),
		"slot", slot)

	return slot
}

// lookup returns the records indexed under key in insertion order, or nil.
func (s *recordStore) lookup(key string) []*types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.stats.mu.Lock()
	s.stats.Lookups++
	s.stats.mu.Unlock()

	slots, ok := s.keys[key]
	if !ok {
		return nil
	}
	records := make([]*types.Record, len(slots))
	for i, slot := range slots {
		records[i] = s.arena[slot]
	}
	return records
}

// walkPrefix visits every key starting with prefix in lexical order.
// Returning true from fn stops the walk.
func (s *recordStore) walkPrefix(prefix string, fn func(key string, records []*types.Record) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.tree.WalkPrefix(prefix, func(key string, value interface{}) bool {
		slots := value.([]uint32)
		records := make([]*types.Record, len(slots))
		for i, slot := range slots {
			records[i] = s.arena[slot]
		}
		return fn(key, records)
	})
}

// keysByFacet maps a facet bitmap back to the sorted set of canonical keys
// owning at least one matching record.
func (s *recordStore) keysByCategory(category string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keysForSlots(s.facets.byCategory(category).ToArray())
}

func (s *recordStore) keysByLanguage(languageID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keysForSlots(s.facets.byLanguage(languageID).ToArray())
}

func (s *recordStore) keysForSlots(slots []uint32) []string {
	if len(slots) == 0 {
		return nil
	}
	want := make(map[uint32]struct{}, len(slots))
	for _, slot := range slots {
		want[slot] = struct{}{}
	}
	seen := make(map[string]struct{})
	var keys []string
	for key, keySlots := range s.keys {
		for _, slot := range keySlots {
			if _, ok := want[slot]; ok {
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					keys = append(keys, key)
				}
				break
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// recordsByCategory returns the records tagged with a category value,
// selected through the facet bitmaps.
func (s *recordStore) recordsByCategory(category string) []*types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := s.facets.byCategory(category).ToArray()
	records := make([]*types.Record, len(slots))
	for i, slot := range slots {
		records[i] = s.arena[slot]
	}
	return records
}

// records returns the arena snapshot for whole-catalog sweeps.
func (s *recordStore) records() []*types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Record, len(s.arena))
	copy(out, s.arena)
	return out
}

// snapshot of the store counters.
func (s *recordStore) snapshotStats() (keys, records int64) {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()
	return s.stats.TotalKeys, s.stats.TotalRecords
}

func (s *recordStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tree = radix.New()
	s.keys = make(map[string][]uint32)
	s.arena = nil
	s.facets.reset()

	s.stats.mu.Lock()
	s.stats.TotalKeys = 0
	s.stats.TotalRecords = 0
	s.stats.mu.Unlock()

	slog.Debug("record store reset")
}
