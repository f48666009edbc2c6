package catalog

import (
	"log/slog"

	"github.com/redsteep/vres/vres/types"
)

// candidateRank orders filtered candidates. An exact language match always
// beats a language-agnostic record, which beats a record admitted only
// because no language is active; within a tier the lexicographically
// greatest (category, languageID) pair wins. The ordering is total and
// deterministic, so resolution never reports ambiguity and repeated calls
// under unchanged configuration return the same record.
type candidateRank struct {
	tier     int // 2 exact language, 1 language-agnostic, 0 admitted by empty active language
	category string
	language string
}

func rankOf(activeLanguage string, rec *types.Record) candidateRank {
	tier := 0
	switch {
	case rec.LanguageID == activeLanguage:
		tier = 2
	case rec.LanguageID == "":
		tier = 1
	}
	return candidateRank{tier: tier, category: rec.Category, language: rec.LanguageID}
}

func (r candidateRank) greater(o candidateRank) bool {
	if r.tier != o.tier {
		return r.tier > o.tier
	}
	if r.category != o.category {
		return r.category > o.category
	}
	return r.language > o.language
}

// Resolve normalizes name with the active key mode and selects the single
// best record for it, or reports absence. Search roots are tried in
// configured order; the first root producing a non-empty filtered
// candidate set wins and later roots are never consulted.
func (c *Catalog) Resolve(name string) (*types.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := NormalizeKey(name, c.keyMode)
	for _, root := range c.searchRoots {
		searchKey := key
		if root != "" {
			searchKey = NormalizeKey(joinKey(root, key), c.keyMode)
		}

		records := c.store.lookup(searchKey)
		if len(records) == 0 {
			continue
		}

		var best *types.Record
		var bestRank candidateRank
		for _, rec := range records {
			if !c.admitsLanguage(rec.LanguageID) {
				continue
			}
			if rec.Category != "" {
				if _, enabled := c.enabledCategories[rec.Category]; !enabled {
					continue
				}
			}
			rank := rankOf(c.activeLanguage, rec)
			if best == nil || rank.greater(bestRank) {
				best, bestRank = rec, rank
			}
		}
		if best != nil {
			slog.Debug("resolved",
				"name", name,
				"key", searchKey,
				"backend", best.Backend.String(),
				"language", best.LanguageID,
				"category", best.Category)
			return best, true
		}
		// the list existed but filtering emptied it; try the next root
	}
	return nil, false
}

// admitsLanguage implements the candidate filter: no active language, an
// exact language match, or a language-agnostic record. Caller holds c.mu.
func (c *Catalog) admitsLanguage(recordLanguage string) bool {
	return c.activeLanguage == "" || recordLanguage == c.activeLanguage || recordLanguage == ""
}
