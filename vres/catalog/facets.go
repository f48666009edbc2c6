package catalog

import (
	roaring "github.com/RoaringBitmap/roaring"
)

// facetBitmaps holds roaring bitmaps of record slots keyed by attribute
// value. Example: Category["dlc"] -> bitmap of slots tagged "dlc". They are
// maintained at insert time and serve the catalog-wide query operations;
// per-key resolution never needs them.
type facetBitmaps struct {
	Category map[string]*roaring.Bitmap
	Language map[string]*roaring.Bitmap
}

func newFacetBitmaps() *facetBitmaps {
	return &facetBitmaps{
		Category: make(map[string]*roaring.Bitmap),
		Language: make(map[string]*roaring.Bitmap),
	}
}

func (fb *facetBitmaps) add(category, languageID string, slot uint32) {
	if category != "" {
		fb.addTo(fb.Category, category, slot)
	}
	if languageID != "" {
		fb.addTo(fb.Language, languageID, slot)
	}
}

func (fb *facetBitmaps) addTo(m map[string]*roaring.Bitmap, value string, slot uint32) {
	bm, ok := m[value]
	if !ok {
		bm = roaring.New()
		m[value] = bm
	}
	bm.Add(slot)
}

// byCategory returns a copy of the slot bitmap for a category value.
func (fb *facetBitmaps) byCategory(category string) *roaring.Bitmap {
	return fb.clone(fb.Category[category])
}

// byLanguage returns a copy of the slot bitmap for a language value.
func (fb *facetBitmaps) byLanguage(languageID string) *roaring.Bitmap {
	return fb.clone(fb.Language[languageID])
}

func (fb *facetBitmaps) clone(b *roaring.Bitmap) *roaring.Bitmap {
	if b == nil {
		return roaring.New()
	}
	c := roaring.New()
	c.Or(b) // copy
	return c
}

func (fb *facetBitmaps) reset() {
	fb.Category = make(map[string]*roaring.Bitmap)
	fb.Language = make(map[string]*roaring.Bitmap)
}
