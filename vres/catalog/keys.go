package catalog

import (
	"strings"

	"github.com/redsteep/vres/vres/types"
)

// NormalizeKey converts a logical request string into its canonical lookup
// key: lower-cased, both slash styles folded to "/", and in basename mode
// everything up to and including the last separator stripped. Extensions are
// kept; callers must pass them. Total over any input string.
func NormalizeKey(path string, mode types.KeyMode) string {
	key := strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
	if mode == types.KeyModeBasename {
		if i := strings.LastIndex(key, "/"); i >= 0 {
			key = key[i+1:]
		}
	}
	return key
}

// joinKey joins path components with the canonical separator, skipping
// empty components.
func joinKey(components ...string) string {
	parts := make([]string, 0, len(components))
	for _, c := range components {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "/")
}

// trimNormalizedPrefix strips the leading portion of raw whose normalized
// form equals prefix plus a separator, reporting whether raw sits under
// the prefix at all. The cut offset is found on the raw bytes; case
// folding can change a rune's encoded length, so the normalized prefix
// length is not a valid offset into raw.
func trimNormalizedPrefix(raw, prefix string) (string, bool) {
	want := prefix + "/"
	for i := range raw {
		if i == 0 {
			continue
		}
		if NormalizeKey(raw[:i], types.KeyModeFullPath) == want {
			return raw[i:], true
		}
	}
	if NormalizeKey(raw, types.KeyModeFullPath) == want {
		return "", true
	}
	return raw, false
}

// elideSegment removes the first occurrence of "<segment>/" at a component
// boundary and reports whether anything was removed.
func elideSegment(path, segment string) (string, bool) {
	needle := segment + "/"
	idx := strings.Index(path, needle)
	for idx >= 0 {
		if idx == 0 {
			return path[len(needle):], true
		}
		if path[idx-1] == '/' {
			return path[:idx] + path[idx+len(needle):], true
		}
		next := strings.Index(path[idx+1:], needle)
		if next < 0 {
			break
		}
		idx += 1 + next
	}
	return path, false
}
