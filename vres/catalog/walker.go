package catalog

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	internal "github.com/redsteep/vres/vres"
	"github.com/redsteep/vres/vres/types"
)

// walkFrame carries the state inherited down one branch of the tree.
// relFolder is the true relative path (used for language mapping and for
// the record's RelPath); keyFolder is the same path with category segments
// elided (used for lookup keys).
type walkFrame struct {
	relFolder string
	keyFolder string
	language  string
	category  string
}

// AddRootFolder registers root and recursively indexes every regular file
// beneath it as a disk record. Hidden entries (dot-prefixed) are skipped,
// directories and files alike. An unreadable root indexes nothing; per the
// catalog contract that is not an error.
func (c *Catalog) AddRootFolder(root string) {
	c.mu.Lock()
	c.rootFolders = append(c.rootFolders, root)
	c.mu.Unlock()

	c.walkFolder(root, walkFrame{}, c.loadIgnoreRules(root))
}

// loadIgnoreRules compiles the optional ignore file at the root. Missing
// file means no pruning.
func (c *Catalog) loadIgnoreRules(root string) *ignore.GitIgnore {
	ignorePath := filepath.Join(root, internal.DefaultIgnoreFileName)
	if _, err := os.Stat(ignorePath); err != nil {
		return nil
	}
	rules, err := ignore.CompileIgnoreFile(ignorePath)
	if err != nil {
		slog.Error("failed to compile ignore file", "path", ignorePath, "error", err)
		return nil
	}
	return rules
}

func (c *Catalog) walkFolder(root string, frame walkFrame, rules *ignore.GitIgnore) {
	c.mu.RLock()
	if lang, ok := c.languageFolders[NormalizeKey(frame.relFolder, types.KeyModeFullPath)]; ok && frame.relFolder != "" {
		// deeper exact match overrides the inherited language
		frame.language = lang
	}
	keyMode := c.keyMode
	c.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(frame.relFolder)))
	if err != nil {
		slog.Debug("skipping unreadable folder", "root", root, "folder", frame.relFolder, "error", err)
		return
	}

	// os.ReadDir sorts by name, so slot assignment is deterministic
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		rel := joinKey(frame.relFolder, name)
		if rules != nil && rules.MatchesPath(rel) {
			continue
		}

		if entry.IsDir() {
			sub := frame
			sub.relFolder = rel
			sub.keyFolder = joinKey(frame.keyFolder, name)
			c.mu.RLock()
			cat, isCategory := c.categoryFolders[NormalizeKey(name, types.KeyModeBasename)]
			c.mu.RUnlock()
			if isCategory {
				// the category folder's segment never appears in keys
				sub.category = cat
				sub.keyFolder = frame.keyFolder
			}
			c.walkFolder(root, sub, rules)
			continue
		}

		info, err := entry.Info()
		if err != nil {
			slog.Debug("skipping unreadable file", "root", root, "file", rel, "error", err)
			continue
		}

		rec := &types.Record{
			LogicalName: name,
			Backend:     types.BackendDisk,
			Size:        info.Size(),
			LanguageID:  frame.language,
			Category:    frame.category,
			RelPath:     rel,
			AbsPath:     filepath.Join(root, filepath.FromSlash(rel)),
		}
		c.store.insert(NormalizeKey(joinKey(frame.keyFolder, name), keyMode), rec)
	}
}
