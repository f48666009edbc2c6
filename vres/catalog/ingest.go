package catalog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/redsteep/vres/vres/archive"
	"github.com/redsteep/vres/vres/types"
)

// AddArchive enumerates every entry of the container at archivePath and
// indexes the accepted ones as archive records. When rootFolder is
// non-empty, only entries beneath it are considered and the rootFolder
// component is stripped from stored relative paths.
//
// The call is atomic: records are staged during the scan and committed to
// the store only after the whole container enumerated cleanly. An
// unopenable container is an OpenFailure; a mid-scan enumeration error or
// a duplicate raw entry path (a corruption signal) is a FormatError. In
// both cases the store is untouched.
func (c *Catalog) AddArchive(archivePath, rootFolder string) error {
	r, err := c.openArchive(archivePath)
	if err != nil {
		return fmt.Errorf("add archive %s: %w: %s", archivePath, ErrOpenFailure, err)
	}
	defer r.Close()

	keyMode := c.KeyMode()
	langFolders := c.sortedLanguageFolders()
	catFolders := c.sortedCategoryFolders()
	rootFolder = NormalizeKey(rootFolder, types.KeyModeFullPath)

	var staged []stagedRecord
	seen := make(map[string]struct{})

	entry, err := r.First()
	for err == nil {
		// capture the position before any rejection test so accepted
		// entries always carry a token taken at enumeration time
		token, terr := r.Tell()
		if terr != nil {
			return fmt.Errorf("scan %s: %w: %s", archivePath, ErrFormat, terr)
		}

		if _, dup := seen[entry.Path]; dup {
			return fmt.Errorf("scan %s: duplicate entry %q: %w", archivePath, entry.Path, ErrFormat)
		}
		seen[entry.Path] = struct{}{}

		if sr, ok := c.classifyEntry(entry, token, archivePath, rootFolder, langFolders, catFolders, keyMode); ok {
			staged = append(staged, sr)
		}

		entry, err = r.Next()
	}
	if !errors.Is(err, io.EOF) {
		return fmt.Errorf("scan %s: %w: %s", archivePath, ErrFormat, err)
	}

	c.store.insertAll(staged)
	slog.Debug("archive ingested",
		"archive", archivePath,
		"root_folder", rootFolder,
		"records", len(staged))
	return nil
}

// classifyEntry decides whether an entry belongs in the catalog and, if
// so, builds its record and lookup key.
func (c *Catalog) classifyEntry(
	entry *archive.Entry,
	token archive.EntryToken,
	archivePath, rootFolder string,
	langFolders []languageFolderMapping,
	catFolders []categoryFolderMapping,
	keyMode types.KeyMode,
) (stagedRecord, bool) {
	if entry.IsDir {
		return stagedRecord{}, false
	}

	rel := entry.Path
	if rootFolder != "" {
		trimmed, ok := trimNormalizedPrefix(rel, rootFolder)
		if !ok || trimmed == "" {
			return stagedRecord{}, false
		}
		rel = trimmed
	}

	// language by full-path prefix match against the entry's stored path;
	// mappings are scanned in sorted folder order so the last (deepest
	// overlapping) match wins
	language := ""
	entryKey := NormalizeKey(entry.Path, types.KeyModeFullPath)
	for _, lf := range langFolders {
		prefix := joinKey(rootFolder, lf.folder) + "/"
		if strings.HasPrefix(entryKey, prefix) {
			language = lf.languageID
		}
	}

	// category by path segment anywhere in the remaining path; a matched
	// segment is elided from the key, mirroring directory ingestion
	category := ""
	keyPath := rel
	for _, cf := range catFolders {
		if elided, ok := elideSegment(NormalizeKey(keyPath, types.KeyModeFullPath), cf.folder); ok {
			category = cf.category
			keyPath = elided
		}
	}

	rec := &types.Record{
		LogicalName: entry.Path,
		Backend:     types.BackendArchive,
		Size:        entry.UncompressedSize,
		LanguageID:  language,
		Category:    category,
		RelPath:     rel,
		ArchivePath: archivePath,
		Token:       token,
	}
	return stagedRecord{key: NormalizeKey(keyPath, keyMode), record: rec}, true
}
