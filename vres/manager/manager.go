// Package manager is the application-boundary convenience around a single
// process-wide catalog instance. The core stays instance-based; nothing
// under vres/catalog depends on this package. Applications that need more
// than one catalog should construct catalog.New directly.
package manager

import (
	"sync"

	internal "github.com/redsteep/vres/vres"
	"github.com/redsteep/vres/vres/catalog"
	"github.com/redsteep/vres/vres/stream"
	"github.com/redsteep/vres/vres/types"
)

var (
	defaultOnce    sync.Once
	defaultCatalog *catalog.Catalog
)

// Default returns the shared catalog, creating it on first use.
func Default() *catalog.Catalog {
	defaultOnce.Do(func() {
		logger := internal.GetLogger()
		defaultCatalog = catalog.New()
		logger.Debug().
			Str("catalog_id", defaultCatalog.ID().String()).
			Msg("initialized default resource catalog")
	})
	return defaultCatalog
}

// Build configuration forwarding.

func AddRootFolder(path string) { Default().AddRootFolder(path) }

func AddArchive(path, rootFolder string) error { return Default().AddArchive(path, rootFolder) }

func AddLanguageFolder(languageID, folder string) { Default().AddLanguageFolder(languageID, folder) }

func AddCategoryFolder(category, folder string) { Default().AddCategoryFolder(category, folder) }

func EnableCategory(category string) { Default().EnableCategory(category) }

func DisableCategory(category string) { Default().DisableCategory(category) }

func SetCurrentLanguage(languageID string) { Default().SetCurrentLanguage(languageID) }

func SetKeyMode(mode types.KeyMode) { Default().SetKeyMode(mode) }

func AddSearchRoot(path string) { Default().AddSearchRoot(path) }

func Reset() { Default().Reset() }

// Query and read forwarding.

func Exists(name string) bool { return Default().Exists(name) }

func GetSize(name string) int64 { return Default().GetSize(name) }

func ReadAll(name string) ([]byte, error) { return Default().ReadAll(name) }

func OpenStream(name string) (stream.Handle, error) { return Default().OpenStream(name) }

func Read(h stream.Handle, p []byte) (int, error) { return Default().Read(h, p) }

func Seek(h stream.Handle, offset int64, whence int) (int64, error) {
	return Default().Seek(h, offset, whence)
}

func Tell(h stream.Handle) (int64, error) { return Default().Tell(h) }

func CloseStream(h stream.Handle) { Default().CloseStream(h) }
