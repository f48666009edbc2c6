package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	internal "github.com/redsteep/vres/vres"
	"github.com/redsteep/vres/vres/catalog"
	"github.com/redsteep/vres/vres/types"
)

// Manifest declares a catalog's sources and classification rules.
// The values are read by viper from a config file or environment variables.
type Manifest struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// CatalogConfig stores catalog related configurations.
type CatalogConfig struct {
	KeyMode           string            `mapstructure:"keyMode" validate:"omitempty,oneof=basename fullpath"`
	Language          string            `mapstructure:"language"`
	RootFolders       []string          `mapstructure:"rootFolders" validate:"dive,required"`
	Archives          []ArchiveConfig   `mapstructure:"archives" validate:"dive"`
	LanguageFolders   map[string]string `mapstructure:"languageFolders"` // relative folder -> language id
	CategoryFolders   map[string]string `mapstructure:"categoryFolders"` // folder leaf name -> category
	EnabledCategories []string          `mapstructure:"enabledCategories"`
	SearchRoots       []string          `mapstructure:"searchRoots"`
}

// ArchiveConfig registers one container and the folder inside it to mount.
type ArchiveConfig struct {
	Path       string `mapstructure:"path" validate:"required"`
	RootFolder string `mapstructure:"rootFolder"`
}

var AppManifest Manifest

// LoadManifest reads a catalog manifest from file or environment variables.
func LoadManifest(configPath string) (*Manifest, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName(internal.DefaultManifestName)
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("catalog.keyMode", "basename")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read manifest file: %w", err)
		}
		// manifest file not found; defaults and env vars apply
	}

	if err := viper.Unmarshal(&AppManifest); err != nil {
		return nil, fmt.Errorf("unable to decode manifest into struct: %w", err)
	}

	if err := validator.New().Struct(&AppManifest); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	return &AppManifest, nil
}

// KeyModeValue converts the declared mode string.
func (cc *CatalogConfig) KeyModeValue() types.KeyMode {
	if cc.KeyMode == "fullpath" {
		return types.KeyModeFullPath
	}
	return types.KeyModeBasename
}

// Apply replays the manifest onto a catalog: classification rules first,
// then roots and archives in declaration order. Map-backed rules are
// applied in sorted order for reproducible builds.
func (m *Manifest) Apply(cat *catalog.Catalog) error {
	cc := &m.Catalog

	cat.SetKeyMode(cc.KeyModeValue())

	for _, folder := range sortedKeys(cc.LanguageFolders) {
		cat.AddLanguageFolder(cc.LanguageFolders[folder], folder)
	}
	for _, folder := range sortedKeys(cc.CategoryFolders) {
		cat.AddCategoryFolder(cc.CategoryFolders[folder], folder)
	}
	for _, category := range cc.EnabledCategories {
		cat.EnableCategory(category)
	}
	if len(cc.SearchRoots) > 0 {
		cat.SetSearchRoots(cc.SearchRoots)
	}
	cat.SetCurrentLanguage(cc.Language)

	for _, root := range cc.RootFolders {
		cat.AddRootFolder(root)
	}
	for _, ac := range cc.Archives {
		if err := cat.AddArchive(ac.Path, ac.RootFolder); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
