package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultRootName is the library folder looked up next to the executable,
// then in the working directory
const DefaultRootName = "songbook"

// Config represents the application configuration
type Config struct {
	Version        int            `toml:"version"`
	LibraryRoot    string         `toml:"library_root"` // empty = auto-detect
	CacheDir       string         `toml:"cache_dir"`
	DeckExtensions []string       `toml:"deck_extensions"`
	IgnorePrefix   string         `toml:"ignore_prefix"`
	LogFile        string         `toml:"log_file"`
	Watch          bool           `toml:"watch"`
	Grid           GridSettings   `toml:"grid"`
	Devices        DeviceSettings `toml:"devices"`
	Convert        ConvertConfig  `toml:"convert"`
}

// GridSettings holds the minimum grid sizes of the two browsing screens
type GridSettings struct {
	CollectionRows int `toml:"collection_rows"`
	CollectionCols int `toml:"collection_cols"`
	ItemRows       int `toml:"item_rows"`
	ItemCols       int `toml:"item_cols"`
}

// DeviceSettings controls which input devices are opened
type DeviceSettings struct {
	PedalSuffix    string `toml:"pedal_suffix"`
	KeyboardSuffix string `toml:"keyboard_suffix"`
	Grab           bool   `toml:"grab"`
	ReleaseAfterMs int    `toml:"release_after_ms"` // terminal keys only
}

// ConvertConfig names the external conversion tools
type ConvertConfig struct {
	Soffice    string `toml:"soffice"`
	Pdftoppm   string `toml:"pdftoppm"`
	CoverWidth int    `toml:"cover_width"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a config service rooted in the user config dir
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "pedalprompt", "config.toml"),
	}
}

// NewConfigServiceAt creates a config service bound to an explicit file
func NewConfigServiceAt(path string) ConfigService {
	return &configService{filePath: path}
}

// Path returns the file this service reads and writes
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration, returning defaults if the file is missing
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path.
// Keys missing from the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}

	return &Config{
		Version:        1,
		CacheDir:       filepath.Join(cacheDir, "pedalprompt"),
		DeckExtensions: []string{".pptx"},
		IgnorePrefix:   "~",
		LogFile:        "pedalprompt.log",
		Watch:          true,
		Grid: GridSettings{
			CollectionRows: 3,
			CollectionCols: 6,
			ItemRows:       3,
			ItemCols:       6,
		},
		Devices: DeviceSettings{
			PedalSuffix:    "FootSwitch Keyboard",
			KeyboardSuffix: "Wired Keyboard",
			Grab:           true,
			ReleaseAfterMs: 600,
		},
		Convert: ConvertConfig{
			Soffice:    "soffice",
			Pdftoppm:   "pdftoppm",
			CoverWidth: 320,
		},
	}
}

// normalize replaces zero values that would break the grid or tools
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Grid.CollectionRows < 1 {
		c.Grid.CollectionRows = def.Grid.CollectionRows
	}
	if c.Grid.CollectionCols < 1 {
		c.Grid.CollectionCols = def.Grid.CollectionCols
	}
	if c.Grid.ItemRows < 1 {
		c.Grid.ItemRows = def.Grid.ItemRows
	}
	if c.Grid.ItemCols < 1 {
		c.Grid.ItemCols = def.Grid.ItemCols
	}
	if len(c.DeckExtensions) == 0 {
		c.DeckExtensions = def.DeckExtensions
	}
	if c.Convert.Soffice == "" {
		c.Convert.Soffice = def.Convert.Soffice
	}
	if c.Convert.Pdftoppm == "" {
		c.Convert.Pdftoppm = def.Convert.Pdftoppm
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
}

// RootCandidates returns the library folders to try, in order.
// An explicit root wins; otherwise the folder next to the executable is
// tried first and the working directory second.
func (c *Config) RootCandidates() []string {
	if c.LibraryRoot != "" {
		return []string{c.LibraryRoot}
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), DefaultRootName))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, DefaultRootName))
	}
	return candidates
}
