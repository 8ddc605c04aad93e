/*
Package config manages the TOML config for rankserve.

Loading follows a fixed priority: a path given on the command line, the
default path under the user config dir (created with defaults when
missing), then built-in defaults. A file that fails strict decoding is
re-read as a generic map and every recognised key is recovered on its own,
so one bad value does not discard the rest.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/rankserve/internal/utils"
	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/bastiangx/rankserve/pkg/result"
	"github.com/charmbracelet/log"
)

// FileName is the config file name inside the config dir.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Ranking   RankingConfig                 `toml:"ranking"`
	Demotions map[string]map[string]float64 `toml:"demotions"`
	Groups    map[string]GroupConfig        `toml:"groups"`
	Engines   []match.SearchEngine          `toml:"engines"`
	Server    ServerConfig                  `toml:"server"`
	CLI       CliConfig                     `toml:"cli"`
	History   HistoryConfig                 `toml:"history"`
}

// RankingConfig is the ranking policy handed to every Result.
type RankingConfig struct {
	MaxMatches                  int  `toml:"max_matches"`
	MaxZeroSuggestMatches       int  `toml:"max_zero_suggest_matches"`
	MaxURLMatches               int  `toml:"max_url_matches"`
	DynamicMaxMatches           bool `toml:"dynamic_max_matches"`
	DynamicMaxMatchesLimit      int  `toml:"dynamic_max_matches_limit"`
	DynamicURLCutoff            int  `toml:"dynamic_url_cutoff"`
	DropDoneProviderMatches     bool `toml:"drop_done_provider_matches"`
	PreventDefaultOnTransferred bool `toml:"prevent_default_on_transferred"`
	DemoteOnDeviceSearch        bool `toml:"demote_on_device_search"`
	GroupSearchVsURL            bool `toml:"group_search_vs_url"`
}

// GroupConfig is the presentation of one suggestion group, keyed by its numeric id.
type GroupConfig struct {
	Section int    `toml:"section"`
	Header  string `toml:"header"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxSessions       int     `toml:"max_sessions"`
	MaxInputLength    int     `toml:"max_input_length"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	NotifyDelayMs     int     `toml:"notify_delay_ms"`
	WatchConfig       bool    `toml:"watch_config"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int    `toml:"default_limit"`
	DefaultPage  string `toml:"default_page"`
	ShowDups     bool   `toml:"show_duplicates"`
}

// HistoryConfig configures the built-in history provider.
type HistoryConfig struct {
	SeedFile     string `toml:"seed_file"`
	MinRelevance int    `toml:"min_relevance"`
	MaxResults   int    `toml:"max_results"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	opts := result.DefaultOptions()
	return &Config{
		Ranking: RankingConfig{
			MaxMatches:                  opts.MaxMatches,
			MaxZeroSuggestMatches:       opts.MaxZeroSuggestMatches,
			MaxURLMatches:               opts.MaxURLMatches,
			DynamicMaxMatches:           opts.DynamicMaxMatches,
			DynamicMaxMatchesLimit:      opts.DynamicMaxMatchesLimit,
			DynamicURLCutoff:            opts.DynamicURLCutoff,
			DropDoneProviderMatches:     opts.DropDoneProviderMatches,
			PreventDefaultOnTransferred: opts.PreventDefaultOnTransferred,
			DemoteOnDeviceSearch:        opts.DemoteOnDeviceSearch,
			GroupSearchVsURL:            opts.GroupSearchVsURL,
		},
		Demotions: map[string]map[string]float64{},
		Groups:    map[string]GroupConfig{},
		Engines: []match.SearchEngine{
			{Keyword: "google.com", Template: "https://www.google.com/search?q={searchTerms}"},
			{Keyword: "duckduckgo.com", Template: "https://duckduckgo.com/?q={searchTerms}"},
		},
		Server: ServerConfig{
			MaxSessions:       32,
			MaxInputLength:    256,
			RequestsPerSecond: 200,
			Burst:             50,
			NotifyDelayMs:     0,
			WatchConfig:       true,
		},
		CLI: CliConfig{
			DefaultLimit: 8,
			DefaultPage:  "other",
		},
		History: HistoryConfig{
			MinRelevance: 100,
			MaxResults:   6,
		},
	}
}

// Options converts the ranking section and demotion table into result.Options.
func (c *Config) Options() result.Options {
	r := c.Ranking
	return result.Options{
		MaxMatches:                  r.MaxMatches,
		MaxZeroSuggestMatches:       r.MaxZeroSuggestMatches,
		MaxURLMatches:               r.MaxURLMatches,
		DynamicMaxMatches:           r.DynamicMaxMatches,
		DynamicMaxMatchesLimit:      r.DynamicMaxMatchesLimit,
		DynamicURLCutoff:            r.DynamicURLCutoff,
		DropDoneProviderMatches:     r.DropDoneProviderMatches,
		PreventDefaultOnTransferred: r.PreventDefaultOnTransferred,
		DemoteOnDeviceSearch:        r.DemoteOnDeviceSearch,
		GroupSearchVsURL:            r.GroupSearchVsURL,
		Demotions:                   c.DemotionTable(),
	}
}

// DemotionTable converts the [demotions.<page>] sections. Unknown page or
// type names are skipped with a warning.
func (c *Config) DemotionTable() result.DemotionTable {
	table := make(result.DemotionTable, len(c.Demotions))
	for pageName, types := range c.Demotions {
		page, ok := match.ParsePage(pageName)
		if !ok {
			log.Warnf("Unknown page classification %q in demotions", pageName)
			continue
		}
		for typeName, mult := range types {
			t, ok := match.ParseType(typeName)
			if !ok {
				log.Warnf("Unknown match type %q in demotions.%s", typeName, pageName)
				continue
			}
			if mult < 0 {
				log.Warnf("Ignoring negative demotion %v for %s on %s", mult, typeName, pageName)
				continue
			}
			if table[page] == nil {
				table[page] = make(map[match.Type]float64)
			}
			table[page][t] = mult
		}
	}
	return table
}

// SearchEngines compiles the [[engines]] templates.
func (c *Config) SearchEngines() *match.SearchEngines {
	return match.NewSearchEngines(c.Engines...)
}

// SuggestionGroups converts [groups.<id>] sections. Non-numeric ids are skipped.
func (c *Config) SuggestionGroups() map[match.GroupID]result.GroupConfig {
	out := make(map[match.GroupID]result.GroupConfig, len(c.Groups))
	for key, g := range c.Groups {
		id, err := parseGroupID(key)
		if err != nil {
			log.Warnf("Skipping suggestion group %q: %v", key, err)
			continue
		}
		out[id] = result.GroupConfig{Section: g.Section, Header: g.Header}
	}
	return out
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() string {
	return filepath.Join(utils.ConfigDir(), FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/rankserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath := utils.ResolveConfigPath(FileName)
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// RebuildConfigFile force creates a new config.toml at path
func RebuildConfigFile(path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), path)
}
