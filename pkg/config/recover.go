package config

import (
	"fmt"
	"strconv"

	"github.com/bastiangx/rankserve/internal/utils"
	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/charmbracelet/log"
)

// tryPartialParse recovers every well-typed key from a file that failed strict decoding.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "ranking"); ok {
		extractRankingConfig(section, &config.Ranking)
	}
	if section, ok := utils.ExtractSection(tempConfig, "demotions"); ok {
		extractDemotions(section, config.Demotions)
	}
	if section, ok := utils.ExtractSection(tempConfig, "groups"); ok {
		extractGroups(section, config.Groups)
	}
	if tables, ok := tempConfig["engines"].([]map[string]any); ok {
		if engines := extractEngines(tables); len(engines) > 0 {
			config.Engines = engines
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	if section, ok := utils.ExtractSection(tempConfig, "history"); ok {
		extractHistoryConfig(section, &config.History)
	}
	return config, nil
}

func extractRankingConfig(data map[string]any, r *RankingConfig) {
	ints := map[string]*int{
		"max_matches":               &r.MaxMatches,
		"max_zero_suggest_matches":  &r.MaxZeroSuggestMatches,
		"max_url_matches":           &r.MaxURLMatches,
		"dynamic_max_matches_limit": &r.DynamicMaxMatchesLimit,
		"dynamic_url_cutoff":        &r.DynamicURLCutoff,
	}
	for key, dst := range ints {
		if val, ok := utils.ExtractInt64(data, key); ok {
			*dst = val
		}
	}
	bools := map[string]*bool{
		"dynamic_max_matches":            &r.DynamicMaxMatches,
		"drop_done_provider_matches":     &r.DropDoneProviderMatches,
		"prevent_default_on_transferred": &r.PreventDefaultOnTransferred,
		"demote_on_device_search":        &r.DemoteOnDeviceSearch,
		"group_search_vs_url":            &r.GroupSearchVsURL,
	}
	for key, dst := range bools {
		if val, ok := utils.ExtractBool(data, key); ok {
			*dst = val
		}
	}
}

func extractDemotions(data map[string]any, dst map[string]map[string]float64) {
	for page := range data {
		section, ok := utils.ExtractSection(data, page)
		if !ok {
			continue
		}
		for typeName := range section {
			if mult, ok := utils.ExtractFloat(section, typeName); ok {
				if dst[page] == nil {
					dst[page] = make(map[string]float64)
				}
				dst[page][typeName] = mult
			}
		}
	}
}

func extractGroups(data map[string]any, dst map[string]GroupConfig) {
	for id := range data {
		section, ok := utils.ExtractSection(data, id)
		if !ok {
			continue
		}
		var g GroupConfig
		g.Section, _ = utils.ExtractInt64(section, "section")
		g.Header, _ = utils.ExtractString(section, "header")
		dst[id] = g
	}
}

// extractEngines keeps every [[engines]] entry that has both a keyword and a template.
func extractEngines(tables []map[string]any) []match.SearchEngine {
	var out []match.SearchEngine
	for _, t := range tables {
		keyword, ok1 := utils.ExtractString(t, "keyword")
		template, ok2 := utils.ExtractString(t, "template")
		if !ok1 || !ok2 {
			log.Warnf("Skipping engine entry without keyword or template: %v", t)
			continue
		}
		out = append(out, match.SearchEngine{Keyword: keyword, Template: template})
	}
	return out
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_sessions"); ok {
		server.MaxSessions = val
	}
	if val, ok := utils.ExtractInt64(data, "max_input_length"); ok {
		server.MaxInputLength = val
	}
	if val, ok := utils.ExtractFloat(data, "requests_per_second"); ok {
		server.RequestsPerSecond = val
	}
	if val, ok := utils.ExtractInt64(data, "burst"); ok {
		server.Burst = val
	}
	if val, ok := utils.ExtractInt64(data, "notify_delay_ms"); ok {
		server.NotifyDelayMs = val
	}
	if val, ok := utils.ExtractBool(data, "watch_config"); ok {
		server.WatchConfig = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractString(data, "default_page"); ok {
		cli.DefaultPage = val
	}
	if val, ok := utils.ExtractBool(data, "show_duplicates"); ok {
		cli.ShowDups = val
	}
}

func extractHistoryConfig(data map[string]any, h *HistoryConfig) {
	if val, ok := utils.ExtractString(data, "seed_file"); ok {
		h.SeedFile = val
	}
	if val, ok := utils.ExtractInt64(data, "min_relevance"); ok {
		h.MinRelevance = val
	}
	if val, ok := utils.ExtractInt64(data, "max_results"); ok {
		h.MaxResults = val
	}
}

func parseGroupID(key string) (match.GroupID, error) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return match.GroupNone, fmt.Errorf("group id must be numeric: %w", err)
	}
	if n <= 0 {
		return match.GroupNone, fmt.Errorf("group id must be positive, got %d", n)
	}
	return match.GroupID(n), nil
}
