package provider

import (
	"github.com/bastiangx/rankserve/internal/utils"
	"github.com/bastiangx/rankserve/pkg/config"
	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/charmbracelet/log"
)

// Ids of the built-in providers.
const (
	VerbatimID match.ProviderID = "verbatim"
	HistoryID  match.ProviderID = "history"
)

// Builtin returns the verbatim and history providers configured by cfg.
// Searches go to the first configured engine.
func Builtin(cfg *config.Config) ([]Provider, error) {
	template := ""
	if len(cfg.Engines) > 0 {
		template = cfg.Engines[0].Template
	}

	h := NewHistory(HistoryID, template, cfg.History.MinRelevance, cfg.History.MaxResults)
	if cfg.History.SeedFile != "" {
		path := utils.GetAbsolutePath(cfg.History.SeedFile)
		seed, err := LoadSeed(path)
		if err != nil {
			return nil, err
		}
		h.Load(seed)
		log.Debugf("Loaded history seed from %s", path)
	}
	return []Provider{NewVerbatim(VerbatimID, template), h}, nil
}
