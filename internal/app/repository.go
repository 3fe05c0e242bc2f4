package app

import (
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-live/internal/config"
	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/football-live/internal/infrastructure/repository/jsonstore"
	"github.com/riskibarqy/football-live/internal/infrastructure/repository/memory"
)

// newMatchRepository picks the file store when DATA_DIR is set and the
// in-memory store otherwise, then wraps it in the read cache when enabled.
func newMatchRepository(cfg config.Config) (match.Repository, error) {
	var repo match.Repository
	if cfg.DataDir == "" {
		repo = memory.NewMatchRepository(nil, nil)
	} else {
		store, err := jsonstore.NewMatchRepository(cfg.DataDir, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "open match store")
		}
		repo = store
	}

	if !cfg.CacheEnabled {
		return repo, nil
	}
	return cache.NewMatchRepository(repo, cfg.CacheTTL), nil
}
