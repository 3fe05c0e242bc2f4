package source

import (
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-live/internal/domain/match"
	"github.com/riskibarqy/football-live/internal/platform/logging"
)

// Registry holds the adapters in aggregation order.
type Registry struct {
	adapters []*Adapter
	byID     map[match.SourceID]*Adapter
}

// NewRegistry builds adapters for sites, or for the built-in table when
// sites is empty.
func NewRegistry(fetcher Fetcher, logger *logging.Logger, sites ...Site) (*Registry, error) {
	if len(sites) == 0 {
		defaults, err := DefaultSites()
		if err != nil {
			return nil, err
		}
		sites = defaults
	}

	r := &Registry{byID: make(map[match.SourceID]*Adapter, len(sites))}
	for _, site := range sites {
		adapter, err := NewAdapter(site, fetcher, logger)
		if err != nil {
			return nil, err
		}
		if _, dup := r.byID[site.ID]; dup {
			return nil, crerr.Newf("source %q registered twice", site.ID)
		}
		r.adapters = append(r.adapters, adapter)
		r.byID[site.ID] = adapter
	}
	return r, nil
}

func (r *Registry) All() []*Adapter {
	out := make([]*Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

func (r *Registry) Get(id match.SourceID) (*Adapter, bool) {
	a, ok := r.byID[id]
	return a, ok
}
