package resolver

import (
	"context"

	"github.com/riskibarqy/football-live/internal/domain/embed"
	"github.com/riskibarqy/football-live/internal/platform/logging"
)

// Chain tries resolvers in order and stops at the first acceptable embed.
type Chain struct {
	resolvers []embed.Resolver
	logger    *logging.Logger
}

func NewChain(logger *logging.Logger, resolvers ...embed.Resolver) *Chain {
	if logger == nil {
		logger = logging.Default()
	}
	kept := make([]embed.Resolver, 0, len(resolvers))
	for _, r := range resolvers {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &Chain{resolvers: kept, logger: logger.Named("resolver.chain")}
}

func (c *Chain) Name() string {
	return "chain"
}

func (c *Chain) Resolve(ctx context.Context, detailURL string) (string, bool) {
	embedURL, _, ok := c.ResolveNamed(ctx, detailURL)
	return embedURL, ok
}

// ResolveNamed also returns the name of the strategy that produced the embed.
func (c *Chain) ResolveNamed(ctx context.Context, detailURL string) (embedURL, strategy string, ok bool) {
	for _, r := range c.resolvers {
		if ctx.Err() != nil {
			return "", "", false
		}
		got, found := r.Resolve(ctx, detailURL)
		if !found || !embed.IsAcceptable(got, detailURL) {
			continue
		}
		c.logger.DebugContext(ctx, "embed resolved", "url", detailURL, "strategy", r.Name(), "embed", got)
		return got, r.Name(), true
	}
	return "", "", false
}
