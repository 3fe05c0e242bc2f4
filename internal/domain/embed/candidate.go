package embed

import "context"

// Tier ranks how strongly the place a URL was found implies it is the real
// player. Lower tiers are tried first.
type Tier float64

const (
	TierPrimaryProvider Tier = 1
	TierIframe          Tier = 1.2
	TierStreamElement   Tier = 1.5
	TierRawHost         Tier = 1.8
	TierScript          Tier = 2
	TierDataAttr        Tier = 3
	TierAnchor          Tier = 5
)

// TierOrder is the evaluation order used by the static resolver.
var TierOrder = []Tier{
	TierPrimaryProvider,
	TierIframe,
	TierStreamElement,
	TierRawHost,
	TierScript,
	TierDataAttr,
	TierAnchor,
}

type Candidate struct {
	URL  string
	Tier Tier
}

// Resolver finds the embed URL for one detail page. ok is false when nothing
// acceptable was found; resolvers do not report errors.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, detailURL string) (embedURL string, ok bool)
}
