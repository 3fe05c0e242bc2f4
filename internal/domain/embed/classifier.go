package embed

import (
	"net/url"
	"strings"
)

var (
	listingPathPatterns = []string{"/categories/", "/category/", "/soccer", "/team/", "/standings/", "/news"}
	embedPathAllowList  = []string{"/embed/", "/player/", "/watch/", "/stream/", "/live/"}
	widgetHosts         = []string{"studio.youtube.com", "facebook.com", "twitter.com", "x.com"}
)

// IsHomepagePath reports whether p is a site root once trailing slashes are
// trimmed.
func IsHomepagePath(p string) bool {
	trimmed := strings.TrimRight(p, "/")
	return trimmed == ""
}

// IsInvalid rejects values that can never be an embed: empty strings,
// about:/javascript:/data: schemes, unparseable or host-less URLs and
// homepage URLs.
func IsInvalid(raw string) bool {
	v := strings.TrimSpace(raw)
	if v == "" {
		return true
	}

	lower := strings.ToLower(v)
	for _, prefix := range []string{"about:", "javascript:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	u, err := url.Parse(v)
	if err != nil {
		return true
	}
	if strings.HasPrefix(v, "//") {
		u.Scheme = "https"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return true
	}
	if u.Host == "" {
		return true
	}
	return IsHomepagePath(u.Path)
}

// IsListingOrNav reports whether raw points at a category, listing or other
// navigation page instead of a player. Relative values resolve against
// detailURL.
func IsListingOrNav(raw, detailURL string) bool {
	base, err := url.Parse(strings.TrimSpace(detailURL))
	if err != nil {
		return true
	}
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return true
	}
	u := base.ResolveReference(ref)
	p := strings.ToLower(u.Path)

	allowListed := containsAny(p, embedPathAllowList)
	for _, pattern := range listingPathPatterns {
		if !strings.Contains(p, pattern) {
			continue
		}
		if pattern == "/soccer" && allowListed {
			continue
		}
		return true
	}

	if !sameOrigin(u, base) {
		return false
	}
	return !allowListed
}

// IsNonStreamWidget reports iframes that are routinely embedded next to the
// player but never carry video: live chat, studio UI and social embeds.
func IsNonStreamWidget(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range widgetHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(u.Path+"?"+u.RawQuery), "live_chat")
}

// IsSamePage reports whether raw resolves to the detail page itself.
func IsSamePage(raw, detailURL string) bool {
	base, err := url.Parse(strings.TrimSpace(detailURL))
	if err != nil {
		return false
	}
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	u := base.ResolveReference(ref)
	return sameOrigin(u, base) && strings.TrimRight(u.Path, "/") == strings.TrimRight(base.Path, "/")
}

// IsStreamLike applies the keyword heuristic to host and path.
func IsStreamLike(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if IsHomepagePath(u.Path) {
		return false
	}
	return containsAny(strings.ToLower(u.Path+" "+u.Host), streamKeywords)
}

// IsStreamLikeRequest is the looser heuristic applied to network traffic seen
// by the browser resolver.
func IsStreamLikeRequest(raw string) bool {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "givemereddit"),
		strings.Contains(lower, "gooz"),
		strings.Contains(lower, "hesgoal"),
		strings.Contains(lower, ".m3u8"),
		strings.Contains(lower, "streamapi"):
		return true
	case strings.Contains(lower, "stream"):
		return strings.Contains(lower, ".html") ||
			strings.Contains(lower, "/embed") ||
			strings.Contains(lower, "/player")
	default:
		return false
	}
}

// IsAcceptable combines the rejections every resolved embed must pass. With
// an empty detailURL only the page-independent checks apply.
func IsAcceptable(raw, detailURL string) bool {
	if IsInvalid(raw) || IsNonStreamWidget(raw) {
		return false
	}
	if strings.TrimSpace(detailURL) == "" {
		return true
	}
	return !IsListingOrNav(raw, detailURL) && !IsSamePage(raw, detailURL)
}

// Absolute resolves raw against detailURL. Protocol-relative values get the
// detail page's scheme.
func Absolute(raw, detailURL string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}
	ref, err := url.Parse(v)
	if err != nil {
		return "", false
	}
	base, err := url.Parse(strings.TrimSpace(detailURL))
	if err != nil || detailURL == "" {
		if ref.IsAbs() {
			return ref.String(), true
		}
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
