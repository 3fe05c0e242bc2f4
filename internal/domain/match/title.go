package match

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
)

var (
	titleTeamsRe    = regexp.MustCompile(`(?i)(.+?)\s+vs\.?\s+(.+?)(?:\s+[-–|]|\s+Live|$)`)
	liveStreamTail  = regexp.MustCompile(`(?i)\s*live\s*stream.*$`)
	slugSeparatorRe = regexp.MustCompile(`-vs?-`)
	slugIDSuffixRe  = regexp.MustCompile(`-\d+$`)
)

// TeamsFromTitle extracts teams from a detail page title such as
// "Arsenal vs Chelsea - Premier League Live Stream".
func TeamsFromTitle(title string) (home, away string, ok bool) {
	m := titleTeamsRe.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return "", "", false
	}
	home = strings.TrimSpace(liveStreamTail.ReplaceAllString(m[1], ""))
	away = strings.TrimSpace(liveStreamTail.ReplaceAllString(m[2], ""))
	if home == "" || away == "" {
		return "", "", false
	}
	return home, away, true
}

// TeamsFromSlug extracts teams from the last path segment of a detail URL,
// e.g. /match/real-madrid-vs-barcelona-1234.
func TeamsFromSlug(rawURL string) (home, away string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", false
	}
	slug := strings.ToLower(path.Base(strings.TrimRight(u.Path, "/")))
	parts := slugSeparatorRe.Split(slug, 2)
	if len(parts) != 2 {
		return "", "", false
	}

	home = titleCase(parts[0])
	away = titleCase(slugIDSuffixRe.ReplaceAllString(parts[1], ""))
	if home == "" || away == "" {
		return "", "", false
	}
	return home, away, true
}

func titleCase(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
