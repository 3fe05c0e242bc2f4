package embed

import (
	"regexp"
	"strings"
)

// PrimaryProviderMarker identifies the provider whose iframes are the
// strongest signal on a detail page.
const PrimaryProviderMarker = "gooz.aapmains.net/new-stream-embed"

var streamKeywords = []string{
	"hesgoal",
	"crack-streams",
	"streamapi",
	"stream",
	"watch",
	"player",
	"embed",
	"givemereddit",
}

// StreamHostPatterns match stream-host URLs anywhere in raw HTML, including
// values injected by scripts that never become element attributes.
var StreamHostPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://[^\s"'<>)\]]*givemereddit[^\s"'<>)\]]*`),
	regexp.MustCompile(`(?i)https?://[^\s"'<>)\]]*gooz\.aapmains\.net[^\s"'<>)\]]*`),
	regexp.MustCompile(`(?i)https?://[^\s"'<>)\]]*hesgoal[^\s"'<>)\]]*`),
	regexp.MustCompile(`(?i)https?://[^\s"'<>)\]]*stream[^\s"'<>)\]]*\.(?:com|net|io|tv)[^\s"'<>)\]]*`),
}

// ScriptURLPattern pulls URL-like values out of inline script bodies.
var ScriptURLPattern = regexp.MustCompile(
	`(?i)(?:src|url|embed|stream)\s*[=:]\s*["']([^"']+)["']` +
		`|(?:src|url|embed)\s*[=:]\s*([^\s,}\]"']+)` +
		`|(https?://[^\s"'<>)\]]+\.m3u8)` +
		`|(/embed/[^\s"'<>)\]]+)`,
)

// ScanStreamHosts returns every StreamHostPatterns match in html, de-duplicated
// and in pattern then document order.
func ScanStreamHosts(html string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, re := range StreamHostPatterns {
		for _, m := range re.FindAllString(html, -1) {
			m = strings.TrimRight(m, `\;,`)
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// ScanScriptURLs returns URL-like values from inline script text. Only values
// starting with http, // or / are kept.
func ScanScriptURLs(script string) []string {
	var out []string
	for _, groups := range ScriptURLPattern.FindAllStringSubmatch(script, -1) {
		for _, g := range groups[1:] {
			v := strings.TrimSpace(g)
			if v == "" {
				continue
			}
			if strings.HasPrefix(strings.ToLower(v), "http") || strings.HasPrefix(v, "/") {
				out = append(out, v)
			}
			break
		}
	}
	return out
}
