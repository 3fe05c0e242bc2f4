package match

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultHomeTeam = "Home"
	defaultAwayTeam = "Away"
)

var (
	finishedMarkers = []string{"FT", "FINISHED", "ENDED", "انتهت"}
	liveMarkers     = []string{"LIVE", "جارية"}

	minuteMarkerRe = regexp.MustCompile(`\d+'\s*`)
	clockRangeRe   = regexp.MustCompile(`^\d+:\d+\s*-\s*\d+:\d+`)
	scoreRe        = regexp.MustCompile(`(\d+)\s*[-–:]\s*(\d+)`)
	teamSplitRe    = regexp.MustCompile(`(?i)^(.+?)\s+(?:vs\.?|v)\s+(.+)$`)
	literalVsRe    = regexp.MustCompile(`(?i)\s+vs\.?\s+`)
	trailMinuteRe  = regexp.MustCompile(`\s*\d+'\s*$`)
	trailClockRe   = regexp.MustCompile(`\s*\d+:\d+\s*-\s*\d+:\d+.*$`)
	leadClockRe    = regexp.MustCompile(`^\d+:\d+\s*-\s*\d+:\d+\s*`)
	leadMinuteRe   = regexp.MustCompile(`^\d+'\s*`)
	trailParenRe   = regexp.MustCompile(`\s*\(.*\)$`)
	trailStatusRe  = regexp.MustCompile(`(?i)(?:\s+(?:\d+\s*[-–:]\s*\d+|\d+'|live|ft|ht|finished|ended|جارية|انتهت))+\s*$`)
)

// Line is the structured form of one free-text listing label.
type Line struct {
	HomeTeam  string
	AwayTeam  string
	HomeScore *int
	AwayScore *int
	Status    Status
}

// ParseLine never fails; unknown parts fall back to Home/Away and UPCOMING.
func ParseLine(text string) Line {
	trimmed := strings.TrimSpace(text)
	out := Line{Status: lineStatus(trimmed)}

	if m := scoreRe.FindStringSubmatch(trimmed); m != nil {
		home, errHome := strconv.Atoi(m[1])
		away, errAway := strconv.Atoi(m[2])
		if errHome == nil && errAway == nil {
			out.HomeScore = &home
			out.AwayScore = &away
		}
	}

	out.HomeTeam, out.AwayTeam = splitTeams(trimmed)
	if out.HomeTeam == "" {
		out.HomeTeam = defaultHomeTeam
	}
	if out.AwayTeam == "" {
		out.AwayTeam = defaultAwayTeam
	}
	return out
}

func lineStatus(text string) Status {
	upper := strings.ToUpper(text)
	for _, marker := range finishedMarkers {
		if strings.Contains(upper, marker) {
			return StatusFinished
		}
	}
	for _, marker := range liveMarkers {
		if strings.Contains(upper, marker) {
			return StatusLive
		}
	}
	if minuteMarkerRe.MatchString(text) || clockRangeRe.MatchString(text) {
		return StatusLive
	}
	return StatusUpcoming
}

func splitTeams(text string) (string, string) {
	if text == "" {
		return "", ""
	}

	if m := teamSplitRe.FindStringSubmatch(text); m != nil {
		return cleanHome(m[1]), cleanAway(m[2])
	}

	if parts := literalVsRe.Split(text, 2); len(parts) == 2 {
		return cleanHome(parts[0]), cleanAway(parts[1])
	}

	return cleanHome(text), ""
}

func cleanHome(v string) string {
	v = strings.TrimSpace(v)
	v = leadClockRe.ReplaceAllString(v, "")
	v = leadMinuteRe.ReplaceAllString(v, "")
	v = trailMinuteRe.ReplaceAllString(v, "")
	v = trailClockRe.ReplaceAllString(v, "")
	return strings.TrimSpace(v)
}

func cleanAway(v string) string {
	v = strings.TrimSpace(v)
	v = leadClockRe.ReplaceAllString(v, "")
	v = leadMinuteRe.ReplaceAllString(v, "")
	// Trailing league tags and score/status markers can come in either order.
	for {
		next := trailStatusRe.ReplaceAllString(v, "")
		next = strings.TrimSpace(trailParenRe.ReplaceAllString(next, ""))
		if next == v {
			return v
		}
		v = next
	}
}
