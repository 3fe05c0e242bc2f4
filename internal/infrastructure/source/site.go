package source

import (
	_ "embed"
	"regexp"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/football-live/internal/domain/match"
	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultSitesYAML []byte

type TitleMode string

const (
	TitleFromTeams            TitleMode = "teams"
	TitleFromAnchor           TitleMode = "anchor"
	TitleFromContainerHeading TitleMode = "container-heading"
)

// Site describes how to turn one listing page into match summaries.
type Site struct {
	ID                match.SourceID `yaml:"id"`
	ListURL           string         `yaml:"listURL"`
	BaseURL           string         `yaml:"baseURL"`
	Selector          string         `yaml:"selector"`
	HrefPattern       string         `yaml:"hrefPattern"`
	ExcludeHosts      []string       `yaml:"excludeHosts"`
	MinTextLength     int            `yaml:"minTextLength"`
	TextPattern       string         `yaml:"textPattern"`
	TitleFrom         TitleMode      `yaml:"titleFrom"`
	ContainerSelector string         `yaml:"containerSelector"`
	HeadingSelector   string         `yaml:"headingSelector"`
	HeadingSkip       []string       `yaml:"headingSkip"`
	LiveMarkers       []string       `yaml:"liveMarkers"`
	DirectEmbed       bool           `yaml:"directEmbed"`
}

type siteFile struct {
	Sources []Site `yaml:"sources"`
}

// DefaultSites returns the built-in site table.
func DefaultSites() ([]Site, error) {
	return ParseSites(defaultSitesYAML)
}

func ParseSites(data []byte) ([]Site, error) {
	var file siteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, crerr.Wrap(err, "parse source table")
	}

	seen := make(map[match.SourceID]struct{}, len(file.Sources))
	for i := range file.Sources {
		site := &file.Sources[i]
		if err := site.validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[site.ID]; ok {
			return nil, crerr.Newf("source %q declared twice", site.ID)
		}
		seen[site.ID] = struct{}{}
	}
	return file.Sources, nil
}

func (s *Site) validate() error {
	if !s.ID.Valid() {
		return crerr.Newf("unknown source id %q", s.ID)
	}
	if strings.TrimSpace(s.ListURL) == "" || strings.TrimSpace(s.Selector) == "" {
		return crerr.Newf("source %q: listURL and selector are required", s.ID)
	}
	if strings.TrimSpace(s.BaseURL) == "" {
		s.BaseURL = s.ListURL
	}
	switch s.TitleFrom {
	case "":
		s.TitleFrom = TitleFromTeams
	case TitleFromTeams, TitleFromAnchor:
	case TitleFromContainerHeading:
		if s.ContainerSelector == "" || s.HeadingSelector == "" {
			return crerr.Newf("source %q: container-heading titles need containerSelector and headingSelector", s.ID)
		}
	default:
		return crerr.Newf("source %q: unknown titleFrom %q", s.ID, s.TitleFrom)
	}
	for _, pattern := range []string{s.HrefPattern, s.TextPattern} {
		if pattern == "" {
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return crerr.Wrapf(err, "source %q: compile pattern", s.ID)
		}
	}
	return nil
}
