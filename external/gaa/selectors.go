package gaa

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultSourceURL = "https://www.gaa.ie/fixtures-results"

// Selectors are the CSS selectors used against the fixtures listing.
type Selectors struct {
	Item      string `yaml:"item"`
	Day       string `yaml:"day"`
	DayDate   string `yaml:"day_date"`
	Group     string `yaml:"group"`
	GroupName string `yaml:"group_name"`

	TeamName    string `yaml:"team_name"`
	Team        string `yaml:"team"`
	HomeTeam    string `yaml:"home_team"`
	AwayTeam    string `yaml:"away_team"`
	GenericHome string `yaml:"generic_home"`
	GenericAway string `yaml:"generic_away"`
	HomeScore   string `yaml:"home_score"`
	AwayScore   string `yaml:"away_score"`

	Upcoming     string `yaml:"upcoming"`
	Time         string `yaml:"time"`
	Venue        string `yaml:"venue"`
	Referee      string `yaml:"referee"`
	Broadcasting string `yaml:"broadcasting"`

	LoadMore       string   `yaml:"load_more"`
	ConsentAccept  string   `yaml:"consent_accept"`
	ConsentOverlay string   `yaml:"consent_overlay"`
	Overlays       []string `yaml:"overlays"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		Item:      ".gar-match-item",
		Day:       ".gar-matches-list__day",
		DayDate:   ".gar-matches-list__date",
		Group:     ".gar-matches-list__group",
		GroupName: ".gar-matches-list__group-name",

		TeamName:    ".gar-match-item__team-name",
		Team:        ".gar-match-item__team",
		HomeTeam:    ".gar-match-item__team.-home",
		AwayTeam:    ".gar-match-item__team.-away",
		GenericHome: ".home-team",
		GenericAway: ".away-team",
		HomeScore:   ".gar-match-item__score.-home, .home-score, .match-score-home",
		AwayScore:   ".gar-match-item__score.-away, .away-score, .match-score-away",

		Upcoming:     ".gar-match-item__upcoming, .match-time, .fixture-time",
		Time:         ".gar-match-item__time",
		Venue:        ".gar-match-item__venue, .match-venue, .fixture-venue",
		Referee:      ".gar-match-item__referee, .match-referee, .fixture-referee",
		Broadcasting: ".gar-match-item__broadcasting, .match-broadcast, .fixture-broadcast",

		LoadMore:       ".gar-matches-list__btn.btn-secondary.-next",
		ConsentAccept:  "#ccc-notify-accept",
		ConsentOverlay: "#ccc-overlay",
		Overlays:       []string{"#ccc-overlay", "#ccc", ".ccc-notify"},
	}
}

// LoadSelectors returns the defaults overlaid with the non-empty values of the
// YAML file at path. An empty path returns the defaults.
func LoadSelectors(path string) (Selectors, error) {
	selectors := DefaultSelectors()
	path = strings.TrimSpace(path)
	if path == "" {
		return selectors, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Selectors{}, fmt.Errorf("read selectors file %s: %w", path, err)
	}

	var override Selectors
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return Selectors{}, fmt.Errorf("parse selectors file %s: %w", path, err)
	}
	return selectors.merge(override), nil
}

func (s Selectors) merge(override Selectors) Selectors {
	pick := func(base *string, value string) {
		if value = strings.TrimSpace(value); value != "" {
			*base = value
		}
	}

	pick(&s.Item, override.Item)
	pick(&s.Day, override.Day)
	pick(&s.DayDate, override.DayDate)
	pick(&s.Group, override.Group)
	pick(&s.GroupName, override.GroupName)
	pick(&s.TeamName, override.TeamName)
	pick(&s.Team, override.Team)
	pick(&s.HomeTeam, override.HomeTeam)
	pick(&s.AwayTeam, override.AwayTeam)
	pick(&s.GenericHome, override.GenericHome)
	pick(&s.GenericAway, override.GenericAway)
	pick(&s.HomeScore, override.HomeScore)
	pick(&s.AwayScore, override.AwayScore)
	pick(&s.Upcoming, override.Upcoming)
	pick(&s.Time, override.Time)
	pick(&s.Venue, override.Venue)
	pick(&s.Referee, override.Referee)
	pick(&s.Broadcasting, override.Broadcasting)
	pick(&s.LoadMore, override.LoadMore)
	pick(&s.ConsentAccept, override.ConsentAccept)
	pick(&s.ConsentOverlay, override.ConsentOverlay)
	if len(override.Overlays) > 0 {
		s.Overlays = append([]string(nil), override.Overlays...)
	}
	return s
}
