package gaa

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
)

// BuildSnapshot parses the listing HTML into a page snapshot. Every item
// matched by sel.Item becomes one ItemNode in document order.
func BuildSnapshot(html, pageURL string, capturedAt time.Time, sel Selectors) (*crawl.PageSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	items := doc.Find(sel.Item)
	snapshot := &crawl.PageSnapshot{
		URL:        pageURL,
		CapturedAt: capturedAt,
		Items:      make([]crawl.ItemNode, 0, items.Length()),
	}
	items.Each(func(_ int, item *goquery.Selection) {
		snapshot.Items = append(snapshot.Items, buildItem(item, sel))
	})
	return snapshot, nil
}

func buildItem(item *goquery.Selection, sel Selectors) crawl.ItemNode {
	node := crawl.ItemNode{
		Competition:   item.Closest(sel.Group).Find(sel.GroupName).First().Text(),
		DateText:      item.Closest(sel.Day).Find(sel.DayDate).First().Text(),
		HomeTeam:      teamNode(item.Find(sel.HomeTeam).First(), sel.TeamName),
		AwayTeam:      teamNode(item.Find(sel.AwayTeam).First(), sel.TeamName),
		HomeScoreText: firstText(item, sel.HomeScore),
		AwayScoreText: firstText(item, sel.AwayScore),
		UpcomingText:  firstText(item, sel.Upcoming),
		TimeText:      firstText(item, sel.Time),
		VenueText:     firstText(item, sel.Venue),
		RefereeText:   firstText(item, sel.Referee),
		BroadcastText: firstText(item, sel.Broadcasting),
	}

	names := item.Find(sel.TeamName)
	node.TeamNames = make([]string, 0, names.Length())
	names.Each(func(_ int, name *goquery.Selection) {
		node.TeamNames = append(node.TeamNames, name.Text())
	})

	node.GenericHome = teamNode(item.Find(sel.GenericHome).First(), "")
	node.GenericAway = teamNode(item.Find(sel.GenericAway).First(), "")
	if !node.GenericHome.Present || !node.GenericAway.Present {
		teams := item.Find(sel.Team)
		if teams.Length() >= 2 {
			node.GenericHome = teamNode(teams.Eq(0), "")
			node.GenericAway = teamNode(teams.Eq(1), "")
		}
	}
	return node
}

func teamNode(team *goquery.Selection, nameSelector string) crawl.TeamNode {
	if team.Length() == 0 {
		return crawl.TeamNode{}
	}
	node := crawl.TeamNode{Present: true, Text: team.Text()}
	if nameSelector != "" {
		if name := team.Find(nameSelector).First(); name.Length() > 0 {
			node.Name = name.Text()
			node.HasName = true
		}
	}
	return node
}

func firstText(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return item.Find(selector).First().Text()
}
