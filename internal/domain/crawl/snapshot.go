package crawl

import "time"

// PageSnapshot is the materialized state of the listing after one load cycle.
// Transports build it; extraction only reads it.
type PageSnapshot struct {
	URL        string
	CapturedAt time.Time
	Items      []ItemNode
}

// ItemNode holds the text of one listing item and of the nodes around it.
// Empty strings mean the node was absent.
type ItemNode struct {
	Competition string
	DateText    string

	// TeamNames are direct team-name nodes in document order.
	TeamNames []string
	HomeTeam  TeamNode
	AwayTeam  TeamNode
	// GenericHome and GenericAway come from looser ".home-team" style selectors.
	GenericHome TeamNode
	GenericAway TeamNode

	HomeScoreText string
	AwayScoreText string

	UpcomingText  string
	TimeText      string
	VenueText     string
	RefereeText   string
	BroadcastText string
}

// TeamNode is a home or away team container.
type TeamNode struct {
	Present bool
	// Name is the text of a nested team-name node, when one exists.
	Name    string
	HasName bool
	// Text is the full text of the container, scores included.
	Text string
}
