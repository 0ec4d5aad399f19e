package model

import "fmt"

// BadgeTier is a cosmetic label derived from a user's post count
type BadgeTier string

const (
	BadgeNew    BadgeTier = "New"
	BadgeActive BadgeTier = "Active"
	BadgeBronze BadgeTier = "Bronze"
	BadgeSilver BadgeTier = "Silver"
	BadgeGold   BadgeTier = "Gold"
)

// Badge describes the tier a post count falls into
type Badge struct {
	Tier  BadgeTier `json:"tier"`
	Title string    `json:"title"`
}

var badgeThresholds = []struct {
	min   int
	tier  BadgeTier
	label string
}{
	{50, BadgeGold, "Gold Contributor"},
	{25, BadgeSilver, "Silver Contributor"},
	{10, BadgeBronze, "Bronze Contributor"},
	{5, BadgeActive, "Active Member"},
	{0, BadgeNew, "New Member"},
}

// TierFor returns the badge tier for postCount. Thresholds are inclusive on the lower edge.
func TierFor(postCount int) BadgeTier {
	return BadgeFor(postCount).Tier
}

// BadgeFor returns the tier together with its display title
func BadgeFor(postCount int) Badge {
	for _, t := range badgeThresholds {
		if postCount >= t.min {
			return Badge{Tier: t.tier, Title: fmt.Sprintf("%s (%d posts)", t.label, postCount)}
		}
	}
	return Badge{Tier: BadgeNew, Title: fmt.Sprintf("New Member (%d posts)", postCount)}
}
