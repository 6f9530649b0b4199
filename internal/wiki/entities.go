package wiki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/abhich05/wikiquiz/internal/models"
)

// Entity categories assigned by the classifier rules.
const (
	categoryPerson       = "person"
	categoryOrganization = "organization"
	categoryLocation     = "location"
)

// linkContext is what a classifier rule gets to look at for one internal
// link: the visible link text, the link's target label (the title
// attribute), and the text surrounding the link in its parent element.
type linkContext struct {
	text       string
	target     string
	parentText string
}

// entityRule pairs a category with a predicate. Rules are evaluated in
// order and the first match wins, so the rule order encodes precedence.
type entityRule struct {
	category string
	match    func(linkContext) bool
}

// personMarkers are fragments of surrounding text that suggest the link
// points at a person: birth/death words, an en-dash (typical of life-date
// ranges), and the biographical "was a".
var personMarkers = []string{"born", "died", "–", "was a"}

// organizationKeywords are institutional words in the visible link text.
var organizationKeywords = []string{
	"University", "Institute", "Company", "Corporation",
	"Organization", "Society", "Association",
}

// locationCategoryMarkers are geographic words in the link's target label.
var locationCategoryMarkers = []string{"Country", "City", "State", "Province"}

// commonLocations is a small gazetteer of well-known places, keyed by
// underscore-normalized label.
var commonLocations = map[string]bool{
	"United_States": true, "United_Kingdom": true, "Germany": true,
	"France": true, "Japan": true, "China": true, "India": true,
	"Russia": true, "Canada": true, "Australia": true,
	"London": true, "New_York": true, "Paris": true, "Tokyo": true,
	"Berlin": true, "Cambridge": true, "Oxford": true,
	"Princeton": true, "Harvard": true,
}

// defaultEntityRules is the ordered rule set used for classification. The
// rules are deliberately approximate pattern matches, not a semantic
// contract; swapping a rule must not require touching extraction logic.
var defaultEntityRules = []entityRule{
	{
		category: categoryPerson,
		match: func(lc linkContext) bool {
			lower := strings.ToLower(lc.parentText)
			for _, marker := range personMarkers {
				if strings.Contains(lower, marker) {
					return len(strings.Fields(lc.text)) <= 4
				}
			}
			return false
		},
	},
	{
		category: categoryOrganization,
		match: func(lc linkContext) bool {
			for _, kw := range organizationKeywords {
				if strings.Contains(lc.text, kw) {
					return true
				}
			}
			return false
		},
	},
	{
		category: categoryLocation,
		match: func(lc linkContext) bool {
			for _, marker := range locationCategoryMarkers {
				if strings.Contains(lc.target, marker) {
					return true
				}
			}
			return commonLocations[strings.ReplaceAll(lc.target, " ", "_")]
		},
	},
}

// ClassifyEntities scans the content region's internal article links in
// reading order, capped at maxLinks, and heuristically sorts them into
// people, organizations, and locations. Each category is deduplicated
// (first occurrence wins) and truncated to maxPerCategory entries.
func ClassifyEntities(content *goquery.Selection, maxLinks, maxPerCategory int) models.Entities {
	buckets := map[string][]string{}
	seen := map[string]bool{}
	scanned := 0

	content.Find(`a[href^="/wiki/"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		if scanned >= maxLinks {
			return false
		}
		scanned++

		target := link.AttrOr("title", "")
		text := strings.TrimSpace(link.Text())

		if target == "" || seen[target] || len(text) < 3 {
			return true
		}
		seen[target] = true

		lc := linkContext{
			text:       text,
			target:     target,
			parentText: link.Parent().Text(),
		}

		for _, rule := range defaultEntityRules {
			if rule.match(lc) {
				buckets[rule.category] = append(buckets[rule.category], text)
				break
			}
		}
		return true
	})

	return models.Entities{
		People:        dedupCap(buckets[categoryPerson], maxPerCategory),
		Organizations: dedupCap(buckets[categoryOrganization], maxPerCategory),
		Locations:     dedupCap(buckets[categoryLocation], maxPerCategory),
	}
}

// dedupCap removes duplicate entries keeping first occurrences, then
// truncates the list to max entries.
func dedupCap(items []string, max int) []string {
	var out []string
	seen := map[string]bool{}
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == max {
			break
		}
	}
	return out
}
