// Package newsfilter decides which news-feed items are actionable
// hazards for the monitored area. An item must be concerning (hazard
// vocabulary), local (configured place keywords), recent, and not
// retrospective journalism; survivors are deduplicated by title prefix
// and capped so one busy feed cannot dominate a report.
package newsfilter

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ospreycove/hazmon/internal/domain"
)

// concernTerms is the fixed "actionable hazard" vocabulary. An item
// must contain at least one of these to surface.
var concernTerms = []string{
	"evacuat",
	"active shooter",
	"shooting",
	"explosion",
	"fire",
	"wildfire",
	"flood",
	"earthquake",
	"tsunami",
	"tornado",
	"hazmat",
	"chemical spill",
	"gas leak",
	"lockdown",
	"shelter in place",
	"power outage",
	"water main break",
	"boil water",
	"landslide",
	"avalanche",
	"amber alert",
	"road closure",
	"derailment",
	"emergency",
}

// historicalTerms mark retrospective coverage that reuses hazard
// vocabulary without describing a live event.
var historicalTerms = []string{
	"anniversary",
	"years ago",
	"year ago",
	"last year",
	"verdict",
	"sentenced",
	"sentencing",
	"pleads guilty",
	"pleaded guilty",
	"convicted",
	"charged with",
	"lawsuit",
	"study finds",
	"study shows",
	"report finds",
	"looking back",
	"retrospective",
	"remembered",
	"memorial",
	"documentary",
}

const dedupPrefixLen = 50

// Filter applies the hazard predicates to parsed feed items.
type Filter struct {
	locationKeywords []string
	maxAge           time.Duration
	maxItems         int
	clock            clockwork.Clock
}

// New builds a filter for the given location keywords. maxAge bounds
// item recency (24h covers the "recent" predicate); maxItems caps the
// surfaced count.
func New(locationKeywords []string, maxAge time.Duration, maxItems int, clock clockwork.Clock) *Filter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	lowered := make([]string, 0, len(locationKeywords))
	for _, kw := range locationKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &Filter{
		locationKeywords: lowered,
		maxAge:           maxAge,
		maxItems:         maxItems,
		clock:            clock,
	}
}

// Apply returns the items that pass every predicate, deduplicated and
// capped, preserving input order (first occurrence wins across feeds).
func (f *Filter) Apply(items []domain.FeedItem) []domain.FeedItem {
	now := f.clock.Now()
	seen := make(map[string]bool)
	var out []domain.FeedItem

	for _, item := range items {
		if !f.keep(item, now) {
			continue
		}
		key := dedupKey(item.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if len(out) >= f.maxItems {
			break
		}
	}
	return out
}

func (f *Filter) keep(item domain.FeedItem, now time.Time) bool {
	text := strings.ToLower(item.Title + " " + item.Description)
	return isConcerning(text) &&
		f.isLocal(text) &&
		f.isRecent(item.PublishedAt, now) &&
		!isHistorical(text)
}

func isConcerning(text string) bool {
	return containsAny(text, concernTerms)
}

func (f *Filter) isLocal(text string) bool {
	return containsAny(text, f.locationKeywords)
}

func (f *Filter) isRecent(published, now time.Time) bool {
	if published.IsZero() {
		return false
	}
	age := now.Sub(published)
	return age >= 0 && age <= f.maxAge
}

func isHistorical(text string) bool {
	return containsAny(text, historicalTerms)
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// dedupKey normalizes a title to its case-folded first 50 characters so
// near-duplicates across feeds collapse to one item.
func dedupKey(title string) string {
	key := strings.ToLower(strings.TrimSpace(title))
	runes := []rune(key)
	if len(runes) > dedupPrefixLen {
		runes = runes[:dedupPrefixLen]
	}
	return string(runes)
}
