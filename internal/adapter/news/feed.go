package news

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ospreycove/hazmon/internal/domain"
)

// parseFeed decodes an RSS 2.0 or Atom document into feed items.
// Unparseable entry timestamps are left zero; the filter drops them.
func parseFeed(data []byte, feedURL string) ([]domain.FeedItem, error) {
	host := hostOf(feedURL)

	var rss rssDoc
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		items := make([]domain.FeedItem, 0, len(rss.Channel.Items))
		for _, it := range rss.Channel.Items {
			items = append(items, domain.FeedItem{
				Title:       strings.TrimSpace(it.Title),
				Description: strings.TrimSpace(it.Description),
				Link:        strings.TrimSpace(it.Link),
				Source:      host,
				PublishedAt: parseFeedTime(it.PubDate),
			})
		}
		return items, nil
	}

	var atom atomDoc
	if err := xml.Unmarshal(data, &atom); err == nil && len(atom.Entries) > 0 {
		items := make([]domain.FeedItem, 0, len(atom.Entries))
		for _, e := range atom.Entries {
			published := e.Published
			if published == "" {
				published = e.Updated
			}
			items = append(items, domain.FeedItem{
				Title:       strings.TrimSpace(e.Title),
				Description: strings.TrimSpace(e.Summary),
				Link:        e.Link.Href,
				Source:      host,
				PublishedAt: parseFeedTime(published),
			})
		}
		return items, nil
	}

	return nil, fmt.Errorf("unrecognized feed format from %s", host)
}

// feedTimeFormats covers the date conventions seen across RSS and Atom
// publishers.
var feedTimeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2006-01-02T15:04:05Z",
}

func parseFeedTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, format := range feedTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func hostOf(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return u.Host
}

// RSS 2.0 document shape.

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
}

// Atom document shape.

type atomDoc struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string   `xml:"title"`
	Summary   string   `xml:"summary"`
	Link      atomLink `xml:"link"`
	Published string   `xml:"published"`
	Updated   string   `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}
