package news

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ospreycove/hazmon/internal/domain"
	"github.com/ospreycove/hazmon/internal/newsfilter"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rssFeed(items ...string) string {
	body := ""
	for _, it := range items {
		body += it
	}
	return `<?xml version="1.0"?><rss version="2.0"><channel><title>Local Alerts</title>` + body + `</channel></rss>`
}

func rssItemXML(title string, age time.Duration) string {
	return fmt.Sprintf(
		`<item><title>%s</title><description></description><link>https://news.example.org/a</link><pubDate>%s</pubDate></item>`,
		title, testNow.Add(-age).Format(time.RFC1123Z))
}

func newsClient(clock clockwork.Clock, feeds ...string) *Client {
	filter := newsfilter.New([]string{"seattle"}, 24*time.Hour, 5, clock)
	return NewClient(feeds, filter, testLogger(), clock)
}

func TestCheck_SurfacesFilteredItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssFeed(
			rssItemXML("Evacuation ordered in Seattle neighborhood", 90*time.Minute),
			rssItemXML("Mariners win season opener", time.Hour),
		)))
	}))
	defer srv.Close()

	clock := clockwork.NewFakeClockAt(testNow)
	result := newsClient(clock, srv.URL).Check(context.Background(), domain.Location{})

	assert.False(t, result.Clear)
	require.Len(t, result.Alerts, 1)
	item := result.Alerts[0].News
	require.NotNil(t, item)
	assert.Equal(t, "Evacuation ordered in Seattle neighborhood", item.Title)
	assert.Equal(t, 90, item.AgeMinutes)
	assert.NotEmpty(t, item.SourceDomain)
}

func TestCheck_OneFailedFeedDegradesSilently(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssFeed(rssItemXML("Flooding closes Seattle roads", time.Hour))))
	}))
	defer good.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer bad.Close()

	clock := clockwork.NewFakeClockAt(testNow)
	result := newsClient(clock, bad.URL, good.URL).Check(context.Background(), domain.Location{})

	assert.False(t, result.Clear)
	assert.Empty(t, result.Error, "partial feed failure must not surface as an adapter error")
	require.Len(t, result.Alerts, 1)
}

func TestCheck_AllFeedsFailedFailsOpen(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer bad.Close()

	clock := clockwork.NewFakeClockAt(testNow)
	result := newsClient(clock, bad.URL).Check(context.Background(), domain.Location{})

	assert.True(t, result.Clear)
	assert.NotEmpty(t, result.Error)
}

func TestCheck_DedupAcrossFeeds(t *testing.T) {
	title := "Evacuation ordered as floodwaters rise near downtown Seattle"
	a := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssFeed(rssItemXML(title, time.Hour))))
	}))
	defer a.Close()
	b := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssFeed(rssItemXML(title+"!!", 2*time.Hour))))
	}))
	defer b.Close()

	clock := clockwork.NewFakeClockAt(testNow)
	result := newsClient(clock, a.URL, b.URL).Check(context.Background(), domain.Location{})

	require.Len(t, result.Alerts, 1, "same story from two feeds must surface once")
}

func TestCheck_NoFeedsConfigured(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testNow)
	result := newsClient(clock).Check(context.Background(), domain.Location{})

	assert.True(t, result.Clear)
	assert.Empty(t, result.Error)
}

func TestParseFeed_Atom(t *testing.T) {
	doc := `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Wildfire smoke advisory for Seattle area</title>
    <summary>Air quality degrading through Friday.</summary>
    <link href="https://alerts.example.org/smoke"/>
    <published>2026-03-14T10:00:00Z</published>
  </entry>
</feed>`

	items, err := parseFeed([]byte(doc), "https://alerts.example.org/atom.xml")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Wildfire smoke advisory for Seattle area", items[0].Title)
	assert.Equal(t, "https://alerts.example.org/smoke", items[0].Link)
	assert.Equal(t, "alerts.example.org", items[0].Source)
	assert.Equal(t, time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC), items[0].PublishedAt)
}

func TestParseFeed_Unrecognized(t *testing.T) {
	_, err := parseFeed([]byte("<html><body>not a feed</body></html>"), "https://example.org")
	require.Error(t, err)
}
