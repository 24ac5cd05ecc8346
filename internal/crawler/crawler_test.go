package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/romangod6/cricket-highlights/internal/models"
)

const listingPage = `<!DOCTYPE html>
<html><body>
<div class="video-list">
  <a class="playerpopup" href="#"
     data-videoid="123"
     data-title="IND vs BAN 1st Test Day 4 Highlights"
     data-thumbnile="https://img.example.com/123.jpg"
     data-share="https://www.bcci.tv/videos/123/ind-vs-ban-day-4"
     data-videoslug="123/ind-vs-ban-day-4"
     data-videodate="3rd Nov, 2024"
     data-videoview="15234">watch</a>
  <a class="playerpopup" href="#"
     data-videoid="124"
     data-title="  Match   Highlights &amp; Reactions  "
     data-thumbnile="https://img.example.com/124.jpg"
     data-videoslug="/124/match-highlights/"
     data-videodate="2nd Nov, 2024">watch</a>
  <a class="playerpopup" href="#"
     data-title="no id"
     data-thumbnile="https://img.example.com/x.jpg"
     data-videodate="1st Nov, 2024">broken</a>
  <a class="other" data-videoid="999" data-title="not a card">other</a>
</div>
</body></html>`

func testSite(url string) SiteConfig {
	return SiteConfig{
		Name:       models.SourceBCCI,
		URL:        url,
		Disclaimer: BCCIDisclaimer,
	}
}

func parseCards(t *testing.T, page string, site SiteConfig) []models.RawVideo {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	base, err := url.Parse(site.URL)
	require.NoError(t, err)

	var videos []models.RawVideo
	doc.Find(videoSelector).Each(func(_ int, s *goquery.Selection) {
		if video, err := parseVideoCard(s, site, base); err == nil {
			videos = append(videos, video)
		}
	})
	return videos
}

func TestParseVideoCard(t *testing.T) {
	videos := parseCards(t, listingPage, testSite("https://www.bcci.tv/videos/highlights"))
	require.Len(t, videos, 2)

	first := videos[0]
	assert.Equal(t, "bcci_123", first.ID)
	assert.Equal(t, "IND vs BAN 1st Test Day 4 Highlights", first.Title)
	assert.Equal(t, "https://img.example.com/123.jpg", first.ThumbnailURL)
	assert.Equal(t, "https://www.bcci.tv/videos/123/ind-vs-ban-day-4", first.ExternalURL)
	assert.Equal(t, "3rd Nov, 2024", first.UploadDate)
	assert.Equal(t, "15234", first.Views)
	assert.Equal(t, models.SourceBCCI, first.Source)
	assert.Equal(t, models.SourceBCCI, first.ChannelName)
	assert.Equal(t, BCCIDisclaimer, first.Disclaimer)
	assert.Empty(t, first.Duration)

	second := videos[1]
	assert.Equal(t, "bcci_124", second.ID)
	assert.Equal(t, "Match Highlights & Reactions", second.Title)
	assert.Equal(t, "https://www.bcci.tv/videos/124/match-highlights", second.ExternalURL)
	assert.Equal(t, "N/A", second.Views)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "India vs England", cleanText("India <b>vs</b>  England"))
	assert.Equal(t, "Tom & Jerry", cleanText("Tom &amp; Jerry"))
	assert.Equal(t, "", cleanText("   "))
}

func TestScraper_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.UserAgent())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(listingPage))
	}))
	defer srv.Close()

	s := NewScraper(testSite(srv.URL+"/videos/highlights"), zap.NewNop())
	assert.Equal(t, models.SourceBCCI, s.Name())

	videos, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "bcci_123", videos[0].ID)
	assert.Equal(t, srv.URL+"/videos/124/match-highlights", videos[1].ExternalURL)

	// A second fetch visits the page again.
	videos, err = s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, videos, 2)
}

func TestScraper_FetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	s := NewScraper(testSite(srv.URL), nil)
	_, err := s.Fetch(context.Background())
	assert.Error(t, err)
}

func TestScraper_FetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScraper(testSite("http://127.0.0.1:1/never"), nil)
	_, err := s.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSites(t *testing.T) {
	assert.Equal(t, models.SourceIPL, IPLSite().Name)
	assert.Equal(t, IPLHighlightsURL, IPLSite().URL)
	assert.Equal(t, models.SourceBCCI, BCCISite().Name)
	assert.Equal(t, BCCIDisclaimer, BCCISite().Disclaimer)
}
