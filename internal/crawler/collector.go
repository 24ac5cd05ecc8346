package crawler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/romangod6/cricket-highlights/internal/models"
)

const (
	IPLHighlightsURL = "https://www.iplt20.com/videos/highlights"
	IPLDisclaimer    = "IPL videos are available on the official IPLT20.com website. Click to watch on the official platform."

	BCCIHighlightsURL = "https://www.bcci.tv/videos/highlights"
	BCCIDisclaimer    = "BCCI videos are available on the official BCCI.tv website. Click to watch on the official platform."

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// videoSelector matches the video cards on both sites.
const videoSelector = "a.playerpopup"

type SiteConfig struct {
	// Name is the provenance label, e.g. "IPL".
	Name           string
	URL            string
	Disclaimer     string
	UserAgent      string
	AllowedDomains []string
	RequestTimeout time.Duration
	Delay          time.Duration
}

// IPLSite and BCCISite are the production site configurations.
func IPLSite() SiteConfig {
	return SiteConfig{
		Name:           models.SourceIPL,
		URL:            IPLHighlightsURL,
		Disclaimer:     IPLDisclaimer,
		UserAgent:      DefaultUserAgent,
		AllowedDomains: []string{"www.iplt20.com", "iplt20.com"},
		RequestTimeout: 30 * time.Second,
	}
}

func BCCISite() SiteConfig {
	return SiteConfig{
		Name:           models.SourceBCCI,
		URL:            BCCIHighlightsURL,
		Disclaimer:     BCCIDisclaimer,
		UserAgent:      DefaultUserAgent,
		AllowedDomains: []string{"www.bcci.tv", "bcci.tv"},
		RequestTimeout: 30 * time.Second,
	}
}

// Scraper reads the highlight listing of one team website.
type Scraper struct {
	site   SiteConfig
	logger *zap.Logger
}

func NewScraper(site SiteConfig, logger *zap.Logger) *Scraper {
	if site.UserAgent == "" {
		site.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		site:   site,
		logger: logger.With(zap.String("source", site.Name)),
	}
}

func (s *Scraper) Name() string {
	return s.site.Name
}

// newCollector builds a fresh collector per fetch so the listing page is
// visited again on every run.
func (s *Scraper) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(s.site.UserAgent),
		colly.MaxDepth(1),
		colly.AllowedDomains(s.site.AllowedDomains...),
	)
	if s.site.RequestTimeout > 0 {
		c.SetRequestTimeout(s.site.RequestTimeout)
	}

	// Set reasonable limits
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       s.site.Delay,
	})

	return c
}

// Fetch scrapes the listing page. Cards that lack a required attribute
// are logged and skipped.
func (s *Scraper) Fetch(ctx context.Context) ([]models.RawVideo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(s.site.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing %s url: %w", s.site.Name, err)
	}

	c := s.newCollector()
	var videos []models.RawVideo
	found := 0

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})

	c.OnHTML(videoSelector, func(e *colly.HTMLElement) {
		found++
		video, err := parseVideoCard(e.DOM, s.site, base)
		if err != nil {
			s.logger.Warn("skipping video card", zap.Error(err))
			return
		}
		videos = append(videos, video)
	})

	if err := c.Visit(s.site.URL); err != nil {
		return nil, fmt.Errorf("fetching %s page: %w", s.site.Name, err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("scraped highlight listing",
		zap.Int("cards", found),
		zap.Int("videos", len(videos)))

	return videos, nil
}
