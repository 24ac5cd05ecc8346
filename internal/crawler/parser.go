package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/romangod6/cricket-highlights/internal/models"
)

// Card attributes. The misspelt thumbnail attribute is what both sites emit.
const (
	attrVideoID   = "data-videoid"
	attrTitle     = "data-title"
	attrThumbnail = "data-thumbnile"
	attrShare     = "data-share"
	attrSlug      = "data-videoslug"
	attrDate      = "data-videodate"
	attrViews     = "data-videoview"
)

// parseVideoCard turns one a.playerpopup element into a raw video.
func parseVideoCard(s *goquery.Selection, site SiteConfig, base *url.URL) (models.RawVideo, error) {
	required := func(attr string) (string, error) {
		v, ok := s.Attr(attr)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			return "", fmt.Errorf("card is missing %s", attr)
		}
		return v, nil
	}

	id, err := required(attrVideoID)
	if err != nil {
		return models.RawVideo{}, err
	}
	rawTitle, err := required(attrTitle)
	if err != nil {
		return models.RawVideo{}, err
	}
	thumbnail, err := required(attrThumbnail)
	if err != nil {
		return models.RawVideo{}, err
	}
	date, err := required(attrDate)
	if err != nil {
		return models.RawVideo{}, err
	}

	title := cleanText(rawTitle)
	if title == "" {
		return models.RawVideo{}, fmt.Errorf("card %s has an empty title", id)
	}

	views := strings.TrimSpace(s.AttrOr(attrViews, ""))
	if views == "" {
		views = "N/A"
	}

	return models.RawVideo{
		ID:           strings.ToLower(site.Name) + "_" + id,
		ExternalURL:  externalURL(s, base),
		Title:        title,
		ThumbnailURL: thumbnail,
		Views:        views,
		Source:       site.Name,
		ChannelName:  site.Name,
		UploadDate:   date,
		Disclaimer:   site.Disclaimer,
	}, nil
}

// externalURL prefers the card's share link and falls back to the video
// slug on the listing's host.
func externalURL(s *goquery.Selection, base *url.URL) string {
	if share := strings.TrimSpace(s.AttrOr(attrShare, "")); share != "" {
		return share
	}
	slug := strings.Trim(strings.TrimSpace(s.AttrOr(attrSlug, "")), "/")
	if slug == "" {
		return ""
	}
	return (&url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/videos/" + slug}).String()
}

// cleanText reduces an attribute that may carry markup or entities to
// plain, single-spaced text.
func cleanText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(strings.Join(strings.Fields(b.String()), " "))
}
