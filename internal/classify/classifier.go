// Package classify decides the category and teams of a video from its text.
//
// Classification is a strict-priority cascade evaluated per call:
//
//  1. teams are extracted from title + description
//  2. live streams go to "other"
//  3. per-source rules pick the text used for categorization
//  4. highlights go to "matches" ("classic" or "domestic" when indicated)
//  5. interviews and press conferences go to "interviews"
//  6. archive content goes to "classic"
//  7. remaining match-like titles go to "matches"
//  8. everything else is "other"
//
// Sources flagged StrictHighlights (the board's highlight reel) bypass the
// cascade: a title either passes AcceptBoardHighlight and becomes a match
// or the video is rejected from ingestion.
package classify

import (
	"strings"

	"github.com/romangod6/cricket-highlights/internal/lexicon"
	"github.com/romangod6/cricket-highlights/internal/models"
)

// Input is the text and provenance of one video.
type Input struct {
	Title       string
	Description string
	// Source is the channel id for YouTube videos and the site label for
	// scraped ones.
	Source string
}

// Result is the outcome of classifying one video.
type Result struct {
	Category string
	Teams    []string
	// Rejected is set when a strict source rule excludes the video
	// from ingestion altogether.
	Rejected bool
}

// Classifier applies a Policy. It is safe for concurrent use.
type Classifier struct {
	policy Policy
}

// New returns a classifier for the policy. A nil extractor defaults to the
// pairing extractor over the built-in lexicon.
func New(policy Policy) *Classifier {
	if policy.Extractor == nil {
		policy.Extractor = lexicon.NewExtractor(lexicon.StrategyPairing, lexicon.Default())
	}
	if policy.Sources == nil {
		policy.Sources = map[string]SourceRule{}
	}
	return &Classifier{policy: policy}
}

// Policy returns the policy the classifier was built with.
func (c *Classifier) Policy() Policy {
	return c.policy
}

// Classify runs the cascade for one video.
func (c *Classifier) Classify(in Input) Result {
	title := strings.ToLower(in.Title)
	description := strings.ToLower(in.Description)
	combined := strings.TrimSpace(title + " " + description)

	teams := c.policy.Extractor.Extract(strings.TrimSpace(in.Title + " " + in.Description))
	rule := c.policy.Sources[in.Source]

	if rule.StrictHighlights && c.policy.StrictBoardHighlights {
		if c.AcceptBoardHighlight(in.Title) {
			return Result{Category: models.CategoryMatches, Teams: teams}
		}
		return Result{Category: models.CategoryOther, Teams: teams, Rejected: true}
	}

	if liveMarker.MatchString(title) {
		return Result{Category: models.CategoryOther, Teams: teams}
	}

	text := combined
	if rule.TitleOnly {
		text = title
	}

	isHighlight := highlightPhrases.in(title) || dayHighlights.MatchString(title)
	if !rule.TitleOnly && generalHighlightPhrases.in(title) {
		isHighlight = true
	}
	if isHighlight {
		switch {
		case classicHighlightPhrases.in(text):
			return Result{Category: models.CategoryClassic, Teams: teams}
		case rule.Domestic || (!rule.TitleOnly && domesticPhrases.in(combined)):
			return Result{Category: models.CategoryDomestic, Teams: teams}
		default:
			return Result{Category: models.CategoryMatches, Teams: teams}
		}
	}

	if interviewPhrases.in(text) {
		return Result{Category: models.CategoryInterviews, Teams: teams}
	}

	if classicPhrases.in(text) {
		return Result{Category: models.CategoryClassic, Teams: teams}
	}

	if matchPhrases.in(text) {
		if rule.Domestic {
			return Result{Category: models.CategoryDomestic, Teams: teams}
		}
		return Result{Category: models.CategoryMatches, Teams: teams}
	}

	return Result{Category: models.CategoryOther, Teams: teams}
}

// AcceptBoardHighlight reports whether a board highlight title is a genuine
// match highlight: it must say "highlights", carry no denylisted non-match
// phrase and name a match type.
func (c *Classifier) AcceptBoardHighlight(title string) bool {
	t := strings.ToLower(title)
	if !strings.Contains(t, "highlights") {
		return false
	}
	if boardDenylist.in(t) {
		return false
	}
	return boardMatchTypes.in(t) || dayHighlights.MatchString(t)
}

// IsLive reports whether a title announces a live stream.
func IsLive(title string) bool {
	return liveMarker.MatchString(strings.ToLower(title))
}
