package classify

import (
	"github.com/romangod6/cricket-highlights/internal/dates"
	"github.com/romangod6/cricket-highlights/internal/lexicon"
	"github.com/romangod6/cricket-highlights/internal/models"
)

// PolicyVersion identifies the rule set implemented by Classify. Bump it
// whenever a change would move existing videos between categories.
const PolicyVersion = "3"

// SourceRule tweaks the cascade for one source.
type SourceRule struct {
	// TitleOnly categorizes on the title alone; teams still come from
	// title + description.
	TitleOnly bool `mapstructure:"title_only"`
	// Domestic marks a domestic league channel.
	Domestic bool `mapstructure:"domestic"`
	// StrictHighlights applies the board highlight filter.
	StrictHighlights bool `mapstructure:"strict_highlights"`
}

// Policy is one complete, versioned classification rule set.
type Policy struct {
	Version   string
	Sources   map[string]SourceRule
	Extractor lexicon.Extractor
	// StrictBoardHighlights enables the StrictHighlights source rule. When
	// off, those sources go through the general cascade.
	StrictBoardHighlights bool
	// ClassicCutoffYear forces "classic" on videos from before that year.
	// Zero disables the override.
	ClassicCutoffYear int
}

// Known channel ids.
const (
	ChannelCricketAustralia = "UCkBY0aHJP9BwjZLDYxAQrKg"
	ChannelEngland          = "UCz1D0n02BR3t51KuBOPmfTQ"
	ChannelPakistan         = "UCiWrjBhlICf_L_RK5y6Vrxw"
	ChannelWestIndies       = "UC2MHTOXktfTK26aDKyQs3cQ"
	ChannelSriLanka         = "UCJA-NQ4MtcRIog66wziD8fA"
	ChannelPSL              = "UCpNzXJ5jpcJojC5mHQvGA8w"
)

// DefaultSources returns the per-source rules for the known sources.
func DefaultSources() map[string]SourceRule {
	return map[string]SourceRule{
		ChannelPakistan:   {TitleOnly: true},
		ChannelEngland:    {TitleOnly: true},
		ChannelWestIndies: {TitleOnly: true},
		ChannelPSL:        {Domestic: true},
		models.SourceIPL:  {Domestic: true},
		models.SourceBCCI: {StrictHighlights: true},
	}
}

// DefaultPolicy is the current production rule set: strict pairing team
// extraction, the strict board rule and no classic cutoff.
func DefaultPolicy() Policy {
	return Policy{
		Version:               PolicyVersion,
		Sources:               DefaultSources(),
		Extractor:             lexicon.NewExtractor(lexicon.StrategyPairing, lexicon.Default()),
		StrictBoardHighlights: true,
	}
}

// ApplyClassicCutoff moves a video to "classic" when its title names a year
// before the cutoff or it was uploaded before the cutoff. Live streams keep
// their category. It reports whether the category changed.
func (c *Classifier) ApplyClassicCutoff(v *models.Video) bool {
	cutoff := c.policy.ClassicCutoffYear
	if cutoff <= 0 || v.Category == models.CategoryClassic || IsLive(v.Title) {
		return false
	}

	old := false
	for _, year := range dates.TitleYears(v.Title) {
		if year < cutoff {
			old = true
			break
		}
	}
	if !old {
		if uploaded, ok := dates.ParseOK(v.UploadDate); ok && uploaded.Year() < cutoff {
			old = true
		}
	}
	if !old {
		return false
	}

	v.Category = models.CategoryClassic
	return true
}
