package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romangod6/cricket-highlights/internal/lexicon"
	"github.com/romangod6/cricket-highlights/internal/models"
)

func TestClassify(t *testing.T) {
	c := New(DefaultPolicy())

	tests := []struct {
		name         string
		in           Input
		wantCategory string
		wantTeams    []string
	}{
		{
			name:         "test match highlights",
			in:           Input{Title: "IND vs AUS 3rd Test Day 4 Highlights", Source: ChannelCricketAustralia},
			wantCategory: models.CategoryMatches,
			wantTeams:    []string{"Australia", "India"},
		},
		{
			name:         "press conference",
			in:           Input{Title: "BCCI Press Conference: Coach speaks to media"},
			wantCategory: models.CategoryInterviews,
			wantTeams:    []string{},
		},
		{
			name:         "live stream",
			in:           Input{Title: "LIVE: Pakistan vs England 1st Test Day 1 Highlights"},
			wantCategory: models.CategoryOther,
			wantTeams:    []string{"England", "Pakistan"},
		},
		{
			name:         "livestream",
			in:           Input{Title: "India vs England Livestream"},
			wantCategory: models.CategoryOther,
			wantTeams:    []string{"England", "India"},
		},
		{
			name:         "livestreaming",
			in:           Input{Title: "Livestreaming now: Australia v Pakistan 2nd ODI"},
			wantCategory: models.CategoryOther,
			wantTeams:    []string{"Australia", "Pakistan"},
		},
		{
			name:         "live inside a word",
			in:           Input{Title: "Delivery of the day highlights"},
			wantCategory: models.CategoryMatches,
			wantTeams:    []string{},
		},
		{
			name:         "olive",
			in:           Input{Title: "Olive Park ground tour highlights"},
			wantCategory: models.CategoryMatches,
			wantTeams:    []string{},
		},
		{
			name:         "classic highlights",
			in:           Input{Title: "On This Day: India vs Pakistan final highlights"},
			wantCategory: models.CategoryClassic,
			wantTeams:    []string{"India", "Pakistan"},
		},
		{
			name:         "domestic highlights",
			in:           Input{Title: "Ranji Trophy Final Highlights | Mumbai v Vidarbha"},
			wantCategory: models.CategoryDomestic,
			wantTeams:    []string{},
		},
		{
			name:         "domestic channel",
			in:           Input{Title: "Lahore Qalandars vs Karachi Kings | Match 5 Highlights", Source: ChannelPSL},
			wantCategory: models.CategoryDomestic,
			wantTeams:    []string{"Karachi Kings", "Lahore Qalandars"},
		},
		{
			name:         "post match presser",
			in:           Input{Title: "Rohit Sharma post-match press conference"},
			wantCategory: models.CategoryInterviews,
			wantTeams:    []string{},
		},
		{
			name:         "archive",
			in:           Input{Title: "From the Vault: Lara 400"},
			wantCategory: models.CategoryClassic,
			wantTeams:    []string{},
		},
		{
			name:         "secondary match indicator",
			in:           Input{Title: "India tour of Australia: 1st ODI preview"},
			wantCategory: models.CategoryMatches,
			wantTeams:    []string{},
		},
		{
			name:         "description consulted on general path",
			in:           Input{Title: "Babar Azam in the nets", Description: "Full press conference below"},
			wantCategory: models.CategoryInterviews,
			wantTeams:    []string{},
		},
		{
			name:         "title only channel ignores description",
			in:           Input{Title: "Babar Azam in the nets", Description: "Full press conference below", Source: ChannelPakistan},
			wantCategory: models.CategoryOther,
			wantTeams:    []string{},
		},
		{
			name:         "title only channel still extracts teams from description",
			in:           Input{Title: "Match Highlights", Description: "England v Pakistan, 2nd Test", Source: ChannelEngland},
			wantCategory: models.CategoryMatches,
			wantTeams:    []string{"England", "Pakistan"},
		},
		{
			name:         "default",
			in:           Input{Title: "Behind the scenes with the squad"},
			wantCategory: models.CategoryOther,
			wantTeams:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.in)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.wantTeams, got.Teams)
			assert.False(t, got.Rejected)
		})
	}
}

func TestClassify_BoardSource(t *testing.T) {
	c := New(DefaultPolicy())

	got := c.Classify(Input{Title: "Team Practice Highlights", Source: models.SourceBCCI})
	assert.True(t, got.Rejected)

	got = c.Classify(Input{Title: "India vs England 2nd Test Day 3 Highlights", Source: models.SourceBCCI})
	assert.False(t, got.Rejected)
	assert.Equal(t, models.CategoryMatches, got.Category)
	assert.Equal(t, []string{"England", "India"}, got.Teams)

	// With the strict rule off the board goes through the general cascade.
	policy := DefaultPolicy()
	policy.StrictBoardHighlights = false
	lenient := New(policy)

	got = lenient.Classify(Input{Title: "Team Practice Highlights", Source: models.SourceBCCI})
	assert.False(t, got.Rejected)
	assert.Equal(t, models.CategoryMatches, got.Category)
}

func TestAcceptBoardHighlight(t *testing.T) {
	c := New(DefaultPolicy())

	tests := []struct {
		title string
		want  bool
	}{
		{"India vs England 2nd Test Day 3 Highlights", true},
		{"Match Highlights | India vs Bangladesh 1st T20I", true},
		{"1st Innings Highlights: India vs Australia", true},
		{"IND vs SA T20I Highlights", true},
		{"Team Practice Highlights", false},
		{"Trophy Highlights: India lift the cup", false},
		{"Behind the scenes highlights from Day 2 highlights", false},
		{"Award Ceremony Highlights", false},
		{"India vs England 2nd Test", false},
		{"Celebration Highlights", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, c.AcceptBoardHighlight(tt.title))
		})
	}
}

func TestClassify_SubstringStrategy(t *testing.T) {
	policy := DefaultPolicy()
	policy.Extractor = lexicon.NewExtractor(lexicon.StrategySubstring, lexicon.Default())
	c := New(policy)

	got := c.Classify(Input{Title: "Windies celebrate series win"})
	assert.Contains(t, got.Teams, "West Indies")
}

func TestNew_Defaults(t *testing.T) {
	c := New(Policy{})
	require.NotNil(t, c.Policy().Extractor)

	got := c.Classify(Input{Title: "IND vs AUS Highlights"})
	assert.Equal(t, []string{"Australia", "India"}, got.Teams)
}

func TestIsShort(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		title    string
		want     bool
	}{
		{"45 seconds", "PT45S", "Great catch", true},
		{"exactly a minute", "PT60S", "Great catch", true},
		{"one minute", "PT1M", "Great catch", true},
		{"just over a minute", "PT1M1S", "Great catch", false},
		{"long", "PT12M30S", "Match highlights", false},
		{"long with shorts tag", "PT10M", "Great catch #Shorts", true},
		{"ytshorts tag", "PT5M", "What a yorker #ytshorts", true},
		{"unparseable duration", "ten minutes", "Great catch #shorts", false},
		{"no duration", "", "Great catch #short", true},
		{"no duration no tag", "", "Match highlights", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsShort(tt.duration, tt.title))
		})
	}
}

func TestApplyClassicCutoff(t *testing.T) {
	policy := DefaultPolicy()
	policy.ClassicCutoffYear = 2010
	c := New(policy)

	v := &models.Video{Title: "1983 World Cup final highlights", Category: models.CategoryMatches, UploadDate: "2023-06-25T10:00:00Z"}
	assert.True(t, c.ApplyClassicCutoff(v))
	assert.Equal(t, models.CategoryClassic, v.Category)

	v = &models.Video{Title: "Sachin 200 highlights", Category: models.CategoryMatches, UploadDate: "2008-05-01"}
	assert.True(t, c.ApplyClassicCutoff(v))
	assert.Equal(t, models.CategoryClassic, v.Category)

	v = &models.Video{Title: "LIVE: 1999 rerun", Category: models.CategoryOther, UploadDate: "2024-01-01"}
	assert.False(t, c.ApplyClassicCutoff(v))
	assert.Equal(t, models.CategoryOther, v.Category)

	v = &models.Video{Title: "IND vs AUS 2023 final", Category: models.CategoryMatches, UploadDate: "3rd Nov, 2024"}
	assert.False(t, c.ApplyClassicCutoff(v))
	assert.Equal(t, models.CategoryMatches, v.Category)

	v = &models.Video{Title: "Unknown date", Category: models.CategoryOther, UploadDate: "garbage"}
	assert.False(t, c.ApplyClassicCutoff(v))

	disabled := New(DefaultPolicy())
	v = &models.Video{Title: "1983 World Cup final", Category: models.CategoryMatches}
	assert.False(t, disabled.ApplyClassicCutoff(v))
	assert.Equal(t, models.CategoryMatches, v.Category)
}
