package classify

import (
	"regexp"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// phraseSet answers "does the text contain any of these phrases" in a single
// pass. Phrases and text are compared lower-cased.
type phraseSet struct {
	matcher *ahocorasick.Matcher
}

func newPhraseSet(phrases ...string) phraseSet {
	normalized := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(p); p != "" {
			normalized = append(normalized, p)
		}
	}
	return phraseSet{matcher: ahocorasick.NewStringMatcher(normalized)}
}

// in expects already lower-cased text.
func (p phraseSet) in(text string) bool {
	return p.matcher.Contains([]byte(text))
}

var (
	highlightPhrases = newPhraseSet(
		"highlights", "match highlights", "innings highlights",
		"batting highlights", "bowling highlights",
	)
	// Only the general path treats these as highlight markers.
	generalHighlightPhrases = newPhraseSet(
		" vs ", " v ", "match summary", "key moments", "match report",
	)
	dayHighlights = regexp.MustCompile(`day\s*\d+\s+highlights`)

	classicHighlightPhrases = newPhraseSet("classic", "archive", "throwback", "on this day")

	domesticPhrases = newPhraseSet(
		"ranji", "county", "sheffield shield", "psl", "ipl", "big bash", "bbl",
		"vitality blast", "syed mushtaq ali", "vijay hazare", "quaid-e-azam",
		"super smash", "the hundred",
	)

	interviewPhrases = newPhraseSet(
		"interview", "press conference", "press", "conference",
		"speaks to media", "media session", "presser", "media briefing",
		"post match press", "pre match press", "post-match press", "pre-match press",
	)

	classicPhrases = newPhraseSet(
		"classic", "archive", "throwback", "on this day",
		"vintage", "retro", "from the vault", "memories",
	)

	matchPhrases = newPhraseSet(
		" vs ", " v ", "test match", "t20", "odi",
		"final", "semi final", "quarter final",
	)

	// liveMarker only anchors the start so "livestream" counts and "delivery" does not.
	liveMarker = regexp.MustCompile(`\blive`)

	shortTags = newPhraseSet("#shorts", "#short", "#ytshorts")
)

var (
	boardDenylist = newPhraseSet(
		"practice highlights", "training highlights", "tour highlights",
		"ceremony highlights", "press highlights", "interview highlights",
		"preview highlights", "behind the scenes highlights", "behind-the-scenes highlights",
		"trophy highlights", "award highlights", "awards highlights", "fan highlights",
		"journey highlights", "story highlights", "memories highlights", "reaction highlights",
	)
	boardMatchTypes = newPhraseSet(
		"match highlights", "innings highlights",
		"test highlights", "odi highlights", "t20 highlights", "t20i highlights",
	)
)
