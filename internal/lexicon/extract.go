package lexicon

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Extractor finds the canonical teams referenced by a piece of text.
// Results are display names, qualified when applicable, sorted and unique.
type Extractor interface {
	Extract(text string) []string
}

// Strategy names accepted by NewExtractor.
const (
	StrategySubstring = "substring"
	StrategyPairing   = "pairing"
)

// NewExtractor returns the extractor for a strategy name. Unknown names
// fall back to the pairing extractor.
func NewExtractor(strategy string, lex *Lexicon) Extractor {
	if strategy == StrategySubstring {
		return &SubstringExtractor{Lexicon: lex}
	}
	return &PairingExtractor{Lexicon: lex}
}

// SubstringExtractor reports every team with any variation appearing
// anywhere in the text.
type SubstringExtractor struct {
	Lexicon *Lexicon
}

func (e *SubstringExtractor) Extract(text string) []string {
	lower := strings.ToLower(text)
	var keys []string
	for _, key := range e.Lexicon.keys {
		for _, v := range e.Lexicon.variations(key) {
			if strings.Contains(lower, v) {
				keys = append(keys, key)
				break
			}
		}
	}
	return qualify(keys, DetectQualifier(text))
}

// PairingExtractor only trusts an explicit "A vs B", "A v B" or "A | B"
// pairing. Separators are scanned left to right and the first pairing is
// used. Each side is the team touching the separator: the left side must
// end with a team (optionally followed by its qualifier) and the right side
// must start with one. A "|" only pairs when both sides are teams, since it
// also divides ordinary title segments.
type PairingExtractor struct {
	Lexicon *Lexicon
}

var (
	pairSeparator = regexp.MustCompile(`(?i)\s+vs\.?\s+|\s+v\.?\s+|\s*\|\s*`)
	// trailingQualifier is the qualifier that may sit between a left-hand
	// team and the separator, as in "India Women vs ...".
	trailingQualifier = regexp.MustCompile(`(?i)\s+(?:women(?:'|’)?s?|u-?19|under[- ]?19|a)$`)
)

func (e *PairingExtractor) Extract(text string) []string {
	keys := e.findPairing(text)
	if len(keys) == 0 {
		return []string{}
	}
	return qualify(keys, DetectQualifier(text))
}

// findPairing returns the teams of the first pairing in text.
func (e *PairingExtractor) findPairing(text string) []string {
	for _, loc := range pairSeparator.FindAllStringIndex(text, -1) {
		left, right := text[:loc[0]], text[loc[1]:]
		pipe := strings.Contains(text[loc[0]:loc[1]], "|")

		leftKey, hasLeft := e.endingTeam(left)
		rightKey, hasRight := e.leadingTeam(right)

		switch {
		case hasLeft && hasRight:
			return []string{leftKey, rightKey}
		case pipe:
			continue
		case hasLeft:
			return []string{leftKey}
		case hasRight:
			return []string{rightKey}
		}
	}
	return nil
}

// leadingTeam returns the longest team the side starts with.
func (e *PairingExtractor) leadingTeam(side string) (string, bool) {
	side = strings.TrimLeftFunc(side, unicode.IsSpace)
	best, bestLen := "", 0
	for _, key := range e.Lexicon.keys {
		loc := e.Lexicon.patterns[key].FindStringIndex(side)
		if loc != nil && loc[0] == 0 && loc[1] > bestLen {
			best, bestLen = key, loc[1]
		}
	}
	return best, bestLen > 0
}

// endingTeam returns the longest team the side ends with.
func (e *PairingExtractor) endingTeam(side string) (string, bool) {
	side = strings.TrimRightFunc(side, unicode.IsSpace)
	if loc := trailingQualifier.FindStringIndex(side); loc != nil {
		side = side[:loc[0]]
	}
	best, bestLen := "", 0
	for _, key := range e.Lexicon.keys {
		for _, loc := range e.Lexicon.patterns[key].FindAllStringIndex(side, -1) {
			if loc[1] == len(side) && loc[1]-loc[0] > bestLen {
				best, bestLen = key, loc[1]-loc[0]
			}
		}
	}
	return best, bestLen > 0
}

func qualify(keys []string, q Qualifier) []string {
	seen := make(map[string]bool, len(keys))
	teams := make([]string, 0, len(keys))
	for _, key := range keys {
		name := FormatName(key) + string(q)
		if seen[name] {
			continue
		}
		seen[name] = true
		teams = append(teams, name)
	}
	sort.Strings(teams)
	return teams
}
