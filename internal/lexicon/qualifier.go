package lexicon

import "regexp"

// Qualifier marks a non-senior-men's variant of a team.
type Qualifier string

const (
	QualifierNone  Qualifier = ""
	QualifierWomen Qualifier = " Women"
	QualifierU19   Qualifier = " U19"
	QualifierA     Qualifier = " A"
)

var (
	womenMarkers = regexp.MustCompile(`(?i)\bwomen(?:'|’)?s?\b|\bladies\b|\bwpl\b|\bwbbl\b`)
	u19Markers   = regexp.MustCompile(`(?i)\bu-?19s?\b|\bunder[- ]?19s?\b`)
	aTeamMarkers = regexp.MustCompile(`(?i)\ba[- ](?:team|side)\b|\b\w+ a\s+(?:vs\.?|v)\s|\s(?:vs\.?|v)\s+\w+(?:\s\w+)?\sa(?:\s*[|:,(-]|\s*$)`)
)

// DetectQualifier returns the qualifier implied by the text. Women's markers
// win over U19 markers, which win over A-team markers.
func DetectQualifier(text string) Qualifier {
	switch {
	case womenMarkers.MatchString(text):
		return QualifierWomen
	case u19Markers.MatchString(text):
		return QualifierU19
	case aTeamMarkers.MatchString(text):
		return QualifierA
	default:
		return QualifierNone
	}
}
