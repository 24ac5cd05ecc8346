// Package lexicon maps textual team references (names, abbreviations,
// nicknames) to canonical team names and extracts the teams a video is about.
package lexicon

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var defaultInternational = map[string][]string{
	"australia":    {"australia", "aussies", "aus"},
	"india":        {"india", "ind", "bcci", "team india"},
	"england":      {"england", "eng", "english"},
	"pakistan":     {"pakistan", "pak", "pcb"},
	"south africa": {"south africa", "sa", "rsa", "proteas"},
	"new zealand":  {"new zealand", "nz", "black caps", "blackcaps"},
	"west indies":  {"west indies", "wi", "windies", "caribbean"},
	"sri lanka":    {"sri lanka", "sl", "lanka"},
	"bangladesh":   {"bangladesh", "ban", "tigers"},
	"afghanistan":  {"afghanistan", "afg"},
	"zimbabwe":     {"zimbabwe", "zim"},
	"ireland":      {"ireland", "ire"},
	"netherlands":  {"netherlands", "ned"},
	"scotland":     {"scotland", "sco"},
}

var defaultDomestic = map[string][]string{
	// IPL
	"mumbai indians":              {"mumbai indians", "mi"},
	"chennai super kings":         {"chennai super kings", "csk"},
	"royal challengers bengaluru": {"royal challengers bengaluru", "royal challengers bangalore", "rcb"},
	"kolkata knight riders":       {"kolkata knight riders", "kkr"},
	"delhi capitals":              {"delhi capitals", "dc"},
	"sunrisers hyderabad":         {"sunrisers hyderabad", "srh"},
	"rajasthan royals":            {"rajasthan royals", "rr"},
	"punjab kings":                {"punjab kings", "kings xi punjab", "pbks"},
	"lucknow super giants":        {"lucknow super giants", "lsg"},
	"gujarat titans":              {"gujarat titans", "gt"},
	// PSL
	"lahore qalandars":  {"lahore qalandars", "lq"},
	"karachi kings":     {"karachi kings", "kk"},
	"islamabad united":  {"islamabad united", "isu"},
	"peshawar zalmi":    {"peshawar zalmi", "pz"},
	"quetta gladiators": {"quetta gladiators", "qg"},
	"multan sultans":    {"multan sultans", "ms"},
}

// Lexicon holds canonical team keys and their variations, split into
// international sides and domestic franchises.
type Lexicon struct {
	international map[string][]string
	domestic      map[string][]string
	keys          []string
	patterns      map[string]*regexp.Regexp
}

// Default returns the built-in lexicon.
func Default() *Lexicon {
	return New(defaultInternational, defaultDomestic)
}

// New builds a lexicon. Keys and variations are lower-cased.
func New(international, domestic map[string][]string) *Lexicon {
	l := &Lexicon{
		international: normalize(international),
		domestic:      normalize(domestic),
		patterns:      make(map[string]*regexp.Regexp),
	}

	for _, group := range []map[string][]string{l.international, l.domestic} {
		for key, variations := range group {
			if _, dup := l.patterns[key]; dup {
				continue
			}
			l.keys = append(l.keys, key)
			l.patterns[key] = wordPattern(variations)
		}
	}
	sort.Strings(l.keys)

	return l
}

func normalize(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for key, variations := range in {
		k := strings.ToLower(strings.TrimSpace(key))
		vs := make([]string, 0, len(variations)+1)
		seen := map[string]bool{}
		for _, v := range append([]string{k}, variations...) {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			vs = append(vs, v)
		}
		out[k] = vs
	}
	return out
}

// wordPattern matches any variation on word boundaries, longest first.
func wordPattern(variations []string) *regexp.Regexp {
	sorted := append([]string(nil), variations...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	quoted := make([]string, len(sorted))
	for i, v := range sorted {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Keys returns every canonical team key in sorted order.
func (l *Lexicon) Keys() []string {
	return append([]string(nil), l.keys...)
}

// variations returns the variation list of a key from either group.
func (l *Lexicon) variations(key string) []string {
	if vs, ok := l.international[key]; ok {
		return vs
	}
	return l.domestic[key]
}

// Variations returns a copy of the full key → variations mapping.
func (l *Lexicon) Variations() map[string][]string {
	out := make(map[string][]string, len(l.keys))
	for _, key := range l.keys {
		out[key] = append([]string(nil), l.variations(key)...)
	}
	return out
}

// IsInternational reports whether a (possibly qualified) display name is an international side.
func (l *Lexicon) IsInternational(name string) bool {
	_, ok := l.international[BaseKey(name)]
	return ok
}

// IsDomestic reports whether a (possibly qualified) display name is a domestic franchise.
func (l *Lexicon) IsDomestic(name string) bool {
	_, ok := l.domestic[BaseKey(name)]
	return ok
}

// FormatName turns a canonical key into its display form ("west indies" → "West Indies").
func FormatName(key string) string {
	return cases.Title(language.English).String(key)
}

// BaseKey strips any qualifier suffix from a display name and returns the lexicon key.
func BaseKey(name string) string {
	for _, q := range []Qualifier{QualifierWomen, QualifierU19, QualifierA} {
		if strings.HasSuffix(name, string(q)) {
			name = strings.TrimSuffix(name, string(q))
			break
		}
	}
	return strings.ToLower(strings.TrimSpace(name))
}
