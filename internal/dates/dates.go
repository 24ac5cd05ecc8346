// Package dates normalizes the upload date formats the sources emit into
// comparable instants.
//
// Recognized shapes, checked in this order:
//   - "3rd Nov, 2024" (scraped sites)
//   - "2022-07-28T21:41:27Z" (YouTube API; only the date part is used)
//   - "2022-07-28"
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

var (
	ordinalDay = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?$`)
	yearToken  = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)
)

// Parse returns the instant for an upload date string. It never fails:
// anything it cannot read comes back as the zero time, which sorts before
// every real date.
func Parse(s string) time.Time {
	t, _ := ParseOK(s)
	return t
}

// ParseOK is Parse with an indication of whether the string was understood.
func ParseOK(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	var (
		t   time.Time
		err error
	)
	switch {
	case strings.Contains(s, ","):
		return parseOrdinal(s)
	case strings.Contains(s, "T"):
		t, err = time.Parse(isoDate, s[:strings.Index(s, "T")])
	default:
		t, err = time.Parse(isoDate, s)
	}
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// parseOrdinal reads "<day><suffix> <Mon>, <YYYY>".
func parseOrdinal(s string) (time.Time, bool) {
	parts := strings.SplitN(s, ",", 2)
	dayMonth := strings.Fields(parts[0])
	if len(dayMonth) < 2 {
		return time.Time{}, false
	}

	m := ordinalDay.FindStringSubmatch(strings.ToLower(dayMonth[0]))
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])

	month := dayMonth[1]
	if len(month) < 3 {
		return time.Time{}, false
	}
	month = strings.ToUpper(month[:1]) + strings.ToLower(month[1:3])

	year := strings.TrimSpace(parts[1])
	t, err := time.Parse("2 Jan 2006", strconv.Itoa(day)+" "+month+" "+year)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Compare orders two upload date strings by their parsed instants.
// It returns -1, 0 or +1.
func Compare(a, b string) int {
	return Parse(a).Compare(Parse(b))
}

// TitleYears returns every four digit year mentioned in a title.
func TitleYears(title string) []int {
	matches := yearToken.FindAllString(title, -1)
	years := make([]int, 0, len(matches))
	for _, m := range matches {
		y, err := strconv.Atoi(m)
		if err == nil {
			years = append(years, y)
		}
	}
	return years
}
