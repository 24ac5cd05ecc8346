package classify

import (
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// MaxShortLength is the longest duration still treated as a short-form clip.
const MaxShortLength = 60 * time.Second

// IsShort reports whether a video is a short-form clip to exclude. The
// duration is ISO-8601 ("PT45S"). An unparseable duration never marks a
// video as short on its own; an empty one (scraped sources) leaves the
// decision to the title tags.
func IsShort(isoDuration, title string) bool {
	if isoDuration != "" {
		d, err := duration.Parse(isoDuration)
		if err != nil {
			return false
		}
		if d.ToTimeDuration() <= MaxShortLength {
			return true
		}
	}
	return shortTags.in(strings.ToLower(title))
}
