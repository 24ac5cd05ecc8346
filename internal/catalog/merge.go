// Package catalog merges freshly fetched videos into the persisted catalog
// and derives the per-category documents and team statistics from it.
package catalog

import (
	"sort"

	"github.com/romangod6/cricket-highlights/internal/dates"
	"github.com/romangod6/cricket-highlights/internal/models"
)

type mergeOptions struct {
	reclassify func(*models.Video)
}

// MergeOption configures Merge.
type MergeOption func(*mergeOptions)

// WithReclassify re-derives the classification of existing records whose
// category is not a recognized value.
func WithReclassify(fn func(*models.Video)) MergeOption {
	return func(o *mergeOptions) {
		o.reclassify = fn
	}
}

// Merge combines the existing catalog with incoming videos.
//
// Scraped records are matched on id and external URL and the first one
// seen wins. API records are matched on id only and the incoming one
// replaces the stored one. The result is unique by id and sorted newest
// first with a stable sort, so merging the same inputs twice gives the same
// output and Merge(c, nil) returns a sorted c unchanged.
func Merge(existing, incoming []models.Video, opts ...MergeOption) []models.Video {
	var o mergeOptions
	for _, opt := range opts {
		opt(&o)
	}

	idx := newIndex(len(existing) + len(incoming))

	for _, v := range existing {
		if o.reclassify != nil && !models.IsKnownCategory(v.Category) {
			o.reclassify(&v)
		}
		idx.put(v)
	}

	for _, v := range incoming {
		if v.IsScraped() {
			if idx.hasURL(v.ExternalURL) || idx.hasID(v.ID) {
				continue
			}
		}
		idx.put(v)
	}

	merged := uniqueByID(idx.videos)
	SortByDate(merged)
	return merged
}

// SortByDate orders videos newest first. Unparseable dates sort last; ties
// keep their relative order.
func SortByDate(videos []models.Video) {
	parsed := make(map[string]int64, len(videos))
	for _, v := range videos {
		if _, ok := parsed[v.UploadDate]; !ok {
			t := dates.Parse(v.UploadDate)
			if t.IsZero() {
				parsed[v.UploadDate] = minUnix
			} else {
				parsed[v.UploadDate] = t.Unix()
			}
		}
	}
	sort.SliceStable(videos, func(i, j int) bool {
		return parsed[videos[i].UploadDate] > parsed[videos[j].UploadDate]
	})
}

// minUnix ranks the zero time below every parseable date.
const minUnix = -1 << 62

// index keeps videos in insertion order with lookups by id and, for scraped
// records, by external URL.
type index struct {
	videos []models.Video
	byID   map[string]int
	byURL  map[string]int
}

func newIndex(capacity int) *index {
	return &index{
		videos: make([]models.Video, 0, capacity),
		byID:   make(map[string]int, capacity),
		byURL:  make(map[string]int),
	}
}

func (x *index) hasID(id string) bool {
	_, ok := x.byID[id]
	return ok
}

func (x *index) hasURL(url string) bool {
	if url == "" {
		return false
	}
	_, ok := x.byURL[url]
	return ok
}

// put inserts v, replacing in place any record with the same id.
func (x *index) put(v models.Video) {
	pos, ok := x.byID[v.ID]
	if ok {
		x.videos[pos] = v
	} else {
		pos = len(x.videos)
		x.videos = append(x.videos, v)
		x.byID[v.ID] = pos
	}
	if v.IsScraped() && v.ExternalURL != "" {
		x.byURL[v.ExternalURL] = pos
	}
}

func uniqueByID(videos []models.Video) []models.Video {
	seen := make(map[string]bool, len(videos))
	out := videos[:0]
	for _, v := range videos {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out
}
