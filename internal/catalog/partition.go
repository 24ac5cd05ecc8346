package catalog

import (
	"sort"

	"github.com/romangod6/cricket-highlights/internal/dates"
	"github.com/romangod6/cricket-highlights/internal/lexicon"
	"github.com/romangod6/cricket-highlights/internal/models"
)

// Partition splits a sorted catalog by category. Every known category is
// present in the result, empty ones included, and each partition keeps the
// catalog's order.
func Partition(videos []models.Video) map[string][]models.Video {
	parts := make(map[string][]models.Video, len(models.Categories))
	for _, c := range models.Categories {
		parts[c] = []models.Video{}
	}
	for _, v := range videos {
		if _, ok := parts[v.Category]; ok {
			parts[v.Category] = append(parts[v.Category], v)
		}
	}
	return parts
}

// AggregateTeamStats projects the catalog onto per-team statistics. Teams
// are bucketed by lexicon membership; names the lexicon does not know are
// left out. Each bucket is sorted by video count, then name.
func AggregateTeamStats(videos []models.Video, lex *lexicon.Lexicon) models.TeamsDocument {
	stats := make(map[string]*models.TeamStats)

	for _, v := range videos {
		for _, team := range v.Teams {
			s, ok := stats[team]
			if !ok {
				s = &models.TeamStats{Name: team}
				stats[team] = s
			}

			s.VideoCount++
			switch v.Category {
			case models.CategoryMatches:
				s.Matches++
			case models.CategoryDomestic:
				s.DomesticMatches++
			}

			if s.LatestVideo == nil || dates.Compare(v.UploadDate, s.LatestVideo.UploadDate) > 0 {
				s.LatestVideo = &models.LatestVideo{
					ID:           v.ID,
					Title:        v.Title,
					ThumbnailURL: v.ThumbnailURL,
					UploadDate:   v.UploadDate,
					Category:     v.Category,
				}
			}
		}
	}

	doc := models.TeamsDocument{
		SchemaVersion: models.TeamsDocumentVersion,
		International: []models.TeamStats{},
		Domestic:      []models.TeamStats{},
		Variations:    lex.Variations(),
	}
	for name, s := range stats {
		switch {
		case lex.IsInternational(name):
			doc.International = append(doc.International, *s)
		case lex.IsDomestic(name):
			doc.Domestic = append(doc.Domestic, *s)
		}
	}
	sortStats(doc.International)
	sortStats(doc.Domestic)

	return doc
}

func sortStats(stats []models.TeamStats) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].VideoCount != stats[j].VideoCount {
			return stats[i].VideoCount > stats[j].VideoCount
		}
		return stats[i].Name < stats[j].Name
	})
}
