package youtube

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/romangod6/cricket-highlights/internal/models"
)

// ToRaw converts an API video into connector output.
func ToRaw(v *Video, channelName string) models.RawVideo {
	if channelName == "" {
		channelName = v.Snippet.ChannelTitle
	}
	views := v.Statistics.ViewCount
	if views == "" {
		views = "N/A"
	}
	return models.RawVideo{
		ID:           v.ID,
		Title:        v.Snippet.Title,
		Description:  v.Snippet.Description,
		ThumbnailURL: v.BestThumbnail(),
		Duration:     v.ContentDetails.Duration,
		Views:        views,
		Source:       models.SourceYouTube,
		ChannelID:    v.Snippet.ChannelID,
		ChannelName:  channelName,
		UploadDate:   v.Snippet.PublishedAt,
	}
}

// ChannelSource fetches the latest uploads of one channel.
type ChannelSource struct {
	client      *Client
	channelID   string
	channelName string
	limit       int
	logger      *zap.Logger
}

// NewChannelSource returns a source for a channel. limit caps both the
// search and the number of videos handed on.
func NewChannelSource(client *Client, channelID, channelName string, limit int, logger *zap.Logger) *ChannelSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 200
	}
	return &ChannelSource{
		client:      client,
		channelID:   channelID,
		channelName: channelName,
		limit:       limit,
		logger:      logger.With(zap.String("channel", channelName)),
	}
}

func (s *ChannelSource) Name() string {
	return s.channelName
}

func (s *ChannelSource) ChannelID() string {
	return s.channelID
}

func (s *ChannelSource) Fetch(ctx context.Context) ([]models.RawVideo, error) {
	ids, err := s.client.SearchVideoIDs(ctx, SearchParams{
		ChannelID: s.channelID,
		Order:     "date",
		Limit:     s.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("searching channel %s: %w", s.channelName, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	details, err := s.client.Videos(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching videos of %s: %w", s.channelName, err)
	}

	var videos []models.RawVideo
	for i := range details {
		v := &details[i]
		if !v.Playable() {
			continue
		}
		raw := ToRaw(v, s.channelName)
		raw.ChannelID = s.channelID
		videos = append(videos, raw)
		if len(videos) >= s.limit {
			break
		}
	}

	s.logger.Debug("fetched channel uploads",
		zap.Int("ids", len(ids)),
		zap.Int("playable", len(videos)))
	return videos, nil
}

// Classic search defaults.
const (
	ClassicQuery    = "classic cricket match highlights"
	ClassicMinViews = 100000
	ClassicLimit    = 100
)

// ClassicSource searches for popular archive match highlights across
// YouTube. Its videos arrive pre-categorized as classic.
type ClassicSource struct {
	client   *Client
	query    string
	minViews int64
	limit    int
	logger   *zap.Logger
}

func NewClassicSource(client *Client, query string, minViews int64, limit int, logger *zap.Logger) *ClassicSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if query == "" {
		query = ClassicQuery
	}
	if limit <= 0 {
		limit = ClassicLimit
	}
	return &ClassicSource{
		client:   client,
		query:    query,
		minViews: minViews,
		limit:    limit,
		logger:   logger,
	}
}

func (s *ClassicSource) Name() string {
	return "classic search"
}

func (s *ClassicSource) Fetch(ctx context.Context) ([]models.RawVideo, error) {
	ids, err := s.client.SearchVideoIDs(ctx, SearchParams{
		Query:         s.query,
		Order:         "viewCount",
		VideoDuration: "medium",
		Limit:         2 * s.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("searching classic matches: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	details, err := s.client.Videos(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching classic matches: %w", err)
	}

	var videos []models.RawVideo
	for i := range details {
		v := &details[i]
		if !v.Playable() {
			continue
		}
		views, err := strconv.ParseInt(v.Statistics.ViewCount, 10, 64)
		if err != nil || views < s.minViews {
			continue
		}
		raw := ToRaw(v, "")
		raw.Category = models.CategoryClassic
		videos = append(videos, raw)
		if len(videos) >= s.limit {
			break
		}
	}
	return videos, nil
}
