package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romangod6/cricket-highlights/internal/catalog"
	"github.com/romangod6/cricket-highlights/internal/classify"
	"github.com/romangod6/cricket-highlights/internal/models"
	"github.com/romangod6/cricket-highlights/internal/storage"
)

type fakeSource struct {
	name   string
	videos []models.RawVideo
	err    error
	calls  int
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(context.Context) ([]models.RawVideo, error) {
	s.calls++
	return s.videos, s.err
}

type faultyStore struct {
	*storage.MemoryStore
	readErr  error
	writeErr error
}

func (s *faultyStore) Read(ctx context.Context, key string) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.MemoryStore.Read(ctx, key)
}

func (s *faultyStore) Write(ctx context.Context, key string, data []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.MemoryStore.Write(ctx, key, data)
}

func channelVideo(id, title, duration, date string) models.RawVideo {
	return models.RawVideo{
		ID:           id,
		Title:        title,
		ThumbnailURL: "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg",
		Duration:     duration,
		Views:        "1000",
		Source:       models.SourceYouTube,
		ChannelID:    classify.ChannelCricketAustralia,
		ChannelName:  "cricket.com.au",
		UploadDate:   date,
	}
}

func scrapedVideo(site, id, title, url, date string) models.RawVideo {
	return models.RawVideo{
		ID:           id,
		ExternalURL:  url,
		Title:        title,
		ThumbnailURL: "https://img.example.com/" + id + ".jpg",
		Views:        "N/A",
		Source:       site,
		ChannelName:  site,
		UploadDate:   date,
	}
}

func testSources() []Source {
	channel := &fakeSource{name: "cricket.com.au", videos: []models.RawVideo{
		channelVideo("yt1", "IND vs AUS 3rd Test Day 4 Highlights", "PT12M", "2024-11-03T10:00:00Z"),
		channelVideo("yt2", "Great catch #shorts", "PT30S", "2024-11-02T10:00:00Z"),
		channelVideo("yt3", "", "PT5M", "2024-11-02T10:00:00Z"),
		channelVideo("yt4", "From the Vault: Lara 400", "PT10M", "2024-11-01T10:00:00Z"),
	}}
	ipl := &fakeSource{name: "IPL", videos: []models.RawVideo{
		scrapedVideo(models.SourceIPL, "ipl_1", "Mumbai Indians vs Chennai Super Kings Highlights",
			"https://www.iplt20.com/video/1", "2024-04-14T18:00:00Z"),
	}}
	bcci := &fakeSource{name: "BCCI", videos: []models.RawVideo{
		scrapedVideo(models.SourceBCCI, "bcci_1", "Team Practice Highlights",
			"https://www.bcci.tv/videos/1", "2024-10-30T08:00:00Z"),
	}}
	classic := &fakeSource{name: "classic search", videos: []models.RawVideo{{
		ID:           "c1",
		Title:        "1983 World Cup Final: India vs West Indies",
		ThumbnailURL: "https://i.ytimg.com/vi/c1/hqdefault.jpg",
		Duration:     "PT14M",
		Views:        "2500000",
		Source:       models.SourceYouTube,
		ChannelID:    "UCsomeoneelse",
		ChannelName:  "Archive",
		UploadDate:   "2015-06-25T00:00:00Z",
		Category:     models.CategoryClassic,
	}}}
	broken := &fakeSource{name: "broken", err: errors.New("connection refused")}
	return []Source{channel, ipl, bcci, classic, broken}
}

func readCatalog(t *testing.T, store storage.BlobStore, key string) []models.Video {
	t.Helper()
	data, err := store.Read(context.Background(), key)
	require.NoError(t, err)
	videos, skipped, err := catalog.DecodeVideos(data)
	require.NoError(t, err)
	require.Zero(t, skipped)
	return videos
}

func ids(videos []models.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.ID
	}
	return out
}

func TestRun(t *testing.T) {
	store := storage.NewMemoryStore()
	keys := catalog.Keys{}
	r := NewRunner(Config{Sources: testSources(), Store: store, Keys: keys})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, KindRun, result.Kind)
	assert.Equal(t, 7, result.Fetched)
	assert.Equal(t, 3, result.NewVideos)
	assert.Equal(t, 3, result.Total)
	assert.True(t, result.Written)
	assert.Equal(t, map[string]int{
		DropShort:    1,
		DropInvalid:  1,
		DropClassic:  1,
		DropRejected: 1,
	}, result.Dropped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "broken")
	assert.Contains(t, result.Summary(), "status=ok")

	all := readCatalog(t, store, keys.All())
	assert.Equal(t, []string{"yt1", "ipl_1", "c1"}, ids(all))

	byID := map[string]models.Video{}
	for _, v := range all {
		byID[v.ID] = v
	}
	assert.Equal(t, models.CategoryMatches, byID["yt1"].Category)
	assert.Equal(t, []string{"Australia", "India"}, byID["yt1"].Teams)
	assert.Equal(t, models.CategoryDomestic, byID["ipl_1"].Category)
	assert.Equal(t, []string{"Chennai Super Kings", "Mumbai Indians"}, byID["ipl_1"].Teams)
	assert.Equal(t, models.CategoryClassic, byID["c1"].Category)
	assert.Contains(t, byID["c1"].Teams, "India")

	// Every category document exists, empty ones included.
	for _, c := range models.Categories {
		videos := readCatalog(t, store, keys.Category(c))
		for _, v := range videos {
			assert.Equal(t, c, v.Category)
		}
	}
	assert.Equal(t, []string{"yt1"}, ids(readCatalog(t, store, keys.Category(models.CategoryMatches))))
	assert.Empty(t, readCatalog(t, store, keys.Category(models.CategoryInterviews)))

	data, err := store.Read(context.Background(), keys.Teams())
	require.NoError(t, err)
	var teams models.TeamsDocument
	require.NoError(t, json.Unmarshal(data, &teams))
	assert.Equal(t, models.TeamsDocumentVersion, teams.SchemaVersion)
	assert.NotEmpty(t, teams.International)
	assert.NotEmpty(t, teams.Domestic)
}

func TestRun_Idempotent(t *testing.T) {
	store := storage.NewMemoryStore()
	r := NewRunner(Config{Sources: testSources(), Store: store})

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	first, err := store.Read(context.Background(), catalog.Keys{}.All())
	require.NoError(t, err)

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.NewVideos)
	assert.Equal(t, 3, result.Total)

	second, err := store.Read(context.Background(), catalog.Keys{}.All())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRun_ReclassifiesUnknownCategories(t *testing.T) {
	store := storage.NewMemoryStore()
	keys := catalog.Keys{Prefix: "data"}
	stored := `[
		{"id":"old1","title":"Pakistan vs England 1st Test Highlights","thumbnail_url":"t","views":"5","category":"highlights","teams":[],"source":"YouTube","channel_name":"ECB","upload_date":"2024-01-01T00:00:00Z"},
		{"id":"old2","title":"Nets session","thumbnail_url":"t","views":"5","category":"training","teams":[],"channel_name":"ECB","upload_date":"2024-01-02T00:00:00Z"},
		{"id":7}
	]`
	require.NoError(t, store.Write(context.Background(), keys.All(), []byte(stored)))

	src := &fakeSource{name: "cricket.com.au", videos: []models.RawVideo{
		channelVideo("yt1", "IND vs AUS 3rd Test Day 4 Highlights", "PT12M", "2024-11-03T10:00:00Z"),
	}}
	r := NewRunner(Config{Sources: []Source{src}, Store: store, Keys: keys})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewVideos)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "malformed")

	all := readCatalog(t, store, keys.All())
	assert.Equal(t, []string{"yt1", "old2", "old1"}, ids(all))
	assert.Equal(t, models.CategoryMatches, all[2].Category)
	assert.Equal(t, []string{"England", "Pakistan"}, all[2].Teams)
	assert.Equal(t, models.CategoryTraining, all[1].Category)
}

func TestRun_ClassicCutoff(t *testing.T) {
	policy := classify.DefaultPolicy()
	policy.ClassicCutoffYear = 2010
	store := storage.NewMemoryStore()
	src := &fakeSource{name: "cricket.com.au", videos: []models.RawVideo{
		channelVideo("yt1", "2005 Ashes 2nd Test Highlights", "PT12M", "2024-11-03T10:00:00Z"),
	}}
	r := NewRunner(Config{Sources: []Source{src}, Store: store, Classifier: classify.New(policy)})

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	all := readCatalog(t, store, catalog.Keys{}.All())
	require.Len(t, all, 1)
	assert.Equal(t, models.CategoryClassic, all[0].Category)
}

func TestRun_NothingNewSkipsWrites(t *testing.T) {
	store := storage.NewMemoryStore()
	src := &fakeSource{name: "quiet"}
	r := NewRunner(Config{Sources: []Source{src}, Store: store})

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Written)
	assert.Empty(t, store.Keys())
}

func TestRun_EverySourceFailed(t *testing.T) {
	store := storage.NewMemoryStore()
	r := NewRunner(Config{Sources: []Source{
		&fakeSource{name: "a", err: errors.New("boom")},
		&fakeSource{name: "b", err: errors.New("boom")},
	}, Store: store})

	result, err := r.Run(context.Background())
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, store.Keys())
	assert.Contains(t, result.Summary(), "status=failed")
}

func TestRun_StorageErrors(t *testing.T) {
	src := func() []Source {
		return []Source{&fakeSource{name: "cricket.com.au", videos: []models.RawVideo{
			channelVideo("yt1", "IND vs AUS 3rd Test Day 4 Highlights", "PT12M", "2024-11-03T10:00:00Z"),
		}}}
	}

	t.Run("write failure fails the run", func(t *testing.T) {
		store := &faultyStore{MemoryStore: storage.NewMemoryStore(), writeErr: errors.New("access denied")}
		r := NewRunner(Config{Sources: src(), Store: store})

		result, err := r.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
		assert.False(t, result.Success)
		assert.False(t, result.Written)
	})

	t.Run("read failure fails the run", func(t *testing.T) {
		store := &faultyStore{MemoryStore: storage.NewMemoryStore(), readErr: errors.New("timeout")}
		r := NewRunner(Config{Sources: src(), Store: store})

		_, err := r.Run(context.Background())
		require.Error(t, err)
		assert.Empty(t, store.Keys())
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sources := src()
		r := NewRunner(Config{Sources: sources, Store: storage.NewMemoryStore()})

		_, err := r.Run(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, sources[0].(*fakeSource).calls)
	})
}

func TestIngest(t *testing.T) {
	store := storage.NewMemoryStore()
	r := NewRunner(Config{Store: store})

	result, err := r.Ingest(context.Background(), []models.RawVideo{
		channelVideo("yt9", "Australia v India | Day 1 Highlights", "PT9M", "2024-11-22T08:00:00Z"),
		channelVideo("yt10", "Quick catch #shorts", "PT20S", "2024-11-22T08:00:00Z"),
	})
	require.NoError(t, err)
	assert.Equal(t, KindIngest, result.Kind)
	assert.Equal(t, 1, result.NewVideos)
	assert.Equal(t, 1, result.Dropped[DropShort])

	all := readCatalog(t, store, catalog.Keys{}.All())
	require.Len(t, all, 1)
	assert.Equal(t, "yt9", all[0].ID)
	assert.Equal(t, models.CategoryMatches, all[0].Category)

	// A short-only delivery leaves the store alone.
	result, err = r.Ingest(context.Background(), []models.RawVideo{
		channelVideo("yt11", "Run out #shorts", "PT15S", "2024-11-22T09:00:00Z"),
	})
	require.NoError(t, err)
	assert.False(t, result.Written)
}

func TestRebuild(t *testing.T) {
	store := storage.NewMemoryStore()
	keys := catalog.Keys{}
	stored := `[
		{"id":"a","title":"IND vs AUS 3rd Test Day 4 Highlights","thumbnail_url":"t","views":"5","category":"other","teams":[],"source":"YouTube","channel_id":"UCkBY0aHJP9BwjZLDYxAQrKg","channel_name":"CA","upload_date":"2024-11-03T10:00:00Z"},
		{"id":"b","title":"Trophy Highlights: India lift the cup","thumbnail_url":"t","views":"N/A","category":"matches","teams":[],"source":"BCCI","external_url":"https://www.bcci.tv/videos/2","channel_name":"BCCI","upload_date":"2024-11-02T10:00:00Z"},
		{"id":"c","title":"Greatest Ashes finish","thumbnail_url":"t","views":"900000","category":"classic","teams":[],"source":"YouTube","channel_id":"UCx","channel_name":"Archive","upload_date":"2016-01-01T00:00:00Z"}
	]`
	require.NoError(t, store.Write(context.Background(), keys.All(), []byte(stored)))

	r := NewRunner(Config{Store: store})
	result, err := r.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, KindRebuild, result.Kind)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Dropped[DropRejected])

	all := readCatalog(t, store, keys.All())
	assert.Equal(t, []string{"a", "c"}, ids(all))
	assert.Equal(t, models.CategoryMatches, all[0].Category)
	assert.Equal(t, []string{"Australia", "India"}, all[0].Teams)
	assert.Equal(t, models.CategoryClassic, all[1].Category)

	classic := readCatalog(t, store, keys.Category(models.CategoryClassic))
	assert.Equal(t, []string{"c"}, ids(classic))
}
