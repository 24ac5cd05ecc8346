// Package pipeline runs the catalog cycle: fetch every source, filter and
// classify the raw videos, merge them into the stored catalog and write
// the catalog documents back.
//
// A Runner holds no locks. Callers must not run two cycles against the
// same store at once.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/romangod6/cricket-highlights/internal/catalog"
	"github.com/romangod6/cricket-highlights/internal/classify"
	"github.com/romangod6/cricket-highlights/internal/lexicon"
	"github.com/romangod6/cricket-highlights/internal/metrics"
	"github.com/romangod6/cricket-highlights/internal/models"
	"github.com/romangod6/cricket-highlights/internal/storage"
)

// Source produces raw videos. Errors are treated as "nothing from this
// source this run".
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.RawVideo, error)
}

// Drop reasons.
const (
	DropInvalid  = "invalid"
	DropShort    = "short"
	DropRejected = "rejected"
	DropClassic  = "channel_classic"
)

// Config wires a Runner.
type Config struct {
	Sources    []Source
	Classifier *classify.Classifier
	Lexicon    *lexicon.Lexicon
	Store      storage.BlobStore
	Keys       catalog.Keys
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

type Runner struct {
	sources    []Source
	classifier *classify.Classifier
	lexicon    *lexicon.Lexicon
	store      storage.BlobStore
	keys       catalog.Keys
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

func NewRunner(cfg Config) *Runner {
	if cfg.Classifier == nil {
		cfg.Classifier = classify.New(classify.DefaultPolicy())
	}
	if cfg.Lexicon == nil {
		cfg.Lexicon = lexicon.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Runner{
		sources:    cfg.Sources,
		classifier: cfg.Classifier,
		lexicon:    cfg.Lexicon,
		store:      cfg.Store,
		keys:       cfg.Keys,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Run executes one full cycle over every source. The returned result is
// never nil; the error is set when the run failed.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	result := r.start(KindRun)
	logger := r.logger.With(zap.String("run_id", result.RunID))
	logger.Info("starting catalog run", zap.Int("sources", len(r.sources)))

	var incoming []models.Video
	failed := 0
	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return r.finish(result, fmt.Errorf("run cancelled: %w", err))
		}

		raw, err := src.Fetch(ctx)
		if err != nil {
			failed++
			result.AddErrorf("%s: %v", src.Name(), err)
			r.metrics.SourceFailed(src.Name())
			logger.Error("source fetch failed", zap.String("source", src.Name()), zap.Error(err))
			continue
		}

		r.metrics.Fetched(src.Name(), len(raw))
		result.Fetched += len(raw)
		videos := r.prepare(raw, result)
		logger.Info("source fetched",
			zap.String("source", src.Name()),
			zap.Int("raw", len(raw)),
			zap.Int("kept", len(videos)))
		incoming = append(incoming, videos...)
	}

	if len(r.sources) > 0 && failed == len(r.sources) {
		return r.finish(result, errors.New("every source failed"))
	}
	if len(incoming) == 0 {
		logger.Info("no new videos, catalog left untouched")
		return r.finish(result, nil)
	}

	err := r.mergeAndWrite(ctx, incoming, result)
	return r.finish(result, err)
}

// Ingest merges videos delivered outside a scheduled run, such as upload
// notifications, through the same filter, classification and merge path.
func (r *Runner) Ingest(ctx context.Context, raw []models.RawVideo) (*RunResult, error) {
	result := r.start(KindIngest)
	result.Fetched = len(raw)

	incoming := r.prepare(raw, result)
	if len(incoming) == 0 {
		return r.finish(result, nil)
	}
	err := r.mergeAndWrite(ctx, incoming, result)
	return r.finish(result, err)
}

// Rebuild reclassifies every stored record with the current policy and
// rewrites all documents. Records the policy now rejects are removed.
func (r *Runner) Rebuild(ctx context.Context) (*RunResult, error) {
	result := r.start(KindRebuild)

	existing, err := r.load(ctx, result)
	if err != nil {
		return r.finish(result, err)
	}
	result.Fetched = len(existing)

	kept := make([]models.Video, 0, len(existing))
	for _, v := range existing {
		// Classic search results cannot be told apart by text alone.
		preset := ""
		if v.Category == models.CategoryClassic {
			preset = models.CategoryClassic
		}
		if reason := r.classify(&v, preset); reason != "" {
			r.drop(result, reason)
			continue
		}
		kept = append(kept, v)
	}

	merged := catalog.Merge(kept, nil)
	result.Total = len(merged)
	if err := r.write(ctx, merged); err != nil {
		return r.finish(result, err)
	}
	result.Written = true
	r.metrics.Stored(0, len(merged))
	return r.finish(result, nil)
}

func (r *Runner) start(kind string) *RunResult {
	return newResult(uuid.New().String(), kind, r.now())
}

func (r *Runner) finish(result *RunResult, err error) (*RunResult, error) {
	result.Duration = r.now().Sub(result.StartedAt)
	result.Success = err == nil
	if err != nil {
		result.AddError(err.Error())
	}
	r.metrics.ObserveRun(result.Success, result.Duration, r.now())

	fields := []zap.Field{
		zap.String("run_id", result.RunID),
		zap.String("kind", result.Kind),
		zap.Int("new_videos", result.NewVideos),
		zap.Int("total", result.Total),
		zap.Duration("duration", result.Duration),
	}
	if err != nil {
		r.logger.Error("catalog run failed", append(fields, zap.Error(err))...)
	} else {
		r.logger.Info("catalog run finished", fields...)
	}
	return result, err
}

// prepare turns raw connector output into classified catalog entries,
// skipping whatever must not enter the catalog.
func (r *Runner) prepare(raw []models.RawVideo, result *RunResult) []models.Video {
	videos := make([]models.Video, 0, len(raw))
	for _, rv := range raw {
		v, err := models.NewVideo(rv)
		if err != nil {
			r.logger.Debug("skipping record", zap.String("id", rv.ID), zap.Error(err))
			r.drop(result, DropInvalid)
			continue
		}
		if classify.IsShort(v.Duration, v.Title) {
			r.drop(result, DropShort)
			continue
		}
		if reason := r.classify(v, rv.Category); reason != "" {
			r.drop(result, reason)
			continue
		}
		videos = append(videos, *v)
	}
	return videos
}

// classify fills in category and teams. A preset category is kept but
// teams are still extracted. It returns a drop reason when the video must
// be left out.
func (r *Runner) classify(v *models.Video, preset string) string {
	res := r.classifier.Classify(classify.Input{
		Title:       v.Title,
		Description: v.Description,
		Source:      sourceKey(v),
	})
	if res.Rejected {
		return DropRejected
	}

	v.Teams = res.Teams
	if v.Teams == nil {
		v.Teams = []string{}
	}
	if preset != "" {
		v.Category = preset
	} else {
		if res.Category == models.CategoryClassic && !v.IsScraped() {
			// The classic search source owns archive content.
			return DropClassic
		}
		v.Category = res.Category
	}

	r.classifier.ApplyClassicCutoff(v)
	return ""
}

// reclassify repairs stored records whose category is not recognized.
func (r *Runner) reclassify(v *models.Video) {
	res := r.classifier.Classify(classify.Input{
		Title:       v.Title,
		Description: v.Description,
		Source:      sourceKey(v),
	})
	v.Teams = res.Teams
	if v.Teams == nil {
		v.Teams = []string{}
	}
	v.Category = res.Category
	if res.Rejected || !models.IsKnownCategory(v.Category) {
		v.Category = models.CategoryOther
	}
}

func (r *Runner) drop(result *RunResult, reason string) {
	result.Dropped[reason]++
	r.metrics.Dropped(reason)
}

// sourceKey is what per-source rules are keyed on: the channel id for
// YouTube videos and the site label for scraped ones.
func sourceKey(v *models.Video) string {
	if v.ChannelID != "" {
		return v.ChannelID
	}
	return v.Source
}

func (r *Runner) mergeAndWrite(ctx context.Context, incoming []models.Video, result *RunResult) error {
	existing, err := r.load(ctx, result)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(existing))
	for _, v := range existing {
		known[v.ID] = true
	}

	merged := catalog.Merge(existing, incoming, catalog.WithReclassify(r.reclassify))
	for _, v := range merged {
		if !known[v.ID] {
			result.NewVideos++
		}
	}
	result.Total = len(merged)

	if err := r.write(ctx, merged); err != nil {
		return err
	}
	result.Written = true
	r.metrics.Stored(result.NewVideos, result.Total)
	return nil
}

// load reads the stored catalog. A missing document is an empty catalog.
func (r *Runner) load(ctx context.Context, result *RunResult) ([]models.Video, error) {
	data, err := r.store.Read(ctx, r.keys.All())
	if errors.Is(err, storage.ErrNotFound) {
		r.logger.Info("no stored catalog, starting empty", zap.String("key", r.keys.All()))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	videos, skipped, err := catalog.DecodeVideos(data)
	if err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if skipped > 0 {
		result.AddErrorf("skipped %d malformed stored records", skipped)
		r.logger.Warn("skipped malformed stored records", zap.Int("count", skipped))
	}
	return videos, nil
}

// write stores every document. The all-videos document goes last so a
// partial failure leaves the previous catalog as the source of truth.
func (r *Runner) write(ctx context.Context, videos []models.Video) error {
	teams := catalog.AggregateTeamStats(videos, r.lexicon)
	docs, err := catalog.Documents(r.keys, videos, teams)
	if err != nil {
		return err
	}

	order := make([]string, 0, len(docs))
	for _, c := range models.Categories {
		order = append(order, r.keys.Category(c))
	}
	order = append(order, r.keys.Teams(), r.keys.All())

	for _, key := range order {
		data, ok := docs[key]
		if !ok {
			continue
		}
		if err := r.store.Write(ctx, key, data); err != nil {
			return fmt.Errorf("writing %s: %w", key, err)
		}
		r.logger.Debug("wrote document", zap.String("key", key), zap.Int("bytes", len(data)))
	}
	return nil
}
