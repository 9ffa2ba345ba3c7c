package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/config"
	"github.com/bobby-s-dev/freeride-assistant/internal/freeride"
	"github.com/bobby-s-dev/freeride-assistant/internal/models"
	"github.com/bobby-s-dev/freeride-assistant/internal/narrative"
	"github.com/bobby-s-dev/freeride-assistant/internal/resorts"
	"github.com/bobby-s-dev/freeride-assistant/pkg/client"
)

type ForecastFetcher interface {
	FetchHourly(ctx context.Context, resort models.Resort, window models.Window) (models.HourlySeries, error)
}

type Metrics interface {
	RecordFetch(err error, d time.Duration)
	RecordClassification(label string)
	RecordNarrative(err error)
	RecordCacheHit()
}

// ResortError is a failure scoped to one resort. It never aborts a batch.
type ResortError struct {
	Resort string
	Window models.Window
	Err    error
}

func (e *ResortError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Resort, e.Window, e.Err)
}

func (e *ResortError) Unwrap() error {
	return e.Err
}

// BatchError is returned when no resort of a batch could be evaluated. It
// matches freeride.ErrNoResorts and each of its per-resort failures.
type BatchError struct {
	Failures []*ResortError
}

func (e *BatchError) Error() string {
	if len(e.Failures) == 0 {
		return freeride.ErrNoResorts.Error()
	}
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Error())
	}
	return freeride.ErrNoResorts.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *BatchError) Unwrap() []error {
	errs := []error{freeride.ErrNoResorts}
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

// Assistant fetches forecasts for resorts and turns them into classified
// reports, rankings and map markers.
type Assistant struct {
	directory      *resorts.Directory
	fetcher        ForecastFetcher
	narrator       *narrative.Narrator
	ranker         *freeride.Ranker
	cache          *SummaryCache
	metrics        Metrics
	logger         *zap.Logger
	now            func() time.Time
	maxOffsetDays  int
	pastDays       int
	futureDays     int
	mapLookback    int
	defaultCompare []string

	mu             sync.RWMutex
	lastFetchTime  time.Time
	successCount   int
	failureCount   int
	latestOverview *models.MapOverview
}

func NewAssistant(
	cfg *config.Config,
	directory *resorts.Directory,
	fetcher ForecastFetcher,
	narrator *narrative.Narrator,
	metrics Metrics,
	logger *zap.Logger,
) (*Assistant, error) {
	if directory == nil || directory.Len() == 0 {
		return nil, fmt.Errorf("resort directory is empty")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("no forecast fetcher configured")
	}

	ranker, err := freeride.NewRanker(freeride.Weights{
		TempPenalty: cfg.Ranking.TempPenaltyWeight,
		WindPenalty: cfg.Ranking.WindPenaltyWeight,
	})
	if err != nil {
		return nil, fmt.Errorf("ranking weights: %w", err)
	}

	for _, name := range cfg.Resorts.DefaultCompare {
		if _, err := directory.Lookup(name); err != nil {
			return nil, fmt.Errorf("default resorts: %w", err)
		}
	}

	if narrator == nil {
		narrator = narrative.NewNarrator(nil, logger)
	}

	return &Assistant{
		directory:      directory,
		fetcher:        fetcher,
		narrator:       narrator,
		ranker:         ranker,
		cache:          NewSummaryCache(cfg.Cache.Duration, cfg.Cache.MaxSize, logger),
		metrics:        metrics,
		logger:         logger,
		now:            time.Now,
		maxOffsetDays:  cfg.Window.MaxOffsetDays,
		pastDays:       cfg.Window.PastDays,
		futureDays:     cfg.Window.FutureDays,
		mapLookback:    cfg.Window.MapLookback,
		defaultCompare: cfg.Resorts.DefaultCompare,
	}, nil
}

func (a *Assistant) Directory() *resorts.Directory {
	return a.directory
}

// Close stops the cache janitor.
func (a *Assistant) Close() {
	a.cache.Stop()
}

// ResolveWindow parses YYYY-MM-DD dates. Missing dates fall back to the
// default window around today.
func (a *Assistant) ResolveWindow(start, end string) (models.Window, error) {
	today := a.now()
	def := models.WindowAround(today, a.pastDays, a.futureDays)

	startDate, endDate := def.Start, def.End
	if start != "" {
		t, err := time.ParseInLocation(models.DateLayout, start, today.Location())
		if err != nil {
			return models.Window{}, fmt.Errorf("%w: start date %q", models.ErrInvalidWindow, start)
		}
		startDate = t
	}
	if end != "" {
		t, err := time.ParseInLocation(models.DateLayout, end, today.Location())
		if err != nil {
			return models.Window{}, fmt.Errorf("%w: end date %q", models.ErrInvalidWindow, end)
		}
		endDate = t
	}

	return models.NewWindow(startDate, endDate, today, a.maxOffsetDays)
}

// ResortConditions reports the classified conditions of one resort.
func (a *Assistant) ResortConditions(ctx context.Context, name string, window models.Window) (*models.ResortReport, error) {
	resort, err := a.directory.Lookup(name)
	if err != nil {
		return nil, err
	}

	report, rerr := a.resortReport(ctx, resort, window)
	if rerr != nil {
		return nil, rerr
	}
	return report, nil
}

// Conditions evaluates resorts concurrently. Reports keep the order of
// names; a failing resort is reported in the second result and does not
// affect the others.
func (a *Assistant) Conditions(ctx context.Context, names []string, window models.Window) ([]models.ResortReport, []*ResortError) {
	names = dedupe(names)

	a.mu.Lock()
	a.lastFetchTime = a.now()
	a.mu.Unlock()

	reports := make([]*models.ResortReport, len(names))
	failures := make([]*ResortError, len(names))

	startTime := time.Now()
	var wg sync.WaitGroup
	for i, name := range names {
		resort, err := a.directory.Lookup(name)
		if err != nil {
			failures[i] = &ResortError{Resort: name, Window: window, Err: err}
			continue
		}

		wg.Add(1)
		go func(i int, resort models.Resort) {
			defer wg.Done()
			reports[i], failures[i] = a.resortReport(ctx, resort, window)
		}(i, resort)
	}
	wg.Wait()

	var ok []models.ResortReport
	var failed []*ResortError
	for i := range names {
		if failures[i] != nil {
			failed = append(failed, failures[i])
			a.logger.Warn("Resort evaluation failed",
				zap.String("resort", failures[i].Resort),
				zap.String("window", window.String()),
				zap.Error(failures[i].Err))
			continue
		}
		ok = append(ok, *reports[i])
	}

	a.logger.Info("Resort evaluation completed",
		zap.Int("resorts", len(names)),
		zap.Int("success", len(ok)),
		zap.Int("failure", len(failed)),
		zap.Duration("duration", time.Since(startTime)))

	return ok, failed
}

// Compare ranks resorts over a window and asks for a narrative. With no
// names the configured default selection is compared.
func (a *Assistant) Compare(ctx context.Context, names []string, window models.Window) (*models.Comparison, error) {
	if len(names) == 0 {
		names = a.defaultCompare
	}

	reports, failures := a.Conditions(ctx, names, window)

	summaries := make([]models.ResortSummary, 0, len(reports))
	for _, r := range reports {
		summaries = append(summaries, r.Summary)
	}

	ranked, err := a.ranker.Rank(summaries)
	if err != nil {
		if errors.Is(err, freeride.ErrNoResorts) {
			return nil, &BatchError{Failures: failures}
		}
		return nil, err
	}

	comparison := &models.Comparison{
		Window:      window,
		Ranking:     ranked,
		Chart:       chartRows(ranked),
		Failures:    toFailures(failures),
		GeneratedAt: a.now(),
	}

	if a.narrator.Enabled() {
		var text string
		if len(reports) == 1 {
			r := reports[0]
			text, err = a.narrator.DescribeResort(ctx, r.Summary, r.Classification, window)
		} else {
			text, err = a.narrator.DescribeComparison(ctx, ranked, window)
		}
		a.recordNarrative(err)
		if err != nil {
			comparison.NarrativeError = err.Error()
		} else {
			comparison.Narrative = text
		}
	}

	a.logger.Info("Comparison ranked",
		zap.Int("resorts", len(ranked.Resorts)),
		zap.String("recommended", ranked.Pick().Summary.Name),
		zap.Float64("score", ranked.Pick().Score))

	return comparison, nil
}

// MapOverview classifies every resort in the directory over the lookback
// window ending today. Resorts that fail are left off the map.
func (a *Assistant) MapOverview(ctx context.Context) (*models.MapOverview, error) {
	window := models.WindowAround(a.now(), a.mapLookback, 0)
	reports, failures := a.Conditions(ctx, a.directory.Names(), window)

	if len(reports) == 0 {
		return nil, &BatchError{Failures: failures}
	}

	markers := make([]models.Marker, 0, len(reports))
	for _, r := range reports {
		markers = append(markers, models.Marker{
			Resort:    r.Resort.Name,
			Latitude:  r.Resort.Latitude,
			Longitude: r.Resort.Longitude,
			Badge:     r.Classification.Badge.Emoji(),
			Label:     r.Classification.Label,
			Color:     r.Classification.Tag.Color(),
			Sky:       r.Sky,
			Snowfall:  r.Summary.SnowfallTotal,
			AvgTemp:   r.Summary.TempMean,
			AvgWind:   r.Summary.WindMean,
		})
	}

	overview := &models.MapOverview{
		Window:      window,
		Markers:     markers,
		Failures:    toFailures(failures),
		GeneratedAt: a.now(),
	}

	a.mu.Lock()
	a.latestOverview = overview
	a.mu.Unlock()

	return overview, nil
}

// LatestOverview returns the last map overview produced by MapOverview.
func (a *Assistant) LatestOverview() (*models.MapOverview, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latestOverview, a.latestOverview != nil
}

func (a *Assistant) resortReport(ctx context.Context, resort models.Resort, window models.Window) (*models.ResortReport, *ResortError) {
	if cached, ok := a.cache.Get(resort.Name, window); ok {
		a.logger.Debug("Cache hit for resort summary", zap.String("resort", resort.Name))
		if a.metrics != nil {
			a.metrics.RecordCacheHit()
		}
		return a.report(resort, window, cached), nil
	}

	start := time.Now()
	series, err := a.fetcher.FetchHourly(ctx, resort, window)
	if a.metrics != nil {
		a.metrics.RecordFetch(err, time.Since(start))
	}
	if err != nil {
		a.countOutcome(false)
		return nil, &ResortError{Resort: resort.Name, Window: window, Err: err}
	}

	if series.Resort == "" {
		series.Resort = resort.Name
		series.Window = window
	}

	summary, err := freeride.Aggregate(series)
	if err != nil {
		a.countOutcome(false)
		return nil, &ResortError{Resort: resort.Name, Window: window, Err: err}
	}
	a.countOutcome(true)

	cached := CachedSummary{
		Summary:   summary,
		Sky:       client.WeatherCodeDescription(series.WeatherCode[len(series.WeatherCode)-1]),
		FetchedAt: a.now(),
	}
	a.cache.Set(resort.Name, window, cached)

	return a.report(resort, window, cached), nil
}

func (a *Assistant) report(resort models.Resort, window models.Window, cached CachedSummary) *models.ResortReport {
	classification := freeride.Classify(cached.Summary)
	if a.metrics != nil {
		a.metrics.RecordClassification(string(classification.Label))
	}

	return &models.ResortReport{
		Resort:         resort,
		Window:         window,
		Summary:        cached.Summary,
		Classification: classification,
		Sky:            cached.Sky,
		FetchedAt:      cached.FetchedAt,
	}
}

func (a *Assistant) countOutcome(success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if success {
		a.successCount++
	} else {
		a.failureCount++
	}
}

func (a *Assistant) recordNarrative(err error) {
	if a.metrics != nil {
		a.metrics.RecordNarrative(err)
	}
}

func (a *Assistant) GetLastFetchTime() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastFetchTime
}

func (a *Assistant) GetStats() map[string]interface{} {
	a.mu.RLock()
	defer a.mu.RUnlock()

	weights := a.ranker.Weights()

	return map[string]interface{}{
		"last_fetch_time":   a.lastFetchTime,
		"success_count":     a.successCount,
		"failure_count":     a.failureCount,
		"resorts":           a.directory.Len(),
		"narrative_enabled": a.narrator.Enabled(),
		"ranking_weights":   weights,
		"cache_stats":       a.cache.GetStats(),
	}
}

func chartRows(ranked models.RankedComparison) []models.ChartRow {
	rows := make([]models.ChartRow, 0, len(ranked.Resorts)*3)
	for _, r := range ranked.Resorts {
		s := r.Summary
		rows = append(rows,
			models.ChartRow{Resort: s.Name, Feature: models.FeatureSnowfall, Value: s.SnowfallTotal},
			models.ChartRow{Resort: s.Name, Feature: models.FeatureAvgTemp, Value: s.TempMean},
			models.ChartRow{Resort: s.Name, Feature: models.FeatureAvgWind, Value: s.WindMean},
		)
	}
	return rows
}

func toFailures(errs []*ResortError) []models.ResortFailure {
	if len(errs) == 0 {
		return nil
	}
	out := make([]models.ResortFailure, 0, len(errs))
	for _, e := range errs {
		out = append(out, models.ResortFailure{Resort: e.Resort, Error: e.Err.Error()})
	}
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
