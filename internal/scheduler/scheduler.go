package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

// Refresher rebuilds the map overview.
type Refresher interface {
	MapOverview(ctx context.Context) (*models.MapOverview, error)
}

// Scheduler refreshes the map overview on a cron schedule. Overlapping runs
// are skipped, whether they come from the schedule or from ForceRun.
type Scheduler struct {
	refresher Refresher
	logger    *zap.Logger
	schedule  string
	timeout   time.Duration

	cron    *cron.Cron
	job     cron.Job
	entryID cron.EntryID
	wg      sync.WaitGroup

	mu           sync.Mutex
	running      bool
	lastRun      time.Time
	lastDuration time.Duration
	lastErr      error
	lastMarkers  int
	runs         int
}

func NewScheduler(refresher Refresher, schedule string, timeout time.Duration, logger *zap.Logger) (*Scheduler, error) {
	spec, err := cron.ParseStandard(schedule)
	if err != nil {
		return nil, fmt.Errorf("parse refresh schedule %q: %w", schedule, err)
	}

	s := &Scheduler{
		refresher: refresher,
		logger:    logger,
		schedule:  schedule,
		timeout:   timeout,
	}

	cronLogger := cronLogger{logger.Sugar()}
	s.cron = cron.New(cron.WithLogger(cronLogger))
	s.job = cron.NewChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	).Then(cron.FuncJob(s.runRefresh))
	s.entryID = s.cron.Schedule(spec, s.job)

	return s, nil
}

// Start begins the schedule and triggers one refresh right away.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.cron.Start()

	s.logger.Info("Scheduler started",
		zap.String("schedule", s.schedule),
		zap.Time("next_run", s.cron.Entry(s.entryID).Next))

	s.trigger()
}

// Stop halts the schedule and waits for an in-flight refresh to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// ForceRun triggers a refresh outside the schedule. It reports false when
// the scheduler is not running.
func (s *Scheduler) ForceRun() bool {
	if !s.trigger() {
		s.logger.Warn("Map refresh requested while scheduler is stopped")
		return false
	}
	s.logger.Info("Manually triggered map refresh")
	return true
}

// trigger runs the job in the background. The running check and wg.Add share
// the lock with Stop so no Add can race its Wait.
func (s *Scheduler) trigger() bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.job.Run()
	}()
	return true
}

func (s *Scheduler) runRefresh() {
	startTime := time.Now()
	s.logger.Info("Starting scheduled map refresh", zap.Time("start_time", startTime))

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	overview, err := s.refresher.MapOverview(ctx)
	duration := time.Since(startTime)

	s.mu.Lock()
	s.lastRun = startTime
	s.lastDuration = duration
	s.lastErr = err
	s.runs++
	if err == nil {
		s.lastMarkers = len(overview.Markers)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Scheduled map refresh failed",
			zap.Error(err),
			zap.Duration("duration", duration))
		return
	}

	s.logger.Info("Scheduled map refresh completed",
		zap.Int("markers", len(overview.Markers)),
		zap.Int("failures", len(overview.Failures)),
		zap.Duration("duration", duration))
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":       s.running,
		"schedule":      s.schedule,
		"last_run":      s.lastRun,
		"last_duration": s.lastDuration.String(),
		"last_markers":  s.lastMarkers,
		"runs":          s.runs,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
