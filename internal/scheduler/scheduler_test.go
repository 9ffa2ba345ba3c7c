package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

type countingRefresher struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (r *countingRefresher) MapOverview(ctx context.Context) (*models.MapOverview, error) {
	r.calls.Add(1)
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return &models.MapOverview{Markers: make([]models.Marker, 2)}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartRunsImmediately(t *testing.T) {
	r := &countingRefresher{}
	s, err := NewScheduler(r, "@every 1h", time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	s.Start()
	defer s.Stop()

	waitFor(t, func() bool { return r.calls.Load() == 1 })
	waitFor(t, func() bool { return s.GetStatus()["runs"] == 1 })

	status := s.GetStatus()
	if status["running"] != true || status["last_markers"] != 2 {
		t.Errorf("unexpected status %v", status)
	}
	if _, ok := status["next_run"]; !ok {
		t.Error("next_run missing while running")
	}

	if !s.ForceRun() {
		t.Fatal("ForceRun refused while running")
	}
	waitFor(t, func() bool { return r.calls.Load() == 2 })
}

func TestOverlappingRunsAreSkipped(t *testing.T) {
	r := &countingRefresher{release: make(chan struct{})}
	s, err := NewScheduler(r, "@every 1h", time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	s.Start()
	waitFor(t, func() bool { return r.calls.Load() == 1 })

	s.ForceRun()
	s.ForceRun()
	time.Sleep(50 * time.Millisecond)
	if n := r.calls.Load(); n != 1 {
		t.Errorf("expected overlapping runs to be skipped, got %d calls", n)
	}

	close(r.release)
	s.Stop()
}

func TestRefreshFailureIsReported(t *testing.T) {
	r := &countingRefresher{err: errors.New("no resorts could be evaluated")}
	s, err := NewScheduler(r, "*/5 * * * *", time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	s.Start()
	waitFor(t, func() bool { return s.GetStatus()["runs"] == 1 })
	s.Stop()

	status := s.GetStatus()
	if status["last_error"] != "no resorts could be evaluated" {
		t.Errorf("unexpected status %v", status)
	}
	if status["running"] != false {
		t.Error("scheduler still running after Stop")
	}
}

func TestForceRunWhileStopped(t *testing.T) {
	r := &countingRefresher{}
	s, err := NewScheduler(r, "@every 1h", time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}

	if s.ForceRun() {
		t.Error("ForceRun accepted before Start")
	}

	s.Start()
	waitFor(t, func() bool { return r.calls.Load() == 1 })
	s.Stop()

	if s.ForceRun() {
		t.Error("ForceRun accepted after Stop")
	}
	time.Sleep(20 * time.Millisecond)
	if n := r.calls.Load(); n != 1 {
		t.Errorf("expected no refresh while stopped, got %d calls", n)
	}
}

func TestStopRacesForceRun(t *testing.T) {
	r := &countingRefresher{}
	s, err := NewScheduler(r, "@every 1h", time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler failed: %v", err)
	}
	s.Start()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.ForceRun()
		}
	}()
	s.Stop()
	<-done

	if s.GetStatus()["running"] != false {
		t.Error("scheduler still running after Stop")
	}
}

func TestInvalidSchedule(t *testing.T) {
	if _, err := NewScheduler(&countingRefresher{}, "every now and then", time.Second, zap.NewNop()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}
