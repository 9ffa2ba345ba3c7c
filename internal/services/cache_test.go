package services

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/freeride-assistant/internal/models"
)

var cacheWindow = models.Window{
	Start: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
}

func TestSummaryCacheSetGet(t *testing.T) {
	c := NewSummaryCache(time.Minute, 10, zap.NewNop())
	defer c.Stop()

	want := CachedSummary{Summary: models.ResortSummary{Name: "Cerler (Spain)", SnowfallTotal: 12}, Sky: "Overcast"}
	c.Set("Cerler (Spain)", cacheWindow, want)

	got, ok := c.Get("Cerler (Spain)", cacheWindow)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Summary != want.Summary || got.Sky != want.Sky {
		t.Errorf("got %+v, want %+v", got, want)
	}

	other := models.Window{Start: cacheWindow.Start, End: cacheWindow.End.AddDate(0, 0, 1)}
	if _, ok := c.Get("Cerler (Spain)", other); ok {
		t.Error("different window must miss")
	}

	stats := c.GetStats()
	if stats["hits"] != 1 || stats["misses"] != 1 {
		t.Errorf("unexpected stats %v", stats)
	}
}

func TestSummaryCacheExpiry(t *testing.T) {
	c := NewSummaryCache(10*time.Millisecond, 10, zap.NewNop())
	defer c.Stop()

	c.Set("A", cacheWindow, CachedSummary{})
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("A", cacheWindow); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not removed, len=%d", c.Len())
	}
}

func TestSummaryCacheEviction(t *testing.T) {
	c := NewSummaryCache(time.Minute, 2, zap.NewNop())
	defer c.Stop()

	c.Set("A", cacheWindow, CachedSummary{})
	time.Sleep(time.Millisecond)
	c.Set("B", cacheWindow, CachedSummary{})
	time.Sleep(time.Millisecond)
	c.Set("C", cacheWindow, CachedSummary{})

	if c.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", c.Len())
	}
	if _, ok := c.Get("A", cacheWindow); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("C", cacheWindow); !ok {
		t.Error("newest entry missing")
	}
}

func TestSummaryCacheDisabled(t *testing.T) {
	c := NewSummaryCache(0, 10, zap.NewNop())
	defer c.Stop()

	c.Set("A", cacheWindow, CachedSummary{})
	if _, ok := c.Get("A", cacheWindow); ok {
		t.Fatal("zero duration must disable caching")
	}
	c.Stop()
}
