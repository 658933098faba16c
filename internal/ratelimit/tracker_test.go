package ratelimit

import (
	"testing"
	"time"
)

func TestRecommendDelay(t *testing.T) {
	tests := []struct {
		name  string
		used  int
		limit int
		want  time.Duration
	}{
		{"at threshold", 16, 20, 10 * time.Second},
		{"above threshold", 19, 20, 10 * time.Second},
		{"over limit", 25, 20, 10 * time.Second},
		{"well below threshold", 10, 20, 0},
		// 18/20 is also >= threshold; the threshold check takes
		// precedence over the remaining<=3 check.
		{"two remaining", 18, 20, 10 * time.Second},
		{"three remaining large window", 97, 100, 2 * time.Second},
		{"five remaining large window", 95, 100, time.Second},
		{"six remaining large window", 94, 100, 0},
		{"fresh", 0, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			tr.Record(ResourceMatch, tt.used, tt.limit)
			if got := tr.RecommendDelay(ResourceMatch); got != tt.want {
				t.Errorf("RecommendDelay(%d/%d) = %v, want %v", tt.used, tt.limit, got, tt.want)
			}
		})
	}
}

func TestRecordOverwrites(t *testing.T) {
	tr := NewTracker()

	tr.Record(ResourceTimeline, 5, 20)
	tr.Record(ResourceTimeline, 3, 20)

	u := tr.Snapshot(ResourceTimeline)
	if u.Used != 3 {
		t.Errorf("Used = %d, want 3 (Record must overwrite, not accumulate)", u.Used)
	}
	if u.LastUpdate.IsZero() {
		t.Error("LastUpdate not set on Record")
	}
}

func TestSnapshotDefaults(t *testing.T) {
	tr := NewTracker()

	u := tr.Snapshot(ResourceAccount)
	if u.Used != 0 || u.Limit != DefaultLimit {
		t.Errorf("fresh tracker usage = %d/%d, want 0/%d", u.Used, u.Limit, DefaultLimit)
	}

	// Unknown resource classes also report the default.
	u = tr.Snapshot(Resource("something-else"))
	if u.Used != 0 || u.Limit != DefaultLimit {
		t.Errorf("unknown resource usage = %d/%d, want 0/%d", u.Used, u.Limit, DefaultLimit)
	}
}

func TestUsageIsPerResource(t *testing.T) {
	tr := NewTracker()
	tr.Record(ResourceMatch, 19, 20)

	if got := tr.RecommendDelay(ResourceTimeline); got != 0 {
		t.Errorf("timeline delay = %v, want 0 (match usage must not bleed over)", got)
	}
	if got := tr.RecommendDelay(ResourceMatch); got != 10*time.Second {
		t.Errorf("match delay = %v, want 10s", got)
	}
}
