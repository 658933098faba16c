package ratelimit

import (
	"sync"
	"time"
)

// Resource identifies one independently rate-limited Riot API call class.
type Resource string

const (
	ResourceAccount   Resource = "account"
	ResourceMatchList Resource = "match_history"
	ResourceMatch     Resource = "match"
	ResourceTimeline  Resource = "timeline"
)

const (
	// DefaultLimit is assumed for a resource class before the API has
	// reported a window limit for it.
	DefaultLimit = 20

	// DefaultThreshold is the used/limit ratio above which the long
	// backoff kicks in.
	DefaultThreshold = 0.8
)

// Usage is the most recently observed usage for one resource class.
// The API reports cumulative window counts, not deltas, so Used can
// transiently exceed Limit when the server is ahead of us.
type Usage struct {
	Used       int
	Limit      int
	LastUpdate time.Time
}

// Tracker keeps the last reported (used, limit) pair per resource class
// and turns it into backoff recommendations. All methods are safe for
// concurrent use; the ingest loop is sequential today, but the tracker is
// shared state and stays guarded either way.
type Tracker struct {
	mu    sync.Mutex
	usage map[Resource]Usage
}

// NewTracker creates a tracker with every resource class at zero usage.
func NewTracker() *Tracker {
	t := &Tracker{usage: make(map[Resource]Usage)}
	now := time.Now()
	for _, r := range []Resource{ResourceAccount, ResourceMatchList, ResourceMatch, ResourceTimeline} {
		t.usage[r] = Usage{Used: 0, Limit: DefaultLimit, LastUpdate: now}
	}
	return t
}

// Record overwrites the stored usage for a resource class. Overwrite, not
// increment: the upstream headers carry the full window count.
func (t *Tracker) Record(r Resource, used, limit int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage[r] = Usage{Used: used, Limit: limit, LastUpdate: time.Now()}
}

// Snapshot returns the last observed usage for a resource class. Unseen
// resources report zero usage against the default limit.
func (t *Tracker) Snapshot(r Resource) Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	if u, ok := t.usage[r]; ok {
		return u
	}
	return Usage{Used: 0, Limit: DefaultLimit}
}

// RecommendDelay returns how long the caller should sleep before the next
// call on this resource class. Graduated heuristic, checked in priority
// order: at or above the threshold → 10s, three or fewer calls remaining →
// 2s, five or fewer → 1s, otherwise no sleep. It does not know the
// window's reset time, so under bursty use it can under- or over-sleep.
func (t *Tracker) RecommendDelay(r Resource) time.Duration {
	u := t.Snapshot(r)

	remaining := u.Limit - u.Used
	switch {
	case float64(u.Used) >= float64(u.Limit)*DefaultThreshold:
		return 10 * time.Second
	case remaining <= 3:
		return 2 * time.Second
	case remaining <= 5:
		return time.Second
	}
	return 0
}
