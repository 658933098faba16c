// Package pipeline sequences the Riot API fetches for one player's match
// history. Each request class is guarded by the shared rate tracker, every
// payload is archived raw, and per-match failures are skipped rather than
// aborting the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"match-ingest/internal/archive"
	"match-ingest/internal/ratelimit"
	"match-ingest/internal/riot"
)

const (
	// courtesyPause spaces out matches even when the tracker sees headroom.
	courtesyPause = 100 * time.Millisecond

	// emptyTimelineRetryPause is the wait before refetching a timeline
	// that came back without frames.
	emptyTimelineRetryPause = 1 * time.Second

	// DefaultTimelineRetries is the total attempts per timeline.
	DefaultTimelineRetries = 2

	// expectedMatches sizes the dedupe filter.
	expectedMatches = 500000
)

// ErrIdentity marks a failure to resolve a Riot ID to an account. No other
// fetch can proceed without the PUUID, so callers treat this as fatal.
var ErrIdentity = errors.New("failed to resolve account")

// Config holds pipeline tuning.
type Config struct {
	// TimelineRetries is the total attempts per timeline; values < 1
	// fall back to DefaultTimelineRetries.
	TimelineRetries int

	// Archive receives every raw payload. Nil disables archiving.
	Archive *archive.Writer
}

// MatchPayload is one fully fetched match. Timeline is nil when all
// attempts yielded no frames or the timeline fetch failed. The usage
// fields are the rate snapshots the API reported for each fetch.
type MatchPayload struct {
	MatchID       string
	Match         *riot.MatchResponse
	MatchUsage    riot.Usage
	Timeline      *riot.TimelineResponse
	TimelineUsage riot.Usage
}

// Skip records why a match was dropped from the batch.
type Skip struct {
	MatchID string
	Reason  string
}

// BatchResult is the outcome of one FetchBatch call.
type BatchResult struct {
	Payloads []MatchPayload
	Skipped  []Skip
	Deduped  int
}

// Pipeline drives account, match list, match, and timeline fetches under a
// shared rate tracker.
type Pipeline struct {
	client  *riot.Client
	tracker *ratelimit.Tracker
	archive *archive.Writer
	seen    *bloom.BloomFilter
	retries int

	// sleep is swapped in tests.
	sleep func(time.Duration)
}

// New creates a pipeline around a client and tracker.
func New(client *riot.Client, tracker *ratelimit.Tracker, cfg Config) *Pipeline {
	retries := cfg.TimelineRetries
	if retries < 1 {
		retries = DefaultTimelineRetries
	}
	return &Pipeline{
		client:  client,
		tracker: tracker,
		archive: cfg.Archive,
		seen:    bloom.NewWithEstimates(expectedMatches, 0.001),
		retries: retries,
		sleep:   time.Sleep,
	}
}

// ResolvePlayer maps a Riot ID to an account. Failure wraps ErrIdentity.
func (p *Pipeline) ResolvePlayer(ctx context.Context, region, gameName, tagLine string) (*riot.Account, error) {
	p.waitFor(ratelimit.ResourceAccount)

	account, usage, err := p.client.AccountByRiotID(ctx, region, gameName, tagLine)
	if err != nil {
		return nil, fmt.Errorf("%w: %s#%s: %v", ErrIdentity, gameName, tagLine, err)
	}
	p.tracker.Record(ratelimit.ResourceAccount, usage.Used, usage.Limit)
	return account, nil
}

// FetchMatches returns up to count recent ranked solo match IDs.
func (p *Pipeline) FetchMatches(ctx context.Context, region, puuid string, count int) ([]string, error) {
	p.waitFor(ratelimit.ResourceMatchList)

	ids, usage, err := p.client.MatchIDs(ctx, region, puuid, count)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match ids: %w", err)
	}
	p.tracker.Record(ratelimit.ResourceMatchList, usage.Used, usage.Limit)
	return ids, nil
}

// FetchBatch fetches match detail and timeline for each ID. Matches already
// seen by this pipeline are deduplicated; per-match failures are recorded
// as skips. Context cancellation stops the loop and returns what was
// gathered so far.
func (p *Pipeline) FetchBatch(ctx context.Context, region, puuid string, matchIDs []string) BatchResult {
	var result BatchResult

	for i, matchID := range matchIDs {
		if ctx.Err() != nil {
			log.Printf("[Pipeline] Batch canceled after %d/%d matches", i, len(matchIDs))
			return result
		}

		if p.seen.TestOrAddString(matchID) {
			result.Deduped++
			continue
		}

		match, matchUsage, err := p.fetchMatch(ctx, region, matchID, puuid)
		if err != nil {
			log.Printf("[Pipeline] Skipping %s: %v", matchID, err)
			result.Skipped = append(result.Skipped, Skip{MatchID: matchID, Reason: err.Error()})
			p.sleep(courtesyPause)
			continue
		}

		timeline, timelineUsage := p.fetchTimeline(ctx, region, matchID, puuid)

		result.Payloads = append(result.Payloads, MatchPayload{
			MatchID:       matchID,
			Match:         match,
			MatchUsage:    matchUsage,
			Timeline:      timeline,
			TimelineUsage: timelineUsage,
		})

		p.sleep(courtesyPause)
	}

	return result
}

func (p *Pipeline) fetchMatch(ctx context.Context, region, matchID, puuid string) (*riot.MatchResponse, riot.Usage, error) {
	p.waitFor(ratelimit.ResourceMatch)

	match, usage, err := p.client.Match(ctx, region, matchID)
	if err != nil {
		return nil, usage, fmt.Errorf("match fetch failed: %w", err)
	}
	p.tracker.Record(ratelimit.ResourceMatch, usage.Used, usage.Limit)

	if len(match.Info.Participants) == 0 {
		return nil, usage, errors.New("match detail has no participants")
	}

	p.archiveWrite(archive.KindMatch, matchID, puuid, match)
	return match, usage, nil
}

// fetchTimeline tries up to p.retries times to get a timeline with frames.
// A timeline that stays empty, or a fetch error, drops the timeline but
// never the match.
func (p *Pipeline) fetchTimeline(ctx context.Context, region, matchID, puuid string) (*riot.TimelineResponse, riot.Usage) {
	var lastUsage riot.Usage
	for attempt := 1; attempt <= p.retries; attempt++ {
		if attempt > 1 {
			p.sleep(emptyTimelineRetryPause)
		}

		p.waitFor(ratelimit.ResourceTimeline)

		timeline, usage, err := p.client.Timeline(ctx, region, matchID)
		if err != nil {
			log.Printf("[Pipeline] Timeline fetch for %s failed: %v (keeping match)", matchID, err)
			return nil, lastUsage
		}
		p.tracker.Record(ratelimit.ResourceTimeline, usage.Used, usage.Limit)
		lastUsage = usage

		if len(timeline.Info.Frames) == 0 {
			log.Printf("[Pipeline] Timeline for %s has no frames (attempt %d/%d)", matchID, attempt, p.retries)
			continue
		}

		p.archiveWrite(archive.KindTimeline, matchID, puuid, timeline)
		return timeline, usage
	}

	log.Printf("[Pipeline] Timeline for %s empty after %d attempts, proceeding without it", matchID, p.retries)
	return nil, lastUsage
}

// waitFor sleeps for however long the tracker recommends for one resource.
func (p *Pipeline) waitFor(resource ratelimit.Resource) {
	delay := p.tracker.RecommendDelay(resource)
	if delay <= 0 {
		return
	}
	usage := p.tracker.Snapshot(resource)
	log.Printf("[Pipeline] Rate guard on %s (%d/%d): sleeping %s", resource, usage.Used, usage.Limit, delay)
	p.sleep(delay)
}

// archiveWrite is best-effort: a failed archive write is logged, never
// propagated, so persistence of the parsed data still happens.
func (p *Pipeline) archiveWrite(kind, matchID, puuid string, payload any) {
	if p.archive == nil {
		return
	}
	if err := p.archive.Write(kind, matchID, puuid, payload); err != nil {
		log.Printf("[Pipeline] Archive write (%s %s) failed: %v", kind, matchID, err)
	}
}
