package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"match-ingest/internal/archive"
	"match-ingest/internal/config"
	"match-ingest/internal/pipeline"
	"match-ingest/internal/ratelimit"
	"match-ingest/internal/riot"
	"match-ingest/internal/stats"
	"match-ingest/internal/store"
	"match-ingest/internal/timeline"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			fmt.Printf("Loaded .env from: %s\n", path)
			break
		}
	}

	riotID := flag.String("riot-id", "", "Riot ID to ingest (e.g., 'Player#EUW')")
	region := flag.String("region", "", "Routing region (defaults to RIOT_REGION)")
	count := flag.Int("count", 20, "Number of recent ranked matches to ingest")
	retries := flag.Int("retries", 0, "Timeline fetch attempts (defaults to TIMELINE_RETRIES)")
	dryRun := flag.Bool("dry-run", false, "Fetch and aggregate without writing to the database")
	flag.Parse()

	if *riotID == "" {
		fmt.Println("Usage:")
		fmt.Println("  ingest --riot-id='Player#EUW' [--count=20] [--region=europe] [--dry-run]")
		fmt.Println()
		fmt.Println("Fetches the player's recent ranked solo matches with timelines,")
		fmt.Println("extracts per-match stats and 5-minute timeline snapshots, and")
		fmt.Println("stores them in Postgres. Raw payloads are archived as JSONL.")
		fmt.Println()
		fmt.Println("RIOT_API_KEY is required; DATABASE_URL unless --dry-run.")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *region != "" {
		cfg.Region = *region
	}
	if *retries > 0 {
		cfg.TimelineRetries = *retries
	}
	if !*dryRun && cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set (use --dry-run to skip persistence)")
	}

	parts := strings.SplitN(*riotID, "#", 2)
	if len(parts) != 2 {
		log.Fatalf("Invalid Riot ID format '%s', expected 'GameName#TagLine'", *riotID)
	}
	gameName := strings.TrimSpace(parts[0])
	tagLine := strings.TrimSpace(parts[1])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n[Shutdown] Gracefully shutting down...")
		cancel()
	}()

	client, err := riot.NewClient(cfg.RiotAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Riot client: %v", err)
	}

	writer, err := archive.NewWriter(cfg.ArchiveDir)
	if err != nil {
		log.Fatalf("Failed to create archive writer: %v", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			log.Printf("Error closing archive: %v", err)
		}
	}()

	var db *store.Store
	if !*dryRun {
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.CreateTables(ctx); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
	}

	pipe := pipeline.New(client, ratelimit.NewTracker(), pipeline.Config{
		TimelineRetries: cfg.TimelineRetries,
		Archive:         writer,
	})

	startTime := time.Now()

	fmt.Printf("Looking up Riot ID: %s#%s...\n", gameName, tagLine)
	account, err := pipe.ResolvePlayer(ctx, cfg.Region, gameName, tagLine)
	if err != nil {
		log.Fatalf("Failed to resolve player: %v", err)
	}
	fmt.Printf("  Found PUUID: %s\n", account.PUUID)

	if db != nil {
		if err := db.SavePlayer(ctx, account.PUUID, account.GameName, account.TagLine, cfg.Region); err != nil {
			log.Fatalf("Failed to save player: %v", err)
		}
	}

	matchIDs, err := pipe.FetchMatches(ctx, cfg.Region, account.PUUID, *count)
	if err != nil {
		log.Fatalf("Failed to fetch match history: %v", err)
	}
	fmt.Printf("  Found %d ranked matches\n", len(matchIDs))

	batch := pipe.FetchBatch(ctx, cfg.Region, account.PUUID, matchIDs)
	for _, skip := range batch.Skipped {
		log.Printf("  Skipped %s: %s", skip.MatchID, skip.Reason)
	}

	statsStored := 0
	timelinesStored := 0
	for _, payload := range batch.Payloads {
		record, ok := stats.Extract(payload.Match, account.PUUID)
		if !ok {
			log.Printf("  %s: not a ranked solo match for this player, skipping stats", payload.MatchID)
			continue
		}

		var summaries []timeline.Summary
		var positions []timeline.PositionSample
		var wards []timeline.WardSample
		if payload.Timeline != nil {
			sum, pos, w, ok := timeline.Aggregate(payload.Timeline, account.PUUID)
			if !ok {
				log.Printf("  %s: player missing from timeline, skipping aggregation", payload.MatchID)
			} else {
				summaries = append(summaries, sum)
				positions = pos
				wards = w
			}
		}

		if db == nil {
			statsStored++
			timelinesStored += len(summaries)
			continue
		}

		if err := db.SaveMatch(ctx, payload.MatchID, account.PUUID, payload.Match.Info.QueueID, payload.Match.Info.GameDuration); err != nil {
			log.Fatalf("  Failed to save match %s: %v", payload.MatchID, err)
		}
		if err := db.SaveMatchRecords(ctx, []stats.Record{record}); err != nil {
			log.Fatalf("  Failed to save stats for %s: %v", payload.MatchID, err)
		}
		statsStored++

		if len(summaries) > 0 {
			if err := db.SaveTimelineSummaries(ctx, summaries); err != nil {
				log.Fatalf("  Failed to save timeline summary for %s: %v", payload.MatchID, err)
			}
			if err := db.SavePositionSamples(ctx, positions); err != nil {
				log.Fatalf("  Failed to save position samples for %s: %v", payload.MatchID, err)
			}
			if err := db.SaveWardSamples(ctx, wards); err != nil {
				log.Fatalf("  Failed to save ward samples for %s: %v", payload.MatchID, err)
			}
			timelinesStored++
		}
	}

	if err := writer.Close(); err != nil {
		log.Printf("Error closing archive: %v", err)
	}
	if n, err := writer.Sweep(); err != nil {
		log.Printf("Archive sweep incomplete: %v", err)
	} else if n > 0 {
		fmt.Printf("Compressed %d archive file(s) to cold storage\n", n)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\n=== Ingest Complete ===\n")
	fmt.Printf("Player: %s#%s\n", account.GameName, account.TagLine)
	fmt.Printf("Total time: %s\n", formatDuration(elapsed))
	fmt.Printf("Matches fetched: %d\n", len(batch.Payloads))
	fmt.Printf("Already seen: %d\n", batch.Deduped)
	fmt.Printf("Skipped: %d\n", len(batch.Skipped))
	fmt.Printf("Stat rows: %d\n", statsStored)
	fmt.Printf("Timeline summaries: %d\n", timelinesStored)
	if *dryRun {
		fmt.Println("Dry run: nothing was written to the database")
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%02dm%02ds", hours, mins, secs)
}
