package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("RGAPI-test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, server
}

func TestAccountByRiotID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Riot-Token") != "RGAPI-test-key" {
			t.Error("Expected X-Riot-Token header to be set")
		}
		if r.URL.Path != "/riot/account/v1/accounts/by-riot-id/Nakhla/Tree" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("X-App-Rate-Limit", "20:1,100:120")
		w.Header().Set("X-App-Rate-Limit-Count", "3:1,7:120")
		json.NewEncoder(w).Encode(Account{PUUID: "puuid-123", GameName: "Nakhla", TagLine: "Tree"})
	}))

	account, usage, err := client.AccountByRiotID(context.Background(), "europe", "Nakhla", "Tree")
	if err != nil {
		t.Fatalf("AccountByRiotID failed: %v", err)
	}
	if account.PUUID != "puuid-123" {
		t.Errorf("PUUID = %q, want puuid-123", account.PUUID)
	}
	if usage.Used != 3 || usage.Limit != 20 {
		t.Errorf("usage = %d/%d, want 3/20", usage.Used, usage.Limit)
	}
}

func TestAccountByRiotID_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, _, err := client.AccountByRiotID(context.Background(), "europe", "NoSuch", "Player")
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
}

func TestMatchIDs_Pagination(t *testing.T) {
	// Serve 100 ids, then 50, then an empty page.
	pages := [][]string{makeIDs(0, 100), makeIDs(100, 50), {}}
	var requests int
	var starts []int

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("queue") != "420" {
			t.Errorf("queue = %q, want 420", q.Get("queue"))
		}
		start, _ := strconv.Atoi(q.Get("start"))
		starts = append(starts, start)

		page := pages[len(pages)-1]
		if requests < len(pages) {
			page = pages[requests]
		}
		requests++

		w.Header().Set("X-App-Rate-Limit-Count", fmt.Sprintf("%d:1", requests))
		json.NewEncoder(w).Encode(page)
	}))

	ids, usage, err := client.MatchIDs(context.Background(), "europe", "puuid-123", 300)
	if err != nil {
		t.Fatalf("MatchIDs failed: %v", err)
	}
	if len(ids) != 150 {
		t.Errorf("got %d ids, want 150 (stop on empty page)", len(ids))
	}
	if requests != 3 {
		t.Errorf("made %d requests, want 3", requests)
	}
	for i, want := range []int{0, 100, 150} {
		if starts[i] != want {
			t.Errorf("request %d start = %d, want %d", i, starts[i], want)
		}
	}
	// Usage reflects the last non-empty page fetched... the empty page
	// also reports usage, and the freshest report wins.
	if usage.Used != 3 {
		t.Errorf("usage.Used = %d, want 3", usage.Used)
	}
}

func TestMatchIDs_CountCap(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count, _ := strconv.Atoi(r.URL.Query().Get("count"))
		if count != 30 {
			t.Errorf("count = %d, want 30 (must not over-request)", count)
		}
		json.NewEncoder(w).Encode(makeIDs(0, count))
	}))

	ids, _, err := client.MatchIDs(context.Background(), "europe", "puuid-123", 30)
	if err != nil {
		t.Fatalf("MatchIDs failed: %v", err)
	}
	if len(ids) != 30 {
		t.Errorf("got %d ids, want 30", len(ids))
	}
}

func TestMatchIDs_PartialOnLaterPageError(t *testing.T) {
	var requests int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(makeIDs(0, 100))
	}))

	ids, _, err := client.MatchIDs(context.Background(), "europe", "puuid-123", 200)
	if err != nil {
		t.Fatalf("Expected partial result, got error: %v", err)
	}
	if len(ids) != 100 {
		t.Errorf("got %d ids, want 100 from the successful first page", len(ids))
	}
}

func TestMatch_DecodesParticipants(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lol/match/v5/matches/EUW1_123" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"metadata": {"matchId": "EUW1_123"},
			"info": {
				"queueId": 420,
				"gameDuration": 1800,
				"participants": [
					{"participantId": 1, "puuid": "p1", "teamId": 100,
					 "championName": "Ahri", "kills": 5, "item0": 3157,
					 "challenges": {"kda": 3.5}}
				]
			}
		}`))
	}))

	match, _, err := client.Match(context.Background(), "europe", "EUW1_123")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if match.Info.QueueID != 420 {
		t.Errorf("QueueID = %d, want 420", match.Info.QueueID)
	}
	p := match.Info.Participants[0]
	if p.Kills == nil || *p.Kills != 5 {
		t.Error("kills not decoded")
	}
	if p.Deaths != nil {
		t.Error("absent deaths should stay nil, not default to 0")
	}
	if p.Item0 != 3157 || p.Item1 != 0 {
		t.Errorf("items = %d/%d, want 3157/0", p.Item0, p.Item1)
	}
	if p.Challenges.KDA != 3.5 {
		t.Errorf("challenges.kda = %v, want 3.5", p.Challenges.KDA)
	}
}

func TestTimeline_DecodesFrames(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"metadata": {"matchId": "EUW1_123"},
			"info": {
				"frameInterval": 60000,
				"participants": [{"participantId": 1, "puuid": "p1"}],
				"frames": [
					{"timestamp": 0, "participantFrames": {"1": {"totalGold": 500,
					 "position": {"x": 560, "y": 581}}},
					 "events": [{"type": "ITEM_PURCHASED", "timestamp": 3000,
					  "participantId": 1, "itemId": 1055}]}
				]
			}
		}`))
	}))

	tl, _, err := client.Timeline(context.Background(), "europe", "EUW1_123")
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if len(tl.Info.Frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(tl.Info.Frames))
	}
	pf, ok := tl.Info.Frames[0].ParticipantFrames["1"]
	if !ok {
		t.Fatal("participant frame 1 missing")
	}
	if pf.TotalGold == nil || *pf.TotalGold != 500 {
		t.Error("totalGold not decoded")
	}
	if pf.XP != nil {
		t.Error("absent xp should stay nil")
	}
	if pf.Position == nil || pf.Position.X != 560 {
		t.Error("position not decoded")
	}
	if tl.Info.Frames[0].Events[0].ItemID != 1055 {
		t.Error("event itemId not decoded")
	}
}

func TestParseUsage_Defaults(t *testing.T) {
	h := http.Header{}
	u := parseUsage(h)
	if u.Used != 0 || u.Limit != 20 {
		t.Errorf("missing headers: usage = %d/%d, want 0/20", u.Used, u.Limit)
	}

	h.Set("X-App-Rate-Limit-Count", "17:1,40:120")
	h.Set("X-App-Rate-Limit", "20:1,100:120")
	u = parseUsage(h)
	if u.Used != 17 || u.Limit != 20 {
		t.Errorf("usage = %d/%d, want 17/20 (only the leading pair counts)", u.Used, u.Limit)
	}

	h.Set("X-App-Rate-Limit-Count", "garbage")
	u = parseUsage(h)
	if u.Used != 0 {
		t.Errorf("malformed count header: Used = %d, want 0", u.Used)
	}
}

func makeIDs(start, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("EUW1_%07d", start+i)
	}
	return ids
}
