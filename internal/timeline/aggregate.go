// Package timeline converts a match's irregular event stream into
// fixed-interval cumulative snapshots, first-occurrence markers, and
// spatial traces for one tracked participant.
package timeline

import (
	"math"
	"strconv"

	"match-ingest/internal/riot"
)

// boundaryStep is the fixed interval, in minutes, at which cumulative
// snapshots are taken.
const boundaryStep = 5

// msPerMinute converts frame indexes and boundaries to event timestamps.
const msPerMinute = 60000

// Snapshot holds the cumulative counters from match start through one
// boundary minute plus the instantaneous state read from that minute's
// frame. Counters at a later boundary are supersets of earlier ones by
// construction. State fields are pointers: a frame that lacks them yields
// no value rather than zero.
type Snapshot struct {
	Minute int `json:"minute"`

	// Instantaneous state at the boundary frame.
	Gold          *int `json:"gold,omitempty"`
	XP            *int `json:"xp,omitempty"`
	Level         *int `json:"level,omitempty"`
	CS            int  `json:"cs"`
	JungleCS      *int `json:"jungleCs,omitempty"`
	AllyJungleCS  *int `json:"allyJungleCs,omitempty"`
	EnemyJungleCS *int `json:"enemyJungleCs,omitempty"`
	PosX          *int `json:"posX,omitempty"`
	PosY          *int `json:"posY,omitempty"`

	// Cumulative counters from match start through this boundary.
	Kills              int     `json:"kills"`
	Deaths             int     `json:"deaths"`
	Assists            int     `json:"assists"`
	SoloKills          int     `json:"soloKills"`
	KDA                float64 `json:"kda"`
	WardsPlaced        int     `json:"wardsPlaced"`
	WardsKilled        int     `json:"wardsKilled"`
	ControlWardsBought int     `json:"controlWardsBought"`
	Plates             int     `json:"plates"`
	Turrets            int     `json:"turrets"`
	Dragons            int     `json:"dragons"`
	ElderDragons       int     `json:"elderDragons"`
	Barons             int     `json:"barons"`
	Heralds            int     `json:"heralds"`
	VoidGrubs          int     `json:"voidGrubs"`
	VoidScuttlers      int     `json:"voidScuttlers"`
	EliteMonsters      int     `json:"eliteMonsters"`
}

// Summary is the per-(matchId, puuid) aggregation of a whole timeline.
type Summary struct {
	MatchID string `json:"matchId"`
	PUUID   string `json:"puuid"`

	// DurationMin is the index of the last frame; -1 for a timeline with
	// no frames (degenerate but valid).
	DurationMin      int     `json:"matchDurationMin"`
	DurationMs       int64   `json:"matchDurationMs"`
	DurationExactMin float64 `json:"matchDurationExactMin"`

	Snapshots []Snapshot `json:"snapshots,omitempty"`

	// First-occurrence markers, in ms from match start. Nil when the
	// action never happened.
	FirstItemTime  *int64  `json:"firstItemTime,omitempty"`
	FirstSkillUsed *string `json:"firstSkillUsed,omitempty"`
	FirstWardTime  *int64  `json:"firstWardTime,omitempty"`
	FirstKillTime  *int64  `json:"firstKillTime,omitempty"`
	FirstDeathTime *int64  `json:"firstDeathTime,omitempty"`
}

// PositionSample is the tracked participant's map position at one frame.
type PositionSample struct {
	MatchID string `json:"matchId"`
	PUUID   string `json:"puuid"`
	Minute  int    `json:"minute"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// WardSample is one ward placement by the tracked participant. The
// position is the placer's own position at the containing minute, an
// approximation: the event carries no coordinates of its own.
type WardSample struct {
	MatchID   string `json:"matchId"`
	PUUID     string `json:"puuid"`
	Timestamp int64  `json:"timestamp"`
	Minute    int    `json:"minute"`
	WardType  string `json:"wardType"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// skillSlotNames maps SKILL_LEVEL_UP slots to ability names. Slot 4 (the
// ultimate) and anything else stays unmapped and yields no marker.
var skillSlotNames = map[int]string{
	1: "Q",
	2: "W",
	3: "E",
}

// Aggregate reduces one timeline to a summary plus spatial traces for the
// tracked participant. It returns false when the PUUID cannot be mapped to
// a participant id in this timeline; the caller skips the match.
func Aggregate(tl *riot.TimelineResponse, targetPUUID string) (Summary, []PositionSample, []WardSample, bool) {
	if tl == nil {
		return Summary{}, nil, nil, false
	}

	pid := 0
	found := false
	for _, p := range tl.Info.Participants {
		if p.PUUID == targetPUUID {
			pid = p.ParticipantID
			found = true
			break
		}
	}
	if !found {
		return Summary{}, nil, nil, false
	}

	frames := tl.Info.Frames
	summary := Summary{
		MatchID:     tl.Metadata.MatchID,
		PUUID:       targetPUUID,
		DurationMin: len(frames) - 1,
	}
	if len(frames) > 0 {
		last := frames[len(frames)-1].Timestamp
		summary.DurationMs = last
		summary.DurationExactMin = math.Round(float64(last)/msPerMinute*100) / 100
	}

	// Frames are time-ordered and events within a frame arrive ordered,
	// so the flattened sequence is chronological.
	var events []riot.Event
	for _, f := range frames {
		events = append(events, f.Events...)
	}

	for minute := boundaryStep; minute <= summary.DurationMin; minute += boundaryStep {
		summary.Snapshots = append(summary.Snapshots, snapshotAt(frames, events, pid, minute))
	}

	summary.FirstItemTime = firstEvent(events, riot.EventItemPurchased, func(e riot.Event) bool {
		return e.ParticipantID == pid
	})
	summary.FirstSkillUsed = firstSkill(events, pid)
	summary.FirstWardTime = firstEvent(events, riot.EventWardPlaced, func(e riot.Event) bool {
		return e.CreatorID == pid
	})
	summary.FirstKillTime = firstEvent(events, riot.EventChampionKill, func(e riot.Event) bool {
		return e.KillerID == pid
	})
	summary.FirstDeathTime = firstEvent(events, riot.EventChampionKill, func(e riot.Event) bool {
		return e.VictimID == pid
	})

	return summary, positionSamples(tl, frames, pid, targetPUUID), wardSamples(tl, frames, events, pid, targetPUUID), true
}

// snapshotAt builds the cumulative snapshot for one boundary minute.
func snapshotAt(frames []riot.Frame, events []riot.Event, pid, minute int) Snapshot {
	s := Snapshot{Minute: minute}

	// Instantaneous state: a direct read of the boundary frame, not an
	// accumulation. Frames are assumed to sit at 1-minute indexes.
	if minute < len(frames) {
		if pf, ok := frames[minute].ParticipantFrames[pidKey(pid)]; ok {
			s.Gold = pf.TotalGold
			s.XP = pf.XP
			s.Level = pf.Level
			s.CS = intVal(pf.MinionsKilled) + intVal(pf.JungleMinionsKilled)
			s.JungleCS = pf.JungleMinionsKilled
			s.AllyJungleCS = pf.TotalAllyJungleMinionsKilled
			s.EnemyJungleCS = pf.TotalEnemyJungleMinionsKilled
			if pf.Position != nil {
				s.PosX = &pf.Position.X
				s.PosY = &pf.Position.Y
			}
		}
	}

	cutoff := int64(minute) * msPerMinute
	for _, e := range events {
		if e.Timestamp > cutoff {
			continue
		}
		countEvent(&s, e, pid)
	}

	s.KDA = kda(s.Kills, s.Deaths, s.Assists)
	return s
}

func countEvent(s *Snapshot, e riot.Event, pid int) {
	switch e.Type {
	case riot.EventChampionKill:
		if e.KillerID == pid {
			s.Kills++
			if len(e.AssistingParticipantIDs) == 0 {
				s.SoloKills++
			}
		}
		if e.VictimID == pid {
			s.Deaths++
		}
		if containsInt(e.AssistingParticipantIDs, pid) {
			s.Assists++
		}

	case riot.EventWardPlaced:
		if e.CreatorID == pid {
			s.WardsPlaced++
		}

	case riot.EventWardKill:
		if e.KillerID == pid {
			s.WardsKilled++
		}

	case riot.EventItemPurchased:
		if e.ParticipantID == pid && e.ItemID == riot.ItemControlWard {
			s.ControlWardsBought++
		}

	case riot.EventTurretPlateDestroyed:
		if e.KillerID == pid {
			s.Plates++
		}

	case riot.EventBuildingKill:
		if e.BuildingType == riot.BuildingTower &&
			(e.KillerID == pid || containsInt(e.AssistingParticipantIDs, pid)) {
			s.Turrets++
		}

	case riot.EventEliteMonsterKill:
		if e.KillerID != pid && !containsInt(e.AssistingParticipantIDs, pid) {
			return
		}
		switch e.MonsterType {
		case riot.MonsterDragon:
			s.Dragons++
		case riot.MonsterElderDragon:
			s.ElderDragons++
		case riot.MonsterBaron:
			s.Barons++
		case riot.MonsterRiftHerald:
			s.Heralds++
		case riot.MonsterVoidGrub:
			s.VoidGrubs++
		case riot.MonsterVoidScuttler:
			s.VoidScuttlers++
		}
		s.EliteMonsters++
	}
}

// kda is (kills+assists)/max(1, deaths) rounded to two decimals; the
// zero-death case divides by one.
func kda(kills, deaths, assists int) float64 {
	d := deaths
	if d < 1 {
		d = 1
	}
	return math.Round(float64(kills+assists)/float64(d)*100) / 100
}

func firstEvent(events []riot.Event, eventType string, match func(riot.Event) bool) *int64 {
	for _, e := range events {
		if e.Type == eventType && match(e) {
			ts := e.Timestamp
			return &ts
		}
	}
	return nil
}

// firstSkill reports the named ability of the target's first skill
// level-up. The scan stops at the first level-up regardless of slot, so an
// unmapped slot (the ultimate) yields no value rather than the next basic
// ability.
func firstSkill(events []riot.Event, pid int) *string {
	for _, e := range events {
		if e.Type != riot.EventSkillLevelUp || e.ParticipantID != pid {
			continue
		}
		if name, ok := skillSlotNames[e.SkillSlot]; ok {
			return &name
		}
		return nil
	}
	return nil
}

// positionSamples emits one sample per frame that carries a position for
// the target. Frames without one are skipped, not zero-filled.
func positionSamples(tl *riot.TimelineResponse, frames []riot.Frame, pid int, puuid string) []PositionSample {
	var samples []PositionSample
	for minute, f := range frames {
		pf, ok := f.ParticipantFrames[pidKey(pid)]
		if !ok || pf.Position == nil {
			continue
		}
		samples = append(samples, PositionSample{
			MatchID: tl.Metadata.MatchID,
			PUUID:   puuid,
			Minute:  minute,
			X:       pf.Position.X,
			Y:       pf.Position.Y,
		})
	}
	return samples
}

// wardSamples approximates each ward's location with the placer's position
// at the containing minute. Events past the last frame or in a frame
// without a position for the placer are dropped.
func wardSamples(tl *riot.TimelineResponse, frames []riot.Frame, events []riot.Event, pid int, puuid string) []WardSample {
	var samples []WardSample
	for _, e := range events {
		if e.Type != riot.EventWardPlaced || e.CreatorID != pid {
			continue
		}
		minute := int(e.Timestamp / msPerMinute)
		if minute >= len(frames) {
			continue
		}
		pf, ok := frames[minute].ParticipantFrames[pidKey(pid)]
		if !ok || pf.Position == nil {
			continue
		}
		samples = append(samples, WardSample{
			MatchID:   tl.Metadata.MatchID,
			PUUID:     puuid,
			Timestamp: e.Timestamp,
			Minute:    minute,
			WardType:  e.WardType,
			X:         pf.Position.X,
			Y:         pf.Position.Y,
		})
	}
	return samples
}

// pidKey converts a participant id to the stringified form used as the
// participantFrames map key.
func pidKey(pid int) string {
	return strconv.Itoa(pid)
}

func intVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
