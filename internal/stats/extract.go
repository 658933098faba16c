// Package stats flattens one match's nested per-participant payload into a
// flat stat record for a single tracked player.
package stats

import (
	"reflect"
	"strings"

	"match-ingest/internal/riot"
)

// Record is one flat (matchId, puuid) stat record. Keys are the source
// camelCase field names; challenges metrics carry a "challenges." prefix.
// Top-level fields absent from the payload are omitted, never defaulted,
// so a partial record is valid.
type Record map[string]any

// unknownChampion marks a lane with no opposing-team participant in the
// same position.
const unknownChampion = "Unknown"

// Extract pulls the tracked player's stats out of a match. It returns
// false when the match is not ranked solo queue or the player is not among
// the participants; the caller skips such matches.
func Extract(m *riot.MatchResponse, targetPUUID string) (Record, bool) {
	if m == nil || m.Info.QueueID != riot.QueueRankedSolo {
		return nil, false
	}

	var target *riot.Participant
	for i := range m.Info.Participants {
		if m.Info.Participants[i].PUUID == targetPUUID {
			target = &m.Info.Participants[i]
			break
		}
	}
	if target == nil {
		return nil, false
	}

	rec := Record{
		"matchId": m.Metadata.MatchID,
		"puuid":   targetPUUID,
	}

	if enemy := laneOpponent(m.Info.Participants, target); enemy != nil {
		if enemy.ChampionName != nil {
			rec["enemyChampion"] = *enemy.ChampionName
		}
		rec["enemyPuuid"] = enemy.PUUID
		if enemy.IndividualPosition != nil {
			rec["enemyIndividualPosition"] = *enemy.IndividualPosition
		}
	} else {
		rec["enemyChampion"] = unknownChampion
	}

	// The participant struct's json tags are the field-mapping table:
	// pointer fields are optional and omitted when nil, value fields
	// (item slots, itemsPurchased) always land with their defaults.
	flatten(reflect.ValueOf(*target), "", rec)

	// Challenges are value fields on purpose: anything the API omitted
	// from the sub-structure reads as 0, unlike top-level stats.
	flatten(reflect.ValueOf(target.Challenges), "challenges.", rec)

	return rec, true
}

// laneOpponent finds the opposing-team participant sharing the target's
// individualPosition. Returns nil when no such participant exists; the
// caller must never fall back to the target's own data.
func laneOpponent(participants []riot.Participant, target *riot.Participant) *riot.Participant {
	pos := strVal(target.IndividualPosition)
	for i := range participants {
		p := &participants[i]
		if p.TeamID != target.TeamID && strVal(p.IndividualPosition) == pos {
			return p
		}
	}
	return nil
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// flatten copies a struct's fields into rec under their json tag names.
// Nil pointers are skipped so absent source fields stay absent; fields
// tagged stat:"-" are handled structurally elsewhere.
func flatten(v reflect.Value, prefix string, rec Record) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("stat") == "-" {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		rec[prefix+name] = fv.Interface()
	}
}
