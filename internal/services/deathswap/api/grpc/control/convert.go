package control

import (
	"time"

	"github.com/louisbranch/deathswap/internal/services/deathswap/journal"
	"github.com/louisbranch/deathswap/internal/services/deathswap/round"
)

// snapshotFields renders a snapshot as structpb-compatible values.
func snapshotFields(s round.Snapshot, name func(round.Identity) string) map[string]any {
	players := func(ids []round.Identity) []any {
		out := make([]any, 0, len(ids))
		for _, id := range ids {
			out = append(out, map[string]any{"id": id.String(), "name": name(id)})
		}
		return out
	}
	assignments := make([]any, 0, len(s.Assignments))
	for _, receiver := range s.Contestants {
		owner, ok := s.Assignments[receiver]
		if !ok {
			continue
		}
		assignments = append(assignments, map[string]any{
			"receiver":      receiver.String(),
			"receiver_name": name(receiver),
			"owner":         owner.String(),
			"owner_name":    name(owner),
		})
	}
	return map[string]any{
		"state":                s.State.String(),
		"round":                s.Round,
		"contestants":          players(s.Contestants),
		"spectators":           players(s.Spectators),
		"pending":              players(s.Pending),
		"assignments":          assignments,
		"started_at":           timestamp(s.StartedAt),
		"last_swap":            timestamp(s.LastSwap),
		"next_delay_seconds":   s.NextDelay.Seconds(),
		"next_swap_in_seconds": s.NextSwapIn.Seconds(),
		"swapping":             s.Swapping,
	}
}

func roundsFields(rounds []journal.Round) []any {
	out := make([]any, 0, len(rounds))
	for _, r := range rounds {
		elims := make([]any, 0, len(r.Eliminations))
		for _, e := range r.Eliminations {
			elims = append(elims, map[string]any{
				"victim_id":   e.VictimID,
				"victim_name": e.VictimName,
				"owner_id":    e.OwnerID,
				"owner_name":  e.OwnerName,
				"remaining":   e.Remaining,
				"at":          timestamp(e.At),
			})
		}
		out = append(out, map[string]any{
			"number":       r.Number,
			"started_at":   timestamp(r.StartedAt),
			"ended_at":     timestamp(r.EndedAt),
			"participants": r.Participants,
			"outcome":      string(r.Outcome),
			"winner_id":    r.WinnerID,
			"winner_name":  r.WinnerName,
			"eliminations": elims,
		})
	}
	return out
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
