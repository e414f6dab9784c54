package models

import "time"

// TournamentStatus values correspond to the ENUM in the database.
// A tournament only ever moves forward through these states.
type TournamentStatus string

const (
	StatusScheduled  TournamentStatus = "Scheduled"
	StatusGroupStage TournamentStatus = "GroupStage"
	StatusSemifinal  TournamentStatus = "Semifinal"
	StatusFinal      TournamentStatus = "Final"
	StatusCompleted  TournamentStatus = "Completed"
)

var statusOrder = map[TournamentStatus]int{
	StatusScheduled:  0,
	StatusGroupStage: 1,
	StatusSemifinal:  2,
	StatusFinal:      3,
	StatusCompleted:  4,
}

func (s TournamentStatus) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next keeps the
// status monotonic. Staying in place is always allowed.
func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	cur, ok1 := statusOrder[s]
	nxt, ok2 := statusOrder[next]
	return ok1 && ok2 && nxt >= cur
}

// Tournament owns its groups and matches outright; players are held
// by non-owning reference. Version backs the optimistic concurrency
// check on every persisted mutation.
type Tournament struct {
	ID        int              `json:"id" db:"id"`
	GameID    int              `json:"game_id" db:"game_id"`
	Status    TournamentStatus `json:"status" db:"status"`
	Version   int              `json:"version" db:"version"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`

	// Related entities, populated by the service layer.
	Game          *Game         `json:"game,omitempty" db:"-"`
	GroupA        []Player      `json:"group_a,omitempty" db:"-"`
	GroupB        []Player      `json:"group_b,omitempty" db:"-"`
	DuelMatches   []DuelMatch   `json:"duel_matches,omitempty" db:"-"`
	RoyaleMatches []RoyaleMatch `json:"royale_matches,omitempty" db:"-"`
}

// Group returns the members of the labeled group.
func (t *Tournament) Group(label GroupLabel) []Player {
	if label == GroupA {
		return t.GroupA
	}
	return t.GroupB
}

// FindDuelMatch returns the owned duel match with the given id, or nil.
func (t *Tournament) FindDuelMatch(id int) *DuelMatch {
	for i := range t.DuelMatches {
		if t.DuelMatches[i].ID == id {
			return &t.DuelMatches[i]
		}
	}
	return nil
}

// FindRoyaleMatch returns the owned royale match with the given id, or nil.
func (t *Tournament) FindRoyaleMatch(id int) *RoyaleMatch {
	for i := range t.RoyaleMatches {
		if t.RoyaleMatches[i].ID == id {
			return &t.RoyaleMatches[i]
		}
	}
	return nil
}
