package models

import "time"

// Round labels the stage a match belongs to.
type Round string

const (
	RoundGroup Round = "Group"
	RoundSemi  Round = "Semi"
	RoundFinal Round = "Final"
)

// GroupLabel identifies the originating group of a group-stage match.
// Knockout matches carry no label.
type GroupLabel string

const (
	GroupA GroupLabel = "A"
	GroupB GroupLabel = "B"
)

// DuelMatch is a two-party contest. The pairing is fixed at creation;
// winner and score may be corrected later (last write wins).
type DuelMatch struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	P1ID         int         `json:"p1_id" db:"p1_player_id"`
	P2ID         int         `json:"p2_id" db:"p2_player_id"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_player_id"`
	Score        *string     `json:"score,omitempty" db:"score"`
	Round        Round       `json:"round" db:"round"`
	GroupLabel   *GroupLabel `json:"group,omitempty" db:"group_label"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

func (m *DuelMatch) HasParticipant(playerID int) bool {
	return m.P1ID == playerID || m.P2ID == playerID
}

func (m *DuelMatch) Resolved() bool {
	return m.WinnerID != nil
}

// RoyaleMatch is a multi-party contest covering a whole group at once.
// AdvancerIDs holds the recorded winners set for formats that advance
// more than one participant out of the match.
type RoyaleMatch struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	PlayerIDs    []int       `json:"player_ids" db:"-"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_player_id"`
	AdvancerIDs  []int       `json:"advancer_ids,omitempty" db:"-"`
	Round        Round       `json:"round" db:"round"`
	GroupLabel   *GroupLabel `json:"group,omitempty" db:"group_label"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

func (m *RoyaleMatch) HasParticipant(playerID int) bool {
	for _, id := range m.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

func (m *RoyaleMatch) Resolved() bool {
	return m.WinnerID != nil || len(m.AdvancerIDs) > 0
}
