package engine

import (
	"fmt"

	"github.com/officegames/tournament-hub/models"
)

// Advancement describes one forward step of a tournament: the status it
// should move to and the fixtures opening the next round, if any.
type Advancement struct {
	Status   models.TournamentStatus
	Fixtures []*Fixture
}

// RoundComplete reports whether the given round holds at least one match
// and every match in it carries a result. A duel needs a winner; a group
// royale needs a non-empty advancers set; a final royale needs a winner.
func RoundComplete(t *models.Tournament, round models.Round) bool {
	total := 0
	for i := range t.DuelMatches {
		m := &t.DuelMatches[i]
		if m.Round != round {
			continue
		}
		total++
		if m.WinnerID == nil {
			return false
		}
	}
	for i := range t.RoyaleMatches {
		m := &t.RoyaleMatches[i]
		if m.Round != round {
			continue
		}
		total++
		if round == models.RoundFinal {
			if m.WinnerID == nil {
				return false
			}
		} else if len(m.AdvancerIDs) == 0 {
			return false
		}
	}
	return total > 0
}

// NextAdvancement decides whether the tournament may move forward given
// its current match state. It returns nil when the current round is
// incomplete or there is nothing left to schedule. The tournament must
// carry its groups and matches; the engine never loads state itself.
func NextAdvancement(t *models.Tournament, format models.GameFormat) (*Advancement, error) {
	switch t.Status {
	case models.StatusGroupStage:
		if !RoundComplete(t, models.RoundGroup) {
			return nil, nil
		}
		if format == models.FormatBattleRoyale {
			return royaleFinalFromGroups(t)
		}
		return knockoutFromStandings(t)

	case models.StatusSemifinal:
		if !RoundComplete(t, models.RoundSemi) {
			return nil, nil
		}
		return finalFromSemis(t)

	case models.StatusFinal:
		if !RoundComplete(t, models.RoundFinal) {
			return nil, nil
		}
		return &Advancement{Status: models.StatusCompleted}, nil

	default:
		return nil, nil
	}
}

// knockoutFromStandings seeds the knockout rounds for a head-to-head
// tournament: the top two of each group meet cross-seeded in the
// semifinals. When a group is too small for two qualifiers, the group
// winners go straight to the final instead.
func knockoutFromStandings(t *models.Tournament) (*Advancement, error) {
	standingsA := GroupStandings(t.GroupA, t.DuelMatches, models.GroupA)
	standingsB := GroupStandings(t.GroupB, t.DuelMatches, models.GroupB)

	if len(standingsA) >= 2 && len(standingsB) >= 2 {
		return &Advancement{
			Status: models.StatusSemifinal,
			Fixtures: []*Fixture{
				{Duel: true, P1ID: standingsA[0].PlayerID, P2ID: standingsB[1].PlayerID, Round: models.RoundSemi},
				{Duel: true, P1ID: standingsA[1].PlayerID, P2ID: standingsB[0].PlayerID, Round: models.RoundSemi},
			},
		}, nil
	}
	if len(standingsA) >= 1 && len(standingsB) >= 1 {
		return &Advancement{
			Status: models.StatusFinal,
			Fixtures: []*Fixture{
				{Duel: true, P1ID: standingsA[0].PlayerID, P2ID: standingsB[0].PlayerID, Round: models.RoundFinal},
			},
		}, nil
	}
	// One of the groups never had anyone; no opponent exists.
	return nil, nil
}

// royaleFinalFromGroups sends the recorded advancers of every group
// royale match into a single final battle. The Semifinal state is
// skipped; the transition stays forward-only.
func royaleFinalFromGroups(t *models.Tournament) (*Advancement, error) {
	advancers := make([]int, 0, 4)
	for _, label := range []models.GroupLabel{models.GroupA, models.GroupB} {
		for i := range t.RoyaleMatches {
			m := &t.RoyaleMatches[i]
			if m.Round != models.RoundGroup || m.GroupLabel == nil || *m.GroupLabel != label {
				continue
			}
			advancers = append(advancers, m.AdvancerIDs...)
		}
	}
	if len(advancers) < 2 {
		return nil, nil
	}
	return &Advancement{
		Status: models.StatusFinal,
		Fixtures: []*Fixture{
			{PlayerIDs: advancers, Round: models.RoundFinal},
		},
	}, nil
}

func finalFromSemis(t *models.Tournament) (*Advancement, error) {
	winners := make([]int, 0, 2)
	for i := range t.DuelMatches {
		m := &t.DuelMatches[i]
		if m.Round == models.RoundSemi && m.WinnerID != nil {
			winners = append(winners, *m.WinnerID)
		}
	}
	if len(winners) != 2 {
		return nil, fmt.Errorf("expected 2 semifinal winners, found %d", len(winners))
	}
	return &Advancement{
		Status: models.StatusFinal,
		Fixtures: []*Fixture{
			{Duel: true, P1ID: winners[0], P2ID: winners[1], Round: models.RoundFinal},
		},
	}, nil
}
