package engine

import (
	"testing"

	"github.com/officegames/tournament-hub/models"
	"github.com/stretchr/testify/assert"
)

func groupPtr(l models.GroupLabel) *models.GroupLabel { return &l }

func duel(p1, p2 int, winner *int, label models.GroupLabel) models.DuelMatch {
	return models.DuelMatch{
		P1ID:       p1,
		P2ID:       p2,
		WinnerID:   winner,
		Round:      models.RoundGroup,
		GroupLabel: groupPtr(label),
	}
}

func winPtr(id int) *int { return &id }

func TestGroupStandingsRanksByWins(t *testing.T) {
	group := makePlayers(3)
	matches := []models.DuelMatch{
		duel(1, 2, winPtr(1), models.GroupA),
		duel(1, 3, winPtr(1), models.GroupA),
		duel(2, 3, winPtr(2), models.GroupA),
	}

	standings := GroupStandings(group, matches, models.GroupA)

	assert.Equal(t, []int{1, 2, 3}, standingIDs(standings))
	assert.Equal(t, 2, standings[0].Wins)
	assert.Equal(t, 2, standings[0].Played)
	assert.Equal(t, 0, standings[2].Wins)
}

func TestGroupStandingsHeadToHeadTiebreak(t *testing.T) {
	group := makePlayers(4)
	matches := []models.DuelMatch{
		duel(1, 3, winPtr(1), models.GroupA),
		duel(1, 4, winPtr(1), models.GroupA),
		duel(2, 1, winPtr(2), models.GroupA),
		duel(2, 3, winPtr(2), models.GroupA),
		duel(2, 4, winPtr(4), models.GroupA),
		duel(3, 4, winPtr(3), models.GroupA),
	}

	standings := GroupStandings(group, matches, models.GroupA)

	// 1 and 2 are tied on two wins, 3 and 4 on one; both ties fall to
	// the head-to-head result.
	assert.Equal(t, []int{2, 1, 3, 4}, standingIDs(standings))
}

func TestGroupStandingsThreeWayCycleKeepsGroupOrder(t *testing.T) {
	group := makePlayers(3)
	// 1 beat 2, 2 beat 3, 3 beat 1: one win each with no pairwise order.
	matches := []models.DuelMatch{
		duel(1, 2, winPtr(1), models.GroupA),
		duel(2, 3, winPtr(2), models.GroupA),
		duel(3, 1, winPtr(3), models.GroupA),
	}

	standings := GroupStandings(group, matches, models.GroupA)

	assert.Equal(t, []int{1, 2, 3}, standingIDs(standings))
	for _, s := range standings {
		assert.Equal(t, 1, s.Wins)
	}
}

func TestGroupStandingsKeepGroupOrderWithoutHeadToHead(t *testing.T) {
	group := makePlayers(3)
	matches := []models.DuelMatch{
		duel(1, 3, winPtr(1), models.GroupA),
		duel(2, 3, winPtr(2), models.GroupA),
		duel(1, 2, nil, models.GroupA),
	}

	standings := GroupStandings(group, matches, models.GroupA)

	assert.Equal(t, []int{1, 2, 3}, standingIDs(standings))
}

func TestGroupStandingsIgnoreOtherGroupsAndRounds(t *testing.T) {
	group := makePlayers(2)
	other := duel(1, 2, winPtr(2), models.GroupB)
	semi := models.DuelMatch{P1ID: 1, P2ID: 2, WinnerID: winPtr(2), Round: models.RoundSemi}
	matches := []models.DuelMatch{
		duel(1, 2, winPtr(1), models.GroupA),
		other,
		semi,
	}

	standings := GroupStandings(group, matches, models.GroupA)

	assert.Equal(t, []int{1, 2}, standingIDs(standings))
	assert.Equal(t, 1, standings[0].Wins)
	assert.Equal(t, 1, standings[0].Played)
}

func standingIDs(standings []Standing) []int {
	ids := make([]int, len(standings))
	for i, s := range standings {
		ids[i] = s.PlayerID
	}
	return ids
}
