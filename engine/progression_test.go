package engine

import (
	"testing"

	"github.com/officegames/tournament-hub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sixPlayerGroupStage builds a head-to-head tournament mid group stage:
// groups {1,2,3} and {4,5,6}, all six round-robin fixtures generated.
func sixPlayerGroupStage() *models.Tournament {
	players := makePlayers(6)
	return &models.Tournament{
		ID:     1,
		Status: models.StatusGroupStage,
		GroupA: players[:3],
		GroupB: players[3:],
		DuelMatches: []models.DuelMatch{
			duel(1, 2, nil, models.GroupA),
			duel(1, 3, nil, models.GroupA),
			duel(2, 3, nil, models.GroupA),
			duel(4, 5, nil, models.GroupB),
			duel(4, 6, nil, models.GroupB),
			duel(5, 6, nil, models.GroupB),
		},
	}
}

func resolveGroupStage(t *models.Tournament) {
	// Group A finishes 1 > 2 > 3, group B finishes 4 > 5 > 6.
	winners := []int{1, 1, 2, 4, 4, 5}
	for i := range t.DuelMatches {
		t.DuelMatches[i].WinnerID = winPtr(winners[i])
	}
}

func TestPartialGroupStageDoesNotAdvance(t *testing.T) {
	trn := sixPlayerGroupStage()
	trn.DuelMatches[0].WinnerID = winPtr(1)

	adv, err := NextAdvancement(trn, models.FormatHeadToHead)
	require.NoError(t, err)
	assert.Nil(t, adv)
}

func TestGroupStageWithoutMatchesDoesNotAdvance(t *testing.T) {
	trn := sixPlayerGroupStage()
	trn.DuelMatches = nil

	adv, err := NextAdvancement(trn, models.FormatHeadToHead)
	require.NoError(t, err)
	assert.Nil(t, adv, "an empty round must never count as complete")
}

func TestHeadToHeadSemifinalsCrossSeeded(t *testing.T) {
	trn := sixPlayerGroupStage()
	resolveGroupStage(trn)

	adv, err := NextAdvancement(trn, models.FormatHeadToHead)
	require.NoError(t, err)
	require.NotNil(t, adv)
	assert.Equal(t, models.StatusSemifinal, adv.Status)
	require.Len(t, adv.Fixtures, 2)

	// A1 vs B2 and A2 vs B1.
	assert.Equal(t, 1, adv.Fixtures[0].P1ID)
	assert.Equal(t, 5, adv.Fixtures[0].P2ID)
	assert.Equal(t, 2, adv.Fixtures[1].P1ID)
	assert.Equal(t, 4, adv.Fixtures[1].P2ID)
	for _, f := range adv.Fixtures {
		assert.True(t, f.Duel)
		assert.Equal(t, models.RoundSemi, f.Round)
		assert.Nil(t, f.GroupLabel, "knockout matches carry no group label")
	}
}

func TestSemifinalWinnersMeetInFinal(t *testing.T) {
	trn := sixPlayerGroupStage()
	resolveGroupStage(trn)
	trn.Status = models.StatusSemifinal
	trn.DuelMatches = append(trn.DuelMatches,
		models.DuelMatch{P1ID: 1, P2ID: 5, WinnerID: winPtr(1), Round: models.RoundSemi},
		models.DuelMatch{P1ID: 2, P2ID: 4, WinnerID: winPtr(4), Round: models.RoundSemi},
	)

	adv, err := NextAdvancement(trn, models.FormatHeadToHead)
	require.NoError(t, err)
	require.NotNil(t, adv)
	assert.Equal(t, models.StatusFinal, adv.Status)
	require.Len(t, adv.Fixtures, 1)
	assert.Equal(t, 1, adv.Fixtures[0].P1ID)
	assert.Equal(t, 4, adv.Fixtures[0].P2ID)
	assert.Equal(t, models.RoundFinal, adv.Fixtures[0].Round)
}

func TestFinalWinnerCompletesTournament(t *testing.T) {
	trn := sixPlayerGroupStage()
	resolveGroupStage(trn)
	trn.Status = models.StatusFinal
	trn.DuelMatches = append(trn.DuelMatches,
		models.DuelMatch{P1ID: 1, P2ID: 4, WinnerID: winPtr(4), Round: models.RoundFinal},
	)

	adv, err := NextAdvancement(trn, models.FormatHeadToHead)
	require.NoError(t, err)
	require.NotNil(t, adv)
	assert.Equal(t, models.StatusCompleted, adv.Status)
	assert.Empty(t, adv.Fixtures)
}

func TestCompletedTournamentNeverRegresses(t *testing.T) {
	trn := sixPlayerGroupStage()
	resolveGroupStage(trn)
	trn.Status = models.StatusCompleted

	adv, err := NextAdvancement(trn, models.FormatHeadToHead)
	require.NoError(t, err)
	assert.Nil(t, adv)
}

func TestTinyGroupsGoStraightToFinal(t *testing.T) {
	players := makePlayers(3)
	trn := &models.Tournament{
		Status: models.StatusGroupStage,
		GroupA: players[:2],
		GroupB: players[2:],
		DuelMatches: []models.DuelMatch{
			duel(1, 2, winPtr(2), models.GroupA),
		},
	}

	adv, err := NextAdvancement(trn, models.FormatHeadToHead)
	require.NoError(t, err)
	require.NotNil(t, adv)
	assert.Equal(t, models.StatusFinal, adv.Status)
	require.Len(t, adv.Fixtures, 1)
	assert.Equal(t, 2, adv.Fixtures[0].P1ID)
	assert.Equal(t, 3, adv.Fixtures[0].P2ID)
}

func TestBattleRoyaleAdvancersMeetInFinal(t *testing.T) {
	players := makePlayers(5)
	trn := &models.Tournament{
		Status: models.StatusGroupStage,
		GroupA: players[:3],
		GroupB: players[3:],
		RoyaleMatches: []models.RoyaleMatch{
			{PlayerIDs: []int{1, 2, 3}, AdvancerIDs: []int{2, 3}, Round: models.RoundGroup, GroupLabel: groupPtr(models.GroupA)},
			{PlayerIDs: []int{4, 5}, AdvancerIDs: []int{5, 4}, Round: models.RoundGroup, GroupLabel: groupPtr(models.GroupB)},
		},
	}

	adv, err := NextAdvancement(trn, models.FormatBattleRoyale)
	require.NoError(t, err)
	require.NotNil(t, adv)
	assert.Equal(t, models.StatusFinal, adv.Status, "battle royale skips the semifinal")
	require.Len(t, adv.Fixtures, 1)
	assert.False(t, adv.Fixtures[0].Duel)
	assert.Equal(t, []int{2, 3, 5, 4}, adv.Fixtures[0].PlayerIDs)
	assert.Equal(t, models.RoundFinal, adv.Fixtures[0].Round)
}

func TestBattleRoyalePartialGroupStageDoesNotAdvance(t *testing.T) {
	players := makePlayers(5)
	trn := &models.Tournament{
		Status: models.StatusGroupStage,
		GroupA: players[:3],
		GroupB: players[3:],
		RoyaleMatches: []models.RoyaleMatch{
			{PlayerIDs: []int{1, 2, 3}, AdvancerIDs: []int{1, 2}, Round: models.RoundGroup, GroupLabel: groupPtr(models.GroupA)},
			{PlayerIDs: []int{4, 5}, Round: models.RoundGroup, GroupLabel: groupPtr(models.GroupB)},
		},
	}

	adv, err := NextAdvancement(trn, models.FormatBattleRoyale)
	require.NoError(t, err)
	assert.Nil(t, adv)
}

func TestBattleRoyaleFinalNeedsWinner(t *testing.T) {
	trn := &models.Tournament{
		Status: models.StatusFinal,
		RoyaleMatches: []models.RoyaleMatch{
			{PlayerIDs: []int{1, 2, 4, 5}, AdvancerIDs: []int{1, 2}, Round: models.RoundFinal},
		},
	}

	// An advancers set alone does not finish a final battle.
	adv, err := NextAdvancement(trn, models.FormatBattleRoyale)
	require.NoError(t, err)
	assert.Nil(t, adv)

	trn.RoyaleMatches[0].WinnerID = winPtr(2)
	adv, err = NextAdvancement(trn, models.FormatBattleRoyale)
	require.NoError(t, err)
	require.NotNil(t, adv)
	assert.Equal(t, models.StatusCompleted, adv.Status)
}
