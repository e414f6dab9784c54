package engine

import (
	"sort"

	"github.com/officegames/tournament-hub/models"
)

// Standing is one row of a group table, ranked by wins.
type Standing struct {
	PlayerID int `json:"player_id"`
	Wins     int `json:"wins"`
	Played   int `json:"played"`
}

// GroupStandings ranks the members of one group by wins across that
// group's resolved duel matches. A two-way tie on wins is broken by the
// head-to-head result between the tied pair when one exists. Ties among
// three or more players keep group order: pairwise results cannot order
// a beat-cycle, so the pairwise rule applies only when exactly two
// players share a win count.
func GroupStandings(group []models.Player, matches []models.DuelMatch, label models.GroupLabel) []Standing {
	standings := make([]Standing, len(group))
	index := make(map[int]int, len(group))
	for i, p := range group {
		standings[i] = Standing{PlayerID: p.ID}
		index[p.ID] = i
	}

	// winnerOf[a][b] holds the winner of the duel between a and b.
	winnerOf := make(map[int]map[int]int)
	for _, m := range matches {
		if m.Round != models.RoundGroup || m.GroupLabel == nil || *m.GroupLabel != label {
			continue
		}
		if _, ok := index[m.P1ID]; ok {
			standings[index[m.P1ID]].Played++
		}
		if _, ok := index[m.P2ID]; ok {
			standings[index[m.P2ID]].Played++
		}
		if !m.Resolved() {
			continue
		}
		if i, ok := index[*m.WinnerID]; ok {
			standings[i].Wins++
		}
		if winnerOf[m.P1ID] == nil {
			winnerOf[m.P1ID] = make(map[int]int)
		}
		if winnerOf[m.P2ID] == nil {
			winnerOf[m.P2ID] = make(map[int]int)
		}
		winnerOf[m.P1ID][m.P2ID] = *m.WinnerID
		winnerOf[m.P2ID][m.P1ID] = *m.WinnerID
	}

	tiedAt := make(map[int]int, len(standings))
	for _, s := range standings {
		tiedAt[s.Wins]++
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		if tiedAt[standings[i].Wins] == 2 {
			if w, ok := winnerOf[standings[i].PlayerID][standings[j].PlayerID]; ok {
				return w == standings[i].PlayerID
			}
		}
		return false
	})
	return standings
}
