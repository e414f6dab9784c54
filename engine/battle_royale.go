package engine

import (
	"context"

	"github.com/officegames/tournament-hub/models"
)

type BattleRoyaleGenerator struct{}

func NewBattleRoyaleGenerator() FixtureGenerator {
	return &BattleRoyaleGenerator{}
}

func (g *BattleRoyaleGenerator) GetName() string {
	return "BattleRoyale"
}

// GenerateFixtures creates exactly one multi-party fixture covering the
// whole group. A group with fewer than two players holds no contest, so
// nothing is generated.
func (g *BattleRoyaleGenerator) GenerateFixtures(_ context.Context, params GenerateFixturesParams) ([]*Fixture, error) {
	group := params.Group
	round := params.Round
	if round == "" {
		round = models.RoundGroup
	}
	label := params.Label

	if len(group) < 2 {
		return []*Fixture{}, nil
	}

	playerIDs := make([]int, len(group))
	for i, p := range group {
		playerIDs[i] = p.ID
	}

	return []*Fixture{{
		PlayerIDs:  playerIDs,
		Round:      round,
		GroupLabel: &label,
	}}, nil
}
