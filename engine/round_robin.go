package engine

import (
	"context"

	"github.com/officegames/tournament-hub/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() FixtureGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateFixtures creates one duel fixture for every unordered pair of
// group members, C(n,2) in total, in group order. A group with fewer
// than two players yields no fixtures rather than an error.
func (g *RoundRobinGenerator) GenerateFixtures(_ context.Context, params GenerateFixturesParams) ([]*Fixture, error) {
	group := params.Group
	round := params.Round
	if round == "" {
		round = models.RoundGroup
	}
	label := params.Label

	if len(group) < 2 {
		return []*Fixture{}, nil
	}

	fixtures := make([]*Fixture, 0, len(group)*(len(group)-1)/2)
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			fixtures = append(fixtures, &Fixture{
				Duel:       true,
				P1ID:       group[i].ID,
				P2ID:       group[j].ID,
				Round:      round,
				GroupLabel: &label,
			})
		}
	}
	return fixtures, nil
}
