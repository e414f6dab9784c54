package engine

import (
	"context"
	"fmt"

	"github.com/officegames/tournament-hub/models"
)

// Fixture is a match blueprint produced by a generator. The service
// layer maps it onto a persisted DuelMatch or RoyaleMatch; the engine
// itself never touches storage.
type Fixture struct {
	Duel bool

	// Duel form.
	P1ID int
	P2ID int

	// Multi-party form.
	PlayerIDs []int

	Round      models.Round
	GroupLabel *models.GroupLabel
}

type GenerateFixturesParams struct {
	Group []models.Player
	Label models.GroupLabel
	// Round defaults to models.RoundGroup when empty.
	Round models.Round
}

type FixtureGenerator interface {
	GenerateFixtures(ctx context.Context, params GenerateFixturesParams) ([]*Fixture, error)

	GetName() string
}

// GeneratorForFormat selects the fixture generator matching a game's
// configured format.
func GeneratorForFormat(format models.GameFormat) (FixtureGenerator, error) {
	switch format {
	case models.FormatHeadToHead:
		return NewRoundRobinGenerator(), nil
	case models.FormatBattleRoyale:
		return NewBattleRoyaleGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported game format %q", format)
	}
}
