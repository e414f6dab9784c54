package models

// GameFormat selects how group fixtures are generated for a game.
// It is configuration supplied per game, not derivable from player data.
type GameFormat string

const (
	FormatHeadToHead   GameFormat = "head_to_head"
	FormatBattleRoyale GameFormat = "battle_royale"
)

func (f GameFormat) Valid() bool {
	return f == FormatHeadToHead || f == FormatBattleRoyale
}

type Game struct {
	ID     int        `json:"id" db:"id"`
	Name   string     `json:"name" db:"name"`
	Format GameFormat `json:"format" db:"format"`
}
