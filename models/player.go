package models

import "time"

// Player is shared by reference across tournaments and matches.
// Name is unique across the whole player population.
type Player struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Games     []string  `json:"games" db:"-"`
	AvatarKey *string   `json:"-" db:"avatar_key"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PlaysGame reports whether the player carries the given game tag.
func (p *Player) PlaysGame(game string) bool {
	for _, g := range p.Games {
		if g == game {
			return true
		}
	}
	return false
}
