package engine

import (
	"math/rand"
	"time"

	"github.com/officegames/tournament-hub/models"
)

// GroupPartitioner splits a roster into two balanced groups. The
// randomness source is injected so a fixed seed makes the partition
// reproducible and two tournaments never share rand state.
type GroupPartitioner struct {
	rng *rand.Rand
}

// NewGroupPartitioner builds a partitioner over rng; a nil rng falls
// back to a time-seeded source.
func NewGroupPartitioner(rng *rand.Rand) *GroupPartitioner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &GroupPartitioner{rng: rng}
}

// Split permutes the roster and cuts at ceil(n/2). Group sizes differ
// by at most one; an empty or single-player roster is not an error.
func (p *GroupPartitioner) Split(roster []models.Player) (groupA, groupB []models.Player) {
	shuffled := make([]models.Player, len(roster))
	copy(shuffled, roster)
	p.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	mid := (len(shuffled) + 1) / 2
	return shuffled[:mid], shuffled[mid:]
}
