package engine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/officegames/tournament-hub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePlayers(n int) []models.Player {
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{ID: i + 1, Name: fmt.Sprintf("player-%d", i+1)}
	}
	return players
}

func TestGroupPartitionerBalancedSizes(t *testing.T) {
	for n := 0; n <= 20; n++ {
		partitioner := NewGroupPartitioner(rand.New(rand.NewSource(42)))
		groupA, groupB := partitioner.Split(makePlayers(n))

		assert.Equal(t, n, len(groupA)+len(groupB), "roster size %d", n)
		diff := len(groupA) - len(groupB)
		assert.LessOrEqual(t, diff, 1, "roster size %d", n)
		assert.GreaterOrEqual(t, diff, 0, "group A takes the extra player for size %d", n)
	}
}

func TestGroupPartitionerNoDuplicateAssignment(t *testing.T) {
	partitioner := NewGroupPartitioner(rand.New(rand.NewSource(7)))
	groupA, groupB := partitioner.Split(makePlayers(9))

	seen := make(map[int]bool)
	for _, p := range append(append([]models.Player{}, groupA...), groupB...) {
		require.False(t, seen[p.ID], "player %d assigned twice", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, seen, 9)
}

func TestGroupPartitionerDeterministicSeed(t *testing.T) {
	first := NewGroupPartitioner(rand.New(rand.NewSource(1)))
	second := NewGroupPartitioner(rand.New(rand.NewSource(1)))

	a1, b1 := first.Split(makePlayers(8))
	a2, b2 := second.Split(makePlayers(8))

	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}

func TestGroupPartitionerDoesNotMutateRoster(t *testing.T) {
	roster := makePlayers(6)
	original := make([]models.Player, len(roster))
	copy(original, roster)

	NewGroupPartitioner(rand.New(rand.NewSource(3))).Split(roster)

	assert.Equal(t, original, roster)
}

func TestGroupPartitionerTinyRosters(t *testing.T) {
	partitioner := NewGroupPartitioner(rand.New(rand.NewSource(1)))

	groupA, groupB := partitioner.Split(nil)
	assert.Empty(t, groupA)
	assert.Empty(t, groupB)

	groupA, groupB = partitioner.Split(makePlayers(1))
	require.Len(t, groupA, 1)
	assert.Empty(t, groupB)
}
