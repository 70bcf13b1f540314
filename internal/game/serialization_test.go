package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumDeterministic(t *testing.T) {
	s := InitializeGame([]string{"Alice", "Bob"}, "game-1", rand.New(rand.NewSource(5)))

	a, err := s.ComputeChecksum()
	require.NoError(t, err)
	b, err := s.ComputeChecksum()
	require.NoError(t, err)

	assert.Equal(t, a.Hash, b.Hash)
	assert.Equal(t, 1, a.Version)
}

func TestChecksumMatchesAcrossReplicas(t *testing.T) {
	a := InitializeGame([]string{"Alice", "Bob"}, "game-1", rand.New(rand.NewSource(5)))
	b := InitializeGame([]string{"Alice", "Bob"}, "game-1", rand.New(rand.NewSource(5)))

	ca, err := a.ComputeChecksum()
	require.NoError(t, err)
	cb, err := b.ComputeChecksum()
	require.NoError(t, err)
	assert.Equal(t, ca.Hash, cb.Hash)
}

func TestChecksumIgnoresHandDisplayOrder(t *testing.T) {
	s := InitializeGame([]string{"Alice", "Bob"}, "game-1", rand.New(rand.NewSource(5)))
	before, err := s.ComputeChecksum()
	require.NoError(t, err)

	// Reordering a hand is display-only and must not change the digest.
	reordered := s.Clone()
	hand := reordered.Players[0].Hand
	hand[0], hand[len(hand)-1] = hand[len(hand)-1], hand[0]

	after, err := reordered.ComputeChecksum()
	require.NoError(t, err)
	assert.Equal(t, before.Hash, after.Hash)
}

func TestChecksumDetectsDivergence(t *testing.T) {
	s := InitializeGame([]string{"Alice", "Bob"}, "game-1", rand.New(rand.NewSource(5)))
	before, err := s.ComputeChecksum()
	require.NoError(t, err)

	diverged := DrawFromPile(s, nil)
	after, err := diverged.ComputeChecksum()
	require.NoError(t, err)
	assert.NotEqual(t, before.Hash, after.Hash)
}
