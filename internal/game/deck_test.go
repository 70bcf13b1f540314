package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDeckComposition(t *testing.T) {
	deck := BuildDeck()
	require.Len(t, deck, DeckSize)

	counts := make(map[Kind]int)
	ids := make(map[string]bool)
	for _, c := range deck {
		counts[c.Kind]++
		assert.False(t, ids[c.ID], "duplicate card id %s", c.ID)
		ids[c.ID] = true
	}

	expected := map[Kind]int{
		KindDistance25:    10,
		KindDistance50:    10,
		KindDistance75:    10,
		KindDistance100:   12,
		KindDistance200:   4,
		KindAccident:      3,
		KindOutOfGas:      3,
		KindFlatTire:      3,
		KindSpeedLimit:    4,
		KindStop:          5,
		KindRepairs:       6,
		KindGasoline:      6,
		KindSpareTire:     6,
		KindEndOfLimit:    6,
		KindRoll:          14,
		KindDrivingAce:    1,
		KindFuelTank:      1,
		KindPunctureProof: 1,
		KindRightOfWay:    1,
	}
	assert.Equal(t, expected, counts)
}

func TestBuildDeckDistanceValues(t *testing.T) {
	for _, c := range BuildDeck() {
		if c.Category == CategoryDistance {
			assert.Contains(t, []int{25, 50, 75, 100, 200}, c.Value)
		} else {
			assert.Zero(t, c.Value)
		}
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	deck := BuildDeck()
	original := make([]Card, len(deck))
	copy(original, deck)

	Shuffle(deck, rand.New(rand.NewSource(1)))
	assert.Equal(t, original, deck)
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	deck := BuildDeck()
	a := Shuffle(deck, rand.New(rand.NewSource(42)))
	b := Shuffle(deck, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)

	c := Shuffle(deck, rand.New(rand.NewSource(43)))
	assert.NotEqual(t, a, c)
}

func TestShufflePreservesMultiset(t *testing.T) {
	deck := BuildDeck()
	shuffled := Shuffle(deck, rand.New(rand.NewSource(7)))
	require.Len(t, shuffled, len(deck))

	ids := make(map[string]bool)
	for _, c := range shuffled {
		ids[c.ID] = true
	}
	assert.Len(t, ids, len(deck))
}

func TestDealBlocksOfSix(t *testing.T) {
	deck := BuildDeck()
	hands, rest := deal(deck, 3)

	require.Len(t, hands, 3)
	for i, hand := range hands {
		assert.Len(t, hand, HandSize, "player %d", i)
	}
	assert.Len(t, rest, DeckSize-3*HandSize)

	// Player 0 gets the first six cards, player 1 the next six, and so on.
	assert.Equal(t, deck[0:6], hands[0])
	assert.Equal(t, deck[6:12], hands[1])
	assert.Equal(t, deck[12:18], hands[2])
	assert.Equal(t, deck[18], rest[0])
}
