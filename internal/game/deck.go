package game

import (
	"fmt"
	"math/rand"
)

// BuildDeck returns the canonical 106-card deck in composition order.
// IDs are sequential and unique within the deck instance.
func BuildDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	id := 1
	for _, entry := range deckComposition {
		for i := 0; i < entry.count; i++ {
			deck = append(deck, Card{
				ID:       fmt.Sprintf("card_%d", id),
				Kind:     entry.kind,
				Category: entry.category,
				Value:    entry.value,
			})
			id++
		}
	}
	return deck
}

// Shuffle returns a Fisher-Yates shuffled copy of cards using the supplied
// source. The input slice is never modified. A nil rng falls back to the
// package-level source.
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng != nil {
		rng.Shuffle(len(out), swap)
	} else {
		rand.Shuffle(len(out), swap)
	}
	return out
}

// HandSize is the number of cards dealt to each player at setup.
const HandSize = 6

// deal removes HandSize cards per player off the front of deck, all six to
// player 0, then all six to player 1, and so on. The order matters for
// deterministic replay from a fixed seed.
func deal(deck []Card, players int) (hands [][]Card, rest []Card) {
	hands = make([][]Card, players)
	rest = deck
	for i := 0; i < players; i++ {
		n := HandSize
		if n > len(rest) {
			n = len(rest)
		}
		hands[i] = append([]Card(nil), rest[:n]...)
		rest = rest[n:]
	}
	return hands, append([]Card(nil), rest...)
}
