package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// SerializationChecksum is a deterministic digest of a game snapshot.
// Two replicas applying the same action stream must produce the same
// hash; a mismatch means the states have diverged.
type SerializationChecksum struct {
	Hash    string
	Version int
}

// ComputeChecksum hashes a canonical rendering of the state. Piles whose
// order is insignificant for the rules are sorted by card ID so display
// reordering never changes the digest; draw and discard piles keep their
// order because it is rules-relevant.
func (s *GameState) ComputeChecksum() (*SerializationChecksum, error) {
	data := s.buildDeterministicRepresentation()

	hash := sha256.New()
	if _, err := hash.Write([]byte(data)); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}

	return &SerializationChecksum{
		Hash:    hex.EncodeToString(hash.Sum(nil)),
		Version: 1,
	}, nil
}

func (s *GameState) buildDeterministicRepresentation() string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("GAME:%s|%s|%d|%s|%d\n",
		s.GameID,
		s.Status,
		s.CurrentPlayerIndex,
		s.Winner,
		s.TurnActions,
	))

	writeOrdered := func(label string, cards []Card) {
		for _, c := range cards {
			buf.WriteString(fmt.Sprintf("  %s:%s|%s|%d\n", label, c.ID, c.Kind, c.Value))
		}
	}
	writeSorted := func(label string, cards []Card) {
		ids := make([]string, len(cards))
		for i, c := range cards {
			ids[i] = c.ID
		}
		sort.Strings(ids)
		for _, id := range ids {
			buf.WriteString(fmt.Sprintf("  %s:%s\n", label, id))
		}
	}

	for i := range s.Players {
		p := &s.Players[i]
		buf.WriteString(fmt.Sprintf("PLAYER:%s|%s|%d|%t\n", p.ID, p.Name, p.Mileage, p.IsActive))
		writeSorted("HAND", p.Hand)
		writeOrdered("BATTLE", p.BattlePile)
		writeSorted("SPEED", p.SpeedPile)
		writeSorted("DISTANCE", p.DistancePile)
		writeSorted("SAFETY", p.SafetyPile)
	}

	writeOrdered("DRAW", s.DrawPile)
	writeOrdered("DISCARD", s.DiscardPile)

	return buf.String()
}
