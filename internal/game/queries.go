package game

import (
	"fmt"
	"time"
)

// Query helpers for the presentation layer. All are read-only; none
// touch the game state they are given.

// IsValidDistanceCard reports whether the card can be played right now
// considering the speed limit and the mileage cap, ignoring battle status.
func IsValidDistanceCard(p *PlayerState, card Card) bool {
	if HasActiveSpeedLimit(p) && card.Value > SpeedLimitMax {
		return false
	}
	return p.Mileage+card.Value <= WinningDistance
}

// MaxPlayableDistance returns the largest distance value the player could
// play, capped by the speed limit and the miles remaining to the finish.
func MaxPlayableDistance(p *PlayerState) int {
	remaining := WinningDistance - p.Mileage
	if HasActiveSpeedLimit(p) && remaining > SpeedLimitMax {
		return SpeedLimitMax
	}
	return remaining
}

// PossibleMoves enumerates legal action descriptors for the player against
// the listed opponents, for UI hinting. Discarding is always available.
func PossibleMoves(p *PlayerState, opponents []PlayerState) []string {
	moves := []string{"discard"}

	if CanPlayDistance(p) {
		moves = append(moves, "playDistance")
	}

	for _, card := range p.Hand {
		switch card.Category {
		case CategoryRemedy:
			if CanApplyRemedy(p, card.Kind) {
				moves = append(moves, fmt.Sprintf("playRemedy:%s", card.Kind))
			}
		case CategorySafety:
			moves = append(moves, fmt.Sprintf("playSafety:%s", card.Kind))
		case CategoryHazard:
			for i := range opponents {
				if !HasImmunityAgainst(&opponents[i], card.Kind) {
					moves = append(moves, fmt.Sprintf("playHazard:%s:%s", card.Kind, opponents[i].ID))
				}
			}
		}
	}
	return moves
}

// TurnTimeRemaining returns the seconds left on the turn clock, never
// negative.
func TurnTimeRemaining(turnStartTime time.Time, limit time.Duration, now time.Time) float64 {
	remaining := limit - now.Sub(turnStartTime)
	if remaining < 0 {
		return 0
	}
	return remaining.Seconds()
}
