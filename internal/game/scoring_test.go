package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerScoreMileageOnly(t *testing.T) {
	p := &PlayerState{Mileage: 650}
	assert.Equal(t, 650, PlayerScore(p))
}

func TestPlayerScoreTripComplete(t *testing.T) {
	p := &PlayerState{Mileage: 1000}
	assert.Equal(t, 1400, PlayerScore(p))
}

func TestPlayerScoreSafetyBonuses(t *testing.T) {
	p := &PlayerState{
		Mileage:    500,
		SafetyPile: []Card{card(KindDrivingAce), card(KindFuelTank)},
	}
	assert.Equal(t, 500+2*100, PlayerScore(p))
}

func TestPlayerScoreAllFourSafeties(t *testing.T) {
	p := &PlayerState{
		Mileage: 1000,
		SafetyPile: []Card{
			card(KindDrivingAce),
			card(KindFuelTank),
			card(KindPunctureProof),
			card(KindRightOfWay),
		},
	}
	// 1000 + 400 trip + 4*100 safeties + 300 full set.
	assert.Equal(t, 2100, PlayerScore(p))
}

func TestCalculateFinalScores(t *testing.T) {
	s := twoPlayerState()
	s.Status = StatusEnded
	s.Winner = "player-0"
	s.Players[0].IsActive = false
	s.Players[0].Mileage = 1000
	s.Players[1].Mileage = 425
	s.Players[1].SafetyPile = []Card{card(KindRightOfWay)}

	next := CalculateFinalScores(s)

	assert.Equal(t, 1400, next.Players[0].Score)
	assert.Equal(t, 525, next.Players[1].Score)
	// Input untouched.
	assert.Zero(t, s.Players[0].Score)

	require.NotEmpty(t, next.Messages)
	assert.Contains(t, next.Messages[0].Text, "Final scores")
}

func TestCalculateFinalScoresRejectedWhilePlaying(t *testing.T) {
	s := twoPlayerState()
	s.Players[0].Mileage = 200

	next := CalculateFinalScores(s)

	assert.Zero(t, next.Players[0].Score)
	require.Len(t, next.Messages, 1)
	assert.Equal(t, MessageError, next.Messages[0].Kind)
}
