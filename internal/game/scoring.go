package game

// Scoring bonuses, in points.
const (
	tripCompleteBonus = 400
	perSafetyBonus    = 100
	allSafetiesBonus  = 300
)

// PlayerScore computes one player's final score: a point per mile, the
// trip-completion bonus at the winning distance, a bonus per safety card
// owned, and an extra bonus for owning all four.
func PlayerScore(p *PlayerState) int {
	score := p.Mileage
	if p.Mileage >= WinningDistance {
		score += tripCompleteBonus
	}
	score += len(p.SafetyPile) * perSafetyBonus

	all := true
	for _, k := range SafetyKinds {
		if !p.HasSafety(k) {
			all = false
			break
		}
	}
	if all {
		score += allSafetiesBonus
	}
	return score
}

// CalculateFinalScores assigns every player's score and appends a summary
// to the log. Meaningful only once the game has ended; calling it earlier
// is rejected with a message.
func CalculateFinalScores(s *GameState) *GameState {
	next := s.Clone()
	if next.Status != StatusEnded {
		next.log(MessageError, "Cannot calculate final scores: game is %s", next.Status)
		return next
	}
	for i := range next.Players {
		next.Players[i].Score = PlayerScore(&next.Players[i])
	}
	next.log(MessageSystem, "Final scores calculated!")
	for i := range next.Players {
		p := &next.Players[i]
		next.log(MessageInfo, "%s: %d points", p.Name, p.Score)
	}
	return next
}
